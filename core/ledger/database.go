package ledger

import (
	"context"
	"fmt"
	"time"

	"crowdin-distributor/core/reconcile"

	"gorm.io/gorm"
)

// progressRecord is one observation row.
type progressRecord struct {
	ID        uint    `gorm:"primaryKey"`
	Path      string  `gorm:"size:512;not null;uniqueIndex:idx_ledger_path_locale"`
	Locale    string  `gorm:"size:32;not null;uniqueIndex:idx_ledger_path_locale"`
	Progress  float64 `gorm:"not null"`
	UpdatedAt time.Time
}

func (progressRecord) TableName() string { return "ledger_progress" }

// DatabaseStore keeps the ledger in a table.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore migrates the ledger table and returns the store.
func NewDatabaseStore(db *gorm.DB) (*DatabaseStore, error) {
	if err := db.AutoMigrate(&progressRecord{}); err != nil {
		return nil, fmt.Errorf("migrating ledger table: %w", err)
	}
	return &DatabaseStore{db: db}, nil
}

func (d *DatabaseStore) Load(ctx context.Context) (reconcile.Observed, error) {
	var rows []progressRecord
	if err := d.db.WithContext(ctx).Order("path, locale").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	observed := reconcile.Observed{}
	for _, r := range rows {
		observed.Set(r.Path, r.Locale, r.Progress)
	}
	return observed, nil
}

// Save replaces every row in one transaction.
func (d *DatabaseStore) Save(ctx context.Context, observed reconcile.Observed) error {
	rows := make([]progressRecord, 0)
	for path, locales := range observed {
		for locale, pct := range locales {
			rows = append(rows, progressRecord{Path: path, Locale: locale, Progress: pct})
		}
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&progressRecord{}).Error; err != nil {
			return fmt.Errorf("clearing ledger: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("saving ledger: %w", err)
		}
		return nil
	})
}

func (d *DatabaseStore) Reset(ctx context.Context) error {
	if err := d.db.WithContext(ctx).Where("1 = 1").Delete(&progressRecord{}).Error; err != nil {
		return fmt.Errorf("clearing ledger: %w", err)
	}
	return nil
}
