package ledger

import (
	"fmt"
	"time"

	"crowdin-distributor/core/reconcile"

	"gopkg.in/yaml.v3"
)

const documentVersion = 1

// document is the serialized form shared by the file and s3 backends.
type document struct {
	Version   int                           `yaml:"version"`
	UpdatedAt time.Time                     `yaml:"updated_at"`
	Files     map[string]map[string]float64 `yaml:"files"`
}

func encode(observed reconcile.Observed, now time.Time) ([]byte, error) {
	doc := document{Version: documentVersion, UpdatedAt: now.UTC(), Files: observed}
	if doc.Files == nil {
		doc.Files = map[string]map[string]float64{}
	}
	return yaml.Marshal(doc)
}

func decode(data []byte) (reconcile.Observed, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding ledger: %w", err)
	}
	if doc.Version > documentVersion {
		return nil, fmt.Errorf("ledger version %d is newer than supported version %d", doc.Version, documentVersion)
	}
	observed := reconcile.Observed{}
	for path, locales := range doc.Files {
		for locale, pct := range locales {
			observed.Set(path, locale, pct)
		}
	}
	return observed, nil
}
