// Package database opens GORM connections for the database-backed progress ledger.
//
// Two drivers are supported: MySQL for shared deployments and SQLite for a
// single host. Connect configures the pool for the driver and pings the
// database before returning, so a misconfigured DSN fails at startup.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	store, err := ledger.NewDatabaseStore(db)
package database
