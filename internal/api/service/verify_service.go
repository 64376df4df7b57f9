package service

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"pmmbridge/internal/api/models"
	"pmmbridge/internal/engine"
)

// CredentialProber verifies a monitoring credential against the database
// itself before it is marked ready. Injectable so workflow tests can stub it.
type CredentialProber func(eng engine.Integration, inst engine.Instance) error

// VerifyMonitoringCredential opens a short-lived connection with the
// engine-specific driver and pings it.
func VerifyMonitoringCredential(eng engine.Integration, inst engine.Instance) error {
	driver, dsn := eng.VerifyDSN(inst)
	if driver == "" {
		return &models.ValidationError{Message: fmt.Sprintf("%s does not support credential verification", eng.DisplayName())}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return &models.ValidationError{Message: fmt.Sprintf("Failed to open connection: %v", err)}
	}
	defer db.Close()

	db.SetConnMaxLifetime(10 * time.Second)
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return &models.AuthError{
			Field:   "credential",
			Message: fmt.Sprintf("Could not connect to %s:%d as %q: %v", inst.Host, inst.Port, inst.Username, err),
		}
	}
	return nil
}
