// internal/config/database.go
package config

import (
	"fmt"
)

// DSN builds the postgres connection string. application_name tags our
// sessions so slow lifecycle queries are attributable in pg_stat_activity.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s application_name=uvocollab",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
