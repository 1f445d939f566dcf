// internal/config/database.go
package config

import (
	"strings"
	"time"
)

const applicationName = "autoimport-backend"

// DSN renders the libpq keyword/value connection string. Sessions always run
// in UTC so contract timestamps compare the same on every host.
func (d *DatabaseConfig) DSN() string {
	pairs := [][2]string{
		{"host", d.Host},
		{"port", d.Port},
		{"user", d.User},
		{"password", d.Password},
		{"dbname", d.Database},
		{"sslmode", d.SSLMode},
		{"TimeZone", "UTC"},
		{"application_name", applicationName},
	}

	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		if kv[1] == "" {
			continue
		}
		parts = append(parts, kv[0]+"="+dsnValue(kv[1]))
	}
	return strings.Join(parts, " ")
}

// ConnMaxLifetime is MaxLifetime as a duration; zero keeps connections open.
func (d *DatabaseConfig) ConnMaxLifetime() time.Duration {
	if d.MaxLifetime <= 0 {
		return 0
	}
	return time.Duration(d.MaxLifetime) * time.Second
}

// dsnValue quotes values libpq would otherwise split or misread.
func dsnValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
