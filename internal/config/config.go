package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/common"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Viper keys.
const (
	KeyDatabaseDriver = "database.driver"
	KeyDatabasePath   = "database.path"
	KeyDatabaseDSN    = "database.dsn"
	KeyOwner          = "ledger.owner"
	KeyAMQPURL        = "events.amqp_url"
	KeyExchange       = "events.exchange"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
	KeyImportRules    = "import.rules"
)

// EnvKeyReplacer maps nested keys to environment names, so database.dsn reads
// LEDGER_DATABASE_DSN.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// DefaultDatabasePath is where the SQLite ledger lives unless configured otherwise.
const DefaultDatabasePath = "~/.local/share/ledger/ledger.db"

// DefaultExchange names the AMQP exchange ledger events are published to.
const DefaultExchange = "ledger.events"

// Config holds everything the CLI needs to open storage and wire the engine.
type Config struct {
	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string
	Owner          string
	AMQPURL        string
	Exchange       string
	LogLevel       string
	LogFormat      string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabaseDriver, DriverSQLite)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyExchange, DefaultExchange)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load materialises a Config from v. Paths are expanded; nothing is validated.
func Load(v *viper.Viper) *Config {
	return &Config{
		DatabaseDriver: strings.ToLower(strings.TrimSpace(v.GetString(KeyDatabaseDriver))),
		DatabasePath:   ExpandPath(v.GetString(KeyDatabasePath)),
		DatabaseDSN:    v.GetString(KeyDatabaseDSN),
		Owner:          strings.TrimSpace(v.GetString(KeyOwner)),
		AMQPURL:        v.GetString(KeyAMQPURL),
		Exchange:       v.GetString(KeyExchange),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
	}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			problems = append(problems, "database.path cannot be empty when using the sqlite driver")
		} else if strings.HasPrefix(c.DatabasePath, "~") {
			problems = append(problems, fmt.Sprintf("database.path %q could not be expanded", c.DatabasePath))
		}
	case DriverPostgres:
		if c.DatabaseDSN == "" {
			problems = append(problems, "database.dsn cannot be empty when using the postgres driver")
		} else if u, err := url.Parse(c.DatabaseDSN); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			problems = append(problems, fmt.Sprintf("database.dsn must be a postgres:// URL, got %q", redact(c.DatabaseDSN)))
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid database.driver %q: must be one of [%s %s]",
			c.DatabaseDriver, DriverSQLite, DriverPostgres))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid events.amqp_url: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid events.amqp_url scheme %q: must be 'amqp' or 'amqps'", u.Scheme))
		}
		if strings.TrimSpace(c.Exchange) == "" {
			problems = append(problems, "events.exchange cannot be empty when events.amqp_url is set")
		}
	}

	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid logging.level %q", c.LogLevel))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("invalid logging.format %q: must be 'console' or 'json'", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", common.ErrInvalidConfig, strings.Join(problems, "\n  - "))
	}
	return nil
}

// RequireOwner returns the configured owner or ErrMissingConfig.
func (c *Config) RequireOwner() (string, error) {
	if c.Owner == "" {
		return "", errors.Join(common.ErrMissingConfig,
			fmt.Errorf("no ledger owner: pass --owner or set %s", KeyOwner))
	}
	return c.Owner, nil
}

// redact hides the password of a connection URL.
func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
