// Package config provides configuration structures and validation for the
// application. It handles environment-based configuration for all major
// components: the HTTP server, databases, the blockchain ledger connection,
// the payment gateway and the outbox publisher.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field covers one
// subsystem and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Ledger      LedgerConfig
	Gateway     GatewayConfig
	JWT         JWTConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig contains the audit event store configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains transaction event publication configuration
type KafkaConfig struct {
	Brokers           string
	EventsTopic       string
	NumPartitions     int
	ReplicationFactor int
	MaxWait           time.Duration
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig sizes the outbox publisher pool
type WorkerPoolConfig struct {
	Size int
}

// LedgerConfig contains the blockchain node connection and signing account.
// The account address and private key sign the receipt-stamping transfers;
// the probe settings bound the startup connectivity check.
type LedgerConfig struct {
	NodeURL        string
	AccountAddress string
	PrivateKey     string
	ProbeAttempts  int
	ProbeBackoff   time.Duration
	CallTimeout    time.Duration
}

// GatewayConfig contains the payment gateway credentials
type GatewayConfig struct {
	KeyID       string
	KeySecret   string
	Currency    string
	CallTimeout time.Duration
}

// JWTConfig contains token signing settings for the auth boundary
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// validate performs comprehensive validation of all configuration values
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.EventsTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_EVENTS_TOPIC is required")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_MAX_WAIT must be greater than 0")
	}

	// Validate Outbox config
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Validate Ledger config
	if c.Ledger.NodeURL == "" {
		validationErrors = append(validationErrors, "LEDGER_NODE_URL is required")
	}
	if c.Ledger.AccountAddress == "" {
		validationErrors = append(validationErrors, "ACCOUNT_ADDRESS is required")
	}
	if c.Ledger.PrivateKey == "" {
		validationErrors = append(validationErrors, "PRIVATE_KEY is required")
	}
	if c.Ledger.ProbeAttempts <= 0 {
		validationErrors = append(validationErrors, "LEDGER_PROBE_ATTEMPTS must be greater than 0")
	}
	if c.Ledger.ProbeBackoff <= 0 {
		validationErrors = append(validationErrors, "LEDGER_PROBE_BACKOFF must be greater than 0")
	}
	if c.Ledger.CallTimeout <= 0 {
		validationErrors = append(validationErrors, "LEDGER_CALL_TIMEOUT must be greater than 0")
	}

	// Validate Gateway config
	if c.Gateway.KeyID == "" {
		validationErrors = append(validationErrors, "RAZORPAY_KEY_ID is required")
	}
	if c.Gateway.KeySecret == "" {
		validationErrors = append(validationErrors, "RAZORPAY_KEY_SECRET is required")
	}
	if len(c.Gateway.Currency) != 3 {
		validationErrors = append(validationErrors, "GATEWAY_CURRENCY must be a 3-letter code")
	}
	if c.Gateway.CallTimeout <= 0 {
		validationErrors = append(validationErrors, "GATEWAY_CALL_TIMEOUT must be greater than 0")
	}

	// Validate JWT config
	if c.JWT.Secret == "" {
		validationErrors = append(validationErrors, "JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		validationErrors = append(validationErrors, "JWT_TTL must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
