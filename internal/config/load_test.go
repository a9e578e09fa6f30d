package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestApp"
	testPort := 9090
	testLogLevel := "debug"
	testNodeURL := "http://localhost:8545"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nLEDGER_NODE_URL=%s\n",
		testAppName, testPort, testLogLevel, testNodeURL,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testNodeURL, cfg.Ledger.NodeURL)

	// Defaults for everything the file leaves out
	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "transaction_events", cfg.Kafka.EventsTopic)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "INR", cfg.Gateway.Currency)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 10, cfg.WorkerPool.Size)
	assert.Equal(t, 5, cfg.Ledger.ProbeAttempts)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test_defaults")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("does_not_exist")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://ganache:8545", cfg.Ledger.NodeURL)
	assert.Equal(t, "donation-ledger", cfg.Application.Name)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("RejectsMissingLedgerAccount", func(t *testing.T) {
		cfg := validConfig()
		cfg.Ledger.AccountAddress = ""
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ACCOUNT_ADDRESS")
	})

	t.Run("RejectsBadCurrency", func(t *testing.T) {
		cfg := validConfig()
		cfg.Gateway.Currency = "RUPEES"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GATEWAY_CURRENCY")
	})

	t.Run("AcceptsValidConfig", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.validate())
	})
}

func validConfig() *Config {
	return &Config{
		Application: ApplicationConfig{Env: "test", Name: "donation-ledger"},
		Logging:     LoggingConfig{Level: "info"},
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: time.Second,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
		},
		Postgres: PostgresConfig{
			URL:             "postgres://localhost:5432/test",
			MaxConns:        10,
			MinConns:        2,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: time.Minute,
		},
		MongoDB: MongoDBConfig{
			URI:      "mongodb://localhost:27017",
			Database: "test",
			Timeout:  time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:     "localhost:9092",
			EventsTopic: "transaction_events",
			MaxWait:     time.Second,
		},
		Outbox: OutboxConfig{
			PollingInterval:  time.Second,
			BatchSize:        10,
			MaxRetryAttempts: 3,
		},
		WorkerPool: WorkerPoolConfig{Size: 4},
		Ledger: LedgerConfig{
			NodeURL:        "http://localhost:8545",
			AccountAddress: "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1",
			PrivateKey:     "0x4f3edf983ac636a65a842ce7c78d9aa706d3b113bce9c46f30d7d21715b23b1d",
			ProbeAttempts:  3,
			ProbeBackoff:   time.Second,
			CallTimeout:    time.Second,
		},
		Gateway: GatewayConfig{
			KeyID:       "rzp_test_key",
			KeySecret:   "rzp_test_secret",
			Currency:    "INR",
			CallTimeout: time.Second,
		},
		JWT: JWTConfig{Secret: "secret", TTL: time.Hour},
	}
}
