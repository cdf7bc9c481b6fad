package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the chaincode binary and the
// local dev tooling.
type Config struct {
	// ChaincodeID and ChaincodeAddress enable the external chaincode server
	// mode when both are set; otherwise the binary starts in-process.
	ChaincodeID      string
	ChaincodeAddress string

	LogLevel    string
	DevStateDSN string
	SeedFile    string
	TLSDisabled bool
}

// Load reads a .env file if present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ChaincodeID:      getenv("CHAINCODE_ID", ""),
		ChaincodeAddress: getenv("CHAINCODE_SERVER_ADDRESS", ""),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		DevStateDSN:      getenv("DEV_STATE_DSN", "ayurtrace.db"),
		SeedFile:         getenv("SEED_FILE", "seed.yaml"),
		TLSDisabled:      getBool("CHAINCODE_TLS_DISABLED", true),
	}
}

// ExternalServer reports whether the external chaincode server mode is
// configured.
func (c Config) ExternalServer() bool {
	return c.ChaincodeID != "" && c.ChaincodeAddress != ""
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
