package params

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// Layer1 names the chain and contract ChangePubKey authorizations are bound
// to through the EIP-712 domain.
type Layer1 struct {
	ChainID      uint32
	MainContract common.Address
}

type Signer struct {
	// PrivateKey is the hex layer-one key. Empty means a throwaway key is
	// generated at startup.
	PrivateKey string
}

type Outbox struct {
	// Path of the pebble directory. Empty disables the outbox.
	Path string
}

type API struct {
	Addr           string
	AllowedOrigins []string
}

type Log struct {
	Level string
	File  string
}

type Config struct {
	Layer1 Layer1
	Signer Signer
	Outbox Outbox
	API    API
	Log    Log
}

func Default() Config {
	return Config{
		Layer1: Layer1{
			ChainID:      1,
			MainContract: common.Address{},
		},
		Outbox: Outbox{Path: "data/outbox"},
		API: API{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		Log: Log{Level: "info"},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) (Config, error) {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("ZKLINK_L1_CHAIN_ID"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("ZKLINK_L1_CHAIN_ID: %w", err)
		}
		cfg.Layer1.ChainID = uint32(id)
	}
	if v := os.Getenv("ZKLINK_MAIN_CONTRACT"); v != "" {
		if !common.IsHexAddress(v) {
			return Config{}, fmt.Errorf("ZKLINK_MAIN_CONTRACT: invalid address %q", v)
		}
		cfg.Layer1.MainContract = common.HexToAddress(v)
	}

	cfg.Signer.PrivateKey = getEnv("ZKLINK_PRIVATE_KEY", cfg.Signer.PrivateKey)
	if v, ok := os.LookupEnv("ZKLINK_OUTBOX_PATH"); ok {
		cfg.Outbox.Path = v
	}
	cfg.API.Addr = getEnv("API_ADDR", cfg.API.Addr)
	if v := os.Getenv("API_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.API.AllowedOrigins = origins
	}
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)

	return cfg, nil
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
