package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"ZKLINK_L1_CHAIN_ID", "ZKLINK_MAIN_CONTRACT", "ZKLINK_PRIVATE_KEY", "ZKLINK_OUTBOX_PATH",
	"API_ADDR", "API_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FILE",
}

// clearEnv unsets every key for the duration of the test; godotenv never
// overrides variables that are already set.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "ZKLINK_L1_CHAIN_ID=5\n" +
		"ZKLINK_MAIN_CONTRACT=0xAFAFf3aD1a0425D792432D9eCD1c3e26Ef2C42E9\n" +
		"ZKLINK_OUTBOX_PATH=\n" +
		"API_ALLOWED_ORIGINS=http://a.test, http://b.test\n" +
		"LOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), cfg.Layer1.ChainID)
	assert.Equal(t, common.HexToAddress("0xAFAFf3aD1a0425D792432D9eCD1c3e26Ef2C42E9"), cfg.Layer1.MainContract)
	assert.Equal(t, "", cfg.Outbox.Path, "explicit empty path disables the outbox")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.API.Addr)
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("ZKLINK_L1_CHAIN_ID", "not-a-number")
	_, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("ZKLINK_MAIN_CONTRACT", "0x1234")
	_, err = LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
