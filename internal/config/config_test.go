package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, Default(), config)
	assert.Equal(t, game.DefaultRules(), config.Rules)
	assert.NoError(t, config.Validate())
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeFile(t, "blackjack.hcl", `
rules {
  decks                 = 2
  dealer_stands_soft_17 = false
  blackjack_payout      = 1.2
  surrender             = false
}

trainer {
  data_file = "/tmp/bj.toml"
  hints     = false
  seed      = 42
  log_level = "debug"
}

server {
  port = 9090
}
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, config.Rules.NumDecks)
	assert.False(t, config.Rules.DealerStandsOnSoft17)
	assert.Equal(t, 1.2, config.Rules.BlackjackPayout)
	assert.False(t, config.Rules.SurrenderAvailable)
	// Untouched attributes keep their defaults.
	assert.Equal(t, 4, config.Rules.MaxSplits)
	assert.True(t, config.Rules.DoubleAfterSplit)

	assert.Equal(t, "/tmp/bj.toml", config.Trainer.DataFile)
	assert.False(t, config.Trainer.Hints)
	assert.False(t, config.Trainer.Sound)
	assert.Equal(t, int64(42), config.Trainer.Seed)
	assert.Equal(t, "debug", config.Trainer.LogLevel)

	assert.Equal(t, "localhost", config.Server.Address)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "localhost:9090", config.ServerAddress())
}

func TestLoadPartialFile(t *testing.T) {
	path := writeFile(t, "blackjack.hcl", `server {
  address = "0.0.0.0"
}
`)

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", config.Server.Address)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, game.DefaultRules(), config.Rules)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "bad.hcl", `rules {`))
	assert.ErrorContains(t, err, "failed to parse HCL file")

	_, err = Load(writeFile(t, "wrong.hcl", `rules {
  decks = "six"
}
`))
	assert.ErrorContains(t, err, "failed to decode HCL")

	_, err = Load(writeFile(t, "unknown.hcl", `table "main" {}`))
	assert.ErrorContains(t, err, "failed to decode HCL")
}

func TestApplyEnv(t *testing.T) {
	config := Default()
	err := config.ApplyEnv(env(map[string]string{
		EnvData:     "/data/bj.toml",
		EnvSeed:     "1234",
		EnvLogLevel: "error",
		EnvServer:   "0.0.0.0:7000",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/data/bj.toml", config.Trainer.DataFile)
	assert.Equal(t, int64(1234), config.Trainer.Seed)
	assert.Equal(t, "error", config.Trainer.LogLevel)
	assert.Equal(t, "0.0.0.0", config.Server.Address)
	assert.Equal(t, 7000, config.Server.Port)
}

func TestApplyEnvIgnoresEmpty(t *testing.T) {
	config := Default()
	require.NoError(t, config.ApplyEnv(env(map[string]string{EnvData: ""})))
	assert.Equal(t, Default(), config)
}

func TestApplyEnvErrors(t *testing.T) {
	assert.Error(t, Default().ApplyEnv(env(map[string]string{EnvSeed: "abc"})))
	assert.Error(t, Default().ApplyEnv(env(map[string]string{EnvServer: "nohost"})))
	assert.Error(t, Default().ApplyEnv(env(map[string]string{EnvServer: "host:http"})))
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "BLACKJACK_TEST_DOTENV=from-file\n")
	t.Setenv("BLACKJACK_TEST_DOTENV", "")
	os.Unsetenv("BLACKJACK_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("BLACKJACK_TEST_DOTENV"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"bad decks", func(c *Config) { c.Rules.NumDecks = 9 }, "rules"},
		{"no data file", func(c *Config) { c.Trainer.DataFile = "" }, "data file"},
		{"bad log level", func(c *Config) { c.Trainer.LogLevel = "loud" }, "log level"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)
			assert.ErrorContains(t, config.Validate(), tt.want)
		})
	}
}
