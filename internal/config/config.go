// Package config loads trainer configuration from an HCL file, a .env file
// and BLACKJACK_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/lox/blackjack-trainer/internal/game"
)

// DefaultFile is the config file read when none is named
const DefaultFile = "blackjack.hcl"

// Environment variables that override file settings
const (
	EnvData     = "BLACKJACK_DATA"
	EnvSeed     = "BLACKJACK_SEED"
	EnvLogLevel = "BLACKJACK_LOG_LEVEL"
	EnvServer   = "BLACKJACK_SERVER"
)

// Config is the resolved trainer configuration
type Config struct {
	Rules   game.Rules
	Trainer TrainerSettings
	Server  ServerSettings
}

// TrainerSettings configures the local trainer
type TrainerSettings struct {
	// DataFile is where balance, stats and settings are persisted.
	DataFile string
	// Hints and Sound seed the settings of a new data file.
	Hints    bool
	Sound    bool
	Seed     int64
	LogLevel string
}

// ServerSettings configures the websocket server
type ServerSettings struct {
	Address string
	Port    int
}

// fileConfig mirrors the HCL layout. Every attribute is a pointer so an
// absent attribute keeps its default, including false booleans.
type fileConfig struct {
	Rules   *fileRules   `hcl:"rules,block"`
	Trainer *fileTrainer `hcl:"trainer,block"`
	Server  *fileServer  `hcl:"server,block"`
}

type fileRules struct {
	Decks              *int     `hcl:"decks,optional"`
	DealerStandsSoft17 *bool    `hcl:"dealer_stands_soft_17,optional"`
	DoubleAfterSplit   *bool    `hcl:"double_after_split,optional"`
	MaxSplits          *int     `hcl:"max_splits,optional"`
	BlackjackPayout    *float64 `hcl:"blackjack_payout,optional"`
	InsuranceAvailable *bool    `hcl:"insurance,optional"`
	SurrenderAvailable *bool    `hcl:"surrender,optional"`
}

type fileTrainer struct {
	DataFile *string `hcl:"data_file,optional"`
	Hints    *bool   `hcl:"hints,optional"`
	Sound    *bool   `hcl:"sound,optional"`
	Seed     *int64  `hcl:"seed,optional"`
	LogLevel *string `hcl:"log_level,optional"`
}

type fileServer struct {
	Address *string `hcl:"address,optional"`
	Port    *int    `hcl:"port,optional"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Rules: game.DefaultRules(),
		Trainer: TrainerSettings{
			DataFile: DefaultDataFile(),
			Hints:    true,
			LogLevel: "warn",
		},
		Server: ServerSettings{
			Address: "localhost",
			Port:    8080,
		},
	}
}

// DefaultDataFile returns the per-user data file path, or a file in the
// working directory when there is no home directory.
func DefaultDataFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "blackjack-data.toml"
	}
	return filepath.Join(home, ".blackjack-trainer", "data.toml")
}

// Load reads filename over the defaults. A missing file is not an error.
func Load(filename string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	fc.applyTo(config)
	return config, nil
}

func (fc fileConfig) applyTo(c *Config) {
	if r := fc.Rules; r != nil {
		set(&c.Rules.NumDecks, r.Decks)
		set(&c.Rules.DealerStandsOnSoft17, r.DealerStandsSoft17)
		set(&c.Rules.DoubleAfterSplit, r.DoubleAfterSplit)
		set(&c.Rules.MaxSplits, r.MaxSplits)
		set(&c.Rules.BlackjackPayout, r.BlackjackPayout)
		set(&c.Rules.InsuranceAvailable, r.InsuranceAvailable)
		set(&c.Rules.SurrenderAvailable, r.SurrenderAvailable)
	}
	if t := fc.Trainer; t != nil {
		set(&c.Trainer.DataFile, t.DataFile)
		set(&c.Trainer.Hints, t.Hints)
		set(&c.Trainer.Sound, t.Sound)
		set(&c.Trainer.Seed, t.Seed)
		set(&c.Trainer.LogLevel, t.LogLevel)
	}
	if s := fc.Server; s != nil {
		set(&c.Server.Address, s.Address)
		set(&c.Server.Port, s.Port)
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// LoadDotEnv loads variables from the named .env files into the process
// environment without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from BLACKJACK_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvData); ok && v != "" {
		c.Trainer.DataFile = v
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSeed, v, err)
		}
		c.Trainer.Seed = seed
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Trainer.LogLevel = v
	}
	if v, ok := lookup(EnvServer); ok && v != "" {
		host, portStr, err := net.SplitHostPort(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvServer, v, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid %s port %q: %w", EnvServer, portStr, err)
		}
		c.Server.Address = host
		c.Server.Port = port
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Trainer.DataFile == "" {
		return fmt.Errorf("trainer: data file must be set")
	}
	if _, err := log.ParseLevel(c.Trainer.LogLevel); err != nil {
		return fmt.Errorf("trainer: invalid log level %q", c.Trainer.LogLevel)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port: %d", c.Server.Port)
	}
	return nil
}

// ServerAddress returns the full listen address
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}
