// Package config loads the optional JSON configuration file shared by the
// binaries and applies environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config mirrors config.json. Paths are relative to the working directory.
type Config struct {
	Name         string   `json:"name"`
	ChessComUser string   `json:"chess_com_user"`
	LichessUser  string   `json:"lichess_user"`
	TimeFormats  []string `json:"time_formats"`
	ImportedDir  string   `json:"imported_dir"`
	IngestDir    string   `json:"ingest_dir"`
	IngestedDir  string   `json:"ingested_dir"`
	StoreDir     string   `json:"store_dir"`
	EcoDir       string   `json:"eco_dir"`
	EnginePath   string   `json:"engine_path"`
	EvalDepth    int      `json:"eval_depth"`
	EvalWorkers  int      `json:"eval_workers"`
	Addr         string   `json:"addr"`
	LogLevel     string   `json:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TimeFormats: []string{"rapid", "blitz"},
		ImportedDir: "./data/imported",
		IngestedDir: "./data/ingested",
		StoreDir:    "./data/store",
		EcoDir:      "./data/eco",
		EvalDepth:   20,
		EvalWorkers: 1,
		Addr:        ":8007",
		LogLevel:    "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults;
// a named file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}
	return cfg, cfg.Validate()
}

// Env lists the environment variables ApplyEnv reads.
var Env = struct {
	Store, Engine, User, EcoDir, IngestDir, LogLevel, Addr, EvalDepth string
}{
	Store:     "REPERTOIRE_STORE",
	Engine:    "STOCKFISH_PATH",
	User:      "REPERTOIRE_USER",
	EcoDir:    "REPERTOIRE_ECO_DIR",
	IngestDir: "REPERTOIRE_INGEST_DIR",
	LogLevel:  "REPERTOIRE_LOG_LEVEL",
	Addr:      "REPERTOIRE_ADDR",
	EvalDepth: "REPERTOIRE_EVAL_DEPTH",
}

// ApplyEnv overrides fields from the environment. getenv is os.Getenv
// outside tests.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.StoreDir, Env.Store)
	set(&c.EnginePath, Env.Engine)
	set(&c.ChessComUser, Env.User)
	set(&c.EcoDir, Env.EcoDir)
	set(&c.IngestDir, Env.IngestDir)
	set(&c.LogLevel, Env.LogLevel)
	set(&c.Addr, Env.Addr)
	if v := getenv(Env.EvalDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", Env.EvalDepth, err)
		}
		c.EvalDepth = n
	}
	return c.Validate()
}

// Username returns the tracked player: the chess.com user, else the
// lichess user.
func (c *Config) Username() string {
	if c.ChessComUser != "" {
		return c.ChessComUser
	}
	return c.LichessUser
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.StoreDir == "" {
		errs = append(errs, errors.New("store_dir is required"))
	}
	if c.EvalDepth < 0 {
		errs = append(errs, fmt.Errorf("eval_depth %d is negative", c.EvalDepth))
	}
	if c.EvalWorkers < 0 {
		errs = append(errs, fmt.Errorf("eval_workers %d is negative", c.EvalWorkers))
	}
	if c.IngestDir != "" && c.IngestDir == c.IngestedDir {
		errs = append(errs, errors.New("ingest_dir and ingested_dir must differ"))
	}
	return errors.Join(errs...)
}
