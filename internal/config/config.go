package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

// Config is the top-level configuration.
type Config struct {
	LogLevel    string  `toml:"log_level"`
	ActionsDir  string  `toml:"actions_dir"`
	Watch       bool    `toml:"watch"`
	QuitKey     string  `toml:"quit_key"`
	CallTimeout string  `toml:"call_timeout"`
	Chords      []Chord `toml:"chord"`
}

// Chord declares an inner context. A press of any one of Inputs enters it,
// and the first release or cancel of any of them leaves it.
//
// Parent names an earlier chord whose context carries this chord's binding,
// so the chord only works while the parent is held. Without a parent the
// binding lives in the root context.
type Chord struct {
	Name       string   `toml:"name"`
	Inputs     []string `toml:"inputs"`
	ActionsDir string   `toml:"actions_dir"`
	Parent     string   `toml:"parent"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		ActionsDir:  "actions",
		Watch:       true,
		QuitKey:     "<C-c>",
		CallTimeout: "250ms",
	}
}

// EnvPrefix prefixes the environment variables read by ApplyEnv.
const EnvPrefix = "KEYCHORD_"

// envOverrides lists the settings that can come from the environment.
// Values are strings so an unset variable leaves the file value alone.
type envOverrides struct {
	LogLevel    string `env:"LOG_LEVEL"`
	ActionsDir  string `env:"ACTIONS_DIR"`
	Watch       string `env:"WATCH"`
	QuitKey     string `env:"QUIT_KEY"`
	CallTimeout string `env:"CALL_TIMEOUT"`
}

// Load reads the configuration at path, applies environment overrides and
// validates the result. A missing file yields Default. Relative directories
// from the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err == nil {
		if cfg, err = parse(path, data); err != nil {
			return nil, err
		}
	}

	cfg.resolve(filepath.Dir(path))
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data on top of Default and validates the result.
// Directories are left as written.
func Parse(data []byte) (*Config, error) {
	cfg, err := parse("<input>", data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(source string, data []byte) (*Config, error) {
	cfg := Default()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	return cfg, nil
}

// ApplyEnv overrides top-level settings from KEYCHORD_* variables.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.LogLevel, o.LogLevel)
	set(&c.ActionsDir, o.ActionsDir)
	set(&c.QuitKey, o.QuitKey)
	set(&c.CallTimeout, o.CallTimeout)

	if o.Watch != "" {
		w, err := strconv.ParseBool(o.Watch)
		if err != nil {
			return invalid("%sWATCH: %v", EnvPrefix, err)
		}
		c.Watch = w
	}
	return nil
}

// resolve makes relative directories relative to base.
func (c *Config) resolve(base string) {
	join := func(dir string) string {
		if dir == "" || filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}
	c.ActionsDir = join(c.ActionsDir)
	for i := range c.Chords {
		c.Chords[i].ActionsDir = join(c.Chords[i].ActionsDir)
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.LogLevel) {
		return invalid("unknown log_level %q", c.LogLevel)
	}
	if c.ActionsDir == "" {
		return invalid("actions_dir is empty")
	}
	if _, err := key.Parse(c.QuitKey); err != nil {
		return invalid("quit_key: %v", err)
	}
	if _, err := c.Timeout(); err != nil {
		return invalid("call_timeout: %v", err)
	}

	seen := make(map[string]bool, len(c.Chords))
	for i, ch := range c.Chords {
		if ch.Name == "" {
			return invalid("chord %d has no name", i)
		}
		if seen[ch.Name] {
			return invalid("duplicate chord %q", ch.Name)
		}
		if ch.Parent != "" && !seen[ch.Parent] {
			return invalid("chord %q: parent %q is not an earlier chord", ch.Name, ch.Parent)
		}
		seen[ch.Name] = true

		if len(ch.Inputs) == 0 {
			return invalid("chord %q has no inputs", ch.Name)
		}
		if _, err := key.ParseAll(ch.Inputs...); err != nil {
			return invalid("chord %q: %v", ch.Name, err)
		}
		if ch.ActionsDir == "" {
			return invalid("chord %q has no actions_dir", ch.Name)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// Quit returns the parsed quit input.
func (c *Config) Quit() (key.Input, error) {
	return key.Parse(c.QuitKey)
}

// Timeout returns the parsed script call timeout. An empty value means no
// bound.
func (c *Config) Timeout() (time.Duration, error) {
	if c.CallTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CallTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

// ParsedInputs returns the parsed inputs of ch.
func (ch Chord) ParsedInputs() ([]key.Input, error) {
	return key.ParseAll(ch.Inputs...)
}
