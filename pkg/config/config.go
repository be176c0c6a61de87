// Package config loads gotac settings from TOML files.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"

	"gotac/pkg/compiler"
	"gotac/pkg/log"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

type CompilerConfig struct {
	// Verify checks the label invariant of every generated program.
	Verify bool
	// CacheSize is the number of results kept by long-running front ends.
	CacheSize int
}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Report formats.
const (
	FormatTable = "table"
	FormatPlain = "plain"
)

type OutputConfig struct {
	Color  string
	Format string
}

type VMConfig struct {
	// MaxSteps bounds a run; zero means unlimited.
	MaxSteps int
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string `toml:",omitempty"`
	// RunSteps is the step budget of programs run through the service.
	RunSteps int
}

type LogConfig struct {
	Level string
}

type Config struct {
	Compiler CompilerConfig
	Output   OutputConfig
	VM       VMConfig
	Server   ServerConfig
	Log      LogConfig
}

// Defaults are the settings used when no file overrides them.
var Defaults = Config{
	Compiler: CompilerConfig{Verify: true, CacheSize: 128},
	Output:   OutputConfig{Color: ColorAuto, Format: FormatTable},
	VM:       VMConfig{MaxSteps: 10000000},
	Server:   ServerConfig{Addr: "localhost:8547", RunSteps: 100000},
	Log:      LogConfig{Level: "info"},
}

// Load decodes file over cfg. Fields missing from the file keep their
// current values.
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// Marshal encodes cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}

// Validate rejects values no front end can act on.
func (c *Config) Validate() error {
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid Output.Color %q (want auto, always or never)", c.Output.Color)
	}
	switch c.Output.Format {
	case FormatTable, FormatPlain:
	default:
		return fmt.Errorf("invalid Output.Format %q (want table or plain)", c.Output.Format)
	}
	if _, err := log.LvlFromString(c.Log.Level); err != nil {
		return fmt.Errorf("invalid Log.Level: %w", err)
	}
	if c.Compiler.CacheSize < 0 {
		return fmt.Errorf("invalid Compiler.CacheSize %d", c.Compiler.CacheSize)
	}
	if c.VM.MaxSteps < 0 || c.Server.RunSteps < 0 {
		return errors.New("step limits must not be negative")
	}
	return nil
}

// CompileOptions returns the pipeline options selected by c.
func (c *Config) CompileOptions() compiler.Options {
	return compiler.Options{Verify: c.Compiler.Verify}
}
