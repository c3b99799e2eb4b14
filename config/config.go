// Package config loads trackfeat settings from defaults, an optional YAML
// file and TRACKFEAT_ environment variables, and builds a Preprocessor from
// them.
//
// Precedence is ENV > file > defaults. Environment keys use a double
// underscore between section and field:
//
//	TRACKFEAT_LOG__LEVEL=debug        -> log.level
//	TRACKFEAT_NULLS__COLUMNS=a,b      -> nulls.columns
//	TRACKFEAT_NULLS__OUTPUT_VALUE=0   -> nulls.output_value
//	TRACKFEAT_SCALER__KIND=minmax     -> scaler.kind
//
// Assignments can only be declared in the file. When none are declared the
// canonical track layout is used.
package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/YuminosukeSato/trackfeat/pipeline"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "TRACKFEAT_"

// PathEnvVar may name the config file when none is passed explicitly.
const PathEnvVar = "TRACKFEAT_CONFIG"

// DefaultPaths are searched in order when no path is given.
var DefaultPaths = []string{
	"trackfeat.yaml",
	"trackfeat.yml",
}

// Config is the complete configuration.
type Config struct {
	Log         LogConfig          `koanf:"log"`
	Nulls       NullsConfig        `koanf:"nulls"`
	Assignments []AssignmentConfig `koanf:"assignments" validate:"dive"`
	Layout      LayoutConfig       `koanf:"layout"`
	Remainder   string             `koanf:"remainder" validate:"oneof=drop passthrough"`
	Scaler      ScalerConfig       `koanf:"scaler"`
}

// LogConfig configures pkg/log.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// NullsConfig configures the null normalization stage. OutputValue is parsed
// like a table cell, so the empty default means missing.
type NullsConfig struct {
	Columns     []string `koanf:"columns"`
	InputValue  float64  `koanf:"input_value"`
	OutputValue string   `koanf:"output_value"`
	Strict      bool     `koanf:"strict"`
}

// AssignmentConfig declares one column-transformer slot.
type AssignmentConfig struct {
	Name          string   `koanf:"name" validate:"required"`
	Encoder       string   `koanf:"encoder" validate:"required,oneof=frequency label_frequency circle_of_fifths aggregate onehot passthrough standard minmax"`
	Columns       []string `koanf:"columns"`
	Strategy      string   `koanf:"strategy" validate:"omitempty,oneof=max sum avg"`
	Delimiter     string   `koanf:"delimiter"`
	Default       float64  `koanf:"default"`
	TrimSpace     bool     `koanf:"trim_space"`
	Scale         string   `koanf:"scale" validate:"omitempty,oneof=standard minmax"`
	HandleUnknown string   `koanf:"handle_unknown" validate:"omitempty,oneof=error ignore"`
}

// LayoutConfig fills the dataset-dependent slots of the canonical layout.
type LayoutConfig struct {
	Categorical []string `koanf:"categorical"`
	Numeric     []string `koanf:"numeric"`
}

// ScalerConfig selects the global scaler.
type ScalerConfig struct {
	Kind string `koanf:"kind" validate:"oneof=standard minmax none"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Nulls: NullsConfig{
			Columns:    []string{pipeline.ColumnArtistFollowers, pipeline.ColumnArtistPopularities},
			InputValue: -1,
		},
		Layout: LayoutConfig{
			Numeric: append([]string(nil), pipeline.DefaultNumericColumns...),
		},
		Remainder: "drop",
		Scaler:    ScalerConfig{Kind: "standard"},
	}
}

// sliceKeys are parsed from comma-separated strings when set through env.
var sliceKeys = []string{
	"nulls.columns",
	"layout.categorical",
	"layout.numeric",
}

// Load reads the configuration. An empty path falls back to TRACKFEAT_CONFIG
// and then DefaultPaths; a missing default file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	if path == "" {
		path = findFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "config file %s", path)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}
	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey maps TRACKFEAT_NULLS__INPUT_VALUE to nulls.input_value.
// TRACKFEAT_CONFIG is not a setting and maps to an empty key.
func envKey(key string) string {
	if key == PathEnvVar {
		return ""
	}
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func splitSlices(k *koanf.Koanf) error {
	for _, path := range sliceKeys {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if err := k.Set(path, values); err != nil {
			return errors.Wrapf(err, "failed to set %s", path)
		}
	}
	return nil
}

var validate = validator.New()

// Validate checks the struct tags and reports the first violation as a
// ValidationError.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.NewValidationError(fe.Namespace(), "failed on "+fe.ActualTag()+" "+fe.Param(), fe.Value())
	}
	return errors.Wrap(err, "configuration validation failed")
}
