package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all the necessary configuration for an App instance to run.
// The flag tag names the command-line flag a field comes from and is used in
// validation messages.
type Config struct {
	WorkflowPath string `flag:"workflow" validate:"required"`
	// Root is the directory relative workflow paths are resolved against by
	// the local backend.
	Root string `flag:"root"`

	Mode    string `flag:"mode" validate:"oneof=sequential parallel"`
	Workers int    `flag:"workers" validate:"gte=1,lte=256"`
	Backend string `flag:"backend" validate:"oneof=local dummy"`

	LogFormat string `flag:"log-format" validate:"oneof=text json"`
	LogLevel  string `flag:"log-level" validate:"oneof=debug info warn error"`
	Report    string `flag:"report" validate:"oneof=text yaml toml"`

	DryRun       bool `flag:"dry-run"`
	AllowInvalid bool `flag:"allow-invalid"`

	Vars    map[string]string `flag:"var" validate:"dive,keys,required,endkeys"`
	EnvFile string            `flag:"env-file" validate:"omitempty,file"`
}

// Defaults applied by NewConfig to zero-valued fields.
const (
	DefaultMode      = "sequential"
	DefaultWorkers   = 4
	DefaultBackend   = "local"
	DefaultLogFormat = "text"
	DefaultLogLevel  = "info"
	DefaultReport    = "text"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("flag"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Mode == "" {
		cfg.Mode = DefaultMode
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Report == "" {
		cfg.Report = DefaultReport
	}
	cfg.Mode = strings.ToLower(cfg.Mode)
	cfg.Backend = strings.ToLower(cfg.Backend)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Report = strings.ToLower(cfg.Report)

	if err := validate.Struct(cfg); err != nil {
		return nil, describeValidation(err)
	}
	return &cfg, nil
}

// describeValidation turns validator errors into one message per field.
func describeValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Field()
		if name == "" {
			name = fe.StructField()
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", name))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("invalid %s %v: must be one of %s", name, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("invalid %s %v: must be between 1 and 256", name, fe.Value()))
		case "file":
			msgs = append(msgs, fmt.Sprintf("invalid %s %v: file does not exist", name, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s: failed %q validation", name, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
