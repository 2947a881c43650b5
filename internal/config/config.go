// Package config assembles the service configuration. Sources are applied
// in increasing priority: built-in defaults, an optional JSON file, the
// environment (including a .env file) and command line flags.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	GRPCAddr            string        `env:"GRPC_ADDRESS" json:"grpc_address" validate:"omitempty,hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" json:"file_storage_path" validate:"filepath"`
	SQLitePath          string        `env:"SQLITE_PATH" json:"sqlite_path" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN" json:"database_dsn"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"db_connection_timeout" validate:"gt=0"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" json:"shutdown_timeout" validate:"gt=0"`
	EnableGzip          bool          `json:"-"`
	ConfigFile          string        `env:"CONFIG" json:"-"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	GRPCAddr:            "",
	LogLevel:            "info",
	DBFileName:          "",
	SQLitePath:          "",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	ShutdownTimeout:     10 * time.Second,
	EnableGzip:          true,
}

// enableGzipEnv is read by hand: a zero bool cannot tell "unset" from "false".
const enableGzipEnv = "ENABLE_GZIP"

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warn":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command line flags; tests use it to stay
// independent of the test binary's arguments.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// applyDefaults fills every zero field of values from defaults.
func applyDefaults(values *Config, defaults Config) {
	overlay(values, defaults)
	values.EnableGzip = defaults.EnableGzip
}

// overlay copies every non-zero field of src onto dst.
func overlay(dst *Config, src Config) {
	if src.RunAddr != "" {
		dst.RunAddr = src.RunAddr
	}
	if src.GRPCAddr != "" {
		dst.GRPCAddr = src.GRPCAddr
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.DBFileName != "" {
		dst.DBFileName = src.DBFileName
	}
	if src.SQLitePath != "" {
		dst.SQLitePath = src.SQLitePath
	}
	if src.DatabaseDSN != "" {
		dst.DatabaseDSN = src.DatabaseDSN
	}
	if src.DBConnectionTimeout != 0 {
		dst.DBConnectionTimeout = src.DBConnectionTimeout
	}
	if src.ShutdownTimeout != 0 {
		dst.ShutdownTimeout = src.ShutdownTimeout
	}
	if src.ConfigFile != "" {
		dst.ConfigFile = src.ConfigFile
	}
}

// jsonConfig mirrors Config with durations written as strings ("5s").
type jsonConfig struct {
	Config
	DBConnectionTimeout string `json:"db_connection_timeout"`
	ShutdownTimeout     string `json:"shutdown_timeout"`
	EnableGzip          *bool  `json:"enable_gzip"`
}

func loadJSONFile(fileName string) (Config, *bool, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, nil, fmt.Errorf("in internal/config/config.go/loadJSONFile(): error while `os.ReadFile()` calling: %w", err)
	}

	var raw jsonConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, nil, fmt.Errorf("in internal/config/config.go/loadJSONFile(): error while `json.Unmarshal()` calling: %w", err)
	}

	result := raw.Config
	if raw.DBConnectionTimeout != "" {
		if result.DBConnectionTimeout, err = time.ParseDuration(raw.DBConnectionTimeout); err != nil {
			return Config{}, nil, fmt.Errorf("db_connection_timeout: %w", err)
		}
	}
	if raw.ShutdownTimeout != "" {
		if result.ShutdownTimeout, err = time.ParseDuration(raw.ShutdownTimeout); err != nil {
			return Config{}, nil, fmt.Errorf("shutdown_timeout: %w", err)
		}
	}

	return result, raw.EnableGzip, nil
}

type flagValues struct {
	values     Config
	enableGzip string
}

func parseFlags(args []string) (flagValues, error) {
	var parsed flagValues
	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.StringVar(&parsed.values.RunAddr, "a", "", "address and port to run the HTTP server")
	flagSet.StringVar(&parsed.values.GRPCAddr, "g", "", "address and port to run the gRPC server, disabled when empty")
	flagSet.StringVar(&parsed.values.LogLevel, "l", "", "logger level")
	flagSet.StringVar(&parsed.values.DBFileName, "f", "", "JSON file name with the users database")
	flagSet.StringVar(&parsed.values.SQLitePath, "s", "", "SQLite database file")
	flagSet.StringVar(&parsed.values.DatabaseDSN, "d", "", "PostgreSQL connection string")
	flagSet.StringVar(&parsed.values.ConfigFile, "c", "", "JSON configuration file")
	flagSet.StringVar(&parsed.enableGzip, "z", "", "enable gzip compression (true/false)")

	if err := flagSet.Parse(args); err != nil {
		return flagValues{}, err
	}

	return parsed, nil
}

func parseBoolSetting(name, value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &parsed, nil
}

// New builds the configuration from all sources and validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `godotenv.Load()` calling: %w", err)
	}

	var fromFlags flagValues
	if !options.disableFlagsParsing {
		var err error
		fromFlags, err = parseFlags(options.args)
		if err != nil {
			return nil, err
		}
	}

	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, err
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	configFile := fromEnv.ConfigFile
	if fromFlags.values.ConfigFile != "" {
		configFile = fromFlags.values.ConfigFile
	}
	if configFile != "" {
		fromFile, enableGzip, err := loadJSONFile(configFile)
		if err != nil {
			return nil, err
		}
		overlay(values, fromFile)
		if enableGzip != nil {
			values.EnableGzip = *enableGzip
		}
		values.ConfigFile = configFile
	}

	overlay(values, fromEnv)
	enableGzip, err := parseBoolSetting(enableGzipEnv, os.Getenv(enableGzipEnv))
	if err != nil {
		return nil, err
	}
	if enableGzip != nil {
		values.EnableGzip = *enableGzip
	}

	overlay(values, fromFlags.values)
	enableGzip, err = parseBoolSetting("-z", fromFlags.enableGzip)
	if err != nil {
		return nil, err
	}
	if enableGzip != nil {
		values.EnableGzip = *enableGzip
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
