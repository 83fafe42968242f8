package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeWeb   = "web"
	ModeStdio = "stdio"

	// Default values
	DefaultPort         = 8501
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultMaxFileSize  = 50 * 1024 * 1024 // 50MB
	DefaultTemplatePath = "modelo_planilha.xlsx"
	DefaultOutputName   = "Planilha de Itens.xlsx"

	envPrefix = "PLANO"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the spreadsheet filler
type Config struct {
	// Server configuration
	Mode string // "web" or "stdio"
	Host string
	Port int

	// Files
	TemplatePath string
	WorkDir      string // tool mode paths are confined here
	OutputName   string // download and default output file name

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeWeb,
		Host:         DefaultHost,
		Port:         DefaultPort,
		TemplatePath: DefaultTemplatePath,
		WorkDir:      currentDir,
		OutputName:   DefaultOutputName,
		Version:      "1.0.0",
		ServerName:   "plano-planilha",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and environment into a validated configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(os.Args[1:]); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("template", cfg.TemplatePath)
	viper.SetDefault("dir", cfg.WorkDir)
	viper.SetDefault("outputname", cfg.OutputName)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'web' for the upload page and HTTP API, 'stdio' for MCP tools")
	pflag.String("host", cfg.Host, "HTTP host address (web mode only)")
	pflag.Int("port", cfg.Port, "HTTP port (web mode only)")
	pflag.String("template", cfg.TemplatePath, "Path to the spreadsheet template (.xlsx)")
	pflag.String("dir", cfg.WorkDir, "Work directory for tool mode PDF and output paths")
	pflag.String("outputname", cfg.OutputName, "File name of the generated spreadsheet")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{"mode", "host", "port", "template", "dir", "outputname", "loglevel", "maxfilesize"} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nplano-planilha - fills the items spreadsheet from a Plano de Aplicação PDF\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --template=modelo.xlsx                         # web mode on 127.0.0.1:8501\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --template=modelo.xlsx --host=0.0.0.0 --port=80 # web mode on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/srv/planos                 # MCP tools over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PLANO_MODE          Run mode\n")
		fmt.Fprintf(os.Stderr, "  PLANO_HOST          HTTP host\n")
		fmt.Fprintf(os.Stderr, "  PLANO_PORT          HTTP port\n")
		fmt.Fprintf(os.Stderr, "  PLANO_TEMPLATE      Spreadsheet template\n")
		fmt.Fprintf(os.Stderr, "  PLANO_DIR           Work directory\n")
		fmt.Fprintf(os.Stderr, "  PLANO_OUTPUTNAME    Output file name\n")
		fmt.Fprintf(os.Stderr, "  PLANO_LOGLEVEL      Log level\n")
		fmt.Fprintf(os.Stderr, "  PLANO_MAXFILESIZE   Maximum file size\n")
	}
}

// checkVersionFlag reports whether a version flag was requested
func checkVersionFlag(args []string) error {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.TemplatePath = viper.GetString("template")
	cfg.WorkDir = viper.GetString("dir")
	cfg.OutputName = viper.GetString("outputname")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

func (c *Config) expandPaths() {
	if c.TemplatePath != "" {
		if abs, err := filepath.Abs(c.TemplatePath); err == nil {
			c.TemplatePath = abs
		}
	}
	if c.WorkDir != "" {
		if abs, err := filepath.Abs(c.WorkDir); err == nil {
			c.WorkDir = abs
		}
	}
}

// Validate checks if the configuration is valid. A missing template is an error.
func (c *Config) Validate() error {
	if c.Mode != ModeWeb && c.Mode != ModeStdio {
		return errors.New("mode must be either 'web' or 'stdio'")
	}

	if c.Mode == ModeWeb && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.TemplatePath == "" {
		return errors.New("template path cannot be empty")
	}
	info, err := os.Stat(c.TemplatePath)
	if err != nil {
		return fmt.Errorf("cannot access template %s: %w", c.TemplatePath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("template %s is a directory", c.TemplatePath)
	}

	if c.WorkDir == "" {
		return errors.New("work directory cannot be empty")
	}

	if c.OutputName == "" {
		return errors.New("output name cannot be empty")
	}
	if filepath.Base(c.OutputName) != c.OutputName {
		return fmt.Errorf("output name must be a file name, got %s", c.OutputName)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsWebMode returns true when serving the upload page and HTTP API
func (c *Config) IsWebMode() bool {
	return c.Mode == ModeWeb
}

// IsStdioMode returns true when serving MCP tools over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, Template: %s, WorkDir: %s, OutputName: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.TemplatePath, c.WorkDir, c.OutputName, c.LogLevel, c.MaxFileSize)
}
