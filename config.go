package xgram

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// DefaultConfigFile is the configuration file looked up in the working
// directory when no explicit path is given.
const DefaultConfigFile = "xgram.yaml"

// Config represents the xgram configuration
type Config struct {
	// Mode selects the default parsing dialect: "document" or "table".
	Mode string `yaml:"mode"`
	// GrammarTable points to a YAML file overriding the built-in cast
	// types and interval units. Empty means built-ins only.
	GrammarTable string       `yaml:"grammar_table"`
	URI          URIConfig    `yaml:"uri"`
	Output       OutputConfig `yaml:"output"`
}

// URIConfig represents connection string parsing settings
type URIConfig struct {
	// RequireScheme rejects inputs without the "mysqlx://" prefix.
	RequireScheme bool `yaml:"require_scheme"`
}

// OutputConfig represents rendering settings for parsed results
type OutputConfig struct {
	Format string `yaml:"format"` // text or xml
	Color  string `yaml:"color"`  // auto, always or never
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate the configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	// Expand environment variables
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	validModes := map[string]bool{
		"document": true,
		"table":    true,
	}
	if config.Mode != "" && !validModes[config.Mode] {
		return fmt.Errorf("%w: invalid mode '%s': must be one of document, table", ErrConfigValidation, config.Mode)
	}

	validFormats := map[string]bool{
		"text": true,
		"xml":  true,
	}
	if config.Output.Format != "" && !validFormats[config.Output.Format] {
		return fmt.Errorf("%w: invalid output.format '%s': must be one of text, xml", ErrConfigValidation, config.Output.Format)
	}

	validColors := map[string]bool{
		"auto":   true,
		"always": true,
		"never":  true,
	}
	if config.Output.Color != "" && !validColors[config.Output.Color] {
		return fmt.Errorf("%w: invalid output.color '%s': must be one of auto, always, never", ErrConfigValidation, config.Output.Color)
	}

	return nil
}

// applyDefaults fills in default values for unset fields
func applyDefaults(config *Config) {
	if config.Mode == "" {
		config.Mode = "document"
	}

	if config.Output.Format == "" {
		config.Output.Format = "text"
	}

	if config.Output.Color == "" {
		config.Output.Color = "auto"
	}
}

// getDefaultConfig returns the configuration used when no file exists
func getDefaultConfig() *Config {
	return &Config{
		Mode: "document",
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	// Pattern for ${VAR} format
	re1 := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re1.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		return os.Getenv(varName)
	})

	// Pattern for $VAR format (word boundaries)
	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		return os.Getenv(varName)
	})

	return s
}

// expandConfigEnvVars recursively expands environment variables in config
func expandConfigEnvVars(config *Config) {
	config.GrammarTable = expandEnvVars(config.GrammarTable)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
