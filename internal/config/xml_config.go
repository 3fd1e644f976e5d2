// Package config provides XML-based configuration management.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"PDCTracking"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Processing configuration
	Processing ProcessingConfig `xml:"Processing"`

	// Fleet map configuration
	Fleet FleetConfig `xml:"Fleet"`

	// Security configuration
	Security SecurityConfig `xml:"Security"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains file locations
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	ExportsDirectory string `xml:"ExportsDirectory"`
	RosterFile       string `xml:"RosterFile"`
	StatusTableFile  string `xml:"StatusTableFile"`
}

// ProcessingConfig contains telemetry and export settings
type ProcessingConfig struct {
	RollupEngine           string `xml:"RollupEngine"`
	MaxRangeDays           int    `xml:"MaxRangeDays"`
	DefaultRangeDays       int    `xml:"DefaultRangeDays"`
	ArtifactTTLMinutes     int    `xml:"ArtifactTTLMinutes"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes"`
	EnableCompression      bool   `xml:"EnableCompression"`
	CompressionLevel       int    `xml:"CompressionLevel"`
}

// FleetConfig controls status labeling and the maintenance draw
type FleetConfig struct {
	StatusScheme     string `xml:"StatusScheme"`
	MaintenanceSeed  uint64 `xml:"MaintenanceSeed"`
	MaintenanceCount int    `xml:"MaintenanceCount"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	AllowExportDeletion bool `xml:"AllowExportDeletion"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	LogFile              string `xml:"LogFile"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	EnableMetrics        bool   `xml:"EnableMetrics"`
	DuckDBThreads        int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit    string `xml:"DuckDBMemoryLimit"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "1M",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			ExportsDirectory: "./data/exports",
		},
		Processing: ProcessingConfig{
			RollupEngine:           "memory",
			MaxRangeDays:           366,
			DefaultRangeDays:       7,
			ArtifactTTLMinutes:     30,
			CleanupIntervalMinutes: 5,
			EnableCompression:      true,
			CompressionLevel:       5,
		},
		Fleet: FleetConfig{
			StatusScheme:     "three",
			MaintenanceSeed:  42,
			MaintenanceCount: 3,
		},
		Security: SecurityConfig{
			AllowExportDeletion: true,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			EnableMetrics:        true,
			DuckDBThreads:        2,
			DuckDBMemoryLimit:    "512MB",
		},
	}
}

// LoadConfig loads configuration from XML file. A .env file next to the
// config is loaded first so its variables can override the XML values.
func LoadConfig(configPath string) (*AppConfig, error) {
	configDir := filepath.Dir(configPath)
	if err := loadDotEnv(configDir); err != nil {
		return nil, err
	}

	var config *AppConfig

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config = DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config = DefaultConfig()
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(configDir)

	return config, nil
}

func loadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- PDC Tracking Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.ExportsDirectory = filepath.Join(dataDir, "exports")
	}

	if roster := os.Getenv("ROSTER_FILE"); roster != "" {
		c.Storage.RosterFile = roster
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		c.Advanced.LogFile = logFile
	}

	if engine := os.Getenv("ROLLUP_ENGINE"); engine != "" {
		c.Processing.RollupEngine = engine
	}

	if scheme := os.Getenv("STATUS_SCHEME"); scheme != "" {
		c.Fleet.StatusScheme = scheme
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.ExportsDirectory)
	resolve(&c.Storage.RosterFile)
	resolve(&c.Storage.StatusTableFile)
	resolve(&c.Advanced.LogFile)
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetExportDir returns the absolute exports directory path
func (c *AppConfig) GetExportDir() string {
	return c.Storage.ExportsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.ExportsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
