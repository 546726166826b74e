package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string   `json:"serverAddress"`
	DatabasePath  string   `json:"databasePath"`
	DatabaseURL   string   `json:"databaseUrl"`
	Drive         Drive    `json:"drive"`
	Session       Session  `json:"session"`
	Branding      Branding `json:"branding"`
}

// Drive configuration for the Google Drive sync walker
type Drive struct {
	APIKey           string `json:"apiKey"`
	CredentialsFile  string `json:"credentialsFile"`
	PageSize         int    `json:"pageSize"`
	BatchSize        int    `json:"batchSize"`
	ProgressInterval int    `json:"progressInterval"`
}

// Session configuration for the web session cookie
type Session struct {
	TTLHours   int    `json:"ttlHours"`
	CookieName string `json:"cookieName"`
}

// TTL returns the session lifetime as a duration
func (s Session) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

// Branding configuration for uploaded gallery assets
type Branding struct {
	AssetPath     string `json:"assetPath"`
	MaxFileSizeMB int64  `json:"maxFileSizeMB"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5000",
		DatabasePath:  "easygallery.db",
		Drive: Drive{
			PageSize:         1000,
			BatchSize:        50,
			ProgressInterval: 10,
		},
		Session: Session{
			TTLHours:   24 * 7,
			CookieName: "gallery_session",
		},
		Branding: Branding{
			AssetPath:     "./assets",
			MaxFileSizeMB: 20,
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from config file
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if apiKey := os.Getenv("DRIVE_API_KEY"); apiKey != "" {
		cfg.Drive.APIKey = apiKey
	}
	if credsFile := os.Getenv("DRIVE_CREDENTIALS_FILE"); credsFile != "" {
		cfg.Drive.CredentialsFile = credsFile
	}
	if pageSize := os.Getenv("DRIVE_PAGE_SIZE"); pageSize != "" {
		if n, err := strconv.Atoi(pageSize); err == nil && n > 0 {
			cfg.Drive.PageSize = n
		}
	}
	if batchSize := os.Getenv("DRIVE_BATCH_SIZE"); batchSize != "" {
		if n, err := strconv.Atoi(batchSize); err == nil && n > 0 {
			cfg.Drive.BatchSize = n
		}
	}
	if ttl := os.Getenv("SESSION_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			cfg.Session.TTLHours = hours
		}
	}
	if assetPath := os.Getenv("BRANDING_ASSET_PATH"); assetPath != "" {
		cfg.Branding.AssetPath = assetPath
	}

	// Ensure branding asset directory exists
	if err := os.MkdirAll(cfg.Branding.AssetPath, 0755); err != nil {
		return nil, err
	}

	// Make asset path absolute
	absPath, err := filepath.Abs(cfg.Branding.AssetPath)
	if err != nil {
		return nil, err
	}
	cfg.Branding.AssetPath = absPath

	return cfg, nil
}
