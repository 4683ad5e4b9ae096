package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Email    EmailConfig    `mapstructure:"email"`
	Auth     AuthConfig     `mapstructure:"auth"`
	App      AppConfig      `mapstructure:"app"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// EmailConfig holds notification transport configuration. Backend
// selects the implementation: "smtp" for real delivery, "console" for
// local runs.
type EmailConfig struct {
	Backend        string `mapstructure:"backend"`
	SMTPHost       string `mapstructure:"smtp_host"`
	SMTPPort       int    `mapstructure:"smtp_port"`
	SMTPUsername   string `mapstructure:"smtp_username"`
	SMTPPassword   string `mapstructure:"smtp_password"`
	FromAddress    string `mapstructure:"from_address"`
	FromName       string `mapstructure:"from_name"`
	DirectionEmail string `mapstructure:"direction_email"`
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	FrontendBaseURL string `mapstructure:"frontend_base_url"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables. A local
// .env file, when present, is folded into the environment first.
func Load(configPath string) (*Config, error) {
	_ = gotenv.Load()

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/course_management.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Email defaults
	viper.SetDefault("email.backend", "console")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.from_address", "noreply@localhost")
	viper.SetDefault("email.from_name", "Course Management")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", 24*time.Hour)

	// App defaults
	viper.SetDefault("app.frontend_base_url", "http://localhost:3000")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration.
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("email.smtp_host", "SMTP_HOST")
	viper.BindEnv("email.smtp_port", "SMTP_PORT")
	viper.BindEnv("email.smtp_username", "SMTP_USERNAME")
	viper.BindEnv("email.smtp_password", "SMTP_PASSWORD")
	viper.BindEnv("email.direction_email", "DIRECTION_EMAIL")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Email.DirectionEmail == "" {
		return fmt.Errorf("email.direction_email is required")
	}
	if c.Email.Backend == "smtp" {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("email.smtp_host is required for the smtp backend")
		}
		if c.Email.SMTPUsername == "" {
			return fmt.Errorf("email.smtp_username is required for the smtp backend")
		}
	}
	return nil
}
