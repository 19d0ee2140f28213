package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"stolik/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	Telegram      TelegramConfig      `yaml:"telegram"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	HTTP          HTTPConfig          `yaml:"http"`
	Auth          AuthConfig          `yaml:"auth"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Logging       LoggingConfig       `yaml:"logging"`
	Restaurant    RestaurantConfig    `yaml:"restaurant"`
	Exports       ExportConfig        `yaml:"exports"`
	Google        GoogleConfig        `yaml:"google"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID string `yaml:"admin_chat_id"`
}

// AdminChat parses the configured operator chat id. ok is false when the id
// is empty or not numeric, which disables admin notifications.
func (t TelegramConfig) AdminChat() (int64, bool) {
	raw := strings.TrimSpace(t.AdminChatID)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type AuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type NotificationsConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxRetries     int `yaml:"max_retries"`
	QueueSize      int `yaml:"queue_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type RestaurantConfig struct {
	OpenTime        string `yaml:"open_time"`
	CloseTime       string `yaml:"close_time"`
	SlotStepMinutes int    `yaml:"slot_step_minutes"`
	Tables          int    `yaml:"tables"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	CredentialsFile      string `yaml:"credentials_file"`
	BookingSpreadsheetID string `yaml:"bookings_spreadsheet_id"`
	BookingSheetName     string `yaml:"bookings_sheet_name"`
}

func Load(configPath string) (*Config, error) {
	// .env подхватывается, если существует; его отсутствие не ошибка
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	// Отсутствие токена или чата админа лишь отключает уведомления,
	// ошибкой не считается (предупреждение логируется при старте).

	if _, err := ParseClock(c.Restaurant.OpenTime); err != nil {
		return fmt.Errorf("restaurant.open_time: %w", err)
	}
	if _, err := ParseClock(c.Restaurant.CloseTime); err != nil {
		return fmt.Errorf("restaurant.close_time: %w", err)
	}

	seen := make(map[string]bool, len(c.Auth.APIKeys))
	for _, k := range c.Auth.APIKeys {
		if k.Key == "" {
			return fmt.Errorf("api key '%s' has empty key", k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate api key: %s", k.Name)
		}
		seen[k.Key] = true
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3000
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Auth.HeaderAPIKey == "" {
		c.Auth.HeaderAPIKey = "x-api-key"
	}

	if c.Notifications.TimeoutSeconds == 0 {
		c.Notifications.TimeoutSeconds = models.DefaultNotifyTimeout
	}
	if c.Notifications.MaxRetries == 0 {
		c.Notifications.MaxRetries = 3
	}
	if c.Notifications.QueueSize == 0 {
		c.Notifications.QueueSize = models.DispatcherQueueSize
	}

	if c.Restaurant.OpenTime == "" {
		c.Restaurant.OpenTime = models.DefaultOpenTime
	}
	if c.Restaurant.CloseTime == "" {
		c.Restaurant.CloseTime = models.DefaultCloseTime
	}
	if c.Restaurant.SlotStepMinutes == 0 {
		c.Restaurant.SlotStepMinutes = models.DefaultSlotStepMinutes
	}
	if c.Restaurant.Tables == 0 {
		c.Restaurant.Tables = models.DefaultTableCount
	}

	if c.Google.BookingSheetName == "" {
		c.Google.BookingSheetName = "Бронирования"
	}
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hh*60 + mm, nil
}
