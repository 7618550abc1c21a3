// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Broker        BrokerConfig       `mapstructure:"broker"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Services      ServicesConfig     `mapstructure:"services"`
	History       HistoryConfig      `mapstructure:"history"`
	Local         LocalConfig        `mapstructure:"local"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BrokerConfig holds the STOMP broker connection settings.
type BrokerConfig struct {
	URL               string `mapstructure:"url"`                // ws://host:port/ws
	Topic             string `mapstructure:"topic"`              // /topic/orders
	ReconnectDelay    int    `mapstructure:"reconnect_delay"`    // milliseconds
	HeartbeatIncoming int    `mapstructure:"heartbeat_incoming"` // milliseconds
	HeartbeatOutgoing int    `mapstructure:"heartbeat_outgoing"` // milliseconds
	ConnectTimeout    int    `mapstructure:"connect_timeout"`    // milliseconds
	LongPollFallback  bool   `mapstructure:"long_poll_fallback"`
}

// NotificationConfig holds settings for the notification store and the
// alert channels fired on insert.
type NotificationConfig struct {
	Capacity int `mapstructure:"capacity"`

	Desktop struct {
		Enabled bool   `mapstructure:"enabled"`
		Icon    string `mapstructure:"icon"`
	} `mapstructure:"desktop"`

	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`

	SMS struct {
		Enabled     bool   `mapstructure:"enabled"`
		PhoneNumber string `mapstructure:"phone_number"`
	} `mapstructure:"sms"`

	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// ServicesConfig holds base URLs for the storefront REST collaborators.
type ServicesConfig struct {
	AuthURL     string `mapstructure:"auth_url"`
	UsersURL    string `mapstructure:"users_url"`
	ProductsURL string `mapstructure:"products_url"`
	OrdersURL   string `mapstructure:"orders_url"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds
}

// HistoryConfig holds settings for the optional Redis-backed
// notification history sink.
type HistoryConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Key     string      `mapstructure:"key"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LocalConfig holds settings for locally persisted state (credentials,
// per-user profile data).
type LocalConfig struct {
	Dir            string `mapstructure:"dir"`
	KeyringService string `mapstructure:"keyring_service"`
	ProfileDB      string `mapstructure:"profile_db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the Prometheus scrape endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// ProfileDBPath returns the full path of the local profile database.
func (l LocalConfig) ProfileDBPath() string {
	if l.ProfileDB != "" {
		return l.ProfileDB
	}
	return fmt.Sprintf("%s/profile.db", l.Dir)
}
