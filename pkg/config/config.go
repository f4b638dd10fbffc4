package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the key/value connection string understood by the pgx driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the postgres:// form used by golang-migrate.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// KafkaConfig holds broker and topic settings.
type KafkaConfig struct {
	Brokers      []string
	GroupPrefix  string
	BookingTopic string
	CatalogTopic string
}

// RedisConfig holds cache settings. An empty Addr disables redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// TracingConfig holds OpenTelemetry exporter settings. An empty Endpoint disables export.
type TracingConfig struct {
	Endpoint    string
	SampleRatio float64
}

// Load builds a viper instance reading PREFIX_* environment variables.
func Load(prefix string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("service.port", "8080")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_prefix", "shareit-")
	v.SetDefault("kafka.booking_topic", "booking.events")
	v.SetDefault("kafka.catalog_topic", "catalog.events")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// GetServicePort returns the HTTP listen address in ":port" form.
func GetServicePort(v *viper.Viper) string {
	port := v.GetString("service.port")
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// GetAppEnv returns the deployment environment name.
func GetAppEnv(v *viper.Viper) string {
	return v.GetString("app.env")
}

// LoadDatabaseConfig reads db.* keys. defaultName is used when db.name is unset.
func LoadDatabaseConfig(v *viper.Viper, defaultName string) DatabaseConfig {
	name := v.GetString("db.name")
	if name == "" {
		name = defaultName
	}
	return DatabaseConfig{
		Host:            v.GetString("db.host"),
		Port:            v.GetString("db.port"),
		User:            v.GetString("db.user"),
		Password:        v.GetString("db.password"),
		DBName:          name,
		SSLMode:         v.GetString("db.sslmode"),
		MaxOpenConns:    v.GetInt("db.max_open_conns"),
		MaxIdleConns:    v.GetInt("db.max_idle_conns"),
		ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
	}
}

// LoadKafkaConfig reads kafka.* keys. Brokers are comma separated.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(v.GetString("kafka.brokers"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{
		Brokers:      brokers,
		GroupPrefix:  v.GetString("kafka.group_prefix"),
		BookingTopic: v.GetString("kafka.booking_topic"),
		CatalogTopic: v.GetString("kafka.catalog_topic"),
	}
}

// LoadRedisConfig reads redis.* keys.
func LoadRedisConfig(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		TTL:      v.GetDuration("redis.ttl"),
	}
}

// LoadTracingConfig reads tracing.* keys.
func LoadTracingConfig(v *viper.Viper) TracingConfig {
	return TracingConfig{
		Endpoint:    v.GetString("tracing.endpoint"),
		SampleRatio: v.GetFloat64("tracing.sample_ratio"),
	}
}
