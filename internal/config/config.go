package config

import (
	"github.com/shareit/service-booking/pkg/config"
)

const (
	envPrefix     = "BOOKING"
	defaultDBName = "shareit_booking"
	serviceName   = "service-booking"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	ServiceName   string
	Port          string
	AppEnv        string
	DBConfig      config.DatabaseConfig
	KafkaConfig   config.KafkaConfig
	RedisConfig   config.RedisConfig
	TracingConfig config.TracingConfig
}

// Load reads configuration from BOOKING_* environment variables and an
// optional config.yaml.
func Load() (*ServiceConfig, error) {
	v, err := config.Load(envPrefix)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{
		ServiceName:   serviceName,
		Port:          config.GetServicePort(v),
		AppEnv:        config.GetAppEnv(v),
		DBConfig:      config.LoadDatabaseConfig(v, defaultDBName),
		KafkaConfig:   config.LoadKafkaConfig(v),
		RedisConfig:   config.LoadRedisConfig(v),
		TracingConfig: config.LoadTracingConfig(v),
	}, nil
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// ConsumerGroup returns the consumer group id for the catalog projection.
func (c *ServiceConfig) ConsumerGroup() string {
	return c.KafkaConfig.GroupPrefix + "booking-catalog"
}
