package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Cluster  ClusterConfig  `mapstructure:"cluster"`
	Worker   WorkerConfig   `mapstructure:"worker" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// ClusterConfig identifies this node within a cluster. NodeName is stamped
// on activity records; it may be empty on single-node deployments.
type ClusterConfig struct {
	NodeName string `mapstructure:"node_name"`
}

// WorkerConfig controls the background worker pool. A count of zero
// disables the in-process pool, leaving execution to external workers
// driving the claim endpoints.
type WorkerConfig struct {
	Count        int           `mapstructure:"count" validate:"gte=0,lte=64"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required,gt=0"`
}
