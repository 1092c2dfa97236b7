package config

import "time"

// Config holds all configuration for the application. It is read once at startup.
type Config struct {
	Nuvla               NuvlaConfig
	PushgatewayEndpoint string
	Frequency           time.Duration
	Timeout             time.Duration
	ListenAddress       string
	Log                 LogConfig
	PubSub              PubSubConfig
}
type NuvlaConfig struct {
	URL      string
	Key      string
	Secret   string
	Insecure bool
}
type LogConfig struct {
	Level  string
	Format string
}
type PubSubConfig struct {
	ProjectID string
	Topic     string
}

// Enabled reports whether snapshots are also published to Pub/Sub.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != "" && c.Topic != ""
}
