// Package config handles configuration loading, saving, and schema definition.
package config

// Config is the top-level sentinel configuration.
// Uses json tags in camelCase to match the JSON config file format.
type Config struct {
	Server       ServerConfig       `json:"server"`
	Redis        RedisConfig        `json:"redis"`
	Orchestrator OrchestratorConfig `json:"orchestrator"`
	Agents       AgentsConfig       `json:"agents"`
}

// ServerConfig holds HTTP/WebSocket server settings.
type ServerConfig struct {
	Port   int    `json:"port,omitempty"`
	Host   string `json:"host,omitempty"`
	APIKey string `json:"apiKey,omitempty"` // X-API-Key auth; empty disables auth
}

// RedisConfig holds the optional cache connection settings.
// An empty URL runs the system without redis.
type RedisConfig struct {
	URL      string `json:"url,omitempty"` // e.g. redis://localhost:6379
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
}

// OrchestratorConfig holds plan execution and tracking settings.
type OrchestratorConfig struct {
	GlobalTimeoutSeconds int `json:"globalTimeoutSeconds,omitempty"`
	TaskRetentionMinutes int `json:"taskRetentionMinutes,omitempty"`
	HeartbeatSeconds     int `json:"heartbeatSeconds,omitempty"` // 0 disables heartbeats
}

// AgentsConfig holds worker-set settings.
type AgentsConfig struct {
	SpecsPath      string `json:"specsPath,omitempty"` // agents.yaml; empty enables all defaults
	SubscriptionID string `json:"subscriptionId,omitempty"`
	ClusterName    string `json:"clusterName,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Orchestrator: OrchestratorConfig{
			GlobalTimeoutSeconds: 60,
			TaskRetentionMinutes: 60,
			HeartbeatSeconds:     30,
		},
		Agents: AgentsConfig{
			SubscriptionID: "default-subscription",
			ClusterName:    "aks-prod-westeu",
		},
	}
}
