// internal/workers/content/approve-draft/config.go
package approvedraft

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultActor string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      15 * time.Second,
		DefaultActor: "workflow",
	}
}
