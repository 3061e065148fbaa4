// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"edpsych-connect/internal/common/config"
)

// Connect creates a Zeebe client and verifies the gateway answers a topology
// request within the configured timeout.
func Connect(ctx context.Context, cfg config.CamundaConfig) (zbc.Client, error) {
	client, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	if err := HealthCheck(ctx, client, time.Duration(cfg.RequestTimeout)*time.Millisecond); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}
	return client, nil
}

// HealthCheck performs a basic health check against the Zeebe broker.
func HealthCheck(ctx context.Context, client zbc.Client, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
