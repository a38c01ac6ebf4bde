// Package helpers provides shared utilities for integration tests.
package helpers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	elasticsearchImage = "docker.elastic.co/elasticsearch/elasticsearch:8.11.0"

	startupTimeout    = 60 * time.Second
	healthPollRetries = 30
	healthPollDelay   = 1 * time.Second
	httpClientTimeout = 5 * time.Second
)

// ElasticsearchContainer manages a throwaway Elasticsearch instance. The
// cluster runs without security so tests talk plain HTTP.
type ElasticsearchContainer struct {
	container testcontainers.Container
	address   string
}

// StartElasticsearch starts an Elasticsearch container and blocks until
// the cluster answers health checks. Callers must Stop the returned
// container.
func StartElasticsearch(ctx context.Context) (*ElasticsearchContainer, error) {
	container, err := elasticsearch.Run(
		ctx,
		elasticsearchImage,
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/").WithPort("9200/tcp").WithStartupTimeout(startupTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start Elasticsearch container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "9200")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	address := fmt.Sprintf("http://%s", net.JoinHostPort(host, port.Port()))

	if waitErr := waitForCluster(ctx, address); waitErr != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed waiting for Elasticsearch: %w", waitErr)
	}

	return &ElasticsearchContainer{container: container, address: address}, nil
}

// Stop terminates the container.
func (e *ElasticsearchContainer) Stop(ctx context.Context) error {
	if e.container == nil {
		return nil
	}
	return e.container.Terminate(ctx)
}

// Addresses returns the cluster address in the slice shape the search
// configuration expects.
func (e *ElasticsearchContainer) Addresses() []string {
	return []string{e.address}
}

// waitForCluster polls the health endpoint until the cluster answers.
func waitForCluster(ctx context.Context, address string) error {
	client := &http.Client{Timeout: httpClientTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address+"/_cluster/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for attempt := 0; attempt < healthPollRetries; attempt++ {
		resp, doErr := client.Do(req)
		if doErr == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(healthPollDelay):
		}
	}

	return fmt.Errorf("elasticsearch not ready after %d attempts", healthPollRetries)
}
