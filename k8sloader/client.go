// Package k8sloader loads Mold and Config documents from Kubernetes
// ConfigMaps, for deployments that keep disir documents as cluster
// resources rather than (or in addition to) registry.Store rows.
//
// It wraps k8s.io/client-go with a simplified interface for discovering
// and watching ConfigMaps that carry disir documents, mirroring the
// teacher's Secret-discovery client adapted to this package's domain.
package k8sloader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Client defines the Kubernetes operations k8sloader needs: discovering
// and fetching ConfigMaps that carry disir Mold/Config documents, plus
// watching for changes to them.
type Client interface {
	// ListConfigMaps returns ConfigMaps from namespace matching label
	// selector. Returns an empty slice if none match.
	ListConfigMaps(ctx context.Context, namespace, labelSelector string) ([]corev1.ConfigMap, error)

	// GetConfigMap returns a specific ConfigMap by name.
	// Returns *NotFoundError if it doesn't exist.
	GetConfigMap(ctx context.Context, namespace, name string) (*corev1.ConfigMap, error)

	// Watch streams ADDED/MODIFIED/DELETED events for ConfigMaps matching
	// label selector in namespace, until ctx is cancelled.
	Watch(ctx context.Context, namespace, labelSelector string) (<-chan Event, error)

	// Health checks if the K8s API is accessible.
	Health(ctx context.Context) error

	// Close releases resources. Safe to call multiple times.
	Close() error
}

// Config holds client configuration.
type Config struct {
	// Timeout for individual K8s API requests.
	Timeout time.Duration
	// MaxRetries for transient errors.
	MaxRetries int
	// RetryBackoff is the initial backoff between retries.
	RetryBackoff time.Duration
	// MaxRetryBackoff caps the exponential backoff.
	MaxRetryBackoff time.Duration
	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryBackoff:    100 * time.Millisecond,
		MaxRetryBackoff: 5 * time.Second,
		Logger:          slog.Default(),
	}
}

// client implements Client using k8s.io/client-go.
type client struct {
	clientset kubernetes.Interface
	config    *Config
	logger    *slog.Logger
	mu        sync.RWMutex
}

// NewClient creates a new client with in-cluster configuration. Returns
// *ConnectionError if in-cluster config is unavailable or the API is
// unreachable.
func NewClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	k8sConfig, err := rest.InClusterConfig()
	if err != nil {
		return nil, NewConnectionError("failed to load in-cluster config", err)
	}
	k8sConfig.Timeout = config.Timeout

	clientset, err := kubernetes.NewForConfig(k8sConfig)
	if err != nil {
		return nil, NewConnectionError("failed to create K8s clientset", err)
	}

	c := &client{clientset: clientset, config: config, logger: config.Logger}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Health(ctx); err != nil {
		return nil, fmt.Errorf("k8s API health check failed: %w", err)
	}

	c.logger.Info("k8sloader client initialized")
	return c, nil
}

// NewClientWithClientset wraps an already-built clientset — used in
// tests against k8s.io/client-go/kubernetes/fake.
func NewClientWithClientset(clientset kubernetes.Interface, config *Config) Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &client{clientset: clientset, config: config, logger: config.Logger}
}

func (c *client) ListConfigMaps(ctx context.Context, namespace, labelSelector string) ([]corev1.ConfigMap, error) {
	c.logger.Debug("listing configmaps", "namespace", namespace, "label_selector", labelSelector)

	var items []corev1.ConfigMap
	err := c.retryWithBackoff(ctx, func() error {
		opts := metav1.ListOptions{LabelSelector: labelSelector, Limit: 1000}
		list, err := c.clientset.CoreV1().ConfigMaps(namespace).List(ctx, opts)
		if err != nil {
			return err
		}
		items = list.Items
		if list.Continue != "" {
			c.logger.Warn("configmap list truncated, pagination not implemented",
				"namespace", namespace, "continue_token", list.Continue)
		}
		return nil
	})
	if err != nil {
		c.logger.Error("failed to list configmaps", "namespace", namespace, "error", err)
		return nil, wrapK8sError("list configmaps", err)
	}

	c.logger.Info("listed configmaps", "namespace", namespace, "count", len(items))
	return items, nil
}

func (c *client) GetConfigMap(ctx context.Context, namespace, name string) (*corev1.ConfigMap, error) {
	c.logger.Debug("getting configmap", "namespace", namespace, "name", name)

	var cm *corev1.ConfigMap
	err := c.retryWithBackoff(ctx, func() error {
		got, err := c.clientset.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return err
		}
		cm = got
		return nil
	})
	if err != nil {
		if isNotFoundErr(err) {
			return nil, NewNotFoundError(fmt.Sprintf("configmap %s/%s not found", namespace, name))
		}
		c.logger.Error("failed to get configmap", "namespace", namespace, "name", name, "error", err)
		return nil, wrapK8sError("get configmap", err)
	}

	c.logger.Debug("got configmap", "namespace", namespace, "name", name)
	return cm, nil
}

func (c *client) Health(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		c.logger.Warn("k8s health check failed", "error", err)
		return NewConnectionError("k8s API unavailable", err)
	}
	if healthCtx.Err() != nil {
		return NewTimeoutError("health check timeout", healthCtx.Err())
	}
	return nil
}

func (c *client) Close() error {
	c.logger.Info("closing k8sloader client")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientset = nil
	return nil
}

func (c *client) retryWithBackoff(ctx context.Context, operation func() error) error {
	backoff := c.config.RetryBackoff

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return NewTimeoutError("operation cancelled", ctx.Err())
		default:
		}

		err := operation()
		if err == nil {
			return nil
		}
		if !isRetryableError(err) {
			return err
		}
		if attempt == c.config.MaxRetries {
			return err
		}

		c.logger.Warn("retrying k8s operation",
			"attempt", attempt+1, "max_retries", c.config.MaxRetries, "backoff", backoff, "error", err)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return NewTimeoutError("operation cancelled during backoff", ctx.Err())
		}

		backoff *= 2
		if backoff > c.config.MaxRetryBackoff {
			backoff = c.config.MaxRetryBackoff
		}
	}

	return fmt.Errorf("operation failed after %d retries", c.config.MaxRetries)
}
