// Package config loads and validates the cluster configuration file.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RoutingModeNative is the cluster networking mode in which pod traffic is
// routed via alias IP ranges. Alias reconciliation only runs in this mode.
const RoutingModeNative = "native"

// Config holds the cluster configuration loaded from YAML.
type Config struct {
	ClusterName string `yaml:"cluster_name"`
	Project     string `yaml:"project"`
	Zone        string `yaml:"zone"`
	Network     string `yaml:"network"`

	// RoutingMode selects the pod routing mechanism. Alias reconciliation
	// is administratively disabled for any mode other than "native".
	RoutingMode string `yaml:"routing_mode"`

	// CredentialsFile is the path to the GCP service account JSON.
	// If empty, application default credentials are used.
	CredentialsFile string `yaml:"credentials_file"`

	// Kubeconfig is the path to the cluster admin kubeconfig, as generated
	// during bootstrap and cached on the bastion.
	Kubeconfig string `yaml:"kubeconfig"`

	// NodeLabel restricts the cluster-scope inventory to instances carrying
	// this label key set to the cluster name. Network-scope collision scans
	// ignore it.
	NodeLabel string `yaml:"node_label"`

	Recovery Recovery `yaml:"recovery"`
	Watch    Watch    `yaml:"watch"`

	// AuditLog is the path of the append-only action log.
	AuditLog string `yaml:"audit_log"`
}

// Recovery configures the post-reboot reachability check.
type Recovery struct {
	// Window bounds the whole recovery check for a repair batch.
	Window time.Duration `yaml:"window"`
	// Interval is the delay between probe iterations.
	Interval time.Duration `yaml:"interval"`
	// Port is the TCP port probed on each node's primary address.
	// Defaults to the Talos API port.
	Port int `yaml:"port"`
}

// Watch configures the unattended trigger loop.
type Watch struct {
	// Interval between reconciliation passes.
	Interval time.Duration `yaml:"interval"`
	// BootDelay is the wait before the first pass after process start.
	BootDelay time.Duration `yaml:"boot_delay"`
	// MetricsAddr is the listen address for the Prometheus endpoint.
	// Empty disables metrics.
	MetricsAddr string `yaml:"metrics_addr"`
}

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills in defaults for optional fields.
func (c *Config) ApplyDefaults() {
	if c.RoutingMode == "" {
		c.RoutingMode = RoutingModeNative
	}
	if c.Network == "" {
		c.Network = "default"
	}
	if c.NodeLabel == "" {
		c.NodeLabel = "cluster"
	}
	if c.Kubeconfig == "" {
		c.Kubeconfig = "kubeconfig"
	}
	if c.Recovery.Window == 0 {
		c.Recovery.Window = 5 * time.Minute
	}
	if c.Recovery.Interval == 0 {
		c.Recovery.Interval = 5 * time.Second
	}
	if c.Recovery.Port == 0 {
		c.Recovery.Port = 50000 // Talos API
	}
	if c.Watch.Interval == 0 {
		c.Watch.Interval = 15 * time.Minute
	}
	if c.Watch.BootDelay == 0 {
		c.Watch.BootDelay = 2 * time.Minute
	}
	if c.AuditLog == "" {
		c.AuditLog = "alias-reconcile.log"
	}
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	if c.ClusterName == "" {
		return fmt.Errorf("cluster_name is required")
	}
	if c.Project == "" {
		return fmt.Errorf("project is required")
	}
	if c.Zone == "" {
		return fmt.Errorf("zone is required")
	}
	if c.Recovery.Window < c.Recovery.Interval {
		return fmt.Errorf("recovery window %s is shorter than the probe interval %s", c.Recovery.Window, c.Recovery.Interval)
	}
	if c.Recovery.Port < 1 || c.Recovery.Port > 65535 {
		return fmt.Errorf("recovery port %d is out of range", c.Recovery.Port)
	}
	if c.Watch.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.Watch.MetricsAddr); err != nil {
			return fmt.Errorf("invalid metrics_addr %q: %w", c.Watch.MetricsAddr, err)
		}
	}
	return nil
}

// ReconcileEnabled reports whether alias reconciliation is active for this
// cluster's routing mode.
func (c *Config) ReconcileEnabled() bool {
	return c.RoutingMode == RoutingModeNative
}
