package config

import (
	"os"
	"time"
)

// Timeouts holds timeout values for individual cloud and cluster API calls.
// These can be customized via environment variables; the defaults suit the
// bastion's path to both APIs.
type Timeouts struct {
	Fetch     time.Duration // Timeout for a single inventory or cluster fetch
	Mutation  time.Duration // Timeout for a single alias update, including the zone operation
	Reboot    time.Duration // Timeout for issuing the bulk reboot
	OpPoll    time.Duration // Interval between zone operation status checks
	ProbeDial time.Duration // Per-attempt dial timeout for reachability probes
}

// LoadTimeouts loads timeout configuration from environment variables.
// If a variable is not set or invalid, the default value is used.
//
// Environment Variables:
//   - K8GCP_TIMEOUT_FETCH (default: 60s)
//   - K8GCP_TIMEOUT_MUTATION (default: 3m)
//   - K8GCP_TIMEOUT_REBOOT (default: 2m)
//   - K8GCP_OP_POLL_INTERVAL (default: 3s)
//   - K8GCP_PROBE_DIAL_TIMEOUT (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Fetch:     parseDuration("K8GCP_TIMEOUT_FETCH", 60*time.Second),
		Mutation:  parseDuration("K8GCP_TIMEOUT_MUTATION", 3*time.Minute),
		Reboot:    parseDuration("K8GCP_TIMEOUT_REBOOT", 2*time.Minute),
		OpPoll:    parseDuration("K8GCP_OP_POLL_INTERVAL", 3*time.Second),
		ProbeDial: parseDuration("K8GCP_PROBE_DIAL_TIMEOUT", 2*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
