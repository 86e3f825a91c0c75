// Package probeconfig loads the small YAML config file the
// cloudsqlconn-probe CLI uses to describe which instance to check and how
// to authenticate to it.
package probeconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of a probe run.
type Config struct {
	// InstanceConnectionName is the "project:region:instance" to probe.
	InstanceConnectionName string `yaml:"instance_connection_name"`
	// IAMAuthN selects IAM database authentication over password auth.
	IAMAuthN bool `yaml:"iam_authn"`
	// CredentialsFile is an optional service account key path; empty uses
	// application default credentials.
	CredentialsFile string `yaml:"credentials_file"`
	// AdminRootURL optionally overrides the Admin API root, for pointing the
	// probe at a test double.
	AdminRootURL string `yaml:"admin_root_url"`
}

// Load reads and parses the probe config file at path.
func Load(path string) (Config, error) {
	var cfg Config

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is operator supplied
	if err != nil {
		return cfg, fmt.Errorf("failed to read probe config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse probe config: %w", err)
	}
	if cfg.InstanceConnectionName == "" {
		return cfg, fmt.Errorf("probe config: instance_connection_name is required")
	}
	return cfg, nil
}
