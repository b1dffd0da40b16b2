package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is looked up in the working directory.
const ConfigFileName = "bssimport.yaml"

type TablesConfig struct {
	Target     string `yaml:"target,omitempty"`
	Staging    string `yaml:"staging,omitempty"`
	KeyColumn  string `yaml:"key_column,omitempty"`
	FlagColumn string `yaml:"flag_column,omitempty"`
}

// Spec converts the section into a TableSpec with defaults applied.
func (t TablesConfig) Spec() bssimport.TableSpec {
	return bssimport.TableSpec{
		Target:     t.Target,
		Staging:    t.Staging,
		KeyColumn:  t.KeyColumn,
		FlagColumn: t.FlagColumn,
	}.WithDefaults()
}

type AuthConfig struct {
	Method         string `yaml:"method,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
}

// ProjectConfig is the content of bssimport.yaml. Every field is optional;
// flags and environment variables take precedence.
type ProjectConfig struct {
	// Connection is a descriptor (user:password@host:port/database) or a URI.
	Connection  string       `yaml:"connection,omitempty"`
	SSLMode     string       `yaml:"sslmode,omitempty"`
	Auth        AuthConfig   `yaml:"auth,omitempty"`
	Workers     int          `yaml:"workers,omitempty"`
	BatchSize   int          `yaml:"batch_size,omitempty"`
	MergePolicy string       `yaml:"merge_policy,omitempty"`
	Timeout     string       `yaml:"timeout,omitempty"`
	Tables      TablesConfig `yaml:"tables,omitempty"`
}

// TimeoutDuration parses Timeout. Empty returns zero.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid timeout %q: %w", ConfigFileName, c.Timeout, bssimport.ErrInvalidConfig)
	}
	return d, nil
}

// Load reads bssimport.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config file at an explicit path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, bssimport.ErrInvalidConfig)
	}
	return &cfg, nil
}
