package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConnectionConfig holds database connection settings from miqa.yaml.
type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	SSLCert        string `yaml:"sslcert,omitempty"`
	SSLKey         string `yaml:"sslkey,omitempty"`
	SSLRootCert    string `yaml:"sslrootcert,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// StorageConfig holds S3-compatible object storage settings.
// Credentials come from the environment (AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY), never from the config file.
type StorageConfig struct {
	// Endpoint is the S3-compatible endpoint URL. Empty means plain AWS S3.
	Endpoint string `yaml:"endpoint,omitempty"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region,omitempty"`
}

// CrawlSettings holds per-project crawl defaults, overridable by CLI flags.
type CrawlSettings struct {
	// StudyLimit caps studies per repository; 0 means the built-in default,
	// -1 means unlimited.
	StudyLimit int `yaml:"study_limit,omitempty"`

	// SampleLimit caps samples per study; 0 or -1 means unlimited.
	SampleLimit int `yaml:"sample_limit,omitempty"`

	// Download controls raw-file mirroring. Defaults to true.
	Download *bool `yaml:"download,omitempty"`

	// DownloadDir is the scratch directory for in-flight downloads.
	DownloadDir string `yaml:"download_dir,omitempty"`

	// Platforms overrides the default GEO platform accessions.
	Platforms []string `yaml:"platforms,omitempty"`

	Timeout string `yaml:"timeout,omitempty"`
}

// ProjectConfig is the root of miqa.yaml.
type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Storage    StorageConfig    `yaml:"storage"`
	Crawl      CrawlSettings    `yaml:"crawl"`
}

const ConfigFileName = "miqa.yaml"

// Load reads miqa.yaml from the given directory.
func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
