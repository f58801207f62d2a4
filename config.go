package fastx

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/rasky/toml"

	"github.com/AdRoll/fastx/awsutils"
	"github.com/AdRoll/fastx/pkg/xopen"
)

// The configuration is parsed from TOML format.
//
// The [metrics] table holds a key called "Name" that specifies which metrics
// client is used, and a [metrics.config] sub-table that directly maps to the
// *Config structure of that client, as specified in its MetricsDesc (see
// metrics.All).
//
// Since we can't know which client has been chosen before having parsed the
// file, [metrics.config] is captured as a toml.Primitive (the equivalent of
// encoding/json.RawMessage) and decoded in a second step.

// ConfigReader specifies how input files are read.
type ConfigReader struct {
	// BufferSize is the size of the buffers used to read and decompress
	// files. The default value is 128KiB, and it can't be smaller than 4KiB.
	BufferSize SizeBytes
	// Procs is the number of files read concurrently.
	// The default value is the number of CPUs.
	Procs int
	// KeepGoing reports whether an error in a file doesn't abort the
	// processing of other files. The error is still reported in the
	// file statistics.
	KeepGoing bool
	// Region is the AWS region of s3:// files.
	Region string
	// HTTPRetries is the number of times the request of a http(s):// file
	// is retried after a network or server error.
	HTTPRetries int
}

// ConfigReport specifies where statistics are written.
type ConfigReport struct {
	// Path of the CSV report, compressed according to its suffix.
	// The default "-" is the standard output.
	Path string
}

// ConfigMetrics holds metrics configuration.
type ConfigMetrics struct {
	Name          string
	DecodedConfig interface{}

	Config *toml.Primitive
	desc   *MetricsDesc
}

// A Config specifies the configuration of a fastx run.
type Config struct {
	Reader  ConfigReader
	Report  ConfigReport
	Metrics ConfigMetrics
}

// String returns a string representation of the exported fields of c.
func (c *Config) String() string {
	s := fmt.Sprintf("Reader:{BufferSize:%s, Procs:%d, KeepGoing:%t, Region:%s, HTTPRetries:%d} ", &c.Reader.BufferSize, c.Reader.Procs, c.Reader.KeepGoing, c.Reader.Region, c.Reader.HTTPRetries)
	s += fmt.Sprintf("Report:{Path:%s} ", c.Report.Path)
	s += fmt.Sprintf("Metrics:{Name:%s}", c.Metrics.Name)
	return s
}

func (c *Config) fillDefaults() {
	c.Reader.fillDefaults()
	c.Report.fillDefaults()
}

func (c *ConfigReader) fillDefaults() {
	switch {
	case c.BufferSize == 0:
		c.BufferSize = xopen.DefaultBufferSize
	case c.BufferSize < xopen.MinBufferSize:
		c.BufferSize = xopen.MinBufferSize
	}
	if c.Procs <= 0 {
		c.Procs = runtime.NumCPU()
	}
}

func (c *ConfigReport) fillDefaults() {
	if c.Path == "" {
		c.Path = xopen.Stdout
	}
}

// DefaultConfig returns the configuration used when no configuration file
// is provided.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

// replaceEnvVars replaces any string in the format ${VALUE} or $VALUE with the corresponding
// $VALUE environment variable
func replaceEnvVars(f io.Reader, mapper func(string) string) (io.Reader, error) {
	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %v", err)
	}

	return strings.NewReader(os.Expand(buf.String(), mapper)), nil
}

// NewConfigFromToml creates a Config from a reader reading from a TOML
// configuration. metrics describes all the available metrics clients.
func NewConfigFromToml(f io.Reader, metrics []MetricsDesc) (*Config, error) {
	f, err := replaceEnvVars(f, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("can't replace config with env vars: %v", err)
	}

	// [metrics.config] is captured as toml.Primitive for deferred parsing
	// (see comment at top of the file).
	cfg := Config{}
	md, err := toml.DecodeReader(f, &cfg)
	if err != nil {
		return nil, fmt.Errorf("error parsing configuration: %v", err)
	}

	if cfg.Metrics.Name != "" {
		for i := range metrics {
			if strings.EqualFold(metrics[i].Name, cfg.Metrics.Name) {
				cfg.Metrics.desc = &metrics[i]
				break
			}
		}
		if cfg.Metrics.desc == nil {
			return nil, fmt.Errorf("metrics does not exist: %q", cfg.Metrics.Name)
		}

		cfg.Metrics.DecodedConfig = cfg.Metrics.desc.Config
		if cfg.Metrics.Config != nil {
			if err := md.PrimitiveDecode(*cfg.Metrics.Config, cfg.Metrics.DecodedConfig); err != nil {
				return nil, fmt.Errorf("metrics %q: error parsing config: %v", cfg.Metrics.Name, err)
			}
		}
	}

	// Abort if there's any unknown key in the configuration file
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("invalid keys in configuration file: %v", keys)
	}

	cfg.fillDefaults()
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Reader.Region != "" && !awsutils.IsValidRegion(c.Reader.Region) {
		return fmt.Errorf("invalid aws region: %q", c.Reader.Region)
	}
	if c.Reader.HTTPRetries < 0 {
		return fmt.Errorf("invalid http retries: %d", c.Reader.HTTPRetries)
	}
	return nil
}

// NewMetricsClient creates the metrics client described by the
// configuration, or a NopMetrics if none is configured.
func (c *Config) NewMetricsClient() (MetricsClient, error) {
	if c.Metrics.desc == nil {
		return NopMetrics{}, nil
	}
	client, err := c.Metrics.desc.New(c.Metrics.DecodedConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating metrics client %q: %v", c.Metrics.Name, err)
	}
	return client, nil
}
