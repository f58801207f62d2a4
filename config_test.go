package fastx

import (
	"errors"
	"io"
	"runtime"
	"strings"
	"testing"

	"github.com/AdRoll/fastx/pkg/xopen"
)

type dummyMetricsConfig struct {
	Host string
	Tags []string
}

type dummyMetrics struct {
	NopMetrics
	cfg *dummyMetricsConfig
}

var dummyMetricsDesc = MetricsDesc{
	Name:   "Dummy",
	Config: &dummyMetricsConfig{},
	New: func(icfg interface{}) (MetricsClient, error) {
		cfg := icfg.(*dummyMetricsConfig)
		if cfg.Host == "fail" {
			return nil, errors.New("can't connect")
		}
		return &dummyMetrics{cfg: cfg}, nil
	},
}

func TestNewConfigFromToml(t *testing.T) {
	toml := `
[reader]
buffersize = "1MiB"
procs = 3
keepgoing = true
region = "eu-west-1"
httpretries = 2

[report]
path = "stats.csv.gz"

[metrics]
name = "dummy"
[metrics.config]
host = "localhost:8125"
tags = ["env:test"]
`
	cfg, err := NewConfigFromToml(strings.NewReader(toml), []MetricsDesc{dummyMetricsDesc})
	if err != nil {
		t.Fatal(err)
	}

	want := ConfigReader{BufferSize: 1 << 20, Procs: 3, KeepGoing: true, Region: "eu-west-1", HTTPRetries: 2}
	if cfg.Reader != want {
		t.Errorf("Reader = %+v, want %+v", cfg.Reader, want)
	}
	if cfg.Report.Path != "stats.csv.gz" {
		t.Errorf("Report.Path = %q, want %q", cfg.Report.Path, "stats.csv.gz")
	}

	mcfg := cfg.Metrics.DecodedConfig.(*dummyMetricsConfig)
	if mcfg.Host != "localhost:8125" || len(mcfg.Tags) != 1 || mcfg.Tags[0] != "env:test" {
		t.Errorf("metrics config = %+v", mcfg)
	}

	m, err := cfg.NewMetricsClient()
	if err != nil {
		t.Fatal(err)
	}
	if dm, ok := m.(*dummyMetrics); !ok || dm.cfg.Host != "localhost:8125" {
		t.Errorf("NewMetricsClient() = %#v, want the dummy client", m)
	}
}

func TestNewConfigFromTomlDefaults(t *testing.T) {
	cfg, err := NewConfigFromToml(strings.NewReader(""), nil)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Reader.BufferSize != xopen.DefaultBufferSize {
		t.Errorf("BufferSize = %d, want %d", cfg.Reader.BufferSize, xopen.DefaultBufferSize)
	}
	if cfg.Reader.Procs != runtime.NumCPU() {
		t.Errorf("Procs = %d, want %d", cfg.Reader.Procs, runtime.NumCPU())
	}
	if cfg.Report.Path != xopen.Stdout {
		t.Errorf("Report.Path = %q, want %q", cfg.Report.Path, xopen.Stdout)
	}

	m, err := cfg.NewMetricsClient()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.(NopMetrics); !ok {
		t.Errorf("NewMetricsClient() = %T, want NopMetrics", m)
	}

	if *cfg != *DefaultConfig() {
		t.Errorf("config = %s, want %s", cfg, DefaultConfig())
	}
}

func TestNewConfigFromTomlErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{
			name: "syntax error",
			toml: "[reader\nprocs = 1",
		},
		{
			name: "unknown key",
			toml: "[reader]\nbuffer_size = 10",
		},
		{
			name: "unknown section",
			toml: "[writer]\nprocs = 1",
		},
		{
			name: "unknown metrics",
			toml: "[metrics]\nname = \"prometheus\"",
		},
		{
			name: "unknown metrics key",
			toml: "[metrics]\nname = \"dummy\"\n[metrics.config]\nport = 8125",
		},
		{
			name: "invalid region",
			toml: "[reader]\nregion = \"moon-west-1\"",
		},
		{
			name: "negative retries",
			toml: "[reader]\nhttpretries = -1",
		},
		{
			name: "invalid size",
			toml: "[reader]\nbuffersize = \"big\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewConfigFromToml(strings.NewReader(tt.toml), []MetricsDesc{dummyMetricsDesc}); err == nil {
				t.Errorf("NewConfigFromToml() should fail")
			}
		})
	}
}

func TestConfigSmallBufferSize(t *testing.T) {
	cfg, err := NewConfigFromToml(strings.NewReader("[reader]\nbuffersize = 100"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Reader.BufferSize != xopen.MinBufferSize {
		t.Errorf("BufferSize = %d, want %d", cfg.Reader.BufferSize, xopen.MinBufferSize)
	}
}

func TestConfigMetricsClientError(t *testing.T) {
	toml := "[metrics]\nname = \"dummy\"\n[metrics.config]\nhost = \"fail\""
	cfg, err := NewConfigFromToml(strings.NewReader(toml), []MetricsDesc{dummyMetricsDesc})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.NewMetricsClient(); err == nil {
		t.Errorf("NewMetricsClient() should fail")
	}
}

func TestEnvVarBaseReplace(t *testing.T) {
	src := `
	[reader]
	procs = ${FASTX_PROCS}
	region = "$FASTX_REGION"
	unexisting_var = "${THIS_DOESNT_EXIST}"
	`

	want := `
	[reader]
	procs = 12
	region = "us-east-1"
	unexisting_var = ""
	`

	mapper := func(v string) string {
		switch v {
		case "FASTX_PROCS":
			return "12"
		case "FASTX_REGION":
			return "us-east-1"
		}
		return ""
	}

	s, err := replaceEnvVars(strings.NewReader(src), mapper)
	if err != nil {
		t.Fatalf("replaceEnvVars err: %v", err)
	}
	buf, _ := io.ReadAll(s)

	if want != string(buf) {
		t.Fatalf("wrong toml: %s", string(buf))
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("FASTX_TEST_PROCS", "7")

	cfg, err := NewConfigFromToml(strings.NewReader("[reader]\nprocs = ${FASTX_TEST_PROCS}"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Reader.Procs != 7 {
		t.Errorf("Procs = %d, want 7", cfg.Reader.Procs)
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Reader: ConfigReader{BufferSize: 4096, Procs: 2, Region: "us-west-2"},
		Report: ConfigReport{Path: "-"},
	}
	want := "Reader:{BufferSize:4.0 KiB, Procs:2, KeepGoing:false, Region:us-west-2, HTTPRetries:0} Report:{Path:-} Metrics:{Name:}"
	if got := cfg.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
