// Package datadog provides types and functions to export metrics and logs to
// Datadog via a statsd client.
package datadog

import (
	"fmt"
	"os"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	log "github.com/sirupsen/logrus"

	"github.com/AdRoll/fastx"
)

// Desc describes the Datadog metrics client inteface.
var Desc = fastx.MetricsDesc{
	Name:   "Datadog",
	Config: &Config{},
	New:    newDatadogClient,
}

// Config is the configuration of the Datadog metrics client.
type Config struct {
	Prefix   string   // Prefix is the prefix of all metric names. defaults to fastx.
	Host     string   // Host is the address of the statsd host to send log to (in UDP). defaults to 127.0.0.1:8125.
	Tags     []string // Tags is the list of tags to attach to all metrics.
	SendLogs bool     // SendLogs indicates whether log entries (warning and above) are forwarded as statsd events.
}

func (cfg *Config) fillDefaults() {
	if cfg.Prefix == "" {
		cfg.Prefix = "fastx."
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1:8125"
	}
}

// Client allows to instrument code and export the metrics to a dogstatsd client.
type Client struct {
	dog      *statsd.Client
	basetags []string
}

func newDatadogClient(icfg interface{}) (fastx.MetricsClient, error) {
	return newClient(icfg.(*Config))
}

// newClient creates a Client that pushes to the datadog server using the
// dogstatsd format. All exported metrics will have a name prepended with the
// given prefix and will be tagged with the provided set of tags.
func newClient(cfg *Config) (*Client, error) {
	cfg.fillDefaults()

	dog, err := statsd.New(cfg.Host,
		statsd.WithNamespace(cfg.Prefix),
		statsd.WithoutTelemetry(),
	)
	if err != nil {
		return nil, fmt.Errorf("can't create datadog metrics client: %s", err)
	}

	if cfg.SendLogs {
		host, _ := os.Hostname()
		log.AddHook(NewHook(log.WarnLevel, dog, host, cfg.Tags))
	}

	return &Client{dog: dog, basetags: cfg.Tags}, nil
}

// Gauge sets the value of a metric of type gauge. A Gauge represents a
// single numerical data point that can arbitrarily go up and down.
func (c *Client) Gauge(name string, value float64) {
	c.GaugeWithTags(name, value, nil)
}

// GaugeWithTags sets the value of a metric of type gauge and associates
// that value with a set of tags.
func (c *Client) GaugeWithTags(name string, value float64, tags []string) {
	c.dog.Gauge(name, value, c.tags(tags), 1)
}

// DeltaCount increments the value of a metric of type counter by delta.
// delta must be positive.
func (c *Client) DeltaCount(name string, delta int64) {
	c.DeltaCountWithTags(name, delta, nil)
}

// DeltaCountWithTags increments the value of a metric or type counter and
// associates that value with a set of tags.
func (c *Client) DeltaCountWithTags(name string, delta int64, tags []string) {
	c.dog.Count(name, delta, c.tags(tags), 1)
}

// Histogram adds a sample to a metric of type histogram. A histogram
// samples observations and counts them in different 'buckets' in order
// to track and show the statistical distribution of a set of values.
//
// In Datadog, this is shown as an 'Histogram', a DogStatsd metric type on
// which percentiles, mean and other info are calculated.
// see https://docs.datadoghq.com/developers/dogstatsd/data_types/#histograms
func (c *Client) Histogram(name string, value float64) {
	c.HistogramWithTags(name, value, nil)
}

// HistogramWithTags adds a sample to an histogram and associates that
// sample with a set of tags.
func (c *Client) HistogramWithTags(name string, value float64, tags []string) {
	c.dog.Histogram(name, value, c.tags(tags), 1)
}

// Duration adds a duration to a metric of type histogram.
//
// In Datadog, this is shown as a 'Timer', an implementation of an 'Histogram'
// DogStatsd  metric type, on which percentiles, mean and other info are calculated.
// see https://docs.datadoghq.com/developers/dogstatsd/data_types/#timers
func (c *Client) Duration(name string, value time.Duration) {
	c.DurationWithTags(name, value, nil)
}

// DurationWithTags adds a duration to an histogram and associates that
// duration with a set of tags.
func (c *Client) DurationWithTags(name string, value time.Duration, tags []string) {
	c.dog.TimeInMilliseconds(name, float64(value/time.Millisecond), c.tags(tags), 1)
}

// Close flushes the pending metrics and closes the statsd client.
func (c *Client) Close() error {
	return c.dog.Close()
}

// tags returns the base tags followed by tags, never modifying basetags
// backing array.
func (c *Client) tags(tags []string) []string {
	if len(tags) == 0 {
		return c.basetags
	}
	all := make([]string, 0, len(c.basetags)+len(tags))
	all = append(all, c.basetags...)
	return append(all, tags...)
}
