package testutil

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AdRoll/fastx"
)

// MockMetricsDesc describes the MockMetrics metrics client.
var MockMetricsDesc = fastx.MetricsDesc{
	Name:   "MockMetrics",
	Config: &struct{}{},
	New:    newMockMetrics,
}

// MockMetrics is a metrics client to be used in tests only, which stores single
// calls made to the set of methods implementing the fastx.MetricsClient
// interface, and sort them so that they're easy to compare mechanically, in
// tests. MockMetrics is safe for concurrent use.
type MockMetrics struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func newMockMetrics(_ interface{}) (fastx.MetricsClient, error) { return &MockMetrics{}, nil }

// PublishedMetrics returns a list of strings, each of which represent arguments
// and method of calls to methods of the fastx.MetricsClient interface. Prefix
// can be used to select a subset of calls, or all of them (with ""). Go runtime
// metrics are ignored.
func (m *MockMetrics) PublishedMetrics(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keep := make([]string, 0)
	for _, s := range strings.Split(m.buf.String(), "\n") {
		if len(strings.TrimSpace(s)) != 0 && !strings.Contains(s, "name=runtime.") {
			if len(prefix) == 0 || strings.HasPrefix(s, prefix) {
				keep = append(keep, s)
			}
		}
	}

	sort.Strings(keep)
	return keep
}

// Closed reports whether Close has been called.
func (m *MockMetrics) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockMetrics) printf(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(&m.buf, format, args...)
}

func (m *MockMetrics) Gauge(name string, value float64) {
	m.printf("gauge|name=%s|value=%v\n", name, value)
}
func (m *MockMetrics) DeltaCount(name string, delta int64) {
	m.printf("delta|name=%s|value=%v\n", name, delta)
}
func (m *MockMetrics) Histogram(name string, value float64) {
	m.printf("hist|name=%s|value=%v\n", name, value)
}
func (m *MockMetrics) Duration(name string, value time.Duration) {
	m.printf("duration|name=%s|value=%v\n", name, value)
}

func (m *MockMetrics) GaugeWithTags(name string, value float64, tags []string) {
	for _, t := range tags {
		m.printf("gauge|name=%s|value=%v|tag=%s\n", name, value, t)
	}
}
func (m *MockMetrics) DeltaCountWithTags(name string, delta int64, tags []string) {
	for _, t := range tags {
		m.printf("delta|name=%s|value=%v|tag=%s\n", name, delta, t)
	}
}
func (m *MockMetrics) HistogramWithTags(name string, value float64, tags []string) {
	for _, t := range tags {
		m.printf("hist|name=%s|value=%v|tag=%s\n", name, value, t)
	}
}
func (m *MockMetrics) DurationWithTags(name string, value time.Duration, tags []string) {
	for _, t := range tags {
		m.printf("duration|name=%s|value=%v|tag=%s\n", name, value, t)
	}
}
func (m *MockMetrics) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
