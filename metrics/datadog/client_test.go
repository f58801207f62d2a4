package datadog

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// listenUDP starts collecting udp packets sent to the returned address, until
// stop is called. stop returns all packets received so far.
func listenUDP(t *testing.T) (addr string, stop func() string) {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("can't listen on udp: %v", err)
	}

	quit := make(chan struct{})
	done := make(chan struct{})
	var packets strings.Builder

	go func() {
		defer close(done)

		const maxsize = 32 * 1024
		p := make([]byte, maxsize)
		for {
			select {
			case <-quit:
				return
			default:
				conn.SetDeadline(time.Now().Add(100 * time.Millisecond))
				n, _, err := conn.ReadFrom(p)
				if err != nil {
					continue
				}
				packets.Write(p[:n])
				packets.WriteByte('\n')
			}
		}
	}()

	stop = func() string {
		time.Sleep(500 * time.Millisecond)
		close(quit)
		<-done
		conn.Close()
		return packets.String()
	}
	return conn.LocalAddr().String(), stop
}

// findMetric returns the first dogstatsd line of the metric called name.
func findMetric(packets, name string) string {
	for _, l := range strings.Split(packets, "\n") {
		if strings.HasPrefix(l, name+":") {
			return l
		}
	}
	return ""
}

func TestClientMetrics(t *testing.T) {
	addr, stop := listenUDP(t)

	cfg := &Config{
		Host:   addr,
		Prefix: "prefix.",
		Tags:   []string{"basetag1:abc", "basetag2:xyz"},
	}

	c, err := newClient(cfg)
	if err != nil {
		t.Fatalf("can't create datadog metrics client: %v", err)
	}

	c.DeltaCount("delta", 1)
	c.DeltaCountWithTags("delta-with-tags", 2, []string{"tag1:1", "tag2:2"})
	c.Duration("duration", 3*time.Millisecond)
	c.DurationWithTags("duration-with-tags", 4*time.Millisecond, []string{"tag2:2", "tag3:3"})
	c.Gauge("gauge", 5)
	c.GaugeWithTags("gauge-with-tags", 6, []string{"tag3:3", "tag4:4"})
	c.Histogram("histogram", 7)
	c.HistogramWithTags("histogram-with-tags", 12, []string{"tag4:4", "tag5:5"})

	if err := c.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}
	packets := stop()

	tests := []struct {
		metric string
		want   []string
	}{
		{"prefix.delta", []string{":1|c", "basetag1:abc", "basetag2:xyz"}},
		{"prefix.delta-with-tags", []string{":2|c", "basetag1:abc", "tag1:1", "tag2:2"}},
		{"prefix.duration", []string{":3", "|ms", "basetag2:xyz"}},
		{"prefix.duration-with-tags", []string{":4", "|ms", "tag3:3"}},
		{"prefix.gauge", []string{":5|g", "basetag1:abc"}},
		{"prefix.gauge-with-tags", []string{":6|g", "tag4:4"}},
		{"prefix.histogram", []string{":7|h", "basetag1:abc"}},
		{"prefix.histogram-with-tags", []string{":12|h", "tag5:5"}},
	}
	for _, tt := range tests {
		line := findMetric(packets, tt.metric)
		if line == "" {
			t.Errorf("metric %q not received\npackets = %q", tt.metric, packets)
			continue
		}
		for _, w := range tt.want {
			if !strings.Contains(line, w) {
				t.Errorf("metric %q: want %q in %q", tt.metric, w, line)
			}
		}
	}
}

func TestClientLogs(t *testing.T) {
	addr, stop := listenUDP(t)

	cfg := &Config{
		Host:     addr,
		Prefix:   "prefix.",
		Tags:     []string{"basetag1:abc", "basetag2:xyz"},
		SendLogs: true,
	}

	c, err := newClient(cfg)
	if err != nil {
		t.Fatalf("can't create datadog metrics client: %v", err)
	}
	defer logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))

	logrus.WithFields(logrus.Fields{"field1": 27, "field2": "spiral"}).Warn("warn log message")
	if err := c.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}
	packet := stop()

	// Exact statds events depends on the timestamp and the order of map
	// iteration let's just look at the presence of some values.
	want := []string{
		"warn log message",
		"field1=27",
		"field2=spiral",
		"#basetag1:abc,basetag2:xyz",
		"warning",
		"s:fastx",
		"event text",
	}
	for _, w := range want {
		if !strings.Contains(packet, w) {
			t.Errorf("want event to contain %q but didn't\n packet = %q", w, packet)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.fillDefaults()
	if cfg.Prefix != "fastx." {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "fastx.")
	}
	if cfg.Host != "127.0.0.1:8125" {
		t.Errorf("Host = %q, want %q", cfg.Host, "127.0.0.1:8125")
	}
}
