package fastx

import (
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

// A ProgressDumper periodically logs the progress of a Run and sends the
// corresponding metrics.
type ProgressDumper struct {
	r        *Run
	interval time.Duration

	lock        sync.Mutex
	prevRecords int64
	prevBases   int64
}

// NewProgressDumper creates and initializes a ProgressDumper using r.
func NewProgressDumper(r *Run) *ProgressDumper {
	return &ProgressDumper{r: r}
}

func (pd *ProgressDumper) dumpNow() {
	pd.lock.Lock()
	defer pd.lock.Unlock()

	r := pd.r
	secs := pd.interval.Seconds()
	if secs == 0 {
		secs = 1
	}

	records := r.records.Load()
	bases := r.bases.Load()

	tags := []string{"run:" + r.ID}
	r.Metrics.GaugeWithTags("sources_done", float64(r.sources.Load()), tags)
	r.Metrics.GaugeWithTags("sources_failed", float64(r.errs.Load()), tags)

	log.WithFields(log.Fields{
		"records":   records,
		"bases":     humanize.SIWithDigits(float64(bases), 2, "b"),
		"records/s": int64(float64(records-pd.prevRecords) / secs),
		"bases/s":   humanize.SIWithDigits(float64(bases-pd.prevBases)/secs, 2, "b"),
		"sources":   r.sources.Load(),
		"errors":    r.errs.Load(),
	}).Info("progress")

	// Go stats
	r.Metrics.Gauge("runtime.numgoroutines", float64(runtime.NumGoroutine()))

	memstats := runtime.MemStats{}
	runtime.ReadMemStats(&memstats)
	r.Metrics.Gauge("runtime.memstats.mallocs", float64(memstats.Mallocs))
	r.Metrics.Gauge("runtime.memstats.frees", float64(memstats.Frees))
	r.Metrics.Gauge("runtime.memstats.heapalloc", float64(memstats.HeapAlloc))
	r.Metrics.Gauge("runtime.memstats.heapsys", float64(memstats.HeapSys))
	r.Metrics.Gauge("runtime.memstats.numgc", float64(memstats.NumGC))

	pd.prevRecords = records
	pd.prevBases = bases
}

// Run starts dumping progress every interval. Call stop() to stop
// periodically dumping progress, this dumps it one last time.
func (pd *ProgressDumper) Run(interval time.Duration) (stop func()) {
	pd.interval = interval

	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(interval)
		defer tick.Stop()

		for {
			select {
			case <-done:
				return
			case <-tick.C:
				pd.dumpNow()
			}
		}
	}()

	return func() { close(done); pd.dumpNow() }
}
