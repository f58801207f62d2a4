package fastx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/AdRoll/fastx/pkg/xopen"
)

// progressBatch is the number of records read from a source between two
// updates of the run progress counters.
const progressBatch = 4096

// A Run reads a set of sources and gathers their statistics.
type Run struct {
	ID      string // ID identifies the run in logs and metrics.
	Config  *Config
	Opener  *xopen.Opener
	Metrics MetricsClient

	// progress counters
	records atomic.Int64
	bases   atomic.Int64
	sources atomic.Int64
	errs    atomic.Int64
}

// NewRun creates a Run from a configuration, including its metrics client.
func NewRun(cfg *Config) (*Run, error) {
	m, err := cfg.NewMetricsClient()
	if err != nil {
		return nil, err
	}

	return &Run{
		ID:     uuid.New().String(),
		Config: cfg,
		Opener: &xopen.Opener{
			BufferSize:  int(cfg.Reader.BufferSize),
			Region:      cfg.Reader.Region,
			HTTPRetries: cfg.Reader.HTTPRetries,
		},
		Metrics: m,
	}, nil
}

// Scan reads all the records of source and returns their statistics. An
// error, if any, is reported in Stats.Err.
func (r *Run) Scan(ctx context.Context, source string) *Stats {
	st := NewStats(source)
	tags := []string{"source:" + source, "run:" + r.ID}
	ctxLog := log.WithFields(log.Fields{"f": "Run.Scan", "src": source})

	start := time.Now()
	st.Err = r.scan(ctx, source, st, tags)
	st.Elapsed = time.Since(start)

	r.sources.Add(1)
	r.Metrics.DeltaCountWithTags("records", st.Records, tags)
	r.Metrics.DeltaCountWithTags("bases", st.Bases, tags)
	r.Metrics.DurationWithTags("elapsed", st.Elapsed, tags)

	if st.Err != nil {
		r.errs.Add(1)
		r.Metrics.DeltaCountWithTags("errors", 1, tags)
		ctxLog.WithError(st.Err).Warn("can't read source")
		return st
	}

	ctxLog.WithFields(log.Fields{
		"records": st.Records,
		"bases":   st.Bases,
		"elapsed": st.Elapsed,
	}).Info("source read")
	return st
}

func (r *Run) scan(ctx context.Context, source string, st *Stats, tags []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	zr, err := r.Opener.Open(source)
	if err != nil {
		return err
	}
	defer zr.Close()

	fr := NewReader(zr.Reader)

	var nrecs, nbases int64
	flush := func() {
		r.records.Add(nrecs)
		r.bases.Add(nbases)
		nrecs, nbases = 0, 0
	}
	defer flush()

	for {
		rec, err := fr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		st.Add(rec)
		r.Metrics.HistogramWithTags("record_length", float64(rec.Len()), tags)

		nrecs++
		nbases += int64(rec.Len())
		if nrecs == progressBatch {
			flush()
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}

// ScanAll reads all sources, with at most Config.Reader.Procs sources read
// concurrently. The returned statistics are in the same order as sources.
//
// Unless Config.Reader.KeepGoing is set, the first source that can't be read
// stops the others, and ScanAll returns its error.
func (r *Run) ScanAll(ctx context.Context, sources []string) ([]*Stats, error) {
	stats := make([]*Stats, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Config.Reader.Procs)

	for i, src := range sources {
		g.Go(func() error {
			st := r.Scan(ctx, src)
			stats[i] = st
			if st.Err != nil && !r.Config.Reader.KeepGoing {
				return fmt.Errorf("%s: %w", src, st.Err)
			}
			return nil
		})
	}

	return stats, g.Wait()
}

// WriteReport writes stats as CSV to the report path. The report is
// compressed according to the path suffix.
func (r *Run) WriteReport(stats []*Stats) error {
	w, err := xopen.Create(r.Config.Report.Path, int(r.Config.Reader.BufferSize))
	if err != nil {
		return fmt.Errorf("can't create report: %v", err)
	}

	if err := WriteStatsCSV(w, stats); err != nil {
		w.Close()
		return fmt.Errorf("can't write report: %v", err)
	}
	return w.Close()
}

// Close releases the run resources.
func (r *Run) Close() error {
	return r.Metrics.Close()
}
