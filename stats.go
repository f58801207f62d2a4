package fastx

import (
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/bmizerany/perks/quantile"
)

// statsQuantiles are the quantiles of the record length distribution
// reported in Stats.
var statsQuantiles = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 0.90, 0.95, 0.99}

// Stats gathers statistics about the records of a single source.
type Stats struct {
	Source string

	Records int64 // Records is the number of records read.
	Fasta   int64 // Fasta is the number of FASTA records.
	Fastq   int64 // Fastq is the number of FASTQ records.
	Bases   int64 // Bases is the total sequence length.
	GCBases int64 // GCBases is the number of G, C and S bases.

	Shortest int // Shortest is the length of the shortest sequence.
	Longest  int // Longest is the length of the longest sequence.

	// Err is the error that stopped reading the source, if any.
	Err error
	// Elapsed is the time spent reading the source.
	Elapsed time.Duration

	qt      *quantile.Stream
	lengths map[int]int64
}

// NewStats returns empty statistics for source.
func NewStats(source string) *Stats {
	return &Stats{
		Source:   source,
		Shortest: math.MaxInt,
		qt:       quantile.NewTargeted(statsQuantiles...),
		lengths:  make(map[int]int64),
	}
}

// Add adds r to the statistics.
func (s *Stats) Add(r *Record) {
	n := r.Len()

	s.Records++
	if r.IsFastq() {
		s.Fastq++
	} else {
		s.Fasta++
	}
	s.Bases += int64(n)
	s.GCBases += int64(r.CountBases(gcBases))

	if n < s.Shortest {
		s.Shortest = n
	}
	if n > s.Longest {
		s.Longest = n
	}

	s.qt.Insert(float64(n))
	s.lengths[n]++
}

// Format returns "fasta", "fastq" or "mixed" depending on the records read so
// far, or an empty string if no record has been read.
func (s *Stats) Format() string {
	switch {
	case s.Records == 0:
		return ""
	case s.Fastq == 0:
		return "fasta"
	case s.Fasta == 0:
		return "fastq"
	}
	return "mixed"
}

// Min returns the length of the shortest sequence, 0 if there are none.
func (s *Stats) Min() int {
	if s.Records == 0 {
		return 0
	}
	return s.Shortest
}

// Mean returns the mean sequence length.
func (s *Stats) Mean() float64 {
	if s.Records == 0 {
		return 0
	}
	return float64(s.Bases) / float64(s.Records)
}

// GCContent returns the fraction of G, C and S bases over all sequences.
func (s *Stats) GCContent() float64 {
	if s.Bases == 0 {
		return 0
	}
	return float64(s.GCBases) / float64(s.Bases)
}

// Quantile returns the (approximated) q-quantile of the sequence lengths.
func (s *Stats) Quantile(q float64) float64 {
	return s.qt.Query(q)
}

// N50 returns the length L such that sequences of length L or longer hold at
// least half of the bases.
func (s *Stats) N50() int {
	if s.Bases == 0 {
		return 0
	}

	lengths := make([]int, 0, len(s.lengths))
	for l := range s.lengths {
		lengths = append(lengths, l)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))

	var sum int64
	for _, l := range lengths {
		sum += int64(l) * s.lengths[l]
		if 2*sum >= s.Bases {
			return l
		}
	}
	return 0
}

var statsHeader = []string{
	"source", "format", "records", "fasta", "fastq", "bases",
	"shortest",
	"p1", "p5", "p10", "p25", "p50", "p75", "p90", "p95", "p99",
	"longest",
	"mean", "n50", "gc", "error",
}

// WriteStatsCSV writes stats as CSV to w, with a header line followed by a
// line per Stats.
func WriteStatsCSV(w io.Writer, stats []*Stats) error {
	csvw := csv.NewWriter(w)
	if err := csvw.Write(statsHeader); err != nil {
		return err
	}

	for _, s := range stats {
		row := make([]string, 0, len(statsHeader))
		row = append(row,
			s.Source,
			s.Format(),
			strconv.FormatInt(s.Records, 10),
			strconv.FormatInt(s.Fasta, 10),
			strconv.FormatInt(s.Fastq, 10),
			strconv.FormatInt(s.Bases, 10),
			strconv.Itoa(s.Min()),
		)
		for _, q := range statsQuantiles {
			row = append(row, strconv.FormatFloat(s.Quantile(q), 'f', -1, 64))
		}

		errmsg := ""
		if s.Err != nil {
			errmsg = s.Err.Error()
		}
		row = append(row,
			strconv.Itoa(s.Longest),
			strconv.FormatFloat(s.Mean(), 'f', 2, 64),
			strconv.Itoa(s.N50()),
			strconv.FormatFloat(s.GCContent(), 'f', 4, 64),
			errmsg,
		)

		if err := csvw.Write(row); err != nil {
			return err
		}
	}

	csvw.Flush()
	return csvw.Error()
}
