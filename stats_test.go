package fastx_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/AdRoll/fastx"
	"github.com/AdRoll/fastx/testutil"
)

func fasta(seq string) *fastx.Record {
	return &fastx.Record{ID: []byte("id"), Seq: []byte(seq)}
}

func fastq(seq string) *fastx.Record {
	return &fastx.Record{ID: []byte("id"), Seq: []byte(seq), Qual: bytes.Repeat([]byte("I"), len(seq))}
}

func TestWriteStatsCSV(t *testing.T) {
	a := fastx.NewStats("a.fa")
	for _, seq := range []string{"GC", "ACGT", "GGGGCCCC", "ACGTACGT"} {
		a.Add(fasta(seq))
	}

	b := fastx.NewStats("b.fq.gz")
	b.Add(fastq("ACGTN"))
	b.Err = &fastx.LengthMismatchError{ID: "r2", Seq: 4, Qual: 3}

	empty := fastx.NewStats("-")

	buf := &bytes.Buffer{}
	if err := fastx.WriteStatsCSV(buf, []*fastx.Stats{a, b, empty}); err != nil {
		t.Fatal(err)
	}

	golden := filepath.Join("testdata", t.Name()+".golden")
	testutil.DiffWithGolden(t, buf.Bytes(), golden)
}

func TestStats(t *testing.T) {
	s := fastx.NewStats("src")
	for _, seq := range []string{"AAAA", "CCCCCC", "GG", "TTTTTTTTTT", "ACGTACGTAC"} {
		s.Add(fastq(seq))
	}

	if s.Records != 5 || s.Fastq != 5 || s.Fasta != 0 {
		t.Errorf("Records, Fastq, Fasta = %d, %d, %d, want 5, 5, 0", s.Records, s.Fastq, s.Fasta)
	}
	if s.Bases != 32 {
		t.Errorf("Bases = %d, want 32", s.Bases)
	}
	if s.Min() != 2 || s.Longest != 10 {
		t.Errorf("Min(), Longest = %d, %d, want 2, 10", s.Min(), s.Longest)
	}
	if got := s.Mean(); got != 6.4 {
		t.Errorf("Mean() = %v, want 6.4", got)
	}
	// 6 C + 2 G + 5 GC bases in ACGTACGTAC
	if got, want := s.GCContent(), 13.0/32.0; got != want {
		t.Errorf("GCContent() = %v, want %v", got, want)
	}
	// 10+10 = 20 >= 32/2
	if got := s.N50(); got != 10 {
		t.Errorf("N50() = %d, want 10", got)
	}
	if got := s.Quantile(0.01); got != 2 {
		t.Errorf("Quantile(0.01) = %v, want 2", got)
	}
	if got := s.Quantile(0.99); got != 10 {
		t.Errorf("Quantile(0.99) = %v, want 10", got)
	}
}

func TestStatsN50(t *testing.T) {
	tests := []struct {
		name    string
		lengths []int
		want    int
	}{
		{name: "none", lengths: nil, want: 0},
		{name: "empty sequences", lengths: []int{0, 0}, want: 0},
		{name: "single", lengths: []int{7}, want: 7},
		{name: "exactly half", lengths: []int{5, 3, 2}, want: 5},
		{name: "classic", lengths: []int{2, 3, 4, 5, 6, 7, 8, 9, 10}, want: 8},
		{name: "duplicates", lengths: []int{1, 1, 1, 1, 4, 4}, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fastx.NewStats("src")
			for _, l := range tt.lengths {
				s.Add(fasta(string(bytes.Repeat([]byte("A"), l))))
			}
			if got := s.N50(); got != tt.want {
				t.Errorf("N50() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStatsFormat(t *testing.T) {
	s := fastx.NewStats("src")
	if got := s.Format(); got != "" {
		t.Errorf("Format() = %q, want empty", got)
	}

	s.Add(fasta("A"))
	if got := s.Format(); got != "fasta" {
		t.Errorf("Format() = %q, want fasta", got)
	}

	s.Add(fastq("A"))
	if got := s.Format(); got != "mixed" {
		t.Errorf("Format() = %q, want mixed", got)
	}

	s = fastx.NewStats("src")
	s.Add(fastq(""))
	if got := s.Format(); got != "fastq" {
		t.Errorf("Format() = %q, want fastq", got)
	}
	if s.Min() != 0 || s.Longest != 0 {
		t.Errorf("Min(), Longest = %d, %d, want 0, 0", s.Min(), s.Longest)
	}
}
