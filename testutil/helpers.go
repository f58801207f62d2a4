package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

// TempFile is a test helper that creates an empty temporary file and returns
// its name. The file is removed when the test and all its subtests complete.
func TempFile(tb testing.TB) string {
	tb.Helper()

	f, err := os.CreateTemp(tb.TempDir(), "fastx")
	if err != nil {
		tb.Fatalf("can't create temp file: %v", err)
	}

	if err = f.Close(); err != nil {
		tb.Fatalf("can't create temp file: %v", err)
	}
	return f.Name()
}

// WriteFile is a test helper that writes content into a new file named name
// in a temporary directory, and returns its full path.
func WriteFile(tb testing.TB, name, content string) string {
	tb.Helper()

	path := tb.TempDir() + string(os.PathSeparator) + name
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tb.Fatalf("can't write %s: %v", path, err)
	}
	return path
}

// FastaRecords returns n FASTA records named seq0 to seq<n-1>. The sequence of
// record i has length seqlen(i) and is wrapped every 60 bases.
func FastaRecords(n int, seqlen func(i int) int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, ">seq%d sample=%d\n", i, i%3)
		seq := sequence(i, seqlen(i))
		for len(seq) > 60 {
			sb.WriteString(seq[:60])
			sb.WriteByte('\n')
			seq = seq[60:]
		}
		sb.WriteString(seq)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FastqRecords returns n FASTQ records named read0 to read<n-1>. The sequence
// of record i has length seqlen(i).
func FastqRecords(n int, seqlen func(i int) int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		l := seqlen(i)
		fmt.Fprintf(&sb, "@read%d lane=1\n%s\n+\n%s\n", i, sequence(i, l), strings.Repeat("I", l))
	}
	return sb.String()
}

func sequence(i, n int) string {
	const bases = "ACGT"
	b := make([]byte, n)
	for j := range b {
		b[j] = bases[(i+j)%len(bases)]
	}
	return string(b)
}

// DisableLogging is a test helper that disable logging (in fact it sets its
// level to panic). It returns a function which when called, resets it to its
// previous level. Its useful to be called as follows in test/benchmarks:
//
//  func TestFoo(t *testing.T) {
//      defer DisableLogging()()
//
//      // logging is disabled for the whole test
//  }
func DisableLogging() (reset func()) {
	lvl := log.GetLevel()
	log.SetLevel(log.PanicLevel)
	return func() { log.SetLevel(lvl) }
}

// LessLogging is a test helper that decreases logging (in fact it sets its
// level to Error). It returns a function which when called, resets it to its
// previous level. Its useful to be called as follows in test/benchmarks:
//
//  func TestFoo(t *testing.T) {
//      defer LessLogging()()
//
//      // logging is set to Error for the whole test
//  }
func LessLogging() (reset func()) {
	lvl := log.GetLevel()
	log.SetLevel(log.ErrorLevel)
	return func() { log.SetLevel(lvl) }
}

// SetLogLevel sets the global log level for the execution of the current tb.
// Though setting the log level is safe for use from concurrent goroutines, it's
// not advised to use SetLogLevel in parallel tests/benchmark, i.e. using
// t.Parallel().
func SetLogLevel(tb testing.TB, level log.Level) {
	cur := log.GetLevel()
	log.SetLevel(level)
	tb.Cleanup(func() { log.SetLevel(cur) })
}
