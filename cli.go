package fastx

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime/debug"
	"strings"
	"text/template"
	"time"

	log "github.com/sirupsen/logrus"
)

// Use `-ldflags="-X 'github.com/AdRoll/fastx.BuildVersion=someversion'"` when building fastx to set this value
var BuildVersion = "-- unknown --"

// cliFlags holds the command-line flags of MainCLI.
type cliFlags struct {
	config    string
	buffer    SizeBytes
	procs     int
	report    string
	keepGoing bool
	progress  time.Duration

	version bool
	verbose bool
	quiet   bool
	pretty  bool
	pprof   string
}

func newFlagSet(name string, fl *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&fl.config, "config", "", "`path` of a TOML configuration file")
	fs.Var(&fl.buffer, "buffer", "read buffer `size` (e.g. 128KiB, 1MB)")
	fs.IntVar(&fl.procs, "procs", 0, "number of files read concurrently (default: number of CPUs)")
	fs.StringVar(&fl.report, "report", "", "`path` of the CSV report, compressed by suffix (default: standard output)")
	fs.BoolVar(&fl.keepGoing, "keep-going", false, "don't stop at the first file that can't be read")
	fs.DurationVar(&fl.progress, "progress", 0, "log progress every `interval` (disabled if 0)")
	fs.BoolVar(&fl.version, "version", false, "print build version number")
	fs.BoolVar(&fl.verbose, "v", false, "verbose logging (debug level)")
	fs.BoolVar(&fl.quiet, "q", false, "quiet logging (warn level)")
	fs.BoolVar(&fl.pretty, "pretty", false, "human-readable logging (unstructured logging)")
	fs.StringVar(&fl.pprof, "pprof", "", `run pprof server on host port provided (disabled if ""), use "localhost:"  for a free port`)
	return fs
}

// MainCLI provides a command-line interface reading FASTA and FASTQ files,
// possibly compressed, and reporting statistics about their records.
// metrics is the list of available metrics clients (see metrics.All).
//
// Files are given as arguments, "-" (the default) being the standard
// input. The function includes many utilities that can be configured by
// command line arguments:
//  -config: TOML configuration file
//  -buffer, -procs, -report, -keep-going: override the configuration file
//  -progress: log progress periodically
//  -version: print build version (build with `-ldflags="-X 'github.com/AdRoll/fastx.BuildVersion=someversion'"` to set the value)
//  -v: verbose logging (not compatible with -q)
//  -q: quiet logging (not compatible with -v)
//  -pretty: logs in textual format instead of JSON format
//  -pprof: run a pprof server on the provided host:port address
func MainCLI(metrics []MetricsDesc) error {
	return runCLI(os.Args, os.Stdout, os.Stderr, metrics)
}

func runCLI(args []string, stdout, stderr io.Writer, metrics []MetricsDesc) error {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(stderr)

	var fl cliFlags
	fs := newFlagSet(args[0], &fl)
	fs.SetOutput(stderr)
	fs.Usage = displayProgramUsage(fs, stderr, metrics)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fl.version {
		fmt.Fprintf(stdout, "fastx version: %s\n", BuildVersion)
		return nil
	}

	if fl.pprof != "" {
		addr, err := checkHostPort(fl.pprof)
		if err != nil {
			return err
		}
		go func() {
			log.Warnf("running pprof server on %s", addr)
			http.ListenAndServe(addr, nil)
		}()
	}

	if fl.verbose && fl.quiet {
		return fmt.Errorf("logging can't both be verbose and quiet!")
	}

	if fl.verbose {
		log.SetLevel(log.DebugLevel)
	}
	if fl.quiet {
		log.SetLevel(log.WarnLevel)
	}
	if fl.pretty {
		log.SetFormatter(&log.TextFormatter{})
	}

	cfg, err := loadConfig(fs, &fl, metrics)
	if err != nil {
		return err
	}

	log.WithField("c", cfg.String()).Info("configuration")

	sources := fs.Args()
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	return Main(cfg, sources, fl.progress)
}

// loadConfig reads the configuration file, if any, then applies the
// configuration flags that have been explicitly set.
func loadConfig(fs *flag.FlagSet, fl *cliFlags, metrics []MetricsDesc) (*Config, error) {
	cfg := &Config{}
	if fl.config != "" {
		f, err := os.Open(fl.config)
		if err != nil {
			return nil, fmt.Errorf("errors opening config: %v", err)
		}
		defer f.Close()

		if cfg, err = NewConfigFromToml(f, metrics); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "buffer":
			cfg.Reader.BufferSize = fl.buffer
		case "procs":
			cfg.Reader.Procs = fl.procs
		case "report":
			cfg.Report.Path = fl.report
		case "keep-going":
			cfg.Reader.KeepGoing = fl.keepGoing
		}
	})

	cfg.fillDefaults()
	return cfg, nil
}

// Main reads sources with the given configuration, and writes the report.
// Progress is logged every progress interval, if not zero.
func Main(cfg *Config, sources []string, progress time.Duration) error {
	SetGCPercentIfNotSet(400)

	run, err := NewRun(cfg)
	if err != nil {
		return err
	}
	defer run.Close()

	log.WithField("run", run.ID).Info("starting")

	if progress > 0 {
		stop := NewProgressDumper(run).Run(progress)
		defer stop()
	}

	stats, err := run.ScanAll(context.Background(), sources)
	if err != nil {
		// Also report what we've read so far.
		if rerr := run.WriteReport(stats); rerr != nil {
			log.WithError(rerr).Error("can't write report")
		}
		return err
	}

	return run.WriteReport(stats)
}

// SetGCPercentIfNotSet sets the GC target percentage, unless GOGC environment
// variable is set, in which case SetGCPercentIfNotSet doesn't not override it
// and let it as is.
func SetGCPercentIfNotSet(percent int) {
	gogc := os.Getenv("GOGC")
	if gogc != "" {
		return
	}

	debug.SetGCPercent(percent)
}

var programUsageTemplate = template.Must(template.New("Program usage").Parse(`
fastx version: {{ .Build }}

Usage: {{ .ExecName }} [options] [FILE...]

Reads FASTA and FASTQ records from each FILE and reports statistics about
them as CSV. FILE can be a path, a file://, s3:// or http(s):// URL, or "-"
for the standard input (the default). gzip, xz, bzip2, zstd and lz4
compressed files are transparently decompressed.

Options:
{{ .Defaults }}

Available metrics:
{{ range .Metrics }}
  * {{ .Name }}{{ end }}

`))

func displayProgramUsage(fs *flag.FlagSet, w io.Writer, metrics []MetricsDesc) func() {
	return func() {
		// Structure program usage sections
		type programUsage struct {
			Build    string
			ExecName string
			Defaults string
			Metrics  []MetricsDesc
		}

		// Capture command argument defaults
		var defaultsBuilder strings.Builder
		fs.SetOutput(&defaultsBuilder)
		fs.PrintDefaults()
		fs.SetOutput(w)

		// Inject program usage data into message template
		if err := programUsageTemplate.Execute(w, &programUsage{
			Build:    BuildVersion,
			ExecName: fs.Name(),
			Defaults: defaultsBuilder.String(),
			Metrics:  metrics,
		}); err != nil {
			panic(err)
		}
	}
}

// checkHostPort checks that addr ("host:port" format) is a free tcp port
// suitable for binding a listener.
// NOTE: use 'localhost:' to let the OS find a free "host:port".
func checkHostPort(addr string) (string, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return "", err
	}

	l, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return "", err
	}
	defer l.Close()
	return l.Addr().String(), nil
}
