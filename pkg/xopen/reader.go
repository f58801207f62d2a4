package xopen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/mattn/go-isatty"
	"github.com/pierrec/lz4/v3"
	log "github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

const (
	// MinBufferSize is the smallest buffer size Open accepts, smaller
	// values are rounded up to it.
	MinBufferSize = 4096

	// DefaultBufferSize is used when no buffer size is provided.
	DefaultBufferSize = 128 * 1024

	// Stdin is the source name representing the process standard input.
	Stdin = "-"

	defaultRegion = "us-west-2"
)

var (
	// ErrInvalidInput is returned when opening standard input while it's
	// attached to an interactive terminal.
	ErrInvalidInput = errors.New("xopen: stdin is a terminal, nothing to read")

	// ErrUnknownScheme is returned for URLs whose scheme is not supported.
	ErrUnknownScheme = errors.New("xopen: unknown scheme")
)

var stdin = os.Stdin // for tests

var isTerminal = func(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Reader is a buffered, line-readable, decompressed view over a source.
type Reader struct {
	*bufio.Reader

	// Compression is the container format detected at the start of the
	// stream.
	Compression Compression

	closers []io.Closer
}

// Close releases the decompressor and the underlying handle, if any. It's
// safe to call Close more than once.
func (r *Reader) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if cerr := r.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	r.closers = nil
	if err != nil {
		return fmt.Errorf("xopen: close: %w", err)
	}
	return nil
}

// An Opener resolves source names into readers. The zero value is ready to
// use and is safe for concurrent use.
type Opener struct {
	// BufferSize is the size of the read buffers. Zero means
	// DefaultBufferSize, values smaller than MinBufferSize are rounded up.
	BufferSize int

	// S3 is the client used for s3:// sources. If nil, a client for Region
	// is created the first time it's needed.
	S3 s3iface.S3API

	// Region is the AWS region used when S3 is nil, defaults to us-west-2.
	Region string

	// HTTPClient is used for http:// and https:// sources, defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// HTTPRetries is the number of times a http(s) request is retried,
	// with exponential backoff, after a network error or a 5xx response.
	HTTPRetries int

	mu sync.Mutex
}

// Open opens source with a buffer of bufSize bytes. See Opener.Open.
func Open(source string, bufSize int) (*Reader, error) {
	o := &Opener{BufferSize: bufSize}
	return o.Open(source)
}

// Open opens source, detects whether it's compressed and returns a reader
// over its decompressed content. source can be:
//   - "-": the process standard input, which must not be an interactive terminal
//   - an s3://bucket/key URL
//   - an http:// or https:// URL
//   - a local path, optionally prefixed by file://
func (o *Opener) Open(source string) (*Reader, error) {
	raw, err := o.openRaw(source)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(raw, o.BufferSize)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("xopen: %s: %w", source, err)
	}
	r.closers = append([]io.Closer{raw}, r.closers...)

	log.WithFields(log.Fields{"f": "xopen.Open", "src": source, "compression": r.Compression}).Debug("opened")
	return r, nil
}

func (o *Opener) openRaw(source string) (io.ReadCloser, error) {
	if source == Stdin {
		if isTerminal(stdin) {
			return nil, ErrInvalidInput
		}
		return io.NopCloser(stdin), nil
	}

	scheme := ""
	if i := strings.Index(source, "://"); i > 0 {
		scheme = strings.ToLower(source[:i])
	}

	switch scheme {
	case "":
		return openFile(source)
	case "file":
		return openFile(source[len("file://"):])
	case "s3":
		u, err := url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("xopen: %w", err)
		}
		resp, err := o.s3().GetObject(&s3.GetObjectInput{
			Bucket: aws.String(u.Host),
			Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
		})
		if err != nil {
			return nil, fmt.Errorf("xopen: error opening %q: %w", source, err)
		}
		return resp.Body, nil
	case "http", "https":
		return o.httpGet(source)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("xopen: %w", err)
	}
	return f, nil
}

func (o *Opener) s3() s3iface.S3API {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.S3 == nil {
		region := o.Region
		if region == "" {
			region = defaultRegion
		}
		o.S3 = s3.New(session.Must(session.NewSession(&aws.Config{Region: aws.String(region)})))
	}
	return o.S3
}

// NewReader returns a Reader that reads from r, whether r is a reader over
// compressed data or not. The first bytes of r are peeked to detect the
// compression format; when none is recognized, r is simply buffered.
//
// Closing the returned Reader does not close r.
func NewReader(r io.Reader, bufSize int) (*Reader, error) {
	size := clampBufferSize(bufSize)

	br := bufio.NewReaderSize(r, size)
	hdr, err := br.Peek(maxMagicLen)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("xopen: can't read: %w", err)
	}

	zr := &Reader{Compression: Detect(hdr)}

	var dec io.Reader
	switch zr.Compression {
	case Gzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("xopen (gzip): can't read: %w", err)
		}
		zr.closers = append(zr.closers, gzr)
		dec = gzr
	case Xz:
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("xopen (xz): can't read: %w", err)
		}
		dec = xzr
	case Bzip2:
		bzr, err := bzip2.NewReader(br, nil)
		if err != nil {
			return nil, fmt.Errorf("xopen (bzip2): can't read: %w", err)
		}
		zr.closers = append(zr.closers, bzr)
		dec = bzr
	case Zstd:
		zstdr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("xopen (zstd): can't read: %w", err)
		}
		zr.closers = append(zr.closers, closerFunc(func() error { zstdr.Close(); return nil }))
		dec = zstdr
	case Lz4:
		dec = lz4.NewReader(br)
	default:
		zr.Reader = br
		return zr, nil
	}

	zr.Reader = bufio.NewReaderSize(dec, size)
	return zr, nil
}

func clampBufferSize(size int) int {
	if size == 0 {
		return DefaultBufferSize
	}
	if size < MinBufferSize {
		return MinBufferSize
	}
	return size
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
