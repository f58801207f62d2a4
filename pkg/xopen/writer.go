package xopen

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v3"
	"github.com/ulikunitz/xz"
	"github.com/valyala/gozstd"
)

// Stdout is the path representing the process standard output.
const Stdout = "-"

// zstd compression level, ranging from 1 (best speed) to 19 (best compression).
const zstdCompressionLevel = 3

var stdout io.Writer = os.Stdout // for tests

// Writer writes to a file, compressing the data according to the file suffix.
type Writer struct {
	io.Writer

	// Compression is the container format being written.
	Compression Compression

	fd      *os.File
	buf     *bufio.Writer
	cwriter io.WriteCloser
}

// Create creates (or truncates) the file at path and returns a Writer that
// compresses what is written to it. The compressor is selected from the path
// suffix: .gz, .xz, .bz2, .zst/.zstd, .lz4, anything else means no
// compression. "-" writes to the standard output.
//
// The Writer must be closed for the compressed container to be complete.
func Create(path string, bufSize int) (*Writer, error) {
	w := &Writer{Compression: CompressionFromPath(path)}

	var dst io.Writer = stdout
	if path != Stdout {
		fd, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("xopen: %w", err)
		}
		w.fd = fd
		dst = fd
	}

	w.buf = bufio.NewWriterSize(dst, clampBufferSize(bufSize))
	cwriter, err := newCompressor(w.Compression, w.buf)
	if err != nil {
		if w.fd != nil {
			w.fd.Close()
		}
		return nil, fmt.Errorf("xopen (%s): %w", w.Compression, err)
	}
	w.cwriter = cwriter
	w.Writer = cwriter
	return w, nil
}

func newCompressor(comp Compression, w io.Writer) (io.WriteCloser, error) {
	switch comp {
	case Gzip:
		gzw, err := gzip.NewWriterLevel(w, gzip.DefaultCompression)
		if err != nil {
			return nil, err
		}
		return gzw, nil
	case Xz:
		xzw, err := xz.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return xzw, nil
	case Bzip2:
		bzw, err := bzip2.NewWriter(w, nil)
		if err != nil {
			return nil, err
		}
		return bzw, nil
	case Zstd:
		return &zstdWriter{gozstd.NewWriterLevel(w, zstdCompressionLevel)}, nil
	case Lz4:
		return lz4.NewWriter(w), nil
	}
	return nopWriteCloser{w}, nil
}

// Close finalizes the compressed stream, flushes buffered data and closes
// the file. The standard output is flushed but never closed.
func (w *Writer) Close() error {
	var err error
	if w.cwriter != nil {
		err = w.cwriter.Close()
		w.cwriter = nil
	}
	if w.buf != nil {
		if ferr := w.buf.Flush(); ferr != nil && err == nil {
			err = ferr
		}
		w.buf = nil
	}
	if w.fd != nil {
		if cerr := w.fd.Close(); cerr != nil && err == nil {
			err = cerr
		}
		w.fd = nil
	}
	if err != nil {
		return fmt.Errorf("xopen: close: %w", err)
	}
	return nil
}

// zstdWriter releases the cgo resources held by the zstd writer on Close.
type zstdWriter struct {
	*gozstd.Writer
}

func (w *zstdWriter) Close() error {
	err := w.Writer.Close()
	w.Writer.Release()
	return err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
