package fastx

import (
	"bufio"
	"io"

	"github.com/AdRoll/fastx/pkg/xopen"
)

// Initial capacity of the record assembly buffer, it grows as needed to
// hold the longest record seen so far.
const kRecordBuffer = 64 * 1024

// Reader reads FASTA and FASTQ records from a byte stream. Both formats can
// be mixed in the same stream, sequences and qualities can be wrapped over
// any number of lines, and lines can be terminated by "\n" or "\r\n". Empty
// lines are ignored wherever they appear.
//
// All the records fields are assembled in a single buffer owned by the
// Reader, which is reused for every record: see Read.
//
// A Reader is not safe for concurrent use, but independent Readers over
// independent streams share nothing.
type Reader struct {
	br     *bufio.Reader
	closer io.Closer

	// buf is the assembly buffer: it holds the header (without sigil),
	// then the sequence, then the quality of the current record.
	buf []byte

	// line is the scratch buffer used to assemble lines that don't fit in
	// br's buffer.
	line []byte

	// lookahead is the header line of the next record, read while looking
	// for the end of the current sequence. It's nil when there's none.
	lookahead []byte

	lineno int64
	rec    Record
	err    error
}

// NewReader returns a new Reader reading from r. If r is not already a
// *bufio.Reader, it's wrapped into one.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, xopen.DefaultBufferSize)
	}
	return &Reader{
		br:  br,
		buf: make([]byte, 0, kRecordBuffer),
	}
}

// Open opens source with xopen.Open, transparently decompressing it, and
// returns a Reader over its content. The returned Reader must be closed.
func Open(source string, bufSize int) (*Reader, error) {
	zr, err := xopen.Open(source, bufSize)
	if err != nil {
		return nil, err
	}
	r := NewReader(zr.Reader)
	r.closer = zr
	return r, nil
}

// Close closes the source opened by Open. It's a no-op for readers created
// with NewReader.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Line returns the number of the last line read from the stream.
func (r *Reader) Line() int64 { return r.lineno }

// Read reads the next record from the stream. At the end of the stream, Read
// returns a nil record and io.EOF.
//
// The returned record and all its fields point into the Reader's internal
// buffer: they are only valid until the next call to Read. Use Record.Clone
// to keep a record around.
//
// Errors are final: after Read returned an error (io.EOF included), all
// subsequent calls return that same error. No attempt is made to skip a
// malformed record and resynchronize on the next one. I/O errors are
// returned as is, malformed records are reported with *FormatError or
// *LengthMismatchError.
func (r *Reader) Read() (*Record, error) {
	if r.err != nil {
		return nil, r.err
	}
	rec, err := r.read()
	if err != nil {
		r.err = err
		return nil, err
	}
	return rec, nil
}

func (r *Reader) read() (*Record, error) {
	r.buf = r.buf[:0]

	// Header.
	line := r.lookahead
	r.lookahead = nil
	if line == nil {
		var err error
		if line, err = r.nextLine(); err != nil {
			return nil, err
		}
	}

	var fastq bool
	switch line[0] {
	case '>':
	case '@':
		fastq = true
	default:
		return nil, &FormatError{Line: r.lineno, Sigil: line[0]}
	}

	r.buf = append(r.buf, trimEOL(line)[1:]...)
	idEnd, descStart := splitHeader(r.buf)
	hdrEnd := len(r.buf)

	// Sequence, until the next header, the '+' separator or the end of
	// the stream.
	sep := false
	for {
		line, err := r.nextLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line[0] == '>' {
			r.lookahead = line
			break
		}
		if fastq && line[0] == '+' {
			sep = true
			break
		}
		r.buf = append(r.buf, trimEOL(line)...)
	}
	seqEnd := len(r.buf)

	// Quality, until it's at least as long as the sequence.
	if sep {
		target := seqEnd - hdrEnd
		n := 0
		for n < target {
			line, err := r.nextLine()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			qual := trimEOL(line)
			r.buf = append(r.buf, qual...)
			n += len(qual)
		}
		if n > target {
			return nil, &LengthMismatchError{ID: string(r.buf[:idEnd]), Seq: target, Qual: n}
		}
	}

	// buf won't grow anymore, the record can point into it.
	end := len(r.buf)
	r.rec = Record{
		ID:   r.buf[:idEnd:idEnd],
		Desc: r.buf[descStart:hdrEnd:hdrEnd],
		Seq:  r.buf[hdrEnd:seqEnd:seqEnd],
	}
	if fastq {
		r.rec.Qual = r.buf[seqEnd:end:end]
		if len(r.rec.Qual) != len(r.rec.Seq) {
			return nil, &LengthMismatchError{ID: string(r.rec.ID), Seq: len(r.rec.Seq), Qual: len(r.rec.Qual)}
		}
	}
	return &r.rec, nil
}

// nextLine returns the next line that isn't only made of a line terminator.
func (r *Reader) nextLine() ([]byte, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if len(trimEOL(line)) != 0 {
			return line, nil
		}
	}
}

// readLine reads the next line, terminator included. It returns io.EOF only
// if there's no byte left to read; the last line of a stream doesn't need
// a terminator.
//
// The returned slice is either a view into br's buffer or the scratch line
// buffer: either way it's only valid until the next read.
func (r *Reader) readLine() ([]byte, error) {
	line, err := r.br.ReadSlice('\n')
	if err == nil {
		r.lineno++
		return line, nil
	}

	// Long line, or last line without terminator.
	r.line = append(r.line[:0], line...)
	for err == bufio.ErrBufferFull {
		line, err = r.br.ReadSlice('\n')
		r.line = append(r.line, line...)
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(r.line) == 0 {
		return nil, io.EOF
	}
	r.lineno++
	return r.line, nil
}

// trimEOL removes the trailing "\n" or "\r\n" from line.
func trimEOL(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

// splitHeader splits a header (sigil excluded) on the first run of spaces
// and tabs. The identifier is hdr[:idEnd], the description hdr[descStart:].
func splitHeader(hdr []byte) (idEnd, descStart int) {
	for idEnd < len(hdr) && hdr[idEnd] != ' ' && hdr[idEnd] != '\t' {
		idEnd++
	}
	descStart = idEnd
	for descStart < len(hdr) && (hdr[descStart] == ' ' || hdr[descStart] == '\t') {
		descStart++
	}
	return idEnd, descStart
}
