package fastx

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is the error matched (with errors.Is) by all the errors
// reporting a header line that starts neither with '>' nor with '@'.
var ErrInvalidFormat = errors.New("fastx: invalid FASTA/Q format")

// A FormatError reports a line where a record header was expected but that
// doesn't start with a sigil.
type FormatError struct {
	Line  int64 // 1-based line number
	Sigil byte  // first byte of the offending line
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("fastx: invalid FASTA/Q format at line %d: unexpected %q", e.Line, e.Sigil)
}

// Is makes errors.Is(err, ErrInvalidFormat) report true for any *FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// A LengthMismatchError is returned for a FASTQ record whose quality and
// sequence lengths differ.
type LengthMismatchError struct {
	ID   string // record identifier
	Seq  int    // sequence length, i.e. the expected quality length
	Qual int    // actual quality length
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("fastx: record %q: unequal lengths of sequence (%d) and quality (%d)", e.ID, e.Seq, e.Qual)
}
