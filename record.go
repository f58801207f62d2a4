package fastx

// Record is a FASTA or FASTQ record.
//
// The fields of a record returned by Reader.Read are views into the
// Reader's buffer, see Reader.Read.
type Record struct {
	ID   []byte // header bytes up to the first space or tab
	Desc []byte // header bytes after the first run of spaces and tabs
	Seq  []byte // sequence, with line terminators removed

	// Qual is the quality string of FASTQ records, with line terminators
	// removed. It's nil for FASTA records.
	Qual []byte
}

// IsFastq reports whether the record has a quality string.
func (r *Record) IsFastq() bool { return r.Qual != nil }

// Len returns the sequence length.
func (r *Record) Len() int { return len(r.Seq) }

// Clone returns a deep copy of r, which remains valid after the next call
// to Reader.Read.
func (r *Record) Clone() *Record {
	// A single allocation for all the fields.
	buf := make([]byte, 0, len(r.ID)+len(r.Desc)+len(r.Seq)+len(r.Qual))

	clone := func(b []byte) []byte {
		start := len(buf)
		buf = append(buf, b...)
		return buf[start:len(buf):len(buf)]
	}

	c := &Record{
		ID:   clone(r.ID),
		Desc: clone(r.Desc),
		Seq:  clone(r.Seq),
	}
	if r.Qual != nil {
		c.Qual = clone(r.Qual)
	}
	return c
}

// RevComp returns the reverse complement of the sequence. IUPAC ambiguity
// codes are complemented, case and gaps ('-', '.') are preserved; any other
// byte becomes 'N'.
func (r *Record) RevComp() []byte {
	rc := make([]byte, len(r.Seq))
	for i, b := range r.Seq {
		rc[len(rc)-1-i] = complement[b]
	}
	return rc
}

// CountBase returns the number of occurrences of base in the sequence.
func (r *Record) CountBase(base byte) int {
	n := 0
	for _, b := range r.Seq {
		if b == base {
			n++
		}
	}
	return n
}

// CountBases returns the number of bytes of the sequence that belong to
// the bases set.
func (r *Record) CountBases(bases []byte) int {
	var table [256]uint8
	for _, b := range bases {
		table[b] = 1
	}

	n := 0
	for _, b := range r.Seq {
		n += int(table[b])
	}
	return n
}

// CountBaseFunc returns the number of bytes b of the sequence for which
// f(b) is true.
func (r *Record) CountBaseFunc(f func(byte) bool) int {
	n := 0
	for _, b := range r.Seq {
		if f(b) {
			n++
		}
	}
	return n
}

// GCContent returns the fraction of G, C and S (G or C) bases in the
// sequence, case insensitive. It's 0 for an empty sequence.
func (r *Record) GCContent() float64 {
	if len(r.Seq) == 0 {
		return 0
	}
	return float64(r.CountBases(gcBases)) / float64(len(r.Seq))
}

var gcBases = []byte("GCSgcs")

var complement = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 'N'
	}

	const (
		from = "ACGTNacgtnMRWSYKVHDBmrwsykvhdb.- "
		to   = "TGCANtgcanKYWSRMBDHVkywsrmbdhv.- "
	)
	for i := 0; i < len(from); i++ {
		t[from[i]] = to[i]
	}
	return t
}()
