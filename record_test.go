package fastx

import (
	"testing"
)

func seqRecord(seq string) *Record {
	return &Record{Seq: []byte(seq)}
}

func TestRecordRevComp(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"even bases", "ACGTNacgtn", "nacgtNACGT"},
		{"odd bases", "ACGTGa", "tCACGT"},
		{"iupac", "MRSWKY", "RMWSYK"},
		{"iupac 3 bases", "VHDBvhdb", "vhdbVHDB"},
		{"empty", "", ""},
		{"gaps", "a-c", "g-t"},
		{"dots and spaces", "A. C", "G .T"},
		{"unknown base", "N?", "NN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(seqRecord(tt.seq).RevComp()); got != tt.want {
				t.Errorf("RevComp(%q) = %q, want %q", tt.seq, got, tt.want)
			}
		})
	}
}

func TestRecordRevCompIsInvolution(t *testing.T) {
	const seq = "ACGTNacgtnMRWSYKVHDBmrwsykvhdb.- "
	r := seqRecord(seq)
	twice := seqRecord(string(r.RevComp())).RevComp()
	if string(twice) != seq {
		t.Errorf("RevComp(RevComp(%q)) = %q", seq, twice)
	}
}

func TestRecordRevCompLowercaseIUPAC(t *testing.T) {
	// Lowercase three-base codes complement like their uppercase
	// counterparts, they aren't kept as is.
	tests := []struct{ seq, want string }{
		{"v", "b"},
		{"h", "d"},
		{"d", "h"},
		{"b", "v"},
		{"vvhh", "ddbb"},
	}
	for _, tt := range tests {
		if got := string(seqRecord(tt.seq).RevComp()); got != tt.want {
			t.Errorf("RevComp(%q) = %q, want %q", tt.seq, got, tt.want)
		}
	}
}

func TestRecordBaseCounting(t *testing.T) {
	r := seqRecord("ACGTNacgtn")

	if got := r.CountBase('a'); got != 1 {
		t.Errorf("CountBase('a') = %d, want 1", got)
	}
	if got := r.CountBases([]byte("Aa")); got != 2 {
		t.Errorf("CountBases(Aa) = %d, want 2", got)
	}
	if got := r.CountBaseFunc(func(b byte) bool { return b == 'a' || b == 'A' }); got != 2 {
		t.Errorf("CountBaseFunc(a|A) = %d, want 2", got)
	}
	if got := r.CountBases(nil); got != 0 {
		t.Errorf("CountBases(nil) = %d, want 0", got)
	}
}

func TestRecordGCContent(t *testing.T) {
	tests := []struct {
		seq  string
		want float64
	}{
		{"ACGTNacgtn", 0.4},
		{"", 0},
		{"GGCC", 1},
		{"AATT", 0},
		{"SSAA", 0.5},
	}
	for _, tt := range tests {
		if got := seqRecord(tt.seq).GCContent(); got != tt.want {
			t.Errorf("GCContent(%q) = %v, want %v", tt.seq, got, tt.want)
		}
	}
}

func TestRecordGCContentStrongBases(t *testing.T) {
	// S stands for G or C, so it counts towards the GC content, in either
	// case. Other ambiguity codes, N included, don't.
	tests := []struct {
		seq  string
		want float64
	}{
		{"sS", 1},
		{"SA", 0.5},
		{"NWNW", 0},
		{"NNGC", 0.5},
	}
	for _, tt := range tests {
		if got := seqRecord(tt.seq).GCContent(); got != tt.want {
			t.Errorf("GCContent(%q) = %v, want %v", tt.seq, got, tt.want)
		}
	}
}

func TestRecordClone(t *testing.T) {
	orig := &Record{
		ID:   []byte("id"),
		Desc: []byte("desc"),
		Seq:  []byte("ACGT"),
		Qual: []byte("IIII"),
	}
	c := orig.Clone()

	orig.ID[0] = 'X'
	orig.Seq[0] = 'X'
	orig.Qual[0] = 'X'

	if string(c.ID) != "id" || string(c.Desc) != "desc" || string(c.Seq) != "ACGT" || string(c.Qual) != "IIII" {
		t.Errorf("clone was modified through the original: %v", toRec(c))
	}

	// A FASTA record stays a FASTA record, and an empty quality stays a
	// quality.
	if (&Record{Seq: []byte("A")}).Clone().IsFastq() {
		t.Errorf("clone of a FASTA record is FASTQ")
	}
	if !(&Record{Qual: []byte{}}).Clone().IsFastq() {
		t.Errorf("clone of an empty FASTQ record is not FASTQ")
	}
}

func TestRecordLen(t *testing.T) {
	if got := seqRecord("ACGT").Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}
}
