package xopen

import (
	"bytes"
	"strings"
)

// Compression identifies a compressed container format.
type Compression int

// List of compression formats supported by this package.
const (
	None Compression = iota
	Gzip
	Xz
	Bzip2
	Zstd
	Lz4
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Xz:
		return "xz"
	case Bzip2:
		return "bzip2"
	case Zstd:
		return "zstd"
	case Lz4:
		return "lz4"
	}
	return "unknown"
}

// Magic numbers, checked in this order; the first match wins.
var magics = []struct {
	comp  Compression
	magic []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Xz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{Bzip2, []byte("BZh")},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{Lz4, []byte{0x04, 0x22, 0x4d, 0x18}},
}

// maxMagicLen is the number of bytes Detect needs to see to recognize any of
// the supported formats.
const maxMagicLen = 6

// Detect returns the compression format whose magic number hdr starts with,
// or None.
//
// Note: like any detection based on magic numbers, Detect can be fooled by
// uncompressed data that happens to start with one of those byte sequences.
// Sequence files can't, since they start with '>' or '@'.
func Detect(hdr []byte) Compression {
	for _, m := range magics {
		if bytes.HasPrefix(hdr, m.magic) {
			return m.comp
		}
	}
	return None
}

// CompressionFromPath returns the compression format that Create uses for the
// file at path, based on its suffix.
func CompressionFromPath(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	case strings.HasSuffix(path, ".xz"):
		return Xz
	case strings.HasSuffix(path, ".bz2"):
		return Bzip2
	case strings.HasSuffix(path, ".zst") || strings.HasSuffix(path, ".zstd"):
		return Zstd
	case strings.HasSuffix(path, ".lz4"):
		return Lz4
	}
	return None
}
