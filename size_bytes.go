package fastx

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// SizeBytes is a size in bytes, that can be given either as a number or as
// a human readable string such as "128KiB" or "1MB", in TOML files and on
// the command line.
type SizeBytes uint64

// UnmarshalTOML implements toml.Unmarshaler.
func (b *SizeBytes) UnmarshalTOML(p interface{}) error {
	var actual uint64

	switch v := p.(type) {
	case float64:
		if v < 0 {
			return fmt.Errorf("invalid size in bytes(%v): value must >= 0", v)
		}
		if v >= math.MaxUint64 {
			return fmt.Errorf("invalid size in bytes (%v): value must be smaller than %v", v, uint64(math.MaxUint64))
		}
		actual = uint64(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("invalid size in bytes (%v): value must be >= 0", v)
		}
		actual = uint64(v)
	case string:
		return b.Set(v)
	default:
		return fmt.Errorf("unexpected type (%T): unexpected value type", v)
	}
	*b = SizeBytes(actual)
	return nil
}

// Set implements flag.Value.
func (b *SizeBytes) Set(s string) error {
	var actual uint64
	if s != "" {
		var err error
		actual, err = humanize.ParseBytes(s)
		if err != nil {
			return fmt.Errorf("invalid size in bytes (%v): %v", s, err)
		}
	}
	if actual > math.MaxInt32 {
		return fmt.Errorf("invalid size in bytes (%v): value must be smaller than %v", s, humanize.IBytes(math.MaxInt32))
	}
	*b = SizeBytes(actual)
	return nil
}

// String implements flag.Value.
func (b *SizeBytes) String() string {
	if b == nil {
		return "0 B"
	}
	return humanize.IBytes(uint64(*b))
}
