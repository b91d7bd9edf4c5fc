package format

import "errors"

var (
	// ErrSignatureMismatch indicates an image's pad word had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
)

// CheckSignature verifies the image prefix magic in the pad word.
// It returns ErrTruncated when the buffer cannot hold the prefix and
// ErrSignatureMismatch when the magic differs.
func CheckSignature(b []byte) error {
	if len(b) < PrefixSize {
		return ErrTruncated
	}
	for i, c := range Signature {
		if b[PadOffset+i] != c {
			return ErrSignatureMismatch
		}
	}
	return nil
}

// PutSignature stamps the image magic into the pad word.
func PutSignature(b []byte) {
	copy(b[PadOffset:PadOffset+len(Signature)], Signature)
}
