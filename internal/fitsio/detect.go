package fitsio

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
)

// gzipMagic is the two-byte gzip stream header.
var gzipMagic = [2]byte{0x1F, 0x8B}

// IsFITS reports whether the named file begins with a FITS SIMPLE keyword
// record ("SIMPLE  = T"). Any filename modifiers (FITS extended filename
// syntax, e.g. "file.fits[3]") are stripped before the file is opened.
func IsFITS(path string) bool {
	clean := stripModifiers(path)
	f, err := os.Open(clean)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 80)
	n, err := io.ReadFull(f, buf)
	if err != nil && n == 0 {
		return false
	}
	buf = buf[:n]
	return hasSimpleT(buf)
}

// hasSimpleT scans a header-card-sized buffer for a SIMPLE keyword record
// whose value is 'T'.
func hasSimpleT(card []byte) bool {
	if len(card) < 10 {
		return false
	}
	if string(card[0:6]) != "SIMPLE" {
		return false
	}
	for i := 6; i < len(card); i++ {
		if card[i] == 'T' {
			return true
		}
		if card[i] != ' ' && card[i] != '=' {
			return false
		}
	}
	return false
}

// IsGZip reports whether the named file begins with the gzip magic header.
func IsGZip(path string) bool {
	clean := stripModifiers(path)
	f, err := os.Open(clean)
	if err != nil {
		return false
	}
	defer f.Close()

	var buf [2]byte
	n, err := io.ReadFull(f, buf[:])
	if err != nil || n < 2 {
		return false
	}
	return buf == gzipMagic
}

// stripModifiers removes a trailing FITS extended filename selector
// (everything from the first '[' onward), which is never this module's to
// parse.
func stripModifiers(path string) string {
	if i := indexByte(path, '['); i >= 0 {
		return path[:i]
	}
	return path
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func newGzipReader(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}

// BufferedPeeker wraps an io.Reader in a *bufio.Reader large enough to
// satisfy Decompressor's 2-byte peek, so callers don't need bufio
// boilerplate at every open site.
func BufferedPeeker(r io.Reader) *bufio.Reader {
	return bufio.NewReaderSize(r, 4096)
}
