// Package byteorder detects host/FITS endianness mismatches and swaps
// multi-byte scalar groups in place.
//
// FITS binary tables are always big-endian on disk. When the host is
// little-endian, scalars must be swapped to host order before they can be
// interpreted as Go numeric types; when emitting PostgreSQL COPY BINARY,
// the wire format is always big-endian regardless of host order, so the
// swap is sometimes a no-op and sometimes required depending on the
// direction of travel.
package byteorder

import "encoding/binary"

// HostIsSwapped reports whether the host's native byte order is the
// reverse of FITS on-disk order (big-endian). True on little-endian hosts.
func HostIsSwapped() bool {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], 1)
	return buf[0] != 1
}

// Swap2 swaps successive pairs of bytes in place. An odd trailing byte is
// left untouched.
func Swap2(b []byte) {
	n := len(b) &^ 1
	for i := 0; i < n; i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
}

// Swap4 reverses each successive run of four bytes in place, e.g.
// 12345678 becomes 43218765. Trailing bytes not forming a complete group
// of four are left untouched.
func Swap4(b []byte) {
	n := len(b) &^ 3
	for i := 0; i < n; i += 4 {
		b[i], b[i+1], b[i+2], b[i+3] = b[i+3], b[i+2], b[i+1], b[i]
	}
}

// Swap8 reverses each successive run of eight bytes in place, e.g.
// 12345678 becomes 87654321. Trailing bytes not forming a complete group
// of eight are left untouched.
func Swap8(b []byte) {
	n := len(b) &^ 7
	for i := 0; i < n; i += 8 {
		b[i], b[i+7] = b[i+7], b[i]
		b[i+1], b[i+6] = b[i+6], b[i+1]
		b[i+2], b[i+5] = b[i+5], b[i+2]
		b[i+3], b[i+4] = b[i+4], b[i+3]
	}
}

// SwapN dispatches to Swap2/Swap4/Swap8 by element width. Widths other
// than 2, 4, or 8 are left untouched (single-byte scalars need no swap).
func SwapN(b []byte, width int) {
	switch width {
	case 2:
		Swap2(b)
	case 4:
		Swap4(b)
	case 8:
		Swap8(b)
	}
}
