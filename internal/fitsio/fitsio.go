// Package fitsio defines the seam between this module and an external FITS
// reader. HDU navigation, keyword parsing, and row decoding below the byte
// level are all delegated to an implementation of Opener/Table; this
// package only owns file-kind sniffing and gzip transparency, which are
// byte-level concerns this module has to handle itself before it can even
// decide which Opener to hand a path to.
package fitsio

import "io"

// ColumnInfo mirrors the subset of FITS column metadata the rest of this
// module needs: TTYPEn, scalar type/repeat/width, and display width.
type ColumnInfo struct {
	Ordinal    int
	Name       string
	Type       int // schema.TypeCode, represented as int to avoid an import cycle
	Repeat     int64
	Width      int64
	DispWidth  int
	Units      string
}

// Table is one open FITS binary-table HDU.
type Table interface {
	// NumRows returns the table's total row count (NAXIS2).
	NumRows() (int64, error)

	// NumCols returns the table's column count (TFIELDS).
	NumCols() (int, error)

	// RowByteWidth returns the on-disk width in bytes of one row (NAXIS1).
	RowByteWidth() (int64, error)

	// OptimalRowSize returns the reader's recommended number of rows to
	// read per I/O operation (analogous to CFITSIO's fits_get_rowsize).
	OptimalRowSize() (int64, error)

	// ColumnInfo returns metadata for the given 1-based column ordinal.
	ColumnInfo(col int) (ColumnInfo, error)

	// TDIM returns the (nrows, ncols) pair from a TDIMn keyword, if
	// present, for the given 1-based column ordinal.
	TDIM(col int) (nrows, ncols int, ok bool, err error)

	// ReadRowBytes reads nRows worth of raw, on-disk (big-endian) row
	// bytes starting at the given 1-based row number.
	ReadRowBytes(firstRow, nRows int64) ([]byte, error)

	// Close releases any resources held by the reader.
	Close() error
}

// Opener opens a FITS binary-table HDU from a path, optionally already
// decorated with FITS extended filename syntax (extension/row selectors),
// which this module never parses itself — it is passed through verbatim.
type Opener interface {
	// Open opens the first table HDU found after the primary array.
	Open(path string) (Table, error)

	// OpenExtNum opens the table HDU at the given 1-based extension number.
	OpenExtNum(path string, extnum int) (Table, error)

	// OpenExtName opens the table HDU with the given EXTNAME.
	OpenExtName(path string, extname string) (Table, error)
}

// Decompressor wraps r with a gzip reader if the stream is gzip-magic
// prefixed, otherwise returns r unchanged. It never consumes more than the
// two magic bytes from r ahead of what the caller eventually reads, by
// operating on a buffered reader that the caller owns. A reader without a
// Peek method is returned unchanged without being inspected, gzip or not.
func Decompressor(r io.Reader) (io.Reader, error) {
	br, ok := r.(peeker)
	if !ok {
		return r, nil
	}
	magic, err := br.Peek(2)
	if err != nil {
		// Fewer than 2 bytes available: definitely not gzip.
		return r, nil
	}
	if magic[0] == 0x1F && magic[1] == 0x8B {
		return newGzipReader(r)
	}
	return r, nil
}

type peeker interface {
	Peek(n int) ([]byte, error)
}
