package fitsio

import "fmt"

// MemTable is an in-memory Table used by every package's tests in place of
// a real FITS file. It stores one contiguous row-major byte buffer plus
// per-column metadata, mirroring exactly what ReadRowBytes would hand back
// from a real FITS binary table.
type MemTable struct {
	Rows       int64
	RowWidth   int64
	Optimal    int64 // 0 means "default to Rows"
	Cols       []ColumnInfo
	TDims      map[int][2]int // 1-based column -> (nrows, ncols)
	Data       []byte         // len == Rows*RowWidth
	ClosedFlag bool
}

var _ Table = (*MemTable)(nil)

func (m *MemTable) NumRows() (int64, error) { return m.Rows, nil }

func (m *MemTable) NumCols() (int, error) { return len(m.Cols), nil }

func (m *MemTable) RowByteWidth() (int64, error) { return m.RowWidth, nil }

func (m *MemTable) OptimalRowSize() (int64, error) {
	if m.Optimal > 0 {
		return m.Optimal, nil
	}
	return m.Rows, nil
}

func (m *MemTable) ColumnInfo(col int) (ColumnInfo, error) {
	if col < 1 || col > len(m.Cols) {
		return ColumnInfo{}, fmt.Errorf("fitsio: column %d out of range", col)
	}
	return m.Cols[col-1], nil
}

func (m *MemTable) TDIM(col int) (nrows, ncols int, ok bool, err error) {
	if m.TDims == nil {
		return 0, 0, false, nil
	}
	d, found := m.TDims[col]
	if !found {
		return 0, 0, false, nil
	}
	return d[0], d[1], true, nil
}

func (m *MemTable) ReadRowBytes(firstRow, nRows int64) ([]byte, error) {
	if firstRow < 1 || firstRow+nRows-1 > m.Rows {
		return nil, fmt.Errorf("fitsio: row range [%d,%d) out of bounds (nrows=%d)",
			firstRow, firstRow+nRows, m.Rows)
	}
	start := (firstRow - 1) * m.RowWidth
	end := start + nRows*m.RowWidth
	return m.Data[start:end], nil
}

func (m *MemTable) Close() error {
	m.ClosedFlag = true
	return nil
}

// MemOpener always returns the same pre-built MemTable, regardless of
// which Open* method is called — sufficient for tests that don't exercise
// extension selection logic itself (that logic lives in internal/convert).
// Every path it is asked to open, with any extension selector appended, is
// recorded in Opened.
type MemOpener struct {
	Table   *MemTable
	Opened  []string
	OpenErr error
}

func (o *MemOpener) Open(path string) (Table, error) {
	o.Opened = append(o.Opened, path)
	if o.OpenErr != nil {
		return nil, o.OpenErr
	}
	return o.Table, nil
}

func (o *MemOpener) OpenExtNum(path string, extnum int) (Table, error) {
	return o.Open(fmt.Sprintf("%s[%d]", path, extnum))
}

func (o *MemOpener) OpenExtName(path string, extname string) (Table, error) {
	return o.Open(fmt.Sprintf("%s[%s]", path, extname))
}
