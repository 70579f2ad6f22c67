// Package row implements the chunked row-read loop: for each chunk it
// reads raw row bytes from the FITS table, walks each input column through
// internal/emit, and appends the formatted output (including the trailing
// synthetic columns) to the stream.
package row

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/noaodatalab/fits2db/internal/emit"
	"github.com/noaodatalab/fits2db/internal/fitsio"
	"github.com/noaodatalab/fits2db/internal/runconfig"
	"github.com/noaodatalab/fits2db/internal/schema"
)

// Driver runs the chunked read/emit loop over one open table.
type Driver struct{}

// NewDriver returns a ready-to-use Driver. Driver carries no state of its
// own — RunState lives in runconfig and is threaded through explicitly.
func NewDriver() *Driver { return &Driver{} }

// cellCursor is the typed replacement for the source's raw pointer walk:
// a byte slice plus an offset, with a bounds-checked advance.
type cellCursor struct {
	buf    []byte
	offset int
}

func (c *cellCursor) advance(n int) ([]byte, error) {
	if n < 0 || c.offset+n > len(c.buf) {
		return nil, fmt.Errorf("row: cursor overrun: need %d bytes, have %d", n, len(c.buf)-c.offset)
	}
	b := c.buf[c.offset : c.offset+n]
	c.offset += n
	return b, nil
}

func columnExtent(col schema.Column) int {
	return int(col.Repeat) * int(col.Width)
}

// Run reads t's rows in chunks sized to t's recommended optimal row count
// (bounded by rc.Chunk when set and smaller), dispatches every cell to
// internal/emit, and writes the formatted bytes to out. firstRow advances
// by the chunk's row count after every chunk, correcting the source's
// latent bug of never advancing it. lastFileOfBundle tells the row loop
// whether this file's last row is also the bundle's last row, which
// governs comma suppression in MySQL/SQLite value-list mode.
func (d *Driver) Run(ctx context.Context, t fitsio.Table, out io.Writer, in schema.InputSchema, outSchema schema.OutputSchema, rc *runconfig.RunConfig, st *runconfig.RunState, table string, lastFileOfBundle bool) error {
	total, err := t.NumRows()
	if err != nil {
		return fmt.Errorf("row: NumRows: %w", err)
	}
	rowWidth, err := t.RowByteWidth()
	if err != nil {
		return fmt.Errorf("row: RowByteWidth: %w", err)
	}
	optimal, err := t.OptimalRowSize()
	if err != nil {
		return fmt.Errorf("row: OptimalRowSize: %w", err)
	}

	chunkSize := optimal
	if rc.Chunk > 0 && int64(rc.Chunk) < chunkSize {
		chunkSize = int64(rc.Chunk)
	}
	if chunkSize <= 0 {
		chunkSize = total
	}

	firstRow := int64(1)
	for firstRow <= total {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		nelem := chunkSize
		if firstRow+nelem-1 > total {
			nelem = total - firstRow + 1
		}

		raw, err := t.ReadRowBytes(firstRow, nelem)
		if err != nil {
			return fmt.Errorf("row: ReadRowBytes(%d,%d): %w", firstRow, nelem, err)
		}

		buf := &bytes.Buffer{}
		for i := int64(0); i < nelem; i++ {
			rowBytes := raw[i*rowWidth : (i+1)*rowWidth]
			isLastRowOfTable := firstRow+i == total
			isLastRow := isLastRowOfTable && lastFileOfBundle
			if err := d.writeRow(buf, rowBytes, in, outSchema, rc, st, table, isLastRow); err != nil {
				return err
			}
		}

		if _, err := out.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("row: write chunk: %w", err)
		}

		firstRow += nelem
	}
	return nil
}

func (d *Driver) writeRow(buf *bytes.Buffer, rowBytes []byte, in schema.InputSchema, outSchema schema.OutputSchema, rc *runconfig.RunConfig, st *runconfig.RunState, table string, isLastRow bool) error {
	binaryMode := rc.Binary && rc.Format == schema.FormatSQL && rc.Dialect == schema.DialectPostgres && !outSchema.BinaryDisabled
	valueListMode := rc.Format == schema.FormatSQL && rc.Dialect != schema.DialectPostgres

	var textFields []string
	var binaryFields [][]byte

	cur := &cellCursor{buf: rowBytes}
	for _, col := range in {
		n := columnExtent(col)
		cell, err := cur.advance(n)
		if err != nil {
			return err
		}
		if col.Type.Unsupported() {
			log.Printf("Error: Unsupported column type %s", col.Type)
			continue
		}

		if binaryMode {
			fs, err := emit.BinaryEncode(cell, col, *rc)
			if err != nil {
				return fmt.Errorf("row: binary encode column %q: %w", col.Name, err)
			}
			if rc.Debug {
				for _, f := range fs {
					if err := emit.VerifyBinaryField(f, col); err != nil {
						emit.LogMismatch(col, err)
					}
				}
			}
			binaryFields = append(binaryFields, fs...)
		} else {
			fs, err := emit.TextEncode(cell, col, *rc)
			if err != nil {
				return fmt.Errorf("row: text encode column %q: %w", col.Name, err)
			}
			textFields = append(textFields, fs...)
		}
	}

	appendSynthetic(rc, st, binaryMode, &textFields, &binaryFields)

	switch {
	case binaryMode:
		var fc [2]byte
		binary.BigEndian.PutUint16(fc[:], uint16(len(binaryFields)))
		buf.Write(fc[:])
		for _, f := range binaryFields {
			buf.Write(f)
		}
	case valueListMode:
		if rc.Single {
			fmt.Fprintf(buf, "INSERT INTO %s (%s) VALUES ", pq.QuoteIdentifier(table), columnNames(outSchema))
		}
		buf.WriteByte('(')
		buf.WriteString(strings.Join(textFields, ","))
		buf.WriteByte(')')
		if !isLastRow {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	default:
		buf.WriteString(strings.Join(textFields, string(rc.Delimiter)))
		buf.WriteByte('\n')
	}
	return nil
}

// appendSynthetic appends the add/sid/rid trailing cells, in that order,
// to whichever of textFields/binaryFields is active for the current mode.
func appendSynthetic(rc *runconfig.RunConfig, st *runconfig.RunState, binaryMode bool, textFields *[]string, binaryFields *[][]byte) {
	if rc.AddColumn != "" {
		if binaryMode {
			*binaryFields = append(*binaryFields, lengthPrefixed(int32Bytes(1)))
		} else {
			*textFields = append(*textFields, "1")
		}
	}
	if rc.SidColumn != "" {
		v := st.NextSerial()
		if binaryMode {
			*binaryFields = append(*binaryFields, lengthPrefixed(int64Bytes(v)))
		} else {
			*textFields = append(*textFields, strconv.FormatInt(v, 10))
		}
	}
	if rc.RidColumn != "" {
		v := st.NextRandom()
		if binaryMode {
			*binaryFields = append(*binaryFields, lengthPrefixed(float64Bytes(v)))
		} else {
			*textFields = append(*textFields, strconv.FormatFloat(v, 'f', 16, 64))
		}
	}
}

func int32Bytes(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func int64Bytes(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func float64Bytes(v float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return b
}

func lengthPrefixed(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

func columnNames(out schema.OutputSchema) string {
	names := make([]string, len(out.Columns))
	for i, c := range out.Columns {
		names[i] = pq.QuoteIdentifier(c.Name)
	}
	return strings.Join(names, ", ")
}
