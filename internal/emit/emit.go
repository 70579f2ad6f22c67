// Package emit implements the per-type cell encoders: one dispatch table
// keyed by schema.TypeCode, each entry providing a text scalar formatter
// and a binary scalar encoder, with one generic driver for each mode that
// handles array wrapping/explosion so no per-type code duplicates that
// logic (collapsing the source's dl_print{String,Logical,Byte,...} family
// into one table, per the corresponding design note).
package emit

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/noaodatalab/fits2db/internal/byteorder"
	"github.com/noaodatalab/fits2db/internal/runconfig"
	"github.com/noaodatalab/fits2db/internal/schema"
	"github.com/noaodatalab/fits2db/internal/textutil"
)

// RunConfig is the subset of runconfig.RunConfig this package reads.
type RunConfig = runconfig.RunConfig

type textScalarFunc func(elem []byte, rc RunConfig) (string, error)
type binScalarFunc func(elem []byte, rc RunConfig) []byte

var textTable = map[schema.TypeCode]textScalarFunc{
	schema.TypeString:   textString,
	schema.TypeLogical:  textLogical,
	schema.TypeByte:     textByte,
	schema.TypeSByte:    textSByte,
	schema.TypeShort:    textShort,
	schema.TypeUShort:   textUShort,
	schema.TypeInt:      textInt,
	schema.TypeUInt:     textUInt,
	schema.TypeInt32:    textInt,
	schema.TypeLongLong: textLongLong,
	schema.TypeFloat:    textFloat,
	schema.TypeDouble:   textDouble,
}

var binTable = map[schema.TypeCode]binScalarFunc{
	schema.TypeLogical:  binLogical,
	schema.TypeByte:     binByte,
	schema.TypeSByte:    binSByte,
	schema.TypeShort:    binPassthrough,
	schema.TypeUShort:   binPassthrough,
	schema.TypeInt:      binPassthrough,
	schema.TypeUInt:     binPassthrough,
	schema.TypeInt32:    binPassthrough,
	schema.TypeLongLong: binPassthrough,
	schema.TypeFloat:    binPassthrough,
	schema.TypeDouble:   binPassthrough,
}

// binWidth returns the on-the-wire byte width of one encoded scalar, which
// for LOGICAL/BYTE/SBYTE is wider than the on-disk FITS width because all
// three map to SQL smallint (2 bytes).
func binWidth(t schema.TypeCode) int {
	switch t {
	case schema.TypeLogical, schema.TypeByte, schema.TypeSByte:
		return 2
	default:
		return t.ScalarWidth()
	}
}

// elementCount returns how many scalar elements col's cell holds, per
// spec.md's logical-shape fields.
func elementCount(col schema.Column) int {
	if col.Type == schema.TypeString {
		return 1
	}
	n := col.NRows * col.NCols
	if n <= 0 {
		n = 1
	}
	return n
}

// TextEncode formats col's cell bytes for text output. It returns one
// string per output field: a single (possibly array-wrapped) string when
// rc.Explode is false or the column has only one element, or one string
// per element when rc.Explode is true.
func TextEncode(cell []byte, col schema.Column, rc RunConfig) ([]string, error) {
	fn, ok := textTable[col.Type]
	if !ok {
		return nil, fmt.Errorf("emit: unsupported column type %s", col.Type)
	}

	if col.Type == schema.TypeString {
		s, err := fn(cell[:min(len(cell), int(col.Width))], rc)
		if err != nil {
			return nil, err
		}
		return []string{padIPAC(s, col, rc)}, nil
	}

	n := elementCount(col)
	width := col.Type.ScalarWidth()
	elems := make([]string, 0, n)
	for i := 0; i < n; i++ {
		off := i * width
		if off+width > len(cell) {
			return nil, fmt.Errorf("emit: cell too short for column %q", col.Name)
		}
		s, err := fn(cell[off:off+width], rc)
		if err != nil {
			return nil, err
		}
		elems = append(elems, s)
	}

	if n == 1 {
		return []string{padIPAC(elems[0], col, rc)}, nil
	}

	if rc.Explode {
		for i, s := range elems {
			elems[i] = padIPAC(s, col, rc)
		}
		return elems, nil
	}

	inner := strings.Join(elems, string(rc.Delimiter))
	return []string{padIPAC(wrapArray(inner, rc), col, rc)}, nil
}

// padIPAC right-pads s to col.DispWidth when the target format is IPAC,
// per fits2db.c's dl_printCol, which right-pads every cell, not just
// strings.
func padIPAC(s string, col schema.Column, rc RunConfig) string {
	if rc.Format != schema.FormatIPAC {
		return s
	}
	return textutil.PadRight(s, col.DispWidth)
}

func wrapArray(inner string, rc RunConfig) string {
	if rc.Format == schema.FormatSQL {
		return "{" + inner + "}"
	}
	wrapped := "(" + inner + ")"
	switch rc.Quote {
	case schema.QuotePlain:
		return textutil.Quote(wrapped, rc.QuoteChar)
	case schema.QuoteEscape:
		return textutil.QuoteEscape(wrapped, rc.QuoteChar)
	default:
		return wrapped
	}
}

// BinaryEncode produces PG-binary fields for col's cell bytes: one field
// (one length prefix, a contiguous payload) when rc.Explode is false or
// the column has a single element, otherwise one length-prefixed field per
// element. NULL (-1 length) is never emitted by this system.
func BinaryEncode(cell []byte, col schema.Column, rc RunConfig) ([][]byte, error) {
	if col.Type == schema.TypeString {
		s := string(cell[:min(len(cell), int(col.Width))])
		if rc.Strip {
			s = textutil.Strip(s)
		}
		return [][]byte{field([]byte(s))}, nil
	}

	fn, ok := binTable[col.Type]
	if !ok {
		return nil, fmt.Errorf("emit: unsupported column type %s", col.Type)
	}

	n := elementCount(col)
	width := col.Type.ScalarWidth()
	out := binWidth(col.Type)
	payloads := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		off := i * width
		if off+width > len(cell) {
			return nil, fmt.Errorf("emit: cell too short for column %q", col.Name)
		}
		payloads = append(payloads, fn(cell[off:off+width], rc))
	}

	if rc.Explode {
		fields := make([][]byte, len(payloads))
		for i, p := range payloads {
			fields[i] = field(p)
		}
		return fields, nil
	}

	buf := make([]byte, 0, n*out)
	for _, p := range payloads {
		buf = append(buf, p...)
	}
	return [][]byte{field(buf)}, nil
}

// field prepends a 4-byte big-endian length to payload, the framing every
// PG-binary cell uses.
func field(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

// --- byte-order helpers -----------------------------------------------

// hostOrder returns the byte.Order that, once elem has been conditionally
// swapped by hostBytes, yields the value FITS stored — i.e. the Go
// equivalent of "swap to host order, then read as a native int".
func hostOrder() binary.ByteOrder {
	if byteorder.HostIsSwapped() {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func hostBytes(elem []byte, width int) []byte {
	buf := append([]byte(nil), elem...)
	if byteorder.HostIsSwapped() {
		byteorder.SwapN(buf, width)
	}
	return buf
}

// --- text scalar encoders -----------------------------------------------

func textString(elem []byte, rc RunConfig) (string, error) {
	s := string(elem)
	if rc.Strip {
		s = textutil.Strip(s)
	}
	switch rc.Quote {
	case schema.QuotePlain:
		return textutil.Quote(s, rc.QuoteChar), nil
	case schema.QuoteEscape:
		return textutil.QuoteEscape(s, rc.QuoteChar), nil
	default:
		return s, nil
	}
}

func textLogical(elem []byte, rc RunConfig) (string, error) {
	if elem[0] == 'T' || elem[0] == 't' {
		return "1", nil
	}
	return "0", nil
}

func textByte(elem []byte, rc RunConfig) (string, error) {
	return strconv.FormatUint(uint64(elem[0]), 10), nil
}

func textSByte(elem []byte, rc RunConfig) (string, error) {
	return strconv.FormatInt(int64(int8(elem[0])), 10), nil
}

func textShort(elem []byte, rc RunConfig) (string, error) {
	v := int16(hostOrder().Uint16(hostBytes(elem, 2)))
	return strconv.FormatInt(int64(v), 10), nil
}

func textUShort(elem []byte, rc RunConfig) (string, error) {
	v := hostOrder().Uint16(hostBytes(elem, 2))
	return strconv.FormatUint(uint64(v), 10), nil
}

func textInt(elem []byte, rc RunConfig) (string, error) {
	v := int32(hostOrder().Uint32(hostBytes(elem, 4)))
	return strconv.FormatInt(int64(v), 10), nil
}

func textUInt(elem []byte, rc RunConfig) (string, error) {
	v := hostOrder().Uint32(hostBytes(elem, 4))
	return strconv.FormatUint(uint64(v), 10), nil
}

func textLongLong(elem []byte, rc RunConfig) (string, error) {
	v := int64(hostOrder().Uint64(hostBytes(elem, 8)))
	return strconv.FormatInt(v, 10), nil
}

func textFloat(elem []byte, rc RunConfig) (string, error) {
	bits := hostOrder().Uint32(hostBytes(elem, 4))
	v := float64(math.Float32frombits(bits))
	return formatFloat(v, 6, rc), nil
}

func textDouble(elem []byte, rc RunConfig) (string, error) {
	bits := hostOrder().Uint64(hostBytes(elem, 8))
	v := math.Float64frombits(bits)
	return formatFloat(v, 16, rc), nil
}

// formatFloat applies spec.md §4.4's dialect-specific NaN/Inf spellings
// when the target format is SQL, and falls back to Go's own %f rendering
// (which already spells NaN/Inf sensibly) otherwise.
func formatFloat(v float64, precision int, rc RunConfig) string {
	if rc.Format == schema.FormatSQL {
		switch {
		case math.IsNaN(v):
			return sqlSpecial("NaN", rc.Dialect)
		case math.IsInf(v, 1):
			return sqlSpecial("Infinity", rc.Dialect)
		case math.IsInf(v, -1):
			return sqlSpecial("-Infinity", rc.Dialect)
		}
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func sqlSpecial(literal string, dialect schema.Dialect) string {
	switch dialect {
	case schema.DialectMySQL, schema.DialectSQLite:
		return "'" + literal + "'"
	default:
		return literal
	}
}

// --- binary scalar encoders -----------------------------------------------

func binPassthrough(elem []byte, rc RunConfig) []byte {
	out := make([]byte, len(elem))
	copy(out, elem)
	return out
}

func binLogical(elem []byte, rc RunConfig) []byte {
	v := int16(0)
	if elem[0] == 'T' || elem[0] == 't' {
		v = 1
	}
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(v))
	return out
}

func binByte(elem []byte, rc RunConfig) []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(elem[0]))
	return out
}

func binSByte(elem []byte, rc RunConfig) []byte {
	v := int16(int8(elem[0]))
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(v))
	return out
}
