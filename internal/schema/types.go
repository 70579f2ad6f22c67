// Package schema models the FITS column schema and derives the output
// schema (array-exploded and synthetic columns included) that drives every
// downstream emitter and stream writer.
package schema

import "fmt"

// TypeCode identifies a FITS BINTABLE scalar cell type.
type TypeCode int

const (
	TypeUnknown TypeCode = iota
	TypeString
	TypeLogical
	TypeByte
	TypeSByte
	TypeShort
	TypeUShort
	TypeInt
	TypeUInt
	TypeInt32
	TypeLongLong
	TypeFloat
	TypeDouble
	TypeBit       // unsupported
	TypeComplex   // unsupported
	TypeDblComplex // unsupported
)

// String names a TypeCode the way diagnostics should print it.
func (t TypeCode) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeLogical:
		return "LOGICAL"
	case TypeByte:
		return "BYTE"
	case TypeSByte:
		return "SBYTE"
	case TypeShort:
		return "SHORT"
	case TypeUShort:
		return "USHORT"
	case TypeInt:
		return "INT"
	case TypeUInt:
		return "UINT"
	case TypeInt32:
		return "INT32"
	case TypeLongLong:
		return "LONGLONG"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeBit:
		return "BIT"
	case TypeComplex:
		return "COMPLEX"
	case TypeDblComplex:
		return "DBLCOMPLEX"
	default:
		return "UNKNOWN"
	}
}

// Unsupported reports whether cells of this type must be rejected per the
// type taxonomy: bit arrays, complex types, and variable-length arrays (the
// latter never reach TypeCode — the reader rejects them before a Column is
// built).
func (t TypeCode) Unsupported() bool {
	switch t {
	case TypeBit, TypeComplex, TypeDblComplex, TypeUnknown:
		return true
	default:
		return false
	}
}

// ScalarWidth returns the on-disk byte width of one scalar of this type, or
// 0 for STRING (whose width is the column's Width field, not a constant).
func (t TypeCode) ScalarWidth() int {
	switch t {
	case TypeLogical, TypeByte, TypeSByte:
		return 1
	case TypeShort, TypeUShort:
		return 2
	case TypeInt, TypeUInt, TypeInt32, TypeFloat:
		return 4
	case TypeLongLong, TypeDouble:
		return 8
	default:
		return 0
	}
}

// Column describes one column of either the input or the output schema.
type Column struct {
	Ordinal    int
	DispWidth  int
	Type       TypeCode
	Repeat     int64
	Width      int64
	NDim       int
	NRows      int
	NCols      int
	Name       string
	TargetType string
	Units      string
}

func (c Column) String() string {
	return fmt.Sprintf("Column{%d %q %s repeat=%d width=%d}", c.Ordinal, c.Name, c.Type, c.Repeat, c.Width)
}

// InputSchema is the ordered, 1-based column sequence read from a FITS HDU.
type InputSchema []Column

// QuoteMode selects how STRING cells are delimited in text output.
type QuoteMode int

const (
	QuoteNone QuoteMode = iota
	QuotePlain
	QuoteEscape
)

// Format selects the broad shape of the target output, which in turn
// selects the type-spelling table used by BuildOutputSchema.
type Format int

const (
	FormatDelimited Format = iota
	FormatIPAC
	FormatSQL
)

// Dialect selects SQL-specific rendering when Format is FormatSQL.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// Options carries the run-wide choices that affect schema derivation:
// whether arrays explode into scalar columns, whether STRING cells are
// quoted (and therefore need two extra display columns), the target format
// and dialect for type spelling, and the caller-supplied synthetic column
// names.
type Options struct {
	Explode    bool
	Quote      QuoteMode
	Format     Format
	Dialect    Dialect
	AddColumn  string
	SidColumn  string
	RidColumn  string
}
