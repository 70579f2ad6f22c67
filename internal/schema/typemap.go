package schema

import "fmt"

// sqlScalarType returns the SQL column type for one scalar of t, identical
// across all three dialects per the type-mapping table: only the array
// suffix and string width vary by call site, not the scalar spelling.
func sqlScalarType(t TypeCode, repeat int64) string {
	switch t {
	case TypeString:
		if repeat > 1 {
			return "text"
		}
		return "char"
	case TypeLogical, TypeByte, TypeSByte, TypeShort, TypeUShort:
		return "smallint"
	case TypeInt, TypeUInt, TypeInt32:
		return "integer"
	case TypeLongLong:
		return "bigint"
	case TypeFloat:
		return "real"
	case TypeDouble:
		return "double precision"
	default:
		return "unsupported"
	}
}

// ipacScalarType returns the IPAC column type for one scalar of t.
func ipacScalarType(t TypeCode) string {
	switch t {
	case TypeString:
		return "char"
	case TypeLogical, TypeByte, TypeSByte, TypeShort, TypeUShort, TypeInt, TypeUInt, TypeInt32, TypeLongLong:
		return "int"
	case TypeFloat:
		return "real"
	case TypeDouble:
		return "double"
	default:
		return "unsupported"
	}
}

// SQLType returns the target SQL type spelling for an output column,
// including the "[<repeat>]" array suffix for non-string packed array
// columns (array-explode off, repeat > 1).
func SQLType(t TypeCode, repeat int64, exploded bool) string {
	base := sqlScalarType(t, repeat)
	if !exploded && t != TypeString && repeat > 1 {
		return fmt.Sprintf("%s[%d]", base, repeat)
	}
	return base
}

// IPACType returns the target IPAC type spelling for an output column.
// IPAC never renders an array suffix; packed array columns are printed as
// one fixed-width field per spec.md's "right-pad every cell" rule.
func IPACType(t TypeCode) string {
	return ipacScalarType(t)
}
