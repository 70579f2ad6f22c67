package emit

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noaodatalab/fits2db/internal/schema"
)

// pgOID maps the subset of TypeCode this module emits in binary mode to
// the pgtype OID whose codec can decode it back, for the debug self-check
// below. LOGICAL/BYTE/SBYTE are widened to smallint by BinaryEncode, so
// they decode with the same OID as SHORT.
var pgOID = map[schema.TypeCode]uint32{
	schema.TypeLogical:  pgtype.Int2OID,
	schema.TypeByte:      pgtype.Int2OID,
	schema.TypeSByte:     pgtype.Int2OID,
	schema.TypeShort:     pgtype.Int2OID,
	schema.TypeUShort:    pgtype.Int2OID,
	schema.TypeInt:       pgtype.Int4OID,
	schema.TypeUInt:      pgtype.Int4OID,
	schema.TypeInt32:     pgtype.Int4OID,
	schema.TypeLongLong:  pgtype.Int8OID,
	schema.TypeFloat:     pgtype.Float4OID,
	schema.TypeDouble:    pgtype.Float8OID,
	schema.TypeString:    pgtype.TextOID,
}

// VerifyBinaryField decodes the payload of one emitted PG-binary field
// (length prefix plus payload, as produced by BinaryEncode) with pgx's own
// wire codec for the column's type and returns an error if that decode
// fails. The decoded value is not compared against the source cell, and
// the length prefix is not checked against the payload. This never opens a
// connection: it is a standalone sanity check run only when debug mode is
// on, to catch an encoding bug before the bytes ever reach psql.
func VerifyBinaryField(fieldBytes []byte, col schema.Column) error {
	if len(fieldBytes) < 4 {
		return fmt.Errorf("emit: debug: field too short to carry a length prefix")
	}
	payload := fieldBytes[4:]

	oid, ok := pgOID[col.Type]
	if !ok {
		return fmt.Errorf("emit: debug: no pgtype codec registered for %s", col.Type)
	}

	m := pgtype.NewMap()
	var dst any
	if err := m.Scan(oid, pgtype.BinaryFormatCode, payload, &dst); err != nil {
		return fmt.Errorf("emit: debug: pgtype decode of column %q failed: %w", col.Name, err)
	}
	return nil
}

// LogMismatch writes a debug diagnostic the way fits2db.c's verbose mode
// would: to the diagnostic stream, naming the column and the failure.
func LogMismatch(col schema.Column, err error) {
	log.Printf("debug: column %q binary round-trip check failed: %v", col.Name, err)
}
