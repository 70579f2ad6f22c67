// Package stream renders the preamble and trailer bytes that frame one
// bundle's worth of rows, and the fixed 11-byte PG-binary signature, per
// target format and dialect.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/lib/pq"

	"github.com/noaodatalab/fits2db/internal/runconfig"
	"github.com/noaodatalab/fits2db/internal/schema"
	"github.com/noaodatalab/fits2db/internal/textutil"
)

// RunConfig is the subset of runconfig.RunConfig this package reads.
type RunConfig = runconfig.RunConfig

// pgBinarySignature is PostgreSQL's fixed 11-byte COPY BINARY header.
var pgBinarySignature = []byte("PGCOPY\n\377\r\n\000")

// WritePreamble emits, once per bundle, whatever combination of
// CREATE DATABASE/DROP TABLE/CREATE TABLE/TRUNCATE and format-specific
// opening bytes spec.md §4.6 calls for. table is the resolved table name
// for this file (FileLoop derives it; it is not necessarily rc.Table).
func WritePreamble(w io.Writer, out schema.OutputSchema, rc RunConfig, table string) error {
	if rc.Dialect == schema.DialectMySQL && rc.DBName != "" {
		if _, err := fmt.Fprintf(w, "CREATE DATABASE IF NOT EXISTS %s; USE %s;\n",
			pq.QuoteIdentifier(rc.DBName), pq.QuoteIdentifier(rc.DBName)); err != nil {
			return err
		}
	}

	if rc.Drop {
		if _, err := fmt.Fprintf(w, "DROP TABLE IF EXISTS %s CASCADE;\n", pq.QuoteIdentifier(table)); err != nil {
			return err
		}
	}
	if rc.Create || rc.Drop {
		if err := writeCreateTable(w, out, rc, table); err != nil {
			return err
		}
	}
	if rc.Truncate {
		if _, err := fmt.Fprintf(w, "TRUNCATE TABLE %s;\n", pq.QuoteIdentifier(table)); err != nil {
			return err
		}
	}

	switch rc.Format {
	case schema.FormatSQL:
		return writeSQLOpen(w, out, rc, table)
	case schema.FormatIPAC:
		return writeIPACHeader(w, out)
	default:
		return writeDelimitedHeader(w, out, rc)
	}
}

func writeCreateTable(w io.Writer, out schema.OutputSchema, rc RunConfig, table string) error {
	defs := make([]string, len(out.Columns))
	for i, c := range out.Columns {
		defs[i] = fmt.Sprintf("%s %s", pq.QuoteIdentifier(c.Name), c.TargetType)
	}
	_, err := fmt.Fprintf(w, "CREATE TABLE IF NOT EXISTS %s ( %s );\n", pq.QuoteIdentifier(table), strings.Join(defs, ", "))
	return err
}

func writeSQLOpen(w io.Writer, out schema.OutputSchema, rc RunConfig, table string) error {
	switch rc.Dialect {
	case schema.DialectPostgres:
		if rc.Binary && !out.BinaryDisabled {
			if _, err := fmt.Fprintf(w, "COPY %s FROM stdin WITH BINARY;\n", pq.QuoteIdentifier(table)); err != nil {
				return err
			}
			return writeBinarySignature(w)
		}
		_, err := fmt.Fprintf(w, "COPY %s (%s) from stdin;\n", pq.QuoteIdentifier(table), columnList(out))
		return err
	default: // mysql, sqlite
		if rc.Single {
			return nil
		}
		_, err := fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES\n", pq.QuoteIdentifier(table), columnList(out))
		return err
	}
}

// writeBinarySignature writes the fixed PGCOPY signature plus the 4-byte
// flags field and 4-byte header-extension length, both always zero since
// this module never emits OIDs or a header extension.
func writeBinarySignature(w io.Writer) error {
	if _, err := w.Write(pgBinarySignature); err != nil {
		return err
	}
	var tail [8]byte // flags=0, extlen=0
	_, err := w.Write(tail[:])
	return err
}

func writeDelimitedHeader(w io.Writer, out schema.OutputSchema, rc RunConfig) error {
	if !rc.Header {
		return nil
	}
	names := make([]string, len(out.Columns))
	for i, c := range out.Columns {
		names[i] = c.Name
	}
	_, err := fmt.Fprintf(w, "%s\n", strings.Join(names, ","))
	return err
}

func writeIPACHeader(w io.Writer, out schema.OutputSchema) error {
	names := make([]string, len(out.Columns))
	types := make([]string, len(out.Columns))
	for i, c := range out.Columns {
		names[i] = textutil.PadRight(c.Name, c.DispWidth)
		types[i] = textutil.PadRight(c.TargetType, c.DispWidth)
	}
	if _, err := fmt.Fprintf(w, "|%s|\n", strings.Join(names, "|")); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "|%s|\n", strings.Join(types, "|"))
	return err
}

func columnList(out schema.OutputSchema) string {
	names := make([]string, len(out.Columns))
	for i, c := range out.Columns {
		names[i] = pq.QuoteIdentifier(c.Name)
	}
	return strings.Join(names, ", ")
}

// WriteTrailer emits, once per bundle (or once per run when concatenating),
// the end-of-data marker spec.md §4.6 calls for; most formats have none.
func WriteTrailer(w io.Writer, rc RunConfig, binaryDisabled bool) error {
	if rc.Format != schema.FormatSQL {
		return nil
	}
	switch rc.Dialect {
	case schema.DialectPostgres:
		if rc.Binary && !binaryDisabled {
			var buf [2]byte
			binary.BigEndian.PutUint16(buf[:], 0xFFFF)
			_, err := w.Write(buf[:])
			return err
		}
		_, err := io.WriteString(w, "\\.\n")
		return err
	default: // mysql, sqlite
		_, err := io.WriteString(w, ";\n")
		return err
	}
}
