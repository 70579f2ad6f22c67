package stream

import (
	"bytes"
	"testing"

	"github.com/noaodatalab/fits2db/internal/runconfig"
	"github.com/noaodatalab/fits2db/internal/schema"
)

func outSchema() schema.OutputSchema {
	return schema.OutputSchema{Columns: []schema.Column{
		{Ordinal: 1, Name: "flux", Type: schema.TypeInt, TargetType: "integer"},
	}}
}

func TestWritePreambleAndTrailerPostgresBinary(t *testing.T) {
	var buf bytes.Buffer
	rc := runconfig.RunConfig{Format: schema.FormatSQL, Dialect: schema.DialectPostgres, Binary: true}

	if err := WritePreamble(&buf, outSchema(), rc, "t"); err != nil {
		t.Fatal(err)
	}
	if err := WriteTrailer(&buf, rc, false); err != nil {
		t.Fatal(err)
	}

	got := buf.Bytes()
	wantPrefix := []byte("COPY \"t\" FROM stdin WITH BINARY;\n")
	if !bytes.HasPrefix(got, wantPrefix) {
		t.Fatalf("preamble = %q, want prefix %q", got, wantPrefix)
	}
	rest := got[len(wantPrefix):]
	if len(rest) < 11+8 {
		t.Fatalf("signature+flags+extlen too short: %d bytes", len(rest))
	}
	if string(rest[:11]) != "PGCOPY\n\377\r\n\000" {
		t.Errorf("signature = %q", rest[:11])
	}
	trailer := got[len(got)-2:]
	if trailer[0] != 0xFF || trailer[1] != 0xFF {
		t.Errorf("trailer = % x, want ff ff", trailer)
	}
}

func TestWritePreamblePostgresText(t *testing.T) {
	var buf bytes.Buffer
	rc := runconfig.RunConfig{Format: schema.FormatSQL, Dialect: schema.DialectPostgres}
	if err := WritePreamble(&buf, outSchema(), rc, "t"); err != nil {
		t.Fatal(err)
	}
	want := "COPY \"t\" (\"flux\") from stdin;\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteTrailerPostgresText(t *testing.T) {
	var buf bytes.Buffer
	rc := runconfig.RunConfig{Format: schema.FormatSQL, Dialect: schema.DialectPostgres}
	if err := WriteTrailer(&buf, rc, false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\\.\n" {
		t.Errorf("got %q, want \\.\\n", buf.String())
	}
}

func TestWritePreambleDelimitedHeader(t *testing.T) {
	var buf bytes.Buffer
	rc := runconfig.RunConfig{Format: schema.FormatDelimited, Header: true}
	if err := WritePreamble(&buf, outSchema(), rc, "t"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "flux\n" {
		t.Errorf("got %q, want flux\\n", buf.String())
	}
}

func TestWritePreambleNoHeaderSuppressed(t *testing.T) {
	var buf bytes.Buffer
	rc := runconfig.RunConfig{Format: schema.FormatDelimited, Header: false}
	if err := WritePreamble(&buf, outSchema(), rc, "t"); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no header bytes, got %q", buf.String())
	}
}

func TestBundleStateTransitions(t *testing.T) {
	bs := BundleState{TotalFiles: 3, BundleSize: 2}
	if !bs.IsFirstOfBundle() {
		t.Errorf("file 0 should be first of bundle")
	}
	if bs.IsLastOfBundle() {
		t.Errorf("file 0 of a 2-file bundle should not be last")
	}

	bs = bs.Next()
	if bs.BundleIndex != 1 || bs.FileIndex != 1 {
		t.Fatalf("unexpected state after Next: %+v", bs)
	}
	if !bs.IsLastOfBundle() {
		t.Errorf("file 1 of a 2-file bundle should be last")
	}

	bs = bs.Next()
	if bs.BundleIndex != 0 || bs.FileIndex != 2 {
		t.Fatalf("unexpected state after second Next: %+v", bs)
	}
	if !bs.IsLastOfRun() {
		t.Errorf("file 2 of 3 should be last of run")
	}
}

func TestBundleStateConcatTreatsWholeRunAsOneBundle(t *testing.T) {
	bs := BundleState{TotalFiles: 5, BundleSize: 1, Concat: true}
	for i := 0; i < 4; i++ {
		if bs.IsLastOfBundle() {
			t.Fatalf("file %d should not be last of bundle when concatenating", i)
		}
		bs = bs.Next()
	}
	if !bs.IsLastOfBundle() {
		t.Errorf("last file of run should be last of bundle when concatenating")
	}
}
