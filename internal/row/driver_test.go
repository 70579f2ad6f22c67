package row

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/noaodatalab/fits2db/internal/fitsio"
	"github.com/noaodatalab/fits2db/internal/runconfig"
	"github.com/noaodatalab/fits2db/internal/schema"
)

// intTable builds a one-column INT table with the given values, matching
// spec.md §8 scenario 1/2.
func intTable(values []int32) (*fitsio.MemTable, schema.InputSchema) {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint32(data[i*4:i*4+4], uint32(v))
	}
	tbl := &fitsio.MemTable{
		Rows:     int64(len(values)),
		RowWidth: 4,
		Optimal:  int64(len(values)),
		Cols: []fitsio.ColumnInfo{
			{Ordinal: 1, Name: "flux", Type: int(schema.TypeInt), Repeat: 1, Width: 4},
		},
		Data: data,
	}
	in := schema.InputSchema{
		{Ordinal: 1, Name: "flux", Type: schema.TypeInt, Repeat: 1, Width: 4, NDim: 1, NRows: 1, NCols: 1},
	}
	return tbl, in
}

func TestRunCSVNoHeader(t *testing.T) {
	tbl, in := intTable([]int32{42, -7})
	out := schema.OutputSchema{Columns: []schema.Column{
		{Ordinal: 1, Name: "flux", Type: schema.TypeInt, TargetType: "integer"},
	}}
	rc := &runconfig.RunConfig{Format: schema.FormatDelimited, Delimiter: ','}
	st := runconfig.NewRunState(1)

	var buf bytes.Buffer
	if err := NewDriver().Run(context.Background(), tbl, &buf, in, out, rc, st, "t", true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "42\n-7\n" {
		t.Errorf("got %q, want \"42\\n-7\\n\"", buf.String())
	}
}

func TestRunPostgresBinaryMatchesScenario2(t *testing.T) {
	tbl, in := intTable([]int32{42, -7})
	out := schema.OutputSchema{Columns: []schema.Column{
		{Ordinal: 1, Name: "flux", Type: schema.TypeInt, TargetType: "integer"},
	}}
	rc := &runconfig.RunConfig{Format: schema.FormatSQL, Dialect: schema.DialectPostgres, Binary: true}
	st := runconfig.NewRunState(1)

	var buf bytes.Buffer
	if err := NewDriver().Run(context.Background(), tbl, &buf, in, out, rc, st, "t", true); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x00, 0x01, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x2A,
		0x00, 0x01, 0x00, 0x00, 0x00, 0x04, 0xFF, 0xFF, 0xFF, 0xF9,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestRunValueListModeCommaSuppressedOnFinalRow(t *testing.T) {
	tbl, in := intTable([]int32{1, 2, 3})
	out := schema.OutputSchema{Columns: []schema.Column{
		{Ordinal: 1, Name: "flux", Type: schema.TypeInt, TargetType: "integer"},
	}}
	rc := &runconfig.RunConfig{Format: schema.FormatSQL, Dialect: schema.DialectMySQL, Delimiter: ','}
	st := runconfig.NewRunState(1)

	var buf bytes.Buffer
	if err := NewDriver().Run(context.Background(), tbl, &buf, in, out, rc, st, "t", true); err != nil {
		t.Fatal(err)
	}
	want := "(1),\n(2),\n(3)\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRunValueListModeKeepsCommaWhenNotLastFileOfBundle(t *testing.T) {
	tbl, in := intTable([]int32{1})
	out := schema.OutputSchema{Columns: []schema.Column{
		{Ordinal: 1, Name: "flux", Type: schema.TypeInt, TargetType: "integer"},
	}}
	rc := &runconfig.RunConfig{Format: schema.FormatSQL, Dialect: schema.DialectMySQL, Delimiter: ','}
	st := runconfig.NewRunState(1)

	var buf bytes.Buffer
	if err := NewDriver().Run(context.Background(), tbl, &buf, in, out, rc, st, "t", false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "(1),\n" {
		t.Errorf("got %q, want \"(1),\\n\"", buf.String())
	}
}

func TestRunSyntheticColumnsAppendedInOrder(t *testing.T) {
	tbl, in := intTable([]int32{1, 2})
	out := schema.OutputSchema{Columns: []schema.Column{
		{Ordinal: 1, Name: "flux", Type: schema.TypeInt, TargetType: "integer"},
		{Ordinal: 2, Name: "add", Type: schema.TypeInt},
		{Ordinal: 3, Name: "sid", Type: schema.TypeLongLong},
	}}
	rc := &runconfig.RunConfig{Format: schema.FormatDelimited, Delimiter: ',', AddColumn: "add", SidColumn: "sid"}
	st := runconfig.NewRunState(1)

	var buf bytes.Buffer
	if err := NewDriver().Run(context.Background(), tbl, &buf, in, out, rc, st, "t", true); err != nil {
		t.Fatal(err)
	}
	want := "1,1,0\n2,1,1\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRunChunking(t *testing.T) {
	tbl, in := intTable([]int32{1, 2, 3, 4, 5})
	tbl.Optimal = 2
	out := schema.OutputSchema{Columns: []schema.Column{
		{Ordinal: 1, Name: "flux", Type: schema.TypeInt, TargetType: "integer"},
	}}
	rc := &runconfig.RunConfig{Format: schema.FormatDelimited, Delimiter: ','}
	st := runconfig.NewRunState(1)

	var buf bytes.Buffer
	if err := NewDriver().Run(context.Background(), tbl, &buf, in, out, rc, st, "t", true); err != nil {
		t.Fatal(err)
	}
	want := "1\n2\n3\n4\n5\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRunSkipsUnsupportedColumnAndContinues(t *testing.T) {
	data := make([]byte, 5)
	data[0] = 0 // unsupported bit column byte
	binary.BigEndian.PutUint32(data[1:5], uint32(42))
	tbl := &fitsio.MemTable{
		Rows:     1,
		RowWidth: 5,
		Optimal:  1,
		Cols: []fitsio.ColumnInfo{
			{Ordinal: 1, Name: "flags", Type: int(schema.TypeBit), Repeat: 1, Width: 1},
			{Ordinal: 2, Name: "flux", Type: int(schema.TypeInt), Repeat: 1, Width: 4},
		},
		Data: data,
	}
	in := schema.InputSchema{
		{Ordinal: 1, Name: "flags", Type: schema.TypeBit, Repeat: 1, Width: 1, NDim: 1, NRows: 1, NCols: 1},
		{Ordinal: 2, Name: "flux", Type: schema.TypeInt, Repeat: 1, Width: 4, NDim: 1, NRows: 1, NCols: 1},
	}
	out := schema.OutputSchema{Columns: []schema.Column{
		{Ordinal: 1, Name: "flux", Type: schema.TypeInt, TargetType: "integer"},
	}}
	rc := &runconfig.RunConfig{Format: schema.FormatDelimited, Delimiter: ','}
	st := runconfig.NewRunState(1)

	var buf bytes.Buffer
	if err := NewDriver().Run(context.Background(), tbl, &buf, in, out, rc, st, "t", true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "42\n" {
		t.Errorf("got %q, want \"42\\n\"", buf.String())
	}
}
