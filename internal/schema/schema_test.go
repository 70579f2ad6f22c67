package schema

import (
	"testing"

	"github.com/noaodatalab/fits2db/internal/fitsio"
)

func intTable() *fitsio.MemTable {
	return &fitsio.MemTable{
		Rows:     2,
		RowWidth: 4,
		Cols: []fitsio.ColumnInfo{
			{Ordinal: 1, Name: "flux", Type: int(TypeInt), Repeat: 1, Width: 4, DispWidth: 11},
		},
		Data: make([]byte, 8),
	}
}

func TestReadInputSchemaBasic(t *testing.T) {
	in, err := ReadInputSchema(intTable(), 1, 1, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(in) != 1 {
		t.Fatalf("len(in) = %d, want 1", len(in))
	}
	c := in[0]
	if c.Name != "flux" || c.Type != TypeInt || c.NDim != 1 || c.NRows != 1 || c.NCols != 1 {
		t.Errorf("unexpected column: %+v", c)
	}
}

func TestReadInputSchemaStringQuoteWidensDisplay(t *testing.T) {
	tbl := &fitsio.MemTable{
		Rows:     1,
		RowWidth: 4,
		Cols: []fitsio.ColumnInfo{
			{Ordinal: 1, Name: "id", Type: int(TypeString), Repeat: 4, Width: 1, DispWidth: 4},
		},
		Data: make([]byte, 4),
	}
	in, err := ReadInputSchema(tbl, 1, 1, Options{Quote: QuotePlain})
	if err != nil {
		t.Fatal(err)
	}
	if in[0].DispWidth != 6 {
		t.Errorf("DispWidth = %d, want 6 (4+2 for quotes)", in[0].DispWidth)
	}
}

func TestReadInputSchemaExplodeUsesTDIM(t *testing.T) {
	tbl := &fitsio.MemTable{
		Rows:     1,
		RowWidth: 16,
		Cols: []fitsio.ColumnInfo{
			{Ordinal: 1, Name: "grid", Type: int(TypeShort), Repeat: 4, Width: 2, DispWidth: 6},
		},
		TDims: map[int][2]int{1: {2, 2}},
		Data:  make([]byte, 16),
	}
	in, err := ReadInputSchema(tbl, 1, 1, Options{Explode: true})
	if err != nil {
		t.Fatal(err)
	}
	if in[0].NDim != 2 || in[0].NRows != 2 || in[0].NCols != 2 {
		t.Errorf("unexpected shape: %+v", in[0])
	}
}

func TestValidateAcceptsIdenticalRejectsDivergent(t *testing.T) {
	tbl := intTable()
	in, err := ReadInputSchema(tbl, 1, 1, Options{})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := Validate(tbl, in, Options{})
	if err != nil || !ok {
		t.Fatalf("Validate(identical) = %v, %v; want true, nil", ok, err)
	}

	other := intTable()
	other.Cols[0].Type = int(TypeFloat)
	ok, err = Validate(other, in, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Errorf("Validate should reject divergent type")
	}
}

func TestBuildOutputSchemaPackedArrayDisablesBinary(t *testing.T) {
	in := InputSchema{
		{Ordinal: 1, Name: "mag", Type: TypeFloat, Repeat: 3, NDim: 1, NRows: 1, NCols: 3},
	}
	out, err := BuildOutputSchema(in, Options{Format: FormatSQL, Dialect: DialectPostgres})
	if err != nil {
		t.Fatal(err)
	}
	if !out.BinaryDisabled {
		t.Errorf("expected BinaryDisabled for packed non-string array column")
	}
	if len(out.Columns) != 1 || out.Columns[0].TargetType != "real[3]" {
		t.Errorf("unexpected columns: %+v", out.Columns)
	}
}

func TestBuildOutputSchemaExplode1D(t *testing.T) {
	in := InputSchema{
		{Ordinal: 1, Name: "mag", Type: TypeFloat, Repeat: 3, NDim: 1, NRows: 1, NCols: 3},
	}
	out, err := BuildOutputSchema(in, Options{Explode: true, Format: FormatSQL})
	if err != nil {
		t.Fatal(err)
	}
	if out.BinaryDisabled {
		t.Errorf("exploded columns should not disable binary mode")
	}
	if len(out.Columns) != 3 {
		t.Fatalf("len(Columns) = %d, want 3", len(out.Columns))
	}
	names := []string{out.Columns[0].Name, out.Columns[1].Name, out.Columns[2].Name}
	want := []string{"mag_1", "mag_2", "mag_3"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestBuildOutputSchemaExplode2D(t *testing.T) {
	in := InputSchema{
		{Ordinal: 1, Name: "grid", Type: TypeShort, Repeat: 4, NDim: 2, NRows: 2, NCols: 2},
	}
	out, err := BuildOutputSchema(in, Options{Explode: true, Format: FormatSQL})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Columns) != 4 {
		t.Fatalf("len(Columns) = %d, want 4", len(out.Columns))
	}
	if out.Columns[0].Name != "grid_1_1" || out.Columns[3].Name != "grid_2_2" {
		t.Errorf("unexpected names: %v", []string{out.Columns[0].Name, out.Columns[3].Name})
	}
}

func TestBuildOutputSchemaSyntheticColumnsOrder(t *testing.T) {
	in := InputSchema{{Ordinal: 1, Name: "flux", Type: TypeInt, Repeat: 1, NDim: 1, NRows: 1, NCols: 1}}
	out, err := BuildOutputSchema(in, Options{AddColumn: "add", SidColumn: "sid", RidColumn: "rid", Format: FormatSQL})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Columns) != 4 {
		t.Fatalf("len(Columns) = %d, want 4", len(out.Columns))
	}
	names := []string{out.Columns[1].Name, out.Columns[2].Name, out.Columns[3].Name}
	want := []string{"add", "sid", "rid"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("synthetic column order[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestBuildOutputSchemaUnsupportedTypeSkipped(t *testing.T) {
	in := InputSchema{
		{Ordinal: 1, Name: "flags", Type: TypeBit, Repeat: 1, NDim: 1, NRows: 1, NCols: 1},
		{Ordinal: 2, Name: "flux", Type: TypeInt, Repeat: 1, NDim: 1, NRows: 1, NCols: 1},
	}
	out, err := BuildOutputSchema(in, Options{Format: FormatSQL})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Columns) != 1 || out.Columns[0].Name != "flux" {
		t.Errorf("unexpected columns: %+v", out.Columns)
	}
}
