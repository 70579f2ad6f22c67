package schema

import "fmt"

// OutputSchema is the flattened, ordered column list that every emitter,
// stream writer, and SQL preamble renders from: array-exploded (when
// enabled) and with the three synthetic columns appended in the fixed
// order add, sid, rid.
type OutputSchema struct {
	Columns []Column

	// BinaryDisabled is set by BuildOutputSchema when a non-string array
	// column was found with array-explode off — PG-binary cannot carry a
	// packed array of non-string scalars, so the caller must fall back to
	// Postgres text mode.
	BinaryDisabled bool
	DisableReason  string
}

// BuildOutputSchema derives an OutputSchema from in per the rules in
// spec.md §3: array-explode either leaves non-string array columns packed
// (one output column, "[<repeat>]" SQL suffix) or expands them into
// `repeat` scalar columns; three synthetic columns are appended last.
func BuildOutputSchema(in InputSchema, opts Options) (OutputSchema, error) {
	var out OutputSchema

	for _, col := range in {
		if col.Type.Unsupported() {
			continue
		}

		if opts.Explode && col.Type != TypeString && col.Repeat > 1 {
			out.Columns = append(out.Columns, explodeColumn(col, opts)...)
			continue
		}

		c := col
		c.TargetType = targetType(col, opts, false)
		out.Columns = append(out.Columns, c)

		if !opts.Explode && col.Type != TypeString && col.Repeat > 1 {
			out.BinaryDisabled = true
			out.DisableReason = fmt.Sprintf("column %q is a packed array of non-string type %s", col.Name, col.Type)
		}
	}

	out.Columns = append(out.Columns, syntheticColumns(opts, len(out.Columns))...)

	return out, nil
}

// explodeColumn expands a repeat>1 non-string column into scalar columns
// named "<name>_<i>" (1-D) or "<name>_<i>_<j>" (2-D, from TDIM).
func explodeColumn(col Column, opts Options) []Column {
	scalar := col
	scalar.Repeat = 1
	scalar.NDim = 1
	scalar.NRows = 1
	scalar.NCols = 1
	scalar.TargetType = targetType(col, opts, true)

	if col.NDim == 2 {
		cols := make([]Column, 0, col.NRows*col.NCols)
		ord := col.Ordinal
		for i := 1; i <= col.NRows; i++ {
			for j := 1; j <= col.NCols; j++ {
				c := scalar
				c.Ordinal = ord
				c.Name = fmt.Sprintf("%s_%d_%d", col.Name, i, j)
				cols = append(cols, c)
				ord++
			}
		}
		return cols
	}

	cols := make([]Column, 0, col.Repeat)
	for i := 1; i <= int(col.Repeat); i++ {
		c := scalar
		c.Ordinal = col.Ordinal
		c.Name = fmt.Sprintf("%s_%d", col.Name, i)
		cols = append(cols, c)
	}
	return cols
}

// targetType picks the type-mapping table by opts.Format/Dialect. exploded
// is true for a column already reduced to a single scalar by explode, in
// which case no array suffix is ever added.
func targetType(col Column, opts Options, exploded bool) string {
	switch opts.Format {
	case FormatIPAC:
		return IPACType(col.Type)
	case FormatSQL:
		return SQLType(col.Type, col.Repeat, exploded)
	default:
		return col.Type.String()
	}
}

// syntheticColumns builds the trailing add/sid/rid columns, in that fixed
// order, for whichever of the three names the caller supplied. startOrdinal
// continues numbering after the last real output column.
func syntheticColumns(opts Options, startOrdinal int) []Column {
	var cols []Column
	next := startOrdinal + 1

	if opts.AddColumn != "" {
		cols = append(cols, Column{
			Ordinal:    next,
			Name:       opts.AddColumn,
			Type:       TypeInt,
			Repeat:     1,
			NDim:       1,
			NRows:      1,
			NCols:      1,
			TargetType: targetType(Column{Type: TypeInt, Repeat: 1}, opts, true),
		})
		next++
	}
	if opts.SidColumn != "" {
		cols = append(cols, Column{
			Ordinal:    next,
			Name:       opts.SidColumn,
			Type:       TypeLongLong,
			Repeat:     1,
			NDim:       1,
			NRows:      1,
			NCols:      1,
			TargetType: targetType(Column{Type: TypeLongLong, Repeat: 1}, opts, true),
		})
		next++
	}
	if opts.RidColumn != "" {
		cols = append(cols, Column{
			Ordinal:    next,
			Name:       opts.RidColumn,
			Type:       TypeDouble,
			Repeat:     1,
			NDim:       1,
			NRows:      1,
			NCols:      1,
			TargetType: targetType(Column{Type: TypeDouble, Repeat: 1}, opts, true),
		})
	}
	return cols
}
