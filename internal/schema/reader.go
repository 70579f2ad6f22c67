package schema

import (
	"fmt"

	"github.com/noaodatalab/fits2db/internal/fitsio"
)

// ReadInputSchema populates an InputSchema from columns firstCol..lastCol
// (inclusive, 1-based) of t. When opts.Explode is set and a non-string
// column carries a TDIMn keyword, the column's logical shape is recorded as
// 2-D (NRows, NCols from TDIM) instead of the default 1-D (NRows=1,
// NCols=Repeat). STRING display width is widened by 2 when quoting is
// enabled, to leave room for the quote characters in fixed-width output.
//
// Any underlying FITS error is accumulated as a wrapped error and returned
// to the caller rather than logged here — this mirrors fits2db.c's
// dl_getColInfo, which defers diagnostic printing to its caller.
func ReadInputSchema(t fitsio.Table, firstCol, lastCol int, opts Options) (InputSchema, error) {
	out := make(InputSchema, 0, lastCol-firstCol+1)
	for col := firstCol; col <= lastCol; col++ {
		ci, err := t.ColumnInfo(col)
		if err != nil {
			return nil, fmt.Errorf("schema: read column %d: %w", col, err)
		}

		typ := TypeCode(ci.Type)
		dispWidth := ci.DispWidth
		ndim, nrows, ncols := 1, 1, int(ci.Repeat)

		if opts.Explode && typ != TypeString {
			r, c, ok, err := t.TDIM(col)
			if err != nil {
				return nil, fmt.Errorf("schema: read TDIM for column %d: %w", col, err)
			}
			if ok {
				ndim, nrows, ncols = 2, r, c
			}
		}

		if typ == TypeString && opts.Quote != QuoteNone {
			dispWidth += 2
		}

		out = append(out, Column{
			Ordinal:   col,
			DispWidth: dispWidth,
			Type:      typ,
			Repeat:    ci.Repeat,
			Width:     ci.Width,
			NDim:      ndim,
			NRows:     nrows,
			NCols:     ncols,
			Name:      ci.Name,
			Units:     ci.Units,
		})
	}
	return out, nil
}

// Validate re-reads t's schema over the same column range as in and reports
// whether it matches on the invariant fields from spec.md §3: name, scalar
// type, ndim, nrows, ncols, and (for non-string columns) repeat.
func Validate(t fitsio.Table, in InputSchema, opts Options) (bool, error) {
	if len(in) == 0 {
		return true, nil
	}
	fresh, err := ReadInputSchema(t, in[0].Ordinal, in[len(in)-1].Ordinal, opts)
	if err != nil {
		return false, err
	}
	if len(fresh) != len(in) {
		return false, nil
	}
	for i := range in {
		a, b := in[i], fresh[i]
		if a.Name != b.Name || a.Type != b.Type || a.NDim != b.NDim || a.NRows != b.NRows || a.NCols != b.NCols {
			return false, nil
		}
		if a.Type != TypeString && a.Repeat != b.Repeat {
			return false, nil
		}
	}
	return true, nil
}
