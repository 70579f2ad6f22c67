// Package convert implements the top-level FileLoop: for each input path
// it derives a table name and output destination, opens the FITS table,
// builds or validates the bundle's schema, and drives internal/row over
// it, framed by internal/stream's preamble and trailer.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/noaodatalab/fits2db/internal/fitsio"
	"github.com/noaodatalab/fits2db/internal/row"
	"github.com/noaodatalab/fits2db/internal/runconfig"
	"github.com/noaodatalab/fits2db/internal/schema"
	"github.com/noaodatalab/fits2db/internal/stream"
)

// RunConfig and RunState are re-exported so callers (cmd/) can name them
// as convert.RunConfig / convert.RunState, matching every other
// component's documented signature, while the actual definitions live in
// internal/runconfig to keep that package free of a dependency on
// internal/row and internal/stream.
type RunConfig = runconfig.RunConfig
type RunState = runconfig.RunState

// ErrNotImplemented is returned immediately when --rowrange is set: the
// flag is accepted and parsed, but the underlying range-restricted read it
// would require is not implemented, matching the original's early-exit
// warning.
var ErrNotImplemented = errors.New("convert: --rowrange is not implemented")

// Loop orchestrates one run over a list of input paths.
type Loop struct {
	Opener fitsio.Opener
	Driver *row.Driver

	// IsFITS/IsGZip classify an input path; overridable for tests so they
	// don't need real files on disk backing a fitsio.MemOpener.
	IsFITS func(path string) bool
	IsGZip func(path string) bool

	// OpenOutput opens the writer for a derived output path ("" means
	// stdout); overridable for tests.
	OpenOutput func(path string) (io.WriteCloser, error)
}

// NewLoop returns a Loop ready to convert files via opener.
func NewLoop(opener fitsio.Opener) *Loop {
	return &Loop{
		Opener:     opener,
		Driver:     row.NewDriver(),
		IsFITS:     fitsio.IsFITS,
		IsGZip:     fitsio.IsGZip,
		OpenOutput: defaultOpenOutput,
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func defaultOpenOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("convert: open output %s: %w", path, err)
	}
	return f, nil
}

// bundleState is the running accumulation of one open bundle: the schema
// it was built from, its output schema, its table name, and the writer
// its preamble was written to.
type bundleState struct {
	in     schema.InputSchema
	out    schema.OutputSchema
	table  string
	writer io.WriteCloser
}

// ConvertAll runs the FileLoop over paths in order.
func (l *Loop) ConvertAll(ctx context.Context, paths []string, rc *RunConfig, st *RunState) error {
	if rc.RowRange != "" {
		return ErrNotImplemented
	}
	if len(paths) == 0 {
		return fmt.Errorf("convert: no input files")
	}
	if rc.ExtNum != 0 && rc.ExtName != "" {
		return fmt.Errorf("convert: --extnum and --extname are mutually exclusive")
	}

	bundleSize := rc.Bundle
	if rc.Binary {
		bundleSize = 1
	}
	if bundleSize <= 0 {
		bundleSize = 1
	}

	bs := stream.BundleState{TotalFiles: len(paths), BundleSize: bundleSize, Concat: rc.Concat}
	var bundle bundleState

	for i, path := range paths {
		lastFileOfBundle := bs.IsLastOfBundle()

		// closeBundle flushes this bundle's trailer and closes its writer
		// if this file was its last member, whether that file converted
		// successfully or had to be skipped — a bundle always gets exactly
		// one trailer, even when its last file fails.
		closeBundle := func() {
			if !lastFileOfBundle || bundle.writer == nil {
				return
			}
			if err := stream.WriteTrailer(bundle.writer, *rc, bundle.out.BinaryDisabled); err != nil {
				log.Printf("convert: write trailer: %v", err)
			}
			if err := bundle.writer.Close(); err != nil {
				log.Printf("convert: close output: %v", err)
			}
			bundle = bundleState{}
		}

		if !l.IsFITS(path) && !l.IsGZip(path) {
			log.Printf("convert: skipping %s: not a FITS file", path)
			closeBundle()
			bs = bs.Next()
			continue
		}

		table := deriveTableName(path, rc.Table)
		if bundle.writer == nil {
			outPath := deriveOutputPath(rc, i, len(paths))
			w, err := l.OpenOutput(outPath)
			if err != nil {
				return err
			}
			bundle.writer = w
			bundle.table = table
		}

		tbl, err := l.openTable(path, rc)
		if err != nil {
			log.Printf("convert: cannot open %s: %v", path, err)
			closeBundle()
			bs = bs.Next()
			continue
		}

		numCols, err := tbl.NumCols()
		if err != nil {
			log.Printf("convert: FITS error reading %s: %v", path, err)
			tbl.Close()
			closeBundle()
			bs = bs.Next()
			continue
		}

		in, err := schema.ReadInputSchema(tbl, 1, numCols, rc.SchemaOptions())
		if err != nil {
			log.Printf("convert: FITS error reading schema of %s: %v", path, err)
			tbl.Close()
			closeBundle()
			bs = bs.Next()
			continue
		}

		// The first file of the bundle that gets this far builds the schema
		// and writes the preamble, even if earlier members were skipped.
		if bundle.in == nil {
			out, err := schema.BuildOutputSchema(in, rc.SchemaOptions())
			if err != nil {
				log.Printf("convert: cannot build output schema for %s: %v", path, err)
				tbl.Close()
				closeBundle()
				bs = bs.Next()
				continue
			}
			if out.BinaryDisabled {
				log.Printf("convert: %s; disabling binary mode, falling back to Postgres text", out.DisableReason)
			}
			bundle.in = in
			bundle.out = out
			if err := stream.WritePreamble(bundle.writer, bundle.out, *rc, bundle.table); err != nil {
				tbl.Close()
				return fmt.Errorf("convert: write preamble: %w", err)
			}
		} else {
			ok, err := schema.Validate(tbl, bundle.in, rc.SchemaOptions())
			if err != nil {
				log.Printf("convert: FITS error validating %s: %v", path, err)
				tbl.Close()
				closeBundle()
				bs = bs.Next()
				continue
			}
			if !ok {
				log.Printf("convert: schema mismatch in %s, skipping", path)
				tbl.Close()
				closeBundle()
				bs = bs.Next()
				continue
			}
		}

		if rc.NoLoad {
			tbl.Close()
			closeBundle()
			bs = bs.Next()
			continue
		}

		if err := l.Driver.Run(ctx, tbl, bundle.writer, bundle.in, bundle.out, rc, st, bundle.table, lastFileOfBundle); err != nil {
			log.Printf("convert: FITS reader error on %s, abandoning file: %v", path, err)
			tbl.Close()
			closeBundle()
			bs = bs.Next()
			continue
		}
		tbl.Close()

		closeBundle()
		bs = bs.Next()
	}
	return nil
}

// openTable opens path via the three mutually exclusive HDU-selection
// paths: extension number, extension name, or (default) the first table
// HDU. The FITS extended filename selector syntax in rc.Select is appended
// verbatim, since parsing it is explicitly out of scope.
func (l *Loop) openTable(path string, rc *RunConfig) (fitsio.Table, error) {
	p := path
	if rc.Select != "" {
		p = fmt.Sprintf("%s[%s]", path, rc.Select)
	}
	switch {
	case rc.ExtName != "":
		return l.Opener.OpenExtName(p, rc.ExtName)
	case rc.ExtNum != 0:
		return l.Opener.OpenExtNum(p, rc.ExtNum)
	default:
		return l.Opener.Open(p)
	}
}

// deriveTableName returns override if non-empty, otherwise the path's
// basename with its extension stripped and any '-' rewritten to '_'.
func deriveTableName(path, override string) string {
	if override != "" {
		return override
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(base, "-", "_")
}

// deriveOutputPath returns "" (stdout) when rc.Output is unset, and
// rc.Output unchanged when there is only one input file or when
// concatenating; otherwise it derives "<base><NNN>.<ext>" with a
// zero-padded sequence number sized to the total file count, per
// fits2db.c's ndigits = log10(nfiles)+1.
func deriveOutputPath(rc *RunConfig, idx, total int) string {
	if rc.Output == "" {
		return ""
	}
	if total == 1 || rc.Concat {
		return rc.Output
	}
	ext := filepath.Ext(rc.Output)
	base := strings.TrimSuffix(rc.Output, ext)
	if ext == "" {
		ext = "." + outputExtension(rc)
	}
	ndigits := len(strconv.Itoa(total))
	return fmt.Sprintf("%s%0*d%s", base, ndigits, idx+1, ext)
}

func outputExtension(rc *RunConfig) string {
	switch rc.Format {
	case schema.FormatIPAC:
		return "ipac"
	case schema.FormatSQL:
		return "sql"
	default:
		switch rc.Delimiter {
		case '\t':
			return "tsv"
		case '|':
			return "bsv"
		case ' ':
			return "asv"
		default:
			return "csv"
		}
	}
}
