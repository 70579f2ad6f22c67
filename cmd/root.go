// Package cmd wires the fits2db command-line surface: flag parsing via
// cobra/pflag, an optional --config run-profile via internal/config, and
// the conversion run itself via internal/convert.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noaodatalab/fits2db/internal/config"
	"github.com/noaodatalab/fits2db/internal/convert"
	"github.com/noaodatalab/fits2db/internal/fitsio"
	"github.com/noaodatalab/fits2db/internal/runconfig"
	"github.com/noaodatalab/fits2db/internal/schema"
)

// FITSOpener is the external FITS-reader collaborator this command
// delegates HDU navigation and row decoding to. fits2db.c's equivalent is
// linked directly against CFITSIO; this module never ships a concrete
// binding (out of scope per spec.md §1), so whatever links this package
// into a binary must set FITSOpener before calling Execute.
var FITSOpener fitsio.Opener

var (
	cfgPath string
	cfg     *config.Config

	flagDebug   bool
	flagVerbose bool
	flagNoop    bool

	flagBundle  int
	flagChunk   int
	flagExtNum  int
	flagExtName string
	flagOutput  string
	flagRowRange string
	flagSelect  string

	flagConcat      bool
	flagNoHeader    bool
	flagNoStrip     bool
	flagNoQuote     bool
	flagSingleQuote bool
	flagExplode     bool

	flagASV  bool
	flagBSV  bool
	flagCSV  bool
	flagTSV  bool
	flagIPAC bool

	flagBinary bool
	flagOID    bool
	flagTable  string
	flagNoLoad bool

	flagSQL      string
	flagDrop     bool
	flagCreate   bool
	flagTruncate bool
	flagSid      string
	flagRid      string
	flagAdd      string
	flagDBName   string
)

var rootCmd = &cobra.Command{
	Use:   "fits2db [flags] file...",
	Short: "Convert FITS binary tables into relational load streams",
	Long: `fits2db reads FITS BINTABLE extensions and writes a relational
database load stream (Postgres text or binary COPY, MySQL/SQLite INSERT,
or a plain delimited/IPAC table) to standard output or derived per-file
outputs, so conversion and ingest can proceed concurrently.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		return nil
	},
	RunE: runConvert,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML run-profile file")

	f := rootCmd.Flags()
	f.BoolVarP(&flagDebug, "debug", "d", false, "enable PG-binary self-verification and verbose diagnostics")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "print progress diagnostics")
	f.BoolVarP(&flagNoop, "noop", "n", false, "parse arguments only; open no input and write nothing")

	f.IntVarP(&flagBundle, "bundle", "b", 1, "number of consecutive files per SQL ingest statement")
	f.IntVarP(&flagChunk, "chunk", "c", 0, "row chunk size override (0 uses the reader's optimal)")
	f.IntVarP(&flagExtNum, "extnum", "e", 0, "1-based extension number to open")
	f.StringVarP(&flagExtName, "extname", "E", "", "EXTNAME of the extension to open")
	f.StringVarP(&flagOutput, "output", "o", "", "output path (stdout if omitted)")
	f.StringVarP(&flagRowRange, "rowrange", "r", "", "row range selector (not implemented)")
	f.StringVarP(&flagSelect, "select", "s", "", "FITS row-filter expression, passed through verbatim")

	f.BoolVarP(&flagConcat, "concat", "C", false, "treat all input files as one bundle")
	f.BoolVarP(&flagNoHeader, "noheader", "H", false, "suppress the delimited-format header row")
	f.BoolVarP(&flagNoStrip, "nostrip", "N", false, "do not trim leading/trailing spaces from STRING cells")
	f.BoolVarP(&flagNoQuote, "noquote", "Q", false, "disable quoting of STRING and array cells")
	f.BoolVarP(&flagSingleQuote, "singlequote", "S", false, "quote with ' instead of \"")
	f.BoolVarP(&flagExplode, "explode", "X", false, "expand array columns into one scalar column per element")

	f.BoolVar(&flagASV, "asv", false, "ASCII-delimited output")
	f.BoolVar(&flagBSV, "bsv", false, "bar-delimited output")
	f.BoolVar(&flagCSV, "csv", false, "comma-delimited output")
	f.BoolVar(&flagTSV, "tsv", false, "tab-delimited output")
	f.BoolVar(&flagIPAC, "ipac", false, "IPAC fixed-width table output")

	f.BoolVarP(&flagBinary, "binary", "B", false, "emit PostgreSQL COPY BINARY instead of text")
	f.BoolVarP(&flagOID, "oid", "O", false, "accepted for compatibility; PostgreSQL WITH OIDS is never emitted")
	f.StringVarP(&flagTable, "table", "t", "", "output table name (default: derived from the input filename)")
	f.BoolVarP(&flagNoLoad, "noload", "Z", false, "build schema and open output but write no rows")

	f.StringVar(&flagSQL, "sql", "", "SQL dialect: postgres, mysql, or sqlite")
	f.BoolVar(&flagDrop, "drop", false, "emit DROP TABLE IF EXISTS before CREATE TABLE")
	f.BoolVar(&flagCreate, "create", false, "emit CREATE TABLE IF NOT EXISTS")
	f.BoolVar(&flagTruncate, "truncate", false, "emit TRUNCATE TABLE before loading")
	f.StringVar(&flagSid, "sid", "", "name of the synthetic serial-id column to append")
	f.StringVar(&flagRid, "rid", "", "name of the synthetic random-id column to append")
	f.StringVar(&flagAdd, "add", "", "name of the synthetic constant-1 column to append")
	f.StringVar(&flagDBName, "dbname", "", "database name (MySQL CREATE DATABASE target)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch {
	case err == convert.ErrNotImplemented:
		return 1
	case strings.Contains(err.Error(), "no input"):
		return 2
	case strings.Contains(err.Error(), "mutually exclusive"), strings.Contains(err.Error(), "open output"):
		return 3
	default:
		return 1
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("fits2db: no input files")
	}
	if flagExtNum != 0 && flagExtName != "" {
		return fmt.Errorf("fits2db: --extnum and --extname are mutually exclusive")
	}
	if flagDrop {
		flagCreate = true
	}
	if flagBinary {
		flagBundle = 1
	}

	rc := buildRunConfig()
	if flagVerbose {
		fmt.Fprintf(os.Stderr, "fits2db: converting %d file(s) to %s\n", len(args), describeTarget(rc))
	}
	if flagNoop {
		return nil
	}

	if FITSOpener == nil {
		return fmt.Errorf("fits2db: no FITS reader configured")
	}

	loop := convert.NewLoop(FITSOpener)
	st := runconfig.NewRunState(time.Now().UnixNano())
	return loop.ConvertAll(context.Background(), args, rc, st)
}

func describeTarget(rc *convert.RunConfig) string {
	switch rc.Format {
	case schema.FormatSQL:
		return fmt.Sprintf("%s SQL", rc.Dialect)
	case schema.FormatIPAC:
		return "IPAC table"
	default:
		return "delimited text"
	}
}

// buildRunConfig assembles an immutable RunConfig from parsed flags, the
// optional config file (only for fields left at their flag default), and
// the --sql dialect's delimiter/quoting defaults per spec.md §6.
func buildRunConfig() *convert.RunConfig {
	table := flagTable
	sid, rid, add, dbname, sqlDialect := flagSid, flagRid, flagAdd, flagDBName, flagSQL
	bundle := flagBundle

	if cfg != nil {
		if table == "" {
			table = cfg.Table
		}
		if sqlDialect == "" {
			sqlDialect = cfg.SQL
		}
		if dbname == "" {
			dbname = cfg.DBName
		}
		if sid == "" {
			sid = cfg.Sid
		}
		if rid == "" {
			rid = cfg.Rid
		}
		if add == "" {
			add = cfg.Add
		}
		if bundle == 1 && cfg.Bundle != 0 {
			bundle = cfg.Bundle
		}
		if flagChunk == 0 && cfg.Chunk != 0 {
			flagChunk = cfg.Chunk
		}
	}

	rc := &convert.RunConfig{
		Table:     table,
		DBName:    dbname,
		Delimiter: ',',
		QuoteChar: '"',
		Quote:     schema.QuotePlain,
		Strip:     !flagNoStrip,
		Explode:   flagExplode,
		Binary:    flagBinary,
		Bundle:    bundle,
		Chunk:     flagChunk,
		Header:    !flagNoHeader,
		Create:    flagCreate,
		Drop:      flagDrop,
		Truncate:  flagTruncate,
		OID:       flagOID,
		NoLoad:    flagNoLoad,
		Debug:     flagDebug || (cfg != nil && cfg.Debug),
		Verbose:   flagVerbose,
		Noop:      flagNoop,
		AddColumn: add,
		SidColumn: sid,
		RidColumn: rid,
		ExtNum:    flagExtNum,
		ExtName:   flagExtName,
		RowRange:  flagRowRange,
		Select:    flagSelect,
		Concat:    flagConcat,
		Output:    flagOutput,
	}

	switch {
	case flagIPAC:
		rc.Format = schema.FormatIPAC
	case sqlDialect != "":
		rc.Format = schema.FormatSQL
		rc.Dialect = schema.Dialect(sqlDialect)
		applyDialectDefaults(rc, sqlDialect)
	case flagTSV:
		rc.Format = schema.FormatDelimited
		rc.Delimiter = '\t'
	case flagBSV:
		rc.Format = schema.FormatDelimited
		rc.Delimiter = '|'
	case flagASV:
		rc.Format = schema.FormatDelimited
		rc.Delimiter = ' '
	default:
		rc.Format = schema.FormatDelimited
		rc.Delimiter = ','
	}

	if flagSingleQuote {
		rc.QuoteChar = '\''
	}
	if flagNoQuote {
		rc.Quote = schema.QuoteNone
	}

	return rc
}

// applyDialectDefaults applies spec.md §6's "--sql=X selects delimiter and
// quoting" rule. RunConfig.Single has no CLI flag in spec.md §6 to toggle
// it (fits2db.c:197 hardwires single = 0 as dead code) and must never be
// derived from --bundle's default; it stays false here, same as --oid.
func applyDialectDefaults(rc *convert.RunConfig, dialect string) {
	switch schema.Dialect(dialect) {
	case schema.DialectPostgres:
		rc.Delimiter = '\t'
		rc.Quote = schema.QuoteNone
	case schema.DialectMySQL:
		rc.Delimiter = ','
		rc.Quote = schema.QuoteEscape
		rc.QuoteChar = '"'
	case schema.DialectSQLite:
		rc.Quote = schema.QuoteEscape
		rc.QuoteChar = '"'
	}
}
