package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/erazemk/izposoja/internal/config"
	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/report"
	"github.com/erazemk/izposoja/internal/store"
)

const usage = `Usage: izposoja-report <command> [flags]

Commands:
  stats   [-y, -year N]                           print rental statistics
  export  -k, -kind inventory|rentals|stats [-o, -out file.xlsx] [-y, -year N]
                                                  write an XLSX report
  purge   -yes                                    delete all closed rentals

Common flags:
  -d, -db <path>    SQLite database path (env IZPOSOJA_DB, default: izposoja.sqlite3)
  -l, -log <path>   log file path (env IZPOSOJA_LOG)
`

// errUsage signals that the usage text was already printed.
var errUsage = errors.New("usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch args[0] {
	case "stats":
		return cmdStats(ctx, cfg, args[1:], stdout)
	case "export":
		return cmdExport(ctx, cfg, args[1:], stdout)
	case "purge":
		return cmdPurge(ctx, cfg, args[1:], stdout)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n%s", args[0], usage)
		return errUsage
	}
}

func cmdStats(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("stats", cfg)
	var year int
	fs.IntVar(&year, "year", 0, "")
	fs.IntVar(&year, "y", 0, "")
	if err := fs.Parse(args); err != nil {
		return parseError(err)
	}

	database, cleanup, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := report.LoadStats(ctx, database, year)
	if err != nil {
		return err
	}
	return report.WriteText(stdout, stats, year)
}

func cmdExport(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("export", cfg)
	var kindName, out string
	var year int
	fs.StringVar(&kindName, "kind", "", "")
	fs.StringVar(&kindName, "k", "", "")
	fs.StringVar(&out, "out", "", "")
	fs.StringVar(&out, "o", "", "")
	fs.IntVar(&year, "year", 0, "")
	fs.IntVar(&year, "y", 0, "")
	if err := fs.Parse(args); err != nil {
		return parseError(err)
	}

	kind, err := report.ParseKind(kindName)
	if err != nil {
		return err
	}
	if out == "" {
		out = kind.Filename()
	}

	database, cleanup, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}

	opts := report.Options{Today: model.Today(), CriticalBelow: cfg.CriticalIntegrity, Year: year}
	if err := report.Write(ctx, database, kind, opts, f); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", out, err)
	}

	slog.Info("report exported", "kind", kind, "path", out)
	fmt.Fprintf(stdout, "Wrote %s\n", out)
	return nil
}

func cmdPurge(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("purge", cfg)
	var yes bool
	fs.BoolVar(&yes, "yes", false, "")
	if err := fs.Parse(args); err != nil {
		return parseError(err)
	}
	if !yes {
		return errors.New("purge deletes every closed rental; rerun with -yes to confirm")
	}

	database, cleanup, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := store.PurgeHistory(ctx, database)
	if err != nil {
		return err
	}

	slog.Info("history purged", "deleted", n)
	fmt.Fprintf(stdout, "Deleted %d closed rental(s).\n", n)
	return nil
}

// parseError treats -h as success; any other parse error has already been
// reported by the flag package.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return errUsage
}

func newFlagSet(name string, cfg *config.Config) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfg.RegisterStorageFlags(fs)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	return fs
}

// openDatabase sets up logging, then opens and migrates the database. The
// returned cleanup closes both.
func openDatabase(cfg *config.Config) (*sql.DB, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	closeLog, err := config.SetupLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	if _, err := os.Stat(cfg.DBPath); err != nil {
		closeLog()
		return nil, nil, fmt.Errorf("database %s: %w", cfg.DBPath, err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		closeLog()
		return nil, nil, err
	}

	return database, func() {
		database.Close()
		closeLog()
	}, nil
}
