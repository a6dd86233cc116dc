// Command ledger-backup exports, imports or resets the ledger database.
//
// Commands:
//
//	export [-o file]     Write the ledger document (stdout by default)
//	import -i file       Replace the ledger with a document
//	reset -yes           Restore the first-boot defaults
//	version              Print the schema version
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cli.LoadEnvFile()
	cfg := config.Load()
	// Logs go to stderr so that "export" can stream the document to stdout.
	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), Component: log.ComponentBackup, Output: os.Stderr})

	var err error
	switch os.Args[1] {
	case "export":
		err = runExport(cfg, logger, os.Args[2:])
	case "import":
		err = runImport(cfg, logger, os.Args[2:])
	case "reset":
		err = runReset(cfg, logger, os.Args[2:])
	case "version":
		err = runVersion(cfg, logger)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", log.FieldError, err, "command", os.Args[1])
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  ledger-backup <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  export [-o file]   Write the ledger document (stdout by default)")
	fmt.Println("  import -i file     Replace the ledger with a document")
	fmt.Println("  reset [-yes]       Restore the first-boot defaults")
	fmt.Println("  version            Print the schema version")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  SQLITE_DB_PATH     Database file (default ./data/ledger.db)")
	fmt.Println("  SEED_EXAMPLES      Include example transactions on reset")
}

func openBackup(ctx context.Context, cfg *config.Config, logger *log.Logger) (*storage.Store, *services.BackupService, error) {
	store, err := storage.Open(ctx, cfg.SQLiteDBPath, storage.Options{
		SeedExamples: cfg.SeedExamples,
		Logger:       logger.WithComponent(log.ComponentStorage).Slog(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return store, services.NewBackupService(store, nil, cfg.SeedExamples, logger), nil
}

func runExport(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "-", "output file, - for stdout")
	fs.Parse(args)

	ctx := context.Background()
	store, backup, err := openBackup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return backup.ExportJSON(ctx, w)
}

func runImport(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("i", "", "document to import, - for stdin")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("import needs -i")
	}

	var r io.Reader = os.Stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	ctx := context.Background()
	store, backup, err := openBackup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := backup.ImportJSON(ctx, r)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d categories, %d payment methods, %d transactions (%d references cleared)\n",
		res.Categories, res.PaymentMethods, res.Transactions, res.OrphanedRefs)
	return nil
}

func runReset(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	yes := fs.Bool("yes", false, "confirm that all data will be replaced")
	fs.Parse(args)
	if !*yes {
		return fmt.Errorf("reset replaces all data; rerun with -yes")
	}

	ctx := context.Background()
	store, backup, err := openBackup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return backup.ResetToDefaults(ctx)
}

func runVersion(cfg *config.Config, logger *log.Logger) error {
	store, _, err := openBackup(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := store.SchemaVersion()
	if err != nil {
		return err
	}
	fmt.Printf("schema version %d\n", v)
	return nil
}
