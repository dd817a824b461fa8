package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/strata/internal/config"
	"github.com/banshee-data/strata/internal/db"
	"github.com/banshee-data/strata/internal/version"
)

const defaultDBPath = "strata.db"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "classify":
		err = runClassify(ctx, args)
	case "ribbon":
		err = runRibbon(ctx, args)
	case "mesh":
		err = runMesh(ctx, args)
	case "survey":
		err = runSurvey(ctx, args)
	case "models":
		err = runModels(ctx, args)
	case "transform":
		err = runTransform(args, os.Stdout)
	case "import":
		err = runImport(ctx, args)
	case "migrate":
		fs := flag.NewFlagSet("migrate", flag.ExitOnError)
		dbPath := fs.String("db", defaultDBPath, "Path to the SQLite database")
		fs.Parse(args)
		db.RunMigrateCommand(fs.Args(), *dbPath)
	case "version", "-version", "--version":
		fmt.Println(version.String())
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func usage() {
	fmt.Println("Usage: strata <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  classify   Classify a project's events against a model's strata")
	fmt.Println("  ribbon     Project the mining front onto a model surface")
	fmt.Println("  mesh       Write the surface and layer solids as render meshes")
	fmt.Println("  survey     Print surface statistics and write an elevation grid")
	fmt.Println("  models     List stored model versions")
	fmt.Println("  transform  Map a system coordinate to geodetic coordinates")
	fmt.Println("  import     Load points, layers, events or control points from CSV")
	fmt.Println("  migrate    Manage the database schema (up, down, status, version, force)")
	fmt.Println("  version    Print build information")
	fmt.Println()
	fmt.Println("Run 'strata <command> -h' for command flags.")
}

// loadConfig reads path, or the built-in defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
