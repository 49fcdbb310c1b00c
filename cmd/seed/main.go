package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"

	"storm/internal/config"
	"storm/internal/languages"
	"storm/internal/repository"
	"storm/internal/repository/kv"
	"storm/internal/repository/postgres"
	"storm/internal/service/docsystem"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	reset := flag.Bool("reset", false, "Replace the stored file system with the starter files")
	dump := flag.Bool("dump", false, "Print the stored snapshot as JSON")
	check := flag.Bool("check", false, "Validate the stored snapshot without writing")
	dropTables := flag.Bool("drop-tables", false, "Drop the key-value table (postgres backend only)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*reset || *dropTables) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--reset or --drop-tables) in production environment")
	}
	if !*reset && !*dump && !*check && !*dropTables {
		flag.Usage()
		os.Exit(2)
	}

	// Setup logger (stderr, so --dump output stays clean)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	store, closeStore, err := repository.OpenKVStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	gateway := kv.NewSnapshotGateway(store, cfg.SnapshotKey, logger)

	if *dropTables {
		pg, ok := store.(*postgres.KVStore)
		if !ok {
			log.Fatalf("--drop-tables needs STORAGE_BACKEND=postgres (got %q)", cfg.StorageBackend)
		}
		log.Printf("Dropping key-value table (prefix: %s)", cfg.TablePrefix)
		if err := pg.DropSchema(ctx); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to recreate schema: %v", err)
		}
		log.Println("Tables dropped and recreated")
	}

	if *reset {
		registry, err := languages.NewRegistry()
		if err != nil {
			log.Fatalf("Failed to load language registry: %v", err)
		}

		log.Printf("Resetting file system (environment: %s, key: %s)", cfg.Environment, gateway.Key())
		if err := store.Delete(ctx, gateway.Key()); err != nil {
			log.Fatalf("Failed to clear stored snapshot: %v", err)
		}

		// Loading an empty store seeds and persists the starter files
		vfs := docsystem.NewStore(gateway, registry, nil, nil, logger)
		vfs.LoadFileSystem(ctx)
		if err := vfs.SaveFileSystem(ctx); err != nil {
			log.Fatalf("Failed to save starter files: %v", err)
		}
		log.Printf("Seeded %d starter files", len(vfs.ListFiles()))
	}

	if *check {
		snap, err := gateway.Load(ctx)
		if err != nil {
			log.Fatalf("Snapshot unusable: %v", err)
		}
		if snap == nil {
			log.Println("No stored snapshot; the server will create the starter files")
			return
		}
		if err := docsystem.CheckSnapshot(snap); err != nil {
			log.Fatalf("Snapshot inconsistent: %v", err)
		}
		log.Printf("Snapshot OK: version %d, %d files, %d folders", snap.Version, len(snap.Files), len(snap.Folders))
	}

	if *dump {
		snap, err := gateway.Load(ctx)
		if err != nil {
			log.Fatalf("Failed to load snapshot: %v", err)
		}
		if snap == nil {
			log.Println("No stored snapshot")
			return
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			log.Fatalf("Failed to encode snapshot: %v", err)
		}
	}
}
