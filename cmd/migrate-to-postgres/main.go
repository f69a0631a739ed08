// migrate-to-postgres copies the ship catalog and seed history from SQLite to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/shipyard.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user shipyard \
//	    -pg-password shipyard \
//	    -pg-database shipyard
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lawnchairsociety/shipyard/internal/database"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/shipyard.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "shipyard", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "shipyard", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "shipyard", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("SQLite to PostgreSQL Migration Tool")
	log.Println("====================================")

	if _, err := os.Stat(*sqlitePath); err != nil {
		log.Fatalf("SQLite database not found: %v", err)
	}

	log.Printf("Opening SQLite database: %s", *sqlitePath)
	source, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer source.Close()

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = *pgHost
	pgCfg.Port = *pgPort
	pgCfg.User = *pgUser
	pgCfg.Password = *pgPassword
	pgCfg.Database = *pgDatabase
	pgCfg.SSLMode = *pgSSLMode

	// Opening runs the schema migration, so the target is ready afterwards.
	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	target, err := database.OpenWithConfig(database.Config{Driver: "postgres", Postgres: pgCfg})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer target.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	tables := []struct {
		name    string
		migrate func(source, target *database.Database, dryRun bool) (int64, error)
	}{
		{"ships", migrateShips},
		{"seed_history", migrateHistory},
	}

	var totalRows int64
	for _, t := range tables {
		log.Printf("Migrating table: %s", t.name)
		count, err := t.migrate(source, target, *dryRun)
		if err != nil {
			log.Fatalf("Failed to migrate %s: %v", t.name, err)
		}
		log.Printf("  Migrated %d rows", count)
		totalRows += count
	}

	log.Println("====================================")
	log.Printf("Migration complete! Total rows migrated: %d", totalRows)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

// migrateShips upserts every catalogued ship; re-running is harmless.
func migrateShips(source, target *database.Database, dryRun bool) (int64, error) {
	total, err := source.CountShips()
	if err != nil {
		return 0, err
	}
	if dryRun || total == 0 {
		return int64(total), nil
	}

	records, err := source.ListShips(total)
	if err != nil {
		return 0, err
	}

	var count int64
	for i := range records {
		if err := target.SaveShip(&records[i]); err != nil {
			return count, fmt.Errorf("ship %q: %w", records[i].Seed, err)
		}
		count++
	}
	return count, nil
}

// migrateHistory copies visits with their IDs so ordering survives, skipping IDs
// already present, then advances the PostgreSQL sequence past them.
func migrateHistory(source, target *database.Database, dryRun bool) (int64, error) {
	rows, err := source.DB().Query(`SELECT id, seed, visited_at FROM seed_history ORDER BY id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	pg := target.DB()
	var count int64
	for rows.Next() {
		var id, visitedAt int64
		var seed string
		if err := rows.Scan(&id, &seed, &visitedAt); err != nil {
			return count, err
		}

		if dryRun {
			count++
			continue
		}

		result, err := pg.Exec(`
			INSERT INTO seed_history (id, seed, visited_at) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING
		`, id, seed, visitedAt)
		if err != nil {
			return count, err
		}
		if n, _ := result.RowsAffected(); n > 0 {
			count++
		}
	}
	if err := rows.Err(); err != nil {
		return count, err
	}

	if !dryRun {
		if err := resetSequence(pg, "seed_history"); err != nil {
			return count, err
		}
	}
	return count, nil
}

func resetSequence(pg *sql.DB, table string) error {
	_, err := pg.Exec(fmt.Sprintf(
		`SELECT setval('%s_id_seq', COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`, table, table))
	if err != nil {
		return fmt.Errorf("failed to reset %s sequence: %w", table, err)
	}
	return nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Copies the ship catalog and seed history from SQLite to PostgreSQL.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -sqlite data/shipyard.db -pg-host localhost -pg-user shipyard -pg-password shipyard -pg-database shipyard\n", os.Args[0])
	}
}
