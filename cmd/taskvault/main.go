package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/aoyama/taskvault/internal/backup"
	"github.com/aoyama/taskvault/internal/config"
	"github.com/aoyama/taskvault/internal/constants"
	"github.com/aoyama/taskvault/internal/database"
	"github.com/aoyama/taskvault/internal/repository"
	"github.com/aoyama/taskvault/internal/state"
)

func main() {
	exportFlag := flag.Bool("export", false, "write a backup document and exit")
	importPath := flag.String("import", "", "restore a backup document and exit")
	flag.Parse()

	// Load configuration
	cfgPath, err := config.DefaultConfigPath()
	if err != nil {
		log.Fatalf("Failed to locate config: %v", err)
	}
	cfg, err := config.LoadOrCreate(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Open the store and bring the schema up to date
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.Seed(db); err != nil {
		log.Fatalf("Failed to seed defaults: %v", err)
	}

	if *exportFlag {
		path, err := backup.ExportFile(db, cfg.BackupDir)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		fmt.Printf("Backup written to %s\n", path)
		return
	}

	if *importPath != "" {
		doc, err := backup.ImportFile(db, *importPath)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Restored %d tasks and %d categories from %s\n",
			len(doc.Tasks), len(doc.Categories), *importPath)
		return
	}

	// Construct repositories and state containers
	tasks := state.NewTaskState(repository.NewTaskRepository(db))
	categories := state.NewCategoryState(repository.NewCategoryRepository(db))
	app := state.NewAppState(repository.NewSettingRepository(db), nil)

	if err := tasks.Load(); err != nil {
		log.Fatalf("Failed to load tasks: %v", err)
	}
	if err := categories.Load(); err != nil {
		log.Fatalf("Failed to load categories: %v", err)
	}
	if err := app.LoadTheme(cfg.DefaultTheme == constants.ThemeDark); err != nil {
		log.Fatalf("Failed to load theme: %v", err)
	}

	stats := tasks.Stats()
	fmt.Printf("taskvault: %d tasks (%d active, %d completed, %d overdue, %d%% done), %d categories, %s theme\n",
		stats.Total, stats.Active, stats.Completed, stats.Overdue, stats.CompletionRate,
		categories.Count(), app.Theme())
}
