package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"rpa-agent/internal/config"
	"rpa-agent/internal/logging"
	"rpa-agent/internal/repository"
	"rpa-agent/pkg/models"
)

func main() {
	ctx := context.Background()
	logger := logging.NewLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Store.DB.Host, cfg.Store.DB.Port, cfg.Store.DB.User,
		cfg.Store.DB.Password, cfg.Store.DB.Name, cfg.Store.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	store := repository.NewPostgresWorkflowStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Check for existing workflows to prevent duplicates
	existing, err := store.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list existing workflows: %v", err)
	}

	existingMap := make(map[string]bool)
	for _, w := range existing {
		existingMap[w.Name] = true
	}

	workflows := []struct {
		Name        string
		Description string
		ScriptPath  string
		Tags        []string
	}{
		{"Web Scraping", "Extracts structured data from configured web sources.", "web_scraping_workflow.py", []string{"extraction"}},
		{"PDF Pipeline", "Downloads, fills and archives PDF documents.", "final_complete_workflow.py", []string{"pdf"}},
		{"Email Blast", "Sends templated bulk email from a recipient list.", "email_automation_workflow.py", []string{"email"}},
	}

	for _, w := range workflows {
		if existingMap[w.Name] {
			logger.Info("skipping existing workflow", "name", w.Name)
			continue
		}

		wf := &models.Workflow{
			Name:        w.Name,
			Description: w.Description,
			ScriptPath:  w.ScriptPath,
			Parameters:  map[string]interface{}{},
			Tags:        w.Tags,
		}

		if err := store.Create(ctx, wf); err != nil {
			log.Printf("Failed to create workflow %s: %v", w.Name, err)
		} else {
			logger.Info("seeded workflow", "name", w.Name, "id", wf.ID)
		}
	}
	logger.Info("seeding complete")
}
