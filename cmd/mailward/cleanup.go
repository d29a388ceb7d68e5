package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailward/mailward/internal/db"
	"github.com/mailward/mailward/internal/models"
	"github.com/mailward/mailward/internal/repository"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old delivered, failed and cancelled messages",
	RunE:  runCleanup,
}

var (
	cleanupDays   int
	cleanupDryRun bool
)

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 90, "Delete finished messages older than N days")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Show what would be deleted without actually deleting")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	statuses := []string{models.StatusSent, models.StatusFailed, models.StatusCancelled}
	cutoff := time.Now().UTC().AddDate(0, 0, -cleanupDays)

	if cleanupDryRun {
		fmt.Println("Dry run mode - no data will be deleted")

		var count int
		err := database.QueryRow(`
			SELECT COUNT(*) FROM queued_messages
			WHERE status IN (?, ?, ?) AND updated_at < ?`,
			statuses[0], statuses[1], statuses[2], cutoff,
		).Scan(&count)
		if err != nil {
			return err
		}

		fmt.Printf("Finished messages older than %d days: %d\n", cleanupDays, count)
		return nil
	}

	queue := repository.NewQueueRepository(database.DB)
	deleted, err := queue.DeleteOlderThan(statuses, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup messages: %w", err)
	}

	fmt.Printf("Deleted %d messages older than %d days\n", deleted, cleanupDays)
	return nil
}
