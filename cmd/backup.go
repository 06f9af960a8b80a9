/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/port-russell/marina/config"
	"github.com/port-russell/marina/internal/backup"
	"github.com/port-russell/marina/internal/importer"
	"github.com/port-russell/marina/internal/server"
	"github.com/port-russell/marina/internal/storage"
	"github.com/spf13/cobra"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write one snapshot of catways and reservations to object storage",
	Long: `Write one snapshot of catways and reservations to object storage, the
same snapshot the server takes on BACKUP_SCHEDULE.

	marina backup
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.LoadConfig()

		objects, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		repos, err := server.OpenRepositories(ctx, cfg)
		if err != nil {
			return err
		}
		defer repos.Close()

		job := backup.NewJob(importer.New(repos.Catways, repos.Reservations), objects, cfg.Backup.Prefix)
		dir, err := job.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s/%s\n", objects.Bucket(), dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
