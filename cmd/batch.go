/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/port-russell/marina/config"
	"github.com/port-russell/marina/internal/importer"
	"github.com/port-russell/marina/internal/server"
	"github.com/port-russell/marina/internal/storage"
	"github.com/spf13/cobra"
)

var batchFromObject bool

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [catways|reservations] <file>",
	Short: "Bulk load catways or reservations from a JSON array",
	Long: `Bulk load catways or reservations from a JSON array. The whole file is
rejected when any record is invalid. With --object the file is read from the
configured object storage bucket.

	marina import catways catways.json
	marina import reservations --object seed/reservations.json
`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"catways", "reservations"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.Context(), func(ctx context.Context, im *importer.Importer, objects storage.ObjectStorage) error {
			data, err := importer.Read(ctx, importer.Source{Path: args[1], Object: batchFromObject}, objects)
			if err != nil {
				return err
			}

			var n int
			switch args[0] {
			case "catways":
				n, err = im.ImportCatways(ctx, data)
			case "reservations":
				n, err = im.ImportReservations(ctx, data)
			default:
				return fmt.Errorf("unknown collection %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s\n", n, args[0])
			return nil
		})
	},
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [catways|reservations] <file>",
	Short: "Dump catways or reservations as a JSON array",
	Long: `Dump catways or reservations as a JSON array that import accepts back.
With --object the document is written to the configured object storage bucket.

	marina export reservations backup.json
`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"catways", "reservations"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.Context(), func(ctx context.Context, im *importer.Importer, objects storage.ObjectStorage) error {
			var (
				data []byte
				err  error
			)
			switch args[0] {
			case "catways":
				data, err = im.ExportCatways(ctx)
			case "reservations":
				data, err = im.ExportReservations(ctx)
			default:
				return fmt.Errorf("unknown collection %q", args[0])
			}
			if err != nil {
				return err
			}
			return importer.Write(ctx, importer.Source{Path: args[1], Object: batchFromObject}, objects, data)
		})
	},
}

// runBatch opens the repositories and, with --object, the object storage,
// then hands both to fn.
func runBatch(ctx context.Context, fn func(context.Context, *importer.Importer, storage.ObjectStorage) error) error {
	cfg := config.LoadConfig()
	if cfg.Database.Driver == "memory" {
		fmt.Fprintln(os.Stderr, "warning: DB_DRIVER=memory, nothing will persist after this command")
	}

	repos, err := server.OpenRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	var objects storage.ObjectStorage
	if batchFromObject {
		objects, err = storage.Open(ctx, cfg.Storage)
		if err != nil {
			return err
		}
	}

	return fn(ctx, importer.New(repos.Catways, repos.Reservations), objects)
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	importCmd.Flags().BoolVar(&batchFromObject, "object", false, "read the file from object storage")
	exportCmd.Flags().BoolVar(&batchFromObject, "object", false, "write the file to object storage")
}
