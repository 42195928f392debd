package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"ecobot/internal/app"
	"ecobot/internal/config"
	"ecobot/internal/logger"
	"ecobot/internal/model"
	"ecobot/internal/repository"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type storeFlags struct {
	driver    string
	dbPath    string
	dataDir   string
	redisAddr string
}

func newRootCommand() *cobra.Command {
	cfg := config.Load()
	flags := &storeFlags{}

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Move detection records in and out of the record store",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.driver, "driver", cfg.StoreDriver, "store driver (sqlite, file, memory, redis)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", cfg.DBPath, "sqlite database path")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", cfg.DataDirectory, "directory of the file store")
	root.PersistentFlags().StringVar(&flags.redisAddr, "redis-addr", cfg.RedisAddr, "redis address")

	open := func(ctx context.Context) (*repository.RecordStore, func(), error) {
		c := *cfg
		c.StoreDriver, c.DBPath, c.DataDirectory, c.RedisAddr = flags.driver, flags.dbPath, flags.dataDir, flags.redisAddr
		kv, err := app.OpenStore(ctx, &c)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRecordStore(kv, logger.New(os.Stderr)), func() { kv.Close() }, nil
	}

	root.AddCommand(newImportCommand(open), newExportCommand(open))
	return root
}

type opener func(ctx context.Context) (*repository.RecordStore, func(), error)

func newImportCommand(open opener) *cobra.Command {
	var skipInvalid bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append records from a browser storage export (a JSON array of records)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			store, closeStore, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			imported, skipped, err := importRecords(cmd.Context(), store, f, skipInvalid)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s), skipped %d\n", imported, skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "skip records that fail validation instead of aborting")
	return cmd
}

func newExportCommand(open opener) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored record as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			n, err := exportRecords(cmd.Context(), store, w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d record(s)\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

// importRecords appends the records of r in one write. Invalid records
// abort the import unless skipInvalid is set.
func importRecords(ctx context.Context, store *repository.RecordStore, r io.Reader, skipInvalid bool) (int, int, error) {
	var records []model.DetectionRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, 0, fmt.Errorf("failed to decode records: %w", err)
	}

	valid := make([]model.DetectionRecord, 0, len(records))
	skipped := 0
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			if !skipInvalid {
				return 0, 0, fmt.Errorf("record %d: %w", i, err)
			}
			skipped++
			continue
		}
		valid = append(valid, rec)
	}
	if len(valid) == 0 {
		return 0, skipped, nil
	}

	if _, err := store.AppendRecords(ctx, valid); err != nil {
		if errors.Is(err, repository.ErrCorruptCollection) {
			return 0, skipped, fmt.Errorf("existing records are unreadable, refusing to overwrite: %w", err)
		}
		return 0, skipped, err
	}
	return len(valid), skipped, nil
}

func exportRecords(ctx context.Context, store *repository.RecordStore, w io.Writer) (int, error) {
	records, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return 0, err
	}
	return len(records), nil
}
