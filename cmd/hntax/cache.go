package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/hntax/internal/cli"
	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/config"
	"github.com/Veraticus/hntax/internal/storage"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached reports",
		Long:  `Finished reports are cached locally so the same address and tax year can be shown again without another backend job.`,
	}

	cmd.AddCommand(cacheListCmd())
	cmd.AddCommand(cacheClearCmd())

	return cmd
}

func cacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			return listCache(cmd.Context(), store, cmd.OutOrStdout())
		},
	}
}

func cacheClearCmd() *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			return clearCache(cmd.Context(), store, expiredOnly, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "only remove reports older than cache.ttl")
	return cmd
}

func openCache(ctx context.Context) (*storage.SQLiteStorage, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if !settings.CacheEnabled {
		return nil, common.NewUserError("the result cache is disabled", fmt.Errorf("%s is false", config.KeyCacheEnabled))
	}
	store, err := initStorage(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open result cache: %w", err)
	}
	return store, nil
}

func listCache(ctx context.Context, store *storage.SQLiteStorage, w io.Writer) error {
	results, err := store.ListResults(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cached reports: %w", err)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("No cached reports"))
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Address", "Tax year", "Records", "Fetched", "Status"})
	for _, r := range results {
		status := "fresh"
		if store.Expired(r.FetchedAt) {
			status = cli.SubtleStyle.Render("expired")
		}
		tw.AppendRow(table.Row{
			r.Address.Short(),
			r.Year.Label(),
			len(r.Data),
			r.FetchedAt.Local().Format("2006-01-02 15:04"),
			status,
		})
	}
	tw.Render()

	return nil
}

func clearCache(ctx context.Context, store *storage.SQLiteStorage, expiredOnly bool, w io.Writer) error {
	var (
		removed int64
		err     error
	)
	if expiredOnly {
		removed, err = store.DeleteExpired(ctx)
	} else {
		removed, err = store.Clear(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Removed %d cached report(s)", removed)))
	return nil
}
