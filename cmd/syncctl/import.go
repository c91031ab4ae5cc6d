package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/openmined/syncfolders/internal/syncsdk"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var importCmd = &cobra.Command{
	Use:   "import <assetstore-id> <folder-id> <path>",
	Short: "Sync a host directory into a folder",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := newSDK(cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		importPath, err := filepath.Abs(args[2])
		if err != nil {
			return err
		}
		watch, _ := cmd.Flags().GetBool("progress")

		params := &syncsdk.ImportParams{
			AssetstoreID:  args[0],
			DestinationID: args[1],
			ImportPath:    importPath,
			Progress:      watch,
		}

		var result *syncsdk.ImportResult
		if watch {
			result, err = importWithProgress(cmd, sdk, params)
		} else {
			result, err = sdk.Import(cmd.Context(), params)
		}
		if err != nil {
			return err
		}

		printResult(cmd, result)
		return nil
	},
}

// importWithProgress streams progress events while the import request runs
func importWithProgress(cmd *cobra.Command, sdk *syncsdk.SyncSDK, params *syncsdk.ImportParams) (*syncsdk.ImportResult, error) {
	out := cmd.OutOrStdout()
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	connected := make(chan struct{})
	markConnected := sync.OnceFunc(func() { close(connected) })
	var result *syncsdk.ImportResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := sdk.Events.Stream(gctx, func(ev *syncsdk.Event) error {
			switch ev.Type {
			case syncsdk.EventConnected:
				markConnected()
			case syncsdk.EventProgress:
				var rec syncsdk.ProgressRecord
				if err := ev.DecodeData(&rec); err != nil {
					return nil
				}
				fmt.Fprintf(out, "%s %s %s\n", gray(rec.Updated.Local().Format(time.TimeOnly)), cyan(rec.Title), rec.Message)
			}
			return nil
		})
		// the stream can end before the hello, the import still runs
		markConnected()
		return err
	})
	g.Go(func() error {
		select {
		case <-connected:
		case <-gctx.Done():
			return gctx.Err()
		}
		var err error
		result, err = sdk.Import(gctx, params)
		cancel()
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}
	if result == nil {
		return nil, cmd.Context().Err()
	}
	return result, nil
}

func printResult(cmd *cobra.Command, r *syncsdk.ImportResult) {
	out := cmd.OutOrStdout()
	status := green("up to date")
	if r.Changed() {
		status = green("synced")
	}
	fmt.Fprintf(out, "%s %s -> %s in %s\n", status, r.ImportPath, r.RootID, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  files %d  created %d  moved %d  deleted %d  unchanged %d  pruned %d\n",
		r.HostFiles, r.Created, r.Moved, r.Deleted, r.Unchanged, r.Pruned)
}

func init() {
	importCmd.Flags().BoolP("progress", "p", false, "Stream progress while the sync runs")
	rootCmd.AddCommand(importCmd)
}
