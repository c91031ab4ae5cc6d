package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your recent sync sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := newSDK(cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		limit, _ := cmd.Flags().GetInt("limit")
		sessions, err := sdk.History(cmd.Context(), limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tSTATUS\tFOLDER\tPATH\tCHANGES\tTOOK")
		for _, s := range sessions {
			status := green(s.Status)
			if s.Error != "" {
				status = red(s.Status)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t+%d ~%d -%d\t%s\n",
				humanize.Time(s.Timestamp), status, s.DestinationID, s.ImportPath,
				s.Created, s.Moved, s.Deleted, time.Duration(s.DurationMs)*time.Millisecond)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	rootCmd.AddCommand(historyCmd)
}
