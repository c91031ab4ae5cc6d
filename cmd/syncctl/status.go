package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server version and resource usage (admins only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := newSDK(cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		st, err := sdk.Status(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s %s\n", cyan("server"), st.Version, gray(st.Revision))
		fmt.Fprintf(out, "  up %s since %s\n", st.Uptime, humanize.Time(st.StartedAt))
		if p := st.Process; p != nil {
			fmt.Fprintf(out, "  pid %d  cpu %.1f%%  threads %d  rss %s\n", p.PID, p.CPUPercent, p.NumThreads, humanize.Bytes(p.RSS))
		}
		if d := st.Disk; d != nil {
			fmt.Fprintf(out, "  disk %s  %s free of %s (%.1f%% used)\n", d.Path, humanize.Bytes(d.Free), humanize.Bytes(d.Total), d.UsedPercent)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
