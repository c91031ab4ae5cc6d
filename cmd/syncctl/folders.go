package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/openmined/syncfolders/internal/syncsdk"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [parent-id]",
	Short: "List folders",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := newSDK(cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		params := &syncsdk.ListFoldersParams{}
		if len(args) == 1 {
			params.ParentID = args[0]
		}
		params.Name, _ = cmd.Flags().GetString("name")

		folders, err := sdk.ListFolders(cmd.Context(), params)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSIZE\tSYNC\tUPDATED")
		for _, f := range folders {
			sync := ""
			if f.IsSyncFolder != nil && *f.IsSyncFolder {
				sync = f.SyncPath
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", f.ID, f.Name, f.Size, sync, f.Updated)
		}
		return w.Flush()
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := newSDK(cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		parent, _ := cmd.Flags().GetString("parent")
		public, _ := cmd.Flags().GetBool("public")
		folder, err := sdk.CreateFolder(cmd.Context(), &syncsdk.CreateFolderParams{
			ParentID: parent,
			Name:     args[0],
			Public:   public,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", green("created"), folder.Name, gray(folder.ID))
		return nil
	},
}

var filesCmd = &cobra.Command{
	Use:   "files <folder-id>",
	Short: "List every file under a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := newSDK(cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		files, err := sdk.Files(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var total int64
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tSIZE\tTYPE\tCHECKSUM")
		for _, f := range files {
			total += f.Size
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.RelPath, humanize.Bytes(uint64(f.Size)), f.MimeType, shortChecksum(f.Checksum))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s files, %s\n", humanize.Comma(int64(len(files))), humanize.Bytes(uint64(total)))
		return nil
	},
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

func init() {
	lsCmd.Flags().String("name", "", "Folder name or glob")
	mkdirCmd.Flags().String("parent", "", "Parent folder id")
	mkdirCmd.Flags().Bool("public", false, "Make the folder public")

	rootCmd.AddCommand(lsCmd, mkdirCmd, filesCmd)
}
