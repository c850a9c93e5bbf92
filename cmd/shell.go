package cmd

import (
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom-cli/internal/logging"
	"github.com/KaramelBytes/dataloom-cli/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell [file]",
	Short: "Interactive session: load, filter, analyze and edit cells by position",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession("")
		if err != nil {
			return err
		}
		sh := shell.New(s, cmd.OutOrStdout(), cfg.HistoryFile, logging.Component("shell"))
		if len(args) == 1 {
			if err := sh.OneShot("load " + shellquote.Join(args[0])); err != nil {
				return err
			}
		}
		return sh.Loop()
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
