package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom-cli/internal/grid"
	"github.com/KaramelBytes/dataloom-cli/internal/session"
)

// reportCmd builds a read-only command over one file.
func reportCmd(use, short string, nargs int, run func(s *session.Session, args []string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			out, err := run(s, args[1:])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// mutateCmd builds a command that changes the table, prints it and optionally saves it with --out.
func mutateCmd(use, short string, nargs int, run func(s *session.Session, args []string) (string, error)) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			out, err := run(s, args[1:])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprint(w, out)
			fmt.Fprintln(w, s.Status())
			dst, _ := cmd.Flags().GetString("out")
			if dst != "" {
				msg, err := s.Save(dst)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "✓", msg)
			}
			return nil
		},
	}
	c.Flags().StringP("out", "o", "", "save the resulting table to this path")
	return c
}

var showCmd = reportCmd("show <file>", "Display a file as an aligned table", 1,
	func(s *session.Session, _ []string) (string, error) { return s.Show() })

var describeCmd = reportCmd("describe <file>", "Descriptive statistics for every column", 1,
	func(s *session.Session, _ []string) (string, error) { return s.Describe() })

var correlateCmd = reportCmd("correlate <file>", "Pearson correlation matrix of numeric columns", 1,
	func(s *session.Session, _ []string) (string, error) { return s.Correlate() })

var outliersCmd = reportCmd("outliers <file>", "IQR and z-score outliers per numeric column", 1,
	func(s *session.Session, _ []string) (string, error) { return s.Outliers() })

var missingCmd = reportCmd("missing <file>", "Missing-data counts, worst rows and patterns", 1,
	func(s *session.Session, _ []string) (string, error) { return s.Missing() })

var countsCmd = reportCmd("counts <file> <column>", "Value counts of one column", 2,
	func(s *session.Session, args []string) (string, error) { return s.Counts(args[0]) })

var extractCmd = reportCmd("extract <file> <spec>", "Show selected rows (0,2) or columns (name,age)", 2,
	func(s *session.Session, args []string) (string, error) { return s.Extract(args[0]) })

var filterCmd = mutateCmd("filter <file> <column> <op> <value>", "Keep rows matching equals|not_equals|contains|greater_than|less_than", 4,
	func(s *session.Session, args []string) (string, error) { return s.Filter(args[0], args[1], args[2]) })

var replaceCmd = mutateCmd("replace <file> <column> <old> <new>", "Replace a value in one column; an empty old value fills missing cells", 4,
	func(s *session.Session, args []string) (string, error) { return s.Replace(args[0], args[1], args[2]) })

var editCmd = mutateCmd("edit <file> <row> <column> <value>", "Set one cell, coerced to the column type", 4,
	func(s *session.Session, args []string) (string, error) {
		row, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("invalid row %q: %w", args[0], err)
		}
		return s.EditCell(grid.Cell{Row: row, Column: args[1]}, args[2])
	})

func init() {
	for _, c := range []*cobra.Command{
		showCmd, describeCmd, correlateCmd, outliersCmd, missingCmd, countsCmd, extractCmd,
		filterCmd, replaceCmd, editCmd,
	} {
		rootCmd.AddCommand(c)
	}
}
