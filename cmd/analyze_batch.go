package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

var (
	abOutDir string
	abQuiet  bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Describe, outliers and missing-data reports for many files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		w := cmd.OutOrStdout()
		if abOutDir != "" {
			if err := utils.EnsureDir(abOutDir); err != nil {
				return err
			}
		}

		total := len(files)
		used := map[string]int{}
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(w, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			report, err := batchReport(path)
			if err != nil {
				return err
			}
			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(w, report)
				}
				continue
			}
			outFile := reportPath(abOutDir, path, used)
			if err := utils.SafeWriteFile(outFile, []byte(report)); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(w, "✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and drops duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func batchReport(path string) (string, error) {
	s, err := openSession(path)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", path, s.Status())
	desc, err := s.Describe()
	if err != nil {
		return "", err
	}
	b.WriteString(desc)
	b.WriteString("\n")
	out, err := s.Outliers()
	var nn *analysis.NoNumericDataError
	switch {
	case errors.As(err, &nn):
		b.WriteString("[OUTLIERS]\nNo numeric columns\n")
	case err != nil:
		return "", err
	default:
		b.WriteString(out)
	}
	b.WriteString("\n")
	miss, err := s.Missing()
	if err != nil {
		return "", err
	}
	b.WriteString(miss)
	return b.String(), nil
}

// reportPath names the report after the input file, adding __2, __3 ... when two inputs share a base name.
func reportPath(dir, input string, used map[string]int) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	used[name]++
	if n := used[name]; n > 1 {
		name = fmt.Sprintf("%s__%d", name, n)
	}
	return filepath.Join(dir, name+".report.txt")
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for <name>.report.txt files (default: print)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
