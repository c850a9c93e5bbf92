// Package shell is an interactive line-oriented front end over a session. It stands in
// for a point-and-click display: "click" takes a line and column in the shown text.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/dataloom-cli/internal/grid"
	"github.com/KaramelBytes/dataloom-cli/internal/session"
)

var errStop = errors.New("stop")

// Shell reads commands and prints their results.
type Shell struct {
	sess        *session.Session
	output      io.Writer
	historyPath string
	banner      string
	log         zerolog.Logger

	// ask prompts for a replacement value, prefilled with the current one.
	ask func(prompt, current string) (string, error)
}

type command struct {
	name  string
	usage string
	help  string
	run   func(sh *Shell, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"load", "load <path>", "read a delimited file", (*Shell).cmdLoad},
		{"show", "show", "display the active table", (*Shell).cmdShow},
		{"filter", "filter <column> <op> <value>", "keep matching rows of the original (equals, not_equals, contains, greater_than, less_than)", (*Shell).cmdFilter},
		{"reset", "reset", "restore the original table", (*Shell).cmdReset},
		{"describe", "describe", "descriptive statistics", (*Shell).cmdDescribe},
		{"corr", "corr", "Pearson correlation of numeric columns", (*Shell).cmdCorr},
		{"outliers", "outliers", "IQR and z-score outliers", (*Shell).cmdOutliers},
		{"missing", "missing", "missing-data analysis", (*Shell).cmdMissing},
		{"counts", "counts <column>", "value counts of a column", (*Shell).cmdCounts},
		{"extract", "extract <rows|columns>", "show a sub-table, e.g. 0,2 or name,age", (*Shell).cmdExtract},
		{"replace", "replace <column> <old> <new>", "replace a value in a column", (*Shell).cmdReplace},
		{"click", "click <line> <col> [value]", "edit the cell under a 1-based position of the display", (*Shell).cmdClick},
		{"edit", "edit <row> <column> <value>", "edit a cell by row and column name", (*Shell).cmdEdit},
		{"save", "save [path]", "write the active table", (*Shell).cmdSave},
		{"status", "status", "row and column counts", (*Shell).cmdStatus},
		{"help", "help", "list commands", (*Shell).cmdHelp},
		{"exit", "exit", "leave the shell", func(*Shell, []string) error { return errStop }},
	}
}

// New returns a shell over sess writing to output.
func New(sess *session.Session, output io.Writer, historyPath string, log zerolog.Logger) *Shell {
	return &Shell{
		sess:        sess,
		output:      output,
		historyPath: historyPath,
		banner:      "dataloom shell. Type help for commands, exit or Ctrl+D to leave.",
		log:         log,
	}
}

// Loop will run until the user enters "exit", Ctrl+C, Ctrl+D, or an unexpected error occurs.
func (sh *Shell) Loop() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(sh.complete)
	sh.loadHistory(line)
	sh.ask = func(prompt, current string) (string, error) {
		return line.PromptWithSuggestion(prompt, current, -1)
	}

	fmt.Fprintln(sh.output, sh.banner)
	for {
		input, err := line.Prompt("dataloom> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Fprintln(sh.output, "Exiting")
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)
		if err := sh.OneShot(input); err != nil {
			if errors.Is(err, errStop) {
				break
			}
			fmt.Fprintln(sh.output, "✗ Error:", err)
		}
	}
	sh.saveHistory(line)
	return nil
}

// OneShot runs a single command line.
func (sh *Shell) OneShot(input string) error {
	args, err := shellquote.Split(input)
	if err != nil {
		return fmt.Errorf("parse command: %w", err)
	}
	if len(args) == 0 {
		return nil
	}
	name := strings.ToLower(args[0])
	if name == "quit" {
		name = "exit"
	}
	for _, c := range commands {
		if c.name == name {
			sh.log.Debug().Str("cmd", name).Int("args", len(args)-1).Msg("command")
			return c.run(sh, args[1:])
		}
	}
	return fmt.Errorf("unknown command %q (try help)", args[0])
}

func usage(name string) error {
	for _, c := range commands {
		if c.name == name {
			return fmt.Errorf("usage: %s", c.usage)
		}
	}
	return fmt.Errorf("usage: %s", name)
}

func (sh *Shell) print(out string) {
	fmt.Fprint(sh.output, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(sh.output)
	}
}

// printMutation shows the new display followed by the status line.
func (sh *Shell) printMutation(out string, err error) error {
	if err != nil {
		return err
	}
	sh.print(out)
	fmt.Fprintln(sh.output, sh.sess.Status())
	return nil
}

func (sh *Shell) printReport(out string, err error) error {
	if err != nil {
		return err
	}
	sh.print(out)
	return nil
}

func (sh *Shell) cmdLoad(args []string) error {
	if len(args) != 1 {
		return usage("load")
	}
	return sh.printMutation(sh.sess.Load(args[0]))
}

func (sh *Shell) cmdShow(args []string) error { return sh.printMutation(sh.sess.Show()) }

func (sh *Shell) cmdFilter(args []string) error {
	if len(args) != 3 {
		return usage("filter")
	}
	return sh.printMutation(sh.sess.Filter(args[0], args[1], args[2]))
}

func (sh *Shell) cmdReset(args []string) error { return sh.printMutation(sh.sess.Reset()) }

func (sh *Shell) cmdDescribe(args []string) error { return sh.printReport(sh.sess.Describe()) }

func (sh *Shell) cmdCorr(args []string) error { return sh.printReport(sh.sess.Correlate()) }

func (sh *Shell) cmdOutliers(args []string) error { return sh.printReport(sh.sess.Outliers()) }

func (sh *Shell) cmdMissing(args []string) error { return sh.printReport(sh.sess.Missing()) }

func (sh *Shell) cmdCounts(args []string) error {
	if len(args) != 1 {
		return usage("counts")
	}
	return sh.printReport(sh.sess.Counts(args[0]))
}

func (sh *Shell) cmdExtract(args []string) error {
	if len(args) == 0 {
		return usage("extract")
	}
	return sh.printReport(sh.sess.Extract(strings.Join(args, " ")))
}

func (sh *Shell) cmdReplace(args []string) error {
	if len(args) != 3 {
		return usage("replace")
	}
	return sh.printMutation(sh.sess.Replace(args[0], args[1], args[2]))
}

// cmdClick maps a 1-based line and character column of the current display to a cell.
// Positions off the table are ignored without an error.
func (sh *Shell) cmdClick(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("click")
	}
	ln, err1 := strconv.Atoi(args[0])
	col, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return usage("click")
	}
	lines := strings.Split(sh.sess.Display(), "\n")
	if ln < 1 || ln > len(lines) || col < 1 {
		return nil
	}
	pos := grid.Position{Line: ln - 1, Offset: grid.DisplayOffset(lines[ln-1], col-1)}
	cell, ok := sh.sess.Click(pos)
	if !ok {
		return nil
	}
	var value string
	if len(args) == 3 {
		value = args[2]
	} else {
		if sh.ask == nil {
			return fmt.Errorf("no value given for cell [%d, %s]", cell.Row, cell.Column)
		}
		current, err := sh.sess.CurrentValue(cell)
		if err != nil {
			return err
		}
		value, err = sh.ask(fmt.Sprintf("[%d, %s] = ", cell.Row, cell.Column), current)
		if err == liner.ErrPromptAborted {
			fmt.Fprintln(sh.output, "Edit cancelled")
			return nil
		}
		if err != nil {
			return err
		}
	}
	return sh.printMutation(sh.sess.EditCell(cell, value))
}

func (sh *Shell) cmdEdit(args []string) error {
	if len(args) != 3 {
		return usage("edit")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return usage("edit")
	}
	return sh.printMutation(sh.sess.EditCell(grid.Cell{Row: row, Column: args[1]}, args[2]))
}

func (sh *Shell) cmdSave(args []string) error {
	if len(args) > 1 {
		return usage("save")
	}
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	out, err := sh.sess.Save(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.output, "✓", out)
	return nil
}

func (sh *Shell) cmdStatus(args []string) error {
	fmt.Fprintln(sh.output, sh.sess.Status())
	return nil
}

func (sh *Shell) cmdHelp(args []string) error {
	tw := tablewriter.NewWriter(sh.output)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeader([]string{"Command", "Description"})
	for _, c := range commands {
		tw.Append([]string{c.usage, c.help})
	}
	tw.Render()
	return nil
}

// complete offers command names for the first word and column names afterwards.
func (sh *Shell) complete(line string) (c []string) {
	fields := strings.Fields(line)
	if len(fields) <= 1 && !strings.HasSuffix(line, " ") {
		for _, cmd := range commands {
			if strings.HasPrefix(cmd.name, line) {
				c = append(c, cmd.name)
			}
		}
		return c
	}
	t := sh.sess.Active()
	if t == nil {
		return nil
	}
	prefix := ""
	head := line
	if !strings.HasSuffix(line, " ") {
		prefix = fields[len(fields)-1]
		head = strings.TrimSuffix(line, prefix)
	}
	names := t.Names()
	sort.Strings(names)
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			c = append(c, head+shellquote.Join(n))
		}
	}
	return c
}

func (sh *Shell) loadHistory(prompt *liner.State) {
	if sh.historyPath == "" {
		return
	}
	if f, err := os.Open(sh.historyPath); err == nil {
		_, _ = prompt.ReadHistory(f)
		f.Close()
	}
}

func (sh *Shell) saveHistory(prompt *liner.State) {
	if sh.historyPath == "" {
		return
	}
	if f, err := os.Create(sh.historyPath); err == nil {
		_, _ = prompt.WriteHistory(f)
		f.Close()
	} else {
		sh.log.Warn().Err(err).Str("path", sh.historyPath).Msg("save history")
	}
}
