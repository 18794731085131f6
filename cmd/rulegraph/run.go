package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/crew"
	"github.com/Comcast/rulegraph/tools"
	"github.com/Comcast/rulegraph/util"

	"github.com/spf13/cobra"
)

// Runner solves one named puzzle given its input text.
type Runner func(ctx context.Context, input string, out io.Writer) error

// Runners are the puzzles "run" knows about.
var Runners = map[string]Runner{
	"day_19": runDay19,
}

// RunnerNames returns the sorted names of the Runners.
func RunnerNames() []string {
	acc := make([]string, 0, len(Runners))
	for name := range Runners {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

// Dispatch runs the named Runner with the contents of the input file.
func Dispatch(ctx context.Context, name, inputFile string, out io.Writer) error {
	r, have := Runners[name]
	if !have {
		return fmt.Errorf("unknown runner %q (known: %s)", name, strings.Join(RunnerNames(), ", "))
	}
	if inputFile == "" {
		inputFile = filepath.Join("input", name+".txt")
	}
	util.Logf("rulegraph run %s input %s", name, inputFile)

	bs, err := tools.ReadFileWithInlines(inputFile)
	if err != nil {
		return err
	}
	return r(ctx, string(bs), out)
}

func runDay19(ctx context.Context, input string, out io.Writer) error {
	p := &core.Parser{
		Strict: rootCmd.strict,
	}
	puzzle, err := p.ParseInput(input)
	if err != nil {
		return err
	}
	a, err := core.Build(puzzle.Rules, core.RuleId(rootCmd.root))
	if err != nil {
		return err
	}
	n, err := crew.Count(ctx, a, puzzle.Messages, crew.DefaultWorkers)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "The amount of messages that completely match rule %d is: %d\n", rootCmd.root, n)
	return nil
}

var runCmd = struct {
	cobra.Command
	input string
}{
	Command: cobra.Command{
		Use:   "run NAME...",
		Short: "Run puzzles by name (for example, day_19)",
		Args:  cobra.MinimumNArgs(1),
	},
}

func init() {
	runCmd.RunE = func(cmd *cobra.Command, names []string) error {
		if runCmd.input != "" && 1 < len(names) {
			return fmt.Errorf("--input works with only one NAME")
		}
		for _, name := range names {
			if err := Dispatch(cmd.Context(), name, runCmd.input, cmd.OutOrStdout()); err != nil {
				return err
			}
		}
		return nil
	}
	runCmd.Flags().StringVarP(&runCmd.input, "input", "i", "", "Input file (default input/NAME.txt)")
	rootCmd.AddCommand(&runCmd.Command)
}

// stdinIfDash is os.Stdin for "-".
func stdinIfDash(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}
