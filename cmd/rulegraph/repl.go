package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Comcast/rulegraph/core"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var replCmd = struct {
	cobra.Command
	grammar string
}{
	Command: cobra.Command{
		Use:   "repl -g GRAMMAR",
		Short: "Check messages interactively",
	},
}

func init() {
	replCmd.RunE = func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar(cmd, replCmd.grammar)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		var (
			match   = promptui.Styler(promptui.FGGreen)
			nomatch = promptui.Styler(promptui.FGRed)
			info    = promptui.Styler(promptui.FGCyan)
		)

		fmt.Fprintln(out, info(fmt.Sprintf("%s: %d nodes, %d edges", g.Id, g.Automaton.NodeCount(), g.Automaton.EdgeCount())))

		for {
			prompt := promptui.Prompt{
				Label: "message (or exit)",
			}
			msg, err := prompt.Run()
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if msg = strings.TrimSpace(msg); msg == "exit" {
				return nil
			}

			sizes, matched := replReport(g.Automaton, msg)
			fmt.Fprintln(out, info("frontier sizes "+sizes))
			if matched {
				fmt.Fprintln(out, match("match"))
			} else {
				fmt.Fprintln(out, nomatch("nomatch"))
			}
		}
	}
	grammarFlag(&replCmd.Command, &replCmd.grammar)
	rootCmd.AddCommand(&replCmd.Command)
}

// replReport gives the frontier size before the message and after
// each symbol, and the verdict.
func replReport(a *core.Automaton, msg string) (string, bool) {
	trace := a.Trace(msg)
	sizes := make([]string, len(trace))
	for i, frontier := range trace {
		sizes[i] = strconv.Itoa(len(frontier))
	}
	return strings.Join(sizes, " "), a.Accepted(trace, msg)
}
