package main

import (
	"fmt"
	"io"

	"github.com/Comcast/rulegraph/crew"
	"github.com/Comcast/rulegraph/tools"

	"github.com/jsccast/yaml"
	"github.com/spf13/cobra"
)

var expectCmd = struct {
	cobra.Command
	grammars []string
	dir      string
	verbose  bool
}{
	Command: cobra.Command{
		Use:   "expect SESSION [-- COMMAND ARG...]",
		Short: "Run an expectation session against a checker",
		Long: `Run an expectation session against a checker

The session (YAML) sends lines to a checker and waits for verdicts
that match its patterns.  Without a COMMAND, the checker runs
in-process.  Otherwise COMMAND (for example "rgio -io std") is
started, and the session talks to its stdin and stdout.`,
		Args: cobra.MinimumNArgs(1),
	},
}

func init() {
	expectCmd.RunE = func(cmd *cobra.Command, args []string) error {
		in, err := stdinIfDash(args[0])
		if err != nil {
			return err
		}
		bs, err := io.ReadAll(in)
		in.Close()
		if err != nil {
			return err
		}

		var s tools.Session
		if err = yaml.Unmarshal(bs, &s); err != nil {
			return err
		}
		if expectCmd.verbose {
			s.Verbose = true
			s.ShowStdin = true
			s.ShowStdout = true
			s.ShowStderr = true
		}

		ctx := cmd.Context()
		if 1 < len(args) {
			err = s.Run(ctx, expectCmd.dir, args[1:]...)
		} else {
			c := crew.NewCrew("expect")
			for _, loc := range expectCmd.grammars {
				g, err := loadGrammar(cmd, loc)
				if err != nil {
					return err
				}
				c.Set(g)
			}
			err = s.RunChecker(ctx, c)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "passed %d IOs\n", len(s.IOs))
		return nil
	}
	f := expectCmd.Flags()
	f.StringSliceVarP(&expectCmd.grammars, "grammar", "g", nil, "Grammars for the in-process checker (first is the default)")
	f.StringVar(&expectCmd.dir, "dir", "", "Working directory for COMMAND")
	f.BoolVar(&expectCmd.verbose, "show", false, "Log the session's traffic")
	rootCmd.AddCommand(&expectCmd.Command)
}
