package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Comcast/rulegraph/crew"
	"github.com/Comcast/rulegraph/storage"
	"github.com/Comcast/rulegraph/storage/bolt"
	"github.com/Comcast/rulegraph/util"

	"github.com/jsccast/yaml"
	"github.com/spf13/cobra"
)

var countCmd = struct {
	cobra.Command
	workers int
}{
	Command: cobra.Command{
		Use:   "count GRAMMAR",
		Short: "Count the grammar's messages that match completely",
		Args:  cobra.ExactArgs(1),
	},
}

func init() {
	countCmd.RunE = func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar(cmd, args[0])
		if err != nil {
			return err
		}
		if len(g.Messages) == 0 {
			return fmt.Errorf("%s has no messages", args[0])
		}
		n, err := crew.Count(cmd.Context(), g.Automaton, g.Messages, countCmd.workers)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", n)
		return nil
	}
	countCmd.Flags().IntVarP(&countCmd.workers, "workers", "w", crew.DefaultWorkers, "Number of checking goroutines")
	rootCmd.AddCommand(&countCmd.Command)
}

var checkCmd = struct {
	cobra.Command
	grammar string
}{
	Command: cobra.Command{
		Use:   "check -g GRAMMAR [MESSAGE...]",
		Short: "Check messages (or lines from stdin) against a grammar",
	},
}

func init() {
	checkCmd.RunE = func(cmd *cobra.Command, msgs []string) error {
		g, err := loadGrammar(cmd, checkCmd.grammar)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		verdict := func(msg string) {
			if g.Matches(msg) {
				fmt.Fprintf(out, "match %s\n", msg)
			} else {
				fmt.Fprintf(out, "nomatch %s\n", msg)
			}
		}
		if 0 < len(msgs) {
			for _, msg := range msgs {
				verdict(msg)
			}
			return nil
		}
		in := bufio.NewScanner(cmd.InOrStdin())
		for in.Scan() {
			if line := strings.TrimSpace(in.Text()); line != "" {
				verdict(line)
			}
		}
		return in.Err()
	}
	grammarFlag(&checkCmd.Command, &checkCmd.grammar)
	rootCmd.AddCommand(&checkCmd.Command)
}

var compileCmd = struct {
	cobra.Command
	grammar string
	out     string
	db      string
	crewId  string
}{
	Command: cobra.Command{
		Use:   "compile -g GRAMMAR [-o FILE] [--db FILE]",
		Short: "Compile a grammar into an automaton spec (YAML or JSON)",
	},
}

func init() {
	compileCmd.RunE = func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar(cmd, compileCmd.grammar)
		if err != nil {
			return err
		}
		spec := g.Spec()

		var (
			bs   []byte
			name = compileCmd.out
		)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".json":
			bs, err = json.MarshalIndent(spec, "", "  ")
			bs = append(bs, '\n')
		default:
			bs, err = yaml.Marshal(spec)
		}
		if err != nil {
			return err
		}

		switch name {
		case "":
			if compileCmd.db == "" {
				if _, err = cmd.OutOrStdout().Write(bs); err != nil {
					return err
				}
			}
		case "-":
			if _, err = cmd.OutOrStdout().Write(bs); err != nil {
				return err
			}
		default:
			if err = os.WriteFile(name, bs, 0644); err != nil {
				return err
			}
		}

		if compileCmd.db == "" {
			return nil
		}

		ctx := cmd.Context()
		s, err := bolt.NewStorage(compileCmd.db)
		if err != nil {
			return err
		}
		s.Debug = util.Logging
		if err = s.Open(ctx); err != nil {
			return err
		}
		defer s.Close(ctx)

		if err = s.MakeCrew(ctx, compileCmd.crewId); err != nil {
			return err
		}
		return s.WriteGrammars(ctx, compileCmd.crewId, []*storage.GrammarRecord{
			{
				Id:     g.Id,
				Source: g.Source,
				Spec:   spec,
			},
		})
	}
	grammarFlag(&compileCmd.Command, &compileCmd.grammar)
	compileCmd.Flags().StringVarP(&compileCmd.out, "out", "o", "", "Output file (.yaml or .json; \"-\" for stdout)")
	compileCmd.Flags().StringVar(&compileCmd.db, "db", "", "Also store the grammar in this bbolt file")
	compileCmd.Flags().StringVar(&compileCmd.crewId, "id", "rulegraph", "Crew id used with --db")
	rootCmd.AddCommand(&compileCmd.Command)
}

var enumerateCmd = struct {
	cobra.Command
	grammar string
	limit   int
}{
	Command: cobra.Command{
		Use:   "enumerate -g GRAMMAR",
		Short: "Print the strings the grammar accepts",
	},
}

func init() {
	enumerateCmd.RunE = func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar(cmd, enumerateCmd.grammar)
		if err != nil {
			return err
		}
		return writeLines(cmd.OutOrStdout(), g.Automaton.Language(enumerateCmd.limit))
	}
	grammarFlag(&enumerateCmd.Command, &enumerateCmd.grammar)
	enumerateCmd.Flags().IntVarP(&enumerateCmd.limit, "limit", "l", 1000, "Maximum number of strings (0 for no limit)")
	rootCmd.AddCommand(&enumerateCmd.Command)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
