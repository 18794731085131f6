package main

import (
	"fmt"
	"io"

	"github.com/Comcast/rulegraph/tools"

	"github.com/spf13/cobra"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

var graphCmd = struct {
	cobra.Command
	grammar string
	format  string
	message string
	png     string
}{
	Command: cobra.Command{
		Use:   "graph -g GRAMMAR",
		Short: "Render the automaton as Graphviz dot or Mermaid",
	},
}

func init() {
	graphCmd.RunE = func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar(cmd, graphCmd.grammar)
		if err != nil {
			return err
		}
		spec := g.Spec()

		var highlight []string
		if cmd.Flags().Changed("message") {
			highlight = tools.FrontierNames(g.Automaton, graphCmd.message)
		}

		if graphCmd.png != "" {
			filename, err := tools.PNG(spec, graphCmd.png, highlight)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), filename)
			return nil
		}

		w := nopCloser{cmd.OutOrStdout()}
		switch graphCmd.format {
		case "dot":
			return tools.Dot(spec, w, highlight)
		case "mermaid":
			return tools.Mermaid(spec, w, nil, highlight)
		default:
			return fmt.Errorf("unknown format %q (want dot or mermaid)", graphCmd.format)
		}
	}
	grammarFlag(&graphCmd.Command, &graphCmd.grammar)
	f := graphCmd.Flags()
	f.StringVarP(&graphCmd.format, "format", "f", "dot", "dot or mermaid")
	f.StringVarP(&graphCmd.message, "message", "m", "", "Highlight the frontier after reading this message")
	f.StringVar(&graphCmd.png, "png", "", "Write BASENAME.dot and BASENAME.png (requires Graphviz)")
	rootCmd.AddCommand(&graphCmd.Command)
}

var htmlCmd = struct {
	cobra.Command
	grammar string
	css     []string
	graph   bool
}{
	Command: cobra.Command{
		Use:   "html -g GRAMMAR",
		Short: "Render the grammar and its automaton as an HTML page",
	},
}

func init() {
	htmlCmd.RunE = func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar(cmd, htmlCmd.grammar)
		if err != nil {
			return err
		}
		return tools.RenderSpecPage(g.Spec(), cmd.OutOrStdout(), htmlCmd.css, htmlCmd.graph)
	}
	grammarFlag(&htmlCmd.Command, &htmlCmd.grammar)
	htmlCmd.Flags().StringSliceVar(&htmlCmd.css, "css", nil, "CSS files to link")
	htmlCmd.Flags().BoolVar(&htmlCmd.graph, "graph", true, "Include a Mermaid graph")
	rootCmd.AddCommand(&htmlCmd.Command)
}

var tableCmd = struct {
	cobra.Command
	grammar string
}{
	Command: cobra.Command{
		Use:   "table -g GRAMMAR",
		Short: "Print the automaton's transition table",
	},
}

func init() {
	tableCmd.RunE = func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar(cmd, tableCmd.grammar)
		if err != nil {
			return err
		}
		return tools.Table(cmd.OutOrStdout(), g.Spec())
	}
	grammarFlag(&tableCmd.Command, &tableCmd.grammar)
	rootCmd.AddCommand(&tableCmd.Command)
}

var ebnfCmd = struct {
	cobra.Command
	grammar string
	verify  bool
}{
	Command: cobra.Command{
		Use:   "ebnf -g GRAMMAR",
		Short: "Print the rules as EBNF",
	},
}

func init() {
	ebnfCmd.RunE = func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar(cmd, ebnfCmd.grammar)
		if err != nil {
			return err
		}
		if g.Rules == nil {
			return fmt.Errorf("%s has no rules", ebnfCmd.grammar)
		}
		root := g.Source.Root
		text := tools.EBNF(g.Rules, root)
		if ebnfCmd.verify {
			if err = tools.VerifyEBNF(text, root); err != nil {
				return err
			}
		}
		_, err = io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	grammarFlag(&ebnfCmd.Command, &ebnfCmd.grammar)
	ebnfCmd.Flags().BoolVar(&ebnfCmd.verify, "verify", false, "Parse and verify the EBNF before printing it")
	rootCmd.AddCommand(&ebnfCmd.Command)
}

var analyzeCmd = struct {
	cobra.Command
	grammar string
	limit   int
}{
	Command: cobra.Command{
		Use:   "analyze -g GRAMMAR",
		Short: "Print a YAML report about the grammar and its automaton",
	},
}

func init() {
	analyzeCmd.RunE = func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar(cmd, analyzeCmd.grammar)
		if err != nil {
			return err
		}
		sa, err := tools.Analyze(g.Spec(), analyzeCmd.limit)
		if err != nil {
			return err
		}
		a := &tools.Analysis{
			Name:      g.Id,
			Automaton: sa,
		}
		if g.Rules != nil {
			a.Grammar = tools.AnalyzeRules(g.Rules, g.Source.Root)
		}
		bs, err := a.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(bs)
		return err
	}
	grammarFlag(&analyzeCmd.Command, &analyzeCmd.grammar)
	analyzeCmd.Flags().IntVarP(&analyzeCmd.limit, "limit", "l", 10000, "Maximum number of accepted strings to enumerate")
	rootCmd.AddCommand(&analyzeCmd.Command)
}
