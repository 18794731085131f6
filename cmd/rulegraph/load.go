package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/crew"
	"github.com/Comcast/rulegraph/tools"
	"github.com/Comcast/rulegraph/util"

	"github.com/spf13/cobra"
)

// loadGrammar reads and compiles the grammar at the given location.
//
// The global --strict and --root flags override the source's own
// settings when they're given.
func loadGrammar(cmd *cobra.Command, loc string) (*crew.Grammar, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := crew.NewFetcher(rootCmd.session)
	if err != nil {
		return nil, err
	}
	f.Debug = util.Logging

	src, err := tools.ReadGrammarSource(ctx, f, loc)
	if err != nil {
		return nil, err
	}

	if rootCmd.strict {
		src.Strict = true
	}
	if fl := cmd.Flags().Lookup("root"); fl != nil && fl.Changed {
		src.Root = core.RuleId(rootCmd.root)
	}

	id := src.Name
	if id == "" {
		id = grammarId(loc)
	}

	return crew.Compile(ctx, id, src)
}

// grammarId makes a grammar id from a location: the base name without
// its extension.
func grammarId(loc string) string {
	if loc == "-" {
		return "stdin"
	}
	base := filepath.Base(loc)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// grammarFlag adds the common -g flag.
func grammarFlag(cmd *cobra.Command, loc *string) {
	cmd.Flags().StringVarP(loc, "grammar", "g", "", "Grammar file or URL")
	cmd.MarkFlagRequired("grammar")
}
