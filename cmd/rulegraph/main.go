// Command rulegraph compiles message grammars into automata and checks
// messages against them.
package main

import (
	"fmt"
	"os"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/util"

	"github.com/spf13/cobra"
)

var rootCmd = struct {
	cobra.Command
	verbose bool
	strict  bool
	root    uint32
	session string
}{
	Command: cobra.Command{
		Use:   "rulegraph",
		Short: "Compile message grammars into automata and check messages",
		Long: `Compile message grammars into automata and check messages

A GRAMMAR is a file, a file:// or http(s):// URL, or "-" for stdin.
It holds either plain rules (optionally followed by a blank line and
some messages) or a YAML/JSON grammar source:

   name: monster
   root: 0
   rules: |
     0: 4 1 5
     ...
   messages: [ababbb, bababa]

Rule files can use %inline("other.txt") to include other files.`,
		SilenceUsage: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&rootCmd.verbose, "verbose", "v", false, "Turn on debug logging")
	pf.BoolVar(&rootCmd.strict, "strict", false, "Reject stray tokens in rules")
	pf.Uint32Var(&rootCmd.root, "root", uint32(core.DefaultRoot), "Rule that describes a complete message")
	pf.StringVar(&rootCmd.session, "session", os.Getenv("RULEGRAPH_SESSION"),
		"Session cookie for http(s) grammar sources")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		util.Logging = rootCmd.verbose
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
