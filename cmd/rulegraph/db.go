package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Comcast/rulegraph/storage/bolt"
	"github.com/Comcast/rulegraph/util"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var dbCmd = struct {
	cobra.Command
	crewId string
}{
	Command: cobra.Command{
		Use:   "db FILE",
		Short: "List the grammars and tallies in a bbolt file",
		Args:  cobra.ExactArgs(1),
	},
}

func init() {
	dbCmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := bolt.NewStorage(args[0])
		if err != nil {
			return err
		}
		s.Debug = util.Logging
		if err = s.Open(ctx); err != nil {
			return err
		}
		defer s.Close(ctx)

		rs, err := s.GetCrew(ctx, dbCmd.crewId)
		if err != nil {
			return err
		}
		if rs == nil {
			return fmt.Errorf("no crew %q in %s", dbCmd.crewId, args[0])
		}
		tallies, err := s.GetTallies(ctx, dbCmd.crewId)
		if err != nil {
			return err
		}

		sort.Slice(rs, func(i, j int) bool { return rs[i].Id < rs[j].Id })

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("Grammar", "Nodes", "Checked", "Matched", "Errors")
		for _, r := range rs {
			nodes := ""
			if r.Spec != nil {
				nodes = strconv.Itoa(len(r.Spec.Nodes))
			}
			row := []string{r.Id, nodes, "0", "0", "0"}
			if t, have := tallies[r.Id]; have {
				row[2] = strconv.Itoa(t.Checked)
				row[3] = strconv.Itoa(t.Matched)
				row[4] = strconv.Itoa(t.Errors)
			}
			if err = table.Append(row); err != nil {
				return err
			}
		}
		return table.Render()
	}
	dbCmd.Flags().StringVar(&dbCmd.crewId, "id", "rulegraph", "Crew id")
	rootCmd.AddCommand(&dbCmd.Command)
}
