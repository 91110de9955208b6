package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups <gene_id>",
	Short: "List the ortholog groups of a gene",
	Long: `List the ortholog groups of a gene

Tab-delimited: og_id, level_taxid, level_name, species_count, og_name.
Groups with the most species come first.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		groups, err := a.store.ListGroups(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "og_id\tlevel_taxid\tlevel_name\tspecies_count\tog_name")
		for _, g := range groups {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%d\t%s\n", g.OGID, g.LevelTaxID, g.LevelName, g.SpeciesCount, g.Name)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(groupsCmd)
}
