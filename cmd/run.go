package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yumyai/orthogroup/pkg/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline for one query gene",
	Long: `Run the pipeline for one query gene

The query is given as an OrthoDB gene id or a UniProt accession. The run
record is printed as JSON; files are written under the output folder unless
write_files is false.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := pipeline.Query{}
		q.GeneID, _ = cmd.Flags().GetString("gene-id")
		q.UniProtID, _ = cmd.Flags().GetString("uniprot-id")
		q.LevelName, _ = cmd.Flags().GetString("level")
		if q.GeneID == "" && q.UniProtID == "" {
			return fmt.Errorf("one of --gene-id or --uniprot-id is required")
		}

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.pipe.Run(cmd.Context(), q)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	RootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("gene-id", "g", "", "OrthoDB gene id, e.g. 9606_0:001c7b")
	runCmd.Flags().StringP("uniprot-id", "u", "", "UniProt accession of the query")
	runCmd.Flags().StringP("level", "l", "", "taxonomic level name, overrides og_select_params")
	runCmd.MarkFlagsMutuallyExclusive("gene-id", "uniprot-id")
}
