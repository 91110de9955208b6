package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yumyai/orthogroup/pkg/pipeline"
)

var defaultLevels = []string{"Eukaryota", "Mammalia", "Metazoa", "Tetrapoda", "Vertebrata"}

var speciesCmd = &cobra.Command{
	Use:   "species <species_id>",
	Short: "Run the pipeline for every gene of a species",
	Long: `Run the pipeline for every gene of a species at each level

Units (gene x level) run on a fixed number of workers. A failing unit is
reported and the others carry on. Units whose output folder exists are
skipped unless --overwrite is given. One line per unit is printed:
gene, level, status, folder and error.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		levels, _ := flags.GetStringSlice("levels")
		workers, _ := flags.GetInt("workers")
		overwrite, _ := flags.GetBool("overwrite")
		progress, _ := flags.GetBool("progress")
		if workers < 1 {
			return fmt.Errorf("--workers must be positive")
		}

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		batch := &pipeline.Batch{Pipeline: a.pipe, Workers: workers, Overwrite: overwrite, Progress: progress}
		results, err := batch.RunSpecies(cmd.Context(), args[0], levels)
		for _, r := range results {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join([]string{r.GeneID, r.Level, string(r.Status), r.Dir, r.Error}, "\t"))
		}
		return err
	},
}

func init() {
	RootCmd.AddCommand(speciesCmd)

	speciesCmd.Flags().StringSliceP("levels", "L", defaultLevels, "level names, comma separated")
	speciesCmd.Flags().IntP("workers", "j", 4, "number of units run at once")
	speciesCmd.Flags().BoolP("overwrite", "", false, "rerun units whose output folder exists")
	speciesCmd.Flags().BoolP("progress", "", false, "show a progress bar on stderr")
}
