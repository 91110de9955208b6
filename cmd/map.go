package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/db"
	"github.com/yumyai/orthogroup/pkg/idmap"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map a CSV column of UniProt ids to OrthoDB gene ids",
	Long: `Map a CSV column of UniProt ids to OrthoDB gene ids

A copy of the table is written with a gene_id column added. Whitespace and
isoform suffixes are stripped before lookup, "P12345-1" -> "P12345". Ids not
found in the database are reported and left with an empty gene_id.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		column, _ := cmd.Flags().GetString("uni-column")
		output, _ := cmd.Flags().GetString("out-file")
		if input == "" {
			return fmt.Errorf("--input is required")
		}
		if output == "" {
			output = idmap.DefaultOutputPath(input)
		}

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		in, err := os.Open(input)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := os.Create(output)
		if err != nil {
			return err
		}
		defer out.Close()
		w := bufio.NewWriter(out)

		stats, err := idmap.MapCSV(cmd.Context(), in, w, column, a.store, db.DuplicateAction(a.params.DuplicateAction))
		if err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
		logger.Info("Mapped UniProt ids",
			zap.String("rows", humanize.Comma(int64(stats.Rows))),
			zap.String("unique", humanize.Comma(int64(stats.Unique))),
			zap.String("mapped", humanize.Comma(int64(stats.Mapped))),
			zap.Strings("not_found", stats.Missing),
			zap.String("output", output))
		return out.Close()
	},
}

func init() {
	RootCmd.AddCommand(mapCmd)

	mapCmd.Flags().StringP("input", "i", "", "input table (CSV) with a column of UniProt ids")
	mapCmd.Flags().StringP("uni-column", "", "uniprot_id", "name of the column holding the UniProt ids")
	mapCmd.Flags().StringP("out-file", "", "", `output table, default: input name + "_mapped_odbgeneid"`)
}
