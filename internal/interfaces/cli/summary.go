package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/client"
)

// newSummaryCommand computes aggregate statistics over saved results.
func newSummaryCommand(opts *RootOptions) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:     "summary",
		Short:   "Summarize previously produced enhancement results",
		Example: `  phytotrait summary --input results.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := readResultsFile(inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			c, err := opts.newClient()
			if err != nil {
				return err
			}

			summary, err := c.Summarize(cmd.Context(), results)
			if err != nil {
				return err
			}

			if opts.OutputFormat == "table" {
				printSummaryTable(cmd, summary)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "JSON file of enhanced results (defaults to stdin)")
	return cmd
}

func readResultsFile(path string, stdin io.Reader) ([]client.EnhancedSVO, error) {
	var reader io.Reader = stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var results []client.EnhancedSVO
	if err := json.NewDecoder(reader).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return results, nil
}

func printSummaryTable(cmd *cobra.Command, s *client.Summary) {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintf(tw, "PROCESSED\t%d\n", s.TotalProcessed)
	fmt.Fprintf(tw, "RELEVANT\t%d\n", s.BotanicallyRelevant)
	fmt.Fprintf(tw, "HIGH CONFIDENCE\t%d\n", s.HighConfidence)
	fmt.Fprintf(tw, "WITH MEASUREMENTS\t%d (%.0f%%)\n", s.WithMeasurements, s.MeasurementFraction*100)
	fmt.Fprintf(tw, "MEAN RELEVANCE\t%.3f\n", s.MeanRelevance)
	fmt.Fprintf(tw, "MEAN CONFIDENCE\t%.3f\n", s.MeanConfidence)
	for category, count := range s.CategoryDistribution {
		fmt.Fprintf(tw, "CATEGORY %s\t%d\n", category, count)
	}
	for _, tf := range s.TopTerms {
		fmt.Fprintf(tw, "TERM %s\t%d\n", tf.Term, tf.Count)
	}
	tw.Flush()
}
