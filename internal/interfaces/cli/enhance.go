package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/client"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

// newEnhanceCommand enhances one tuple given on the command line.
func newEnhanceCommand(opts *RootOptions) *cobra.Command {
	var contextText string

	cmd := &cobra.Command{
		Use:   "enhance SUBJECT VERB OBJECT",
		Short: "Enhance a single SVO tuple",
		Example: `  phytotrait enhance "the orchid" "has" "a prominent labellum" \
    --context "the labellum is 3.2 cm wide and white"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}

			tuple := svo.Tuple{Subject: args[0], Verb: args[1], Object: args[2]}
			result, err := c.Enhance(cmd.Context(), tuple, contextText)
			if err != nil {
				return err
			}

			if opts.OutputFormat == "table" {
				printEnhancedTable(cmd, result)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&contextText, "context", "", "surrounding sentence text")
	return cmd
}

func printEnhancedTable(cmd *cobra.Command, result *client.EnhancedSVO) {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintf(tw, "TUPLE\t(%s, %s, %s)\n", result.Subject, result.Verb, result.Object)
	fmt.Fprintf(tw, "TERMS\t%s\n", strings.Join(result.DetectedTerms, ", "))
	fmt.Fprintf(tw, "CATEGORIES\t%s\n", strings.Join(result.CategoriesDetected, ", "))
	fmt.Fprintf(tw, "RELEVANCE\t%.2f\n", result.BotanicalRelevance)
	fmt.Fprintf(tw, "CONFIDENCE\t%.2f\n", result.OverallConfidence)
	for _, inf := range result.BotanicalInferences {
		fmt.Fprintf(tw, "INFERENCE\t%s (%.2f) terms=%s\n",
			inf.TraitCategory, inf.Confidence, strings.Join(inf.SupportingTerms, ","))
	}
	tw.Flush()
}
