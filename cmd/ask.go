package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/nlquery"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/service"
)

var (
	askFile string
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask a plain-language question about a CSV file",
	Long: `Ask runs the question through intent classification, entity resolution, and
time filtering, executes the matching analysis, and prints the answer.

Examples:
  csvql ask -f sales.csv "What are the top products last month?"
  csvql ask -f sales.csv --json "Total tax collected"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")
		t, err := dataset.LoadCSVFile(askFile)
		if err != nil {
			return err
		}
		if _, err := dataset.Validate(t); err != nil {
			return fmt.Errorf("validate %s: %w", askFile, err)
		}

		analyzer, err := buildAnalyzer()
		if err != nil {
			return err
		}
		payload := analyzer.Ask(context.Background(), t, prompt)

		if askJSON {
			out, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal answer: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		answer, err := plainAnswer(cmd.Context(), prompt, payload)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}

// plainAnswer re-derives the result from the sanitized payload and phrases
// it for the terminal.
func plainAnswer(ctx context.Context, prompt string, payload map[string]any) (string, error) {
	raw, err := json.Marshal(payload["specific_analysis"])
	if err != nil {
		return "", fmt.Errorf("decode analysis: %w", err)
	}
	var result nlquery.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode analysis: %w", err)
	}
	var responder service.Responder = service.PlainResponder{}
	return responder.Respond(ctx, prompt, result)
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "CSV file to query (required)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full analysis payload as JSON")
	_ = askCmd.MarkFlagRequired("file")
}
