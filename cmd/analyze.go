package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/service"
)

var (
	analyzeJSON   bool
	analyzeOutput string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Profile a CSV file: column statistics, semantic types, relationships, insights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := dataset.LoadCSVFile(args[0])
		if err != nil {
			return err
		}
		validation, err := dataset.Validate(t)
		if err != nil {
			return fmt.Errorf("validate %s: %w", args[0], err)
		}
		for _, w := range validation.Warnings {
			fmt.Fprintln(os.Stderr, "⚠ Warning:", w)
		}

		analyzer, err := buildAnalyzer()
		if err != nil {
			return err
		}
		prof := analyzer.Profile(t)

		var out []byte
		if analyzeJSON {
			out, err = json.MarshalIndent(service.Sanitize(prof), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal profile: %w", err)
			}
			out = append(out, '\n')
		} else {
			out = []byte(service.MarkdownReport(prof))
		}

		if analyzeOutput != "" {
			if err := os.WriteFile(analyzeOutput, out, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("✓ Report written to %s\n", analyzeOutput)
			return nil
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit the raw profile as JSON instead of markdown")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the report to a file instead of stdout")
}
