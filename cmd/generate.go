package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plimantour/rai-agent/core/assessment"
	"github.com/plimantour/rai-agent/core/document"
	"github.com/plimantour/rai-agent/core/llm"
)

var (
	generateTemplate  string
	generateOutput    string
	generateAggregate string
	generateCompress  bool
	generateEffort    string
	generateAudit     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <description-file>",
	Short: "Draft a full assessment from a solution description",
	Long: `Generate runs the twelve assessment steps against the configured model
and fills the assessment template with the generated sections. Pass "-"
as the description file to read it from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		description, err := readDescription(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		model := a.cfg.OpenAI.Model
		effort := generateEffort
		if effort == "" {
			effort = a.cfg.OpenAI.ReasoningEffort
		}

		if generateAudit {
			audit, err := a.pipeline.AuditDescription(ctx, assessment.AnalyzeParams{
				SolutionDescription: description,
				Language:            a.cfg.Assessment.Language,
				Model:               model,
				RebuildCache:        flagRebuild,
				Progress:            printProgress,
			})
			if err != nil {
				return err
			}
			if audit.Report != "" {
				fmt.Fprintln(os.Stderr, audit.Report)
			}
			description = audit.RewrittenDescription
		}

		result, err := a.pipeline.Run(ctx, assessment.RunParams{
			SolutionDescription: description,
			Language:            a.cfg.Assessment.Language,
			Model:               model,
			Compress:            generateCompress && a.cfg.Compression.Enabled,
			RebuildCache:        flagRebuild,
			ReasoningEffort:     effort,
			Progress:            printProgress,
		})
		if err != nil {
			return err
		}

		if generateTemplate != "" {
			applier := document.NewTextApplier(a.logger)
			if err := applier.Apply(generateTemplate, generateOutput, result.Substitutions); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Assessment written to %s\n", generateOutput)
		}

		if generateAggregate != "" {
			raw, err := json.MarshalIndent(result.Aggregate, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode aggregate sections: %w", err)
			}
			if err := os.WriteFile(generateAggregate, raw, 0o644); err != nil {
				return fmt.Errorf("failed to write aggregate sections: %w", err)
			}
		}

		fmt.Fprintf(os.Stderr, "Run %s: %d intended uses, %d prompt tokens, %d output tokens, %.4f EUR\n",
			result.RunID, len(result.IntendedUses), result.PromptTokens, result.OutputTokens, result.TotalCost)
		if result.Summary.Status == llm.SummaryCaptured {
			fmt.Fprintf(os.Stderr, "Reasoning summary:\n%s\n", result.Summary.Text)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateTemplate, "template", "", "assessment template to fill")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "assessment.txt", "path for the filled assessment")
	generateCmd.Flags().StringVar(&generateAggregate, "sections", "", "optional path for the merged step payloads as JSON")
	generateCmd.Flags().BoolVar(&generateCompress, "compress", false, "compress prompts through the configured compression service")
	generateCmd.Flags().StringVar(&generateEffort, "reasoning-effort", "", "reasoning effort for reasoning models (low, medium, high)")
	generateCmd.Flags().BoolVar(&generateAudit, "audit", false, "audit the description for bias and prompt injection first")
	rootCmd.AddCommand(generateCmd)
}
