package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plimantour/rai-agent/core/assessment"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <description-file>",
	Short: "Review a solution description before generating",
	Long: `Analyze asks the model what an assessment reviewer would find missing
or unclear in the solution description, so the description can be
improved before spending a full generation run on it.`,
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

		feedback, cost, err := a.pipeline.AnalyzeDescription(cmd.Context(), assessment.AnalyzeParams{
			SolutionDescription: description,
			Language:            a.cfg.Assessment.Language,
			Model:               a.cfg.OpenAI.Model,
			RebuildCache:        flagRebuild,
			Progress:            printProgress,
		})
		if err != nil {
			return err
		}

		fmt.Println(feedback)
		fmt.Fprintf(os.Stderr, "Analysis cost: %.4f EUR\n", cost)
		return nil
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit <description-file>",
	Short: "Check a description for bias and prompt injection",
	Long: `Audit screens the solution description for embedded bias and for text
that tries to steer the generation steps, and prints a cleaned-up
rewrite alongside the findings.`,
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

		audit, err := a.pipeline.AuditDescription(cmd.Context(), assessment.AnalyzeParams{
			SolutionDescription: description,
			Language:            a.cfg.Assessment.Language,
			Model:               a.cfg.OpenAI.Model,
			RebuildCache:        flagRebuild,
			Progress:            printProgress,
		})
		if err != nil {
			return err
		}

		if audit.Report != "" {
			fmt.Println(audit.Report)
		} else {
			fmt.Println("No bias or injection risks identified.")
		}
		if audit.RewrittenDescription != description {
			fmt.Println("\nRewritten description:")
			fmt.Println(audit.RewrittenDescription)
		}
		fmt.Fprintf(os.Stderr, "Audit cost: %.4f EUR\n", audit.Cost)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(auditCmd)
}
