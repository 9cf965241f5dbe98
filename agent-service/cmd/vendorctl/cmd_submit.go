package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/admission"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/clients/agent"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/clients/catalog"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/portal"
)

var stateLines = map[models.FlowState]string{
	models.FlowAdding:   "Product approved, adding to catalog...",
	models.FlowSuccess:  "Product added to catalog.",
	models.FlowRejected: "Product did not meet the catalog requirements.",
	models.FlowFailed:   "Product was approved but could not be added to the catalog.",
}

func bindSubmission(cmd *cobra.Command, sub *models.Submission) {
	f := cmd.Flags()
	f.StringVar(&sub.VendorName, "vendor", "", "vendor name")
	f.StringVar(&sub.ProductName, "name", "", "product name (required)")
	f.StringVar(&sub.Description, "description", "", "product description (required)")
	f.Float64Var(&sub.Price, "price", 0, "product price")
	f.StringVar(&sub.Category, "category", "", "product category")
}

func newSubmitCmd(opts *options) *cobra.Command {
	var sub models.Submission
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Evaluate a product and add it to the catalog when approved",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			controller := admission.New(catalog.New(opts.catalogURL, opts.catalogTimeout), admission.Config{Threshold: opts.threshold})
			flow := portal.NewFlow(agent.New(opts.agentURL, opts.agentTimeout), controller)

			fmt.Fprintln(out, "Evaluating product with AI...")
			outcome, err := flow.Run(cmd.Context(), sub, func(s models.FlowState) {
				fmt.Fprintln(out, stateLines[s])
			})
			if err != nil {
				return err
			}
			printEvaluation(out, outcome.Evaluation)
			fmt.Fprintln(out, outcome.Message)
			if outcome.State == models.FlowFailed {
				return fmt.Errorf("catalog admission failed: %v", outcome.Result.Err)
			}
			return nil
		},
	}
	bindSubmission(cmd, &sub)
	return cmd
}

func newEvaluateCmd(opts *options) *cobra.Command {
	var sub models.Submission
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a product without adding it to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := agent.New(opts.agentURL, opts.agentTimeout).Evaluate(cmd.Context(), sub)
			if err != nil {
				return &portal.FlowError{Message: portal.UserMessage(err), Err: err}
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(ev)
			}
			printEvaluation(cmd.OutOrStdout(), ev)
			return nil
		},
	}
	bindSubmission(cmd, &sub)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the evaluation as JSON")
	return cmd
}

func printEvaluation(w io.Writer, ev models.Evaluation) {
	fmt.Fprintf(w, "Score: %d/100 (threshold %d)\n", ev.Score, ev.Threshold)
	fmt.Fprintf(w, "Decision: %s\n", ev.Decision)
	fmt.Fprintf(w, "Market potential: %s\n", ev.MarketPotential)
	fmt.Fprintf(w, "Method: %s\n", ev.EvaluationMethod)
	if ev.Reasoning != "" {
		fmt.Fprintf(w, "Reasoning: %s\n", ev.Reasoning)
	}
	if ev.Error {
		fmt.Fprintln(w, "Note: the AI service was unavailable; manual review recommended.")
	}
}
