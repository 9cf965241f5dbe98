// Command vendorctl submits products to the agent service the way the vendor
// portal form does and lists what the catalog currently holds.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	agentURL       string
	catalogURL     string
	threshold      int
	agentTimeout   time.Duration
	catalogTimeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "vendorctl",
		Short:         "Submit vendor products for AI evaluation and catalog admission",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if opts.threshold < 1 || opts.threshold > 100 {
			return fmt.Errorf("--threshold must be within 1-100, got %d", opts.threshold)
		}
		return nil
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.agentURL, "agent-url", envOr("AGENT_SERVICE_URL", "http://localhost:7777"), "agent service base URL")
	flags.StringVar(&opts.catalogURL, "catalog-url", envOr("CATALOG_SERVICE_URL", "http://localhost:3000"), "catalog service base URL")
	flags.IntVar(&opts.threshold, "threshold", envInt("ACCEPTANCE_THRESHOLD", 70), "minimum score admitted to the catalog")
	flags.DurationVar(&opts.agentTimeout, "agent-timeout", 60*time.Second, "evaluation request timeout")
	flags.DurationVar(&opts.catalogTimeout, "catalog-timeout", 5*time.Second, "catalog request timeout")

	root.AddCommand(newSubmitCmd(opts), newEvaluateCmd(opts), newProductsCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
