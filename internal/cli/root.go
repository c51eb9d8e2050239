// Package cli implements creditctl, the operator tool for the credit
// service: offline quotes and evaluations, schema management, legacy status
// migration, token minting and event tailing.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bibbank/credit-service/internal/domain/service"
	"github.com/bibbank/credit-service/internal/infrastructure/config"
	"github.com/bibbank/credit-service/pkg/observability"
)

// Execute runs creditctl with the process arguments.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "creditctl",
		Short: "Operate the credit application service",
		Long: `creditctl quotes loans and evaluates applicants offline, manages the
database schema, rewrites legacy statuses, mints development tokens and
tails the domain event stream. Connection settings come from the same
environment variables as creditd.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("rules", "", "TOML approval rules file (defaults to $CREDIT_RULES_FILE)")
	root.PersistentFlags().Bool("json", false, "Print results as JSON")
	root.PersistentFlags().String("log-level", "warn", "Log level for diagnostics on stderr")

	root.AddCommand(
		newAmortizeCmd(),
		newEvaluateCmd(),
		newApprovalLevelCmd(),
		newSchemaCmd(),
		newStatusesCmd(),
		newTokenCmd(),
		newKeygenCmd(),
		newEventsCmd(),
	)
	return root
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return observability.InitLogger(observability.LogConfig{
		Level:   level,
		Format:  "text",
		Service: "creditctl",
		Output:  cmd.ErrOrStderr(),
	})
}

// approvalRules loads the thresholds named by --rules or CREDIT_RULES_FILE.
func approvalRules(cmd *cobra.Command) (*service.ApprovalRules, error) {
	path, _ := cmd.Flags().GetString("rules")
	if path == "" {
		path = config.Load().RulesFile
	}
	cfg, err := config.LoadRules(path)
	if err != nil {
		return nil, err
	}
	return service.NewApprovalRules(cfg)
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a decimal number", name, raw)
	}
	return d, nil
}
