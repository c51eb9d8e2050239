package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
)

// ─── amortize ───────────────────────────────────────────────────────────────

func newAmortizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amortize",
		Short: "Print a fixed-payment amortization schedule",
		Example: `  creditctl amortize --principal 10000000 --rate 18 --term 12
  creditctl amortize --principal 5000 --rate 0 --term 4 --start 2026-01-15 --json`,
		Args: cobra.NoArgs,
		RunE: runAmortize,
	}
	cmd.Flags().String("principal", "", "Loan principal")
	cmd.Flags().String("rate", "", "Annual interest rate in percent")
	cmd.Flags().Int("term", 0, "Term in months")
	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD, defaults to today)")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("term")
	return cmd
}

func runAmortize(cmd *cobra.Command, _ []string) error {
	principal, err := decimalFlag(cmd, "principal")
	if err != nil {
		return err
	}
	rate, err := decimalFlag(cmd, "rate")
	if err != nil {
		return err
	}
	term, _ := cmd.Flags().GetInt("term")
	start, _ := cmd.Flags().GetString("start")

	plan, err := usecase.NewCalculateAmortizationUseCase(nil).Execute(cmd.Context(), dto.AmortizationRequest{
		Principal:         principal,
		AnnualRatePercent: rate,
		TermMonths:        term,
		StartDate:         start,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, plan)
	}
	fmt.Fprintf(out, "Monthly payment: %s\nTotal interest:  %s\nTotal cost:      %s\n\n",
		plan.MonthlyPayment.StringFixed(2), plan.TotalInterest.StringFixed(2), plan.TotalCost.StringFixed(2))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tDUE\tPAYMENT\tPRINCIPAL\tINTEREST\tBALANCE\t")
	for _, e := range plan.Schedule {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			e.Period, e.DueDate.Format(dto.DateLayout),
			e.Payment.StringFixed(2), e.Principal.StringFixed(2),
			e.Interest.StringFixed(2), e.RemainingBalance.StringFixed(2))
	}
	return tw.Flush()
}

// ─── evaluate ───────────────────────────────────────────────────────────────

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the public pre-approval evaluation on raw inputs",
		Example: `  creditctl evaluate --income 6000000 --expenses 1200000 --amount 20000000 \
      --term 24 --age 38 --contract indefinite --tenure 96 --rate 18`,
		Args: cobra.NoArgs,
		RunE: runEvaluate,
	}
	cmd.Flags().String("income", "0", "Monthly income")
	cmd.Flags().String("expenses", "0", "Monthly expenses")
	cmd.Flags().String("amount", "", "Requested amount")
	cmd.Flags().Int("term", 0, "Term in months")
	cmd.Flags().Int("age", 0, "Applicant age in years")
	cmd.Flags().String("contract", "", "Contract type")
	cmd.Flags().Int("tenure", 0, "Months with the current employer")
	cmd.Flags().String("rate", "", "Annual rate in percent; adds a payment quote")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("term")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	rules, err := approvalRules(cmd)
	if err != nil {
		return err
	}
	req := dto.PreApprovalRequest{}
	if req.MonthlyIncome, err = decimalFlag(cmd, "income"); err != nil {
		return err
	}
	if req.MonthlyExpenses, err = decimalFlag(cmd, "expenses"); err != nil {
		return err
	}
	if req.RequestedAmount, err = decimalFlag(cmd, "amount"); err != nil {
		return err
	}
	req.TermMonths, _ = cmd.Flags().GetInt("term")
	req.Age, _ = cmd.Flags().GetInt("age")
	req.ContractType, _ = cmd.Flags().GetString("contract")
	req.TenureMonths, _ = cmd.Flags().GetInt("tenure")
	if cmd.Flags().Changed("rate") {
		rate, err := decimalFlag(cmd, "rate")
		if err != nil {
			return err
		}
		req.AnnualRatePercent = &rate
	}

	resp, err := usecase.NewEvaluatePreApprovalUseCase(rules, nil).Execute(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, resp)
	}
	fmt.Fprintf(out, "Score:          %d\n", resp.Score)
	fmt.Fprintf(out, "Recommendation: %s\n", resp.Recommendation)
	fmt.Fprintf(out, "Approval level: %s (%d days)\n", resp.ApprovalLevel, resp.ExpectedDays)
	fmt.Fprintf(out, "Auto-approval:  %t\n", resp.AutoApproval.Eligible)
	for _, c := range resp.AutoApproval.Failed() {
		fmt.Fprintf(out, "  - %s: %s\n", c.Rule, c.Detail)
	}
	if len(resp.Errors) > 0 {
		fmt.Fprintf(out, "Errors:         %s\n", strings.Join(resp.Errors, "; "))
	}
	if len(resp.Warnings) > 0 {
		fmt.Fprintf(out, "Warnings:       %s\n", strings.Join(resp.Warnings, "; "))
	}
	if resp.Quote != nil {
		fmt.Fprintf(out, "Monthly quote:  %s\n", resp.Quote.MonthlyPayment.StringFixed(2))
	}
	return nil
}

// ─── approval-level ─────────────────────────────────────────────────────────

func newApprovalLevelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approval-level AMOUNT",
		Short: "Show which authority must grant an amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := approvalRules(cmd)
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("%q is not a decimal amount", args[0])
			}
			resp, err := usecase.NewManageRulesUseCase(rules, nil).RequiredApprovalLevel(amount)
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d days)\n", resp.Level, resp.ExpectedDays)
			return nil
		},
	}
}
