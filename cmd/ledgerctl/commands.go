package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"rental-ledger-backend/internal/app"
	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/repository/postgres"
)

// errMismatch makes reconcile exit non-zero when the ledger disagrees with balances
var errMismatch = errors.New("ledger mismatches found")

func (s *cliState) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, s.cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newMigrateCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if state.cfg.Database.Driver != "postgres" {
				return fmt.Errorf("migrate requires the postgres driver, got %q", state.cfg.Database.Driver)
			}
			return postgres.Migrate(state.cfg.Database.MigrationsDir, state.cfg.GetDatabaseConnectionString())
		},
	}
}

func newReconcileCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Compare every balance with the sum of its payment log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.withApp(cmd.Context(), func(a *app.App) error {
				mismatches, err := a.Ledger.Reconcile(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(mismatches) == 0 {
					fmt.Fprintln(out, "ledger is consistent")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ACCOUNT\tUSER\tBALANCE\tLEDGER SUM")
				for _, m := range mismatches {
					fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", m.Account.Type, m.Account.UserID, m.Balance, m.LedgerSum)
				}
				w.Flush()
				return errMismatch
			})
		},
	}
}

func newDepositCommand(state *cliState) *cobra.Command {
	var (
		userID int64
		amount int64
		memo   string
	)
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Credit a user's balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.withApp(cmd.Context(), func(a *app.App) error {
				entry, err := a.Ledger.Deposit(cmd.Context(), domain.SystemPrincipal(), userID, amount, memo)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deposited %d to user %d: balance %d -> %d\n", amount, userID, entry.BalanceBefore, entry.BalanceAfter)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id to credit")
	cmd.Flags().Int64Var(&amount, "amount", 0, "Amount in minor units")
	cmd.Flags().StringVar(&memo, "memo", "manual deposit", "Memo stored on the payment log entry")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPaymentLogsCommand(state *cliState) *cobra.Command {
	var (
		userID   int64
		kind     string
		page     int
		pageSize int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "payment-logs",
		Short: "List payment log entries of a user, or of the platform when --user is omitted",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.PaymentLogFilter{Page: page, PageSize: pageSize}
			if kind != "" {
				k := domain.PaymentKind(kind)
				filter.Kind = &k
			}
			return state.withApp(cmd.Context(), func(a *app.App) error {
				var (
					entries []domain.PaymentLogEntry
					total   int64
					err     error
				)
				if userID > 0 {
					entries, total, err = a.Ledger.GetPaymentLogs(cmd.Context(), userID, filter)
				} else {
					entries, total, err = a.Ledger.GetPlatformPaymentLogs(cmd.Context(), domain.SystemPrincipal(), filter)
				}
				if err != nil {
					return err
				}
				return printPaymentLogs(cmd.OutOrStdout(), entries, total, asJSON)
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id; the platform account when 0")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind (RENTAL_PAYMENT, REFUND, INCOME, ETC, ...)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Entries per page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func printPaymentLogs(out io.Writer, entries []domain.PaymentLogEntry, total int64, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"entries": entries, "total": total})
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tKIND\tRENTAL\tAMOUNT\tBEFORE\tAFTER\tMEMO")
	for _, e := range entries {
		rental := "-"
		if e.RentalRequestID != nil {
			rental = fmt.Sprint(*e.RentalRequestID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.ID, e.CreatedAt.Format(time.RFC3339), e.Kind, rental, e.Amount, e.BalanceBefore, e.BalanceAfter, e.Memo)
	}
	fmt.Fprintf(w, "\n%d of %d entries\n", len(entries), total)
	return w.Flush()
}

func newTokenCommand(state *cliState) *cobra.Command {
	var (
		userID int64
		admin  bool
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token signed with the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			role := domain.RoleUser
			if admin {
				role = domain.RoleAdmin
			}
			token, err := app.TokenManager(state.cfg).GenerateAccessToken(userID, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id placed in the token")
	cmd.Flags().BoolVar(&admin, "admin", false, "Issue the ADMIN role")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
