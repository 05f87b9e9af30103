package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/service"
)

var (
	billAmount   string
	billDueDay   int
	billCategory string
	billOnce     bool
)

var billCmd = &cobra.Command{
	Use:   "bill",
	Short: "Track monthly bills",
}

var billAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a bill",
	Example: `  lifeops bill add Rent --amount 1200 --due-day 1 --category Housing
  lifeops bill add "Car rego" --amount 845.50 --due-day 20 --once`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			return fmt.Errorf("bill name is empty")
		}
		cents, err := parseCents(billAmount)
		if err != nil {
			return err
		}
		if billDueDay < 1 || billDueDay > 31 {
			return fmt.Errorf("due day %d out of range 1-31", billDueDay)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		b := repository.Bill{
			ID:          uuid.NewString(),
			Name:        name,
			AmountCents: cents,
			DueDay:      billDueDay,
			Category:    strings.TrimSpace(billCategory),
			Recurring:   !billOnce,
		}
		if err := a.bills.Insert(ctx, b); err != nil {
			return fmt.Errorf("add bill: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), billJSON(a, b))
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Added bill %s $%.2f due on day %d (%s)", name, float64(cents)/100, billDueDay, shortID(b.ID)))
		return nil
	},
}

var billListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bills with their next due date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.rolloverBills(ctx); err != nil {
			return err
		}
		bills, err := a.bills.List(ctx, false)
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]map[string]any, 0, len(bills))
			for _, b := range bills {
				out = append(out, billJSON(a, b))
			}
			return outputJSON(cmd.OutOrStdout(), out)
		}
		if len(bills) == 0 {
			printDim(cmd.OutOrStdout(), "No bills.")
			return nil
		}
		var total int64
		rows := make([][]string, 0, len(bills))
		for _, b := range bills {
			paid := " "
			if b.PaidThisMonth {
				paid = "✓"
			}
			total += b.AmountCents
			rows = append(rows, []string{
				shortID(b.ID), "[" + paid + "]", b.Name,
				fmt.Sprintf("$%.2f", float64(b.AmountCents)/100),
				nextDue(a, b).Format("Jan 2"), b.Category,
			})
		}
		printTable(cmd.OutOrStdout(), []string{"ID", "PAID", "NAME", "AMOUNT", "NEXT DUE", "CATEGORY"}, rows)
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		printLabelValue(cmd.OutOrStdout(), "Monthly total", fmt.Sprintf("$%.2f", float64(total)/100))
		return nil
	},
}

var billPaidCmd = &cobra.Command{
	Use:   "paid <bill-id>",
	Short: "Mark a bill paid for this month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBill(cmd, args[0], func(ctx context.Context, a *app, b repository.Bill) (string, error) {
			return "Paid " + b.Name, a.bills.MarkPaid(ctx, b.ID, a.now())
		})
	},
}

var billRmCmd = &cobra.Command{
	Use:   "rm <bill-id>",
	Short: "Delete a bill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBill(cmd, args[0], func(ctx context.Context, a *app, b repository.Bill) (string, error) {
			return "Deleted " + b.Name, a.bills.Delete(ctx, b.ID)
		})
	},
}

func init() {
	billAddCmd.Flags().StringVarP(&billAmount, "amount", "a", "", "Amount in dollars (e.g. 84.50)")
	billAddCmd.Flags().IntVar(&billDueDay, "due-day", 1, "Day of the month the bill is due (1-31)")
	billAddCmd.Flags().StringVar(&billCategory, "category", "", "Category label")
	billAddCmd.Flags().BoolVar(&billOnce, "once", false, "One-off bill instead of monthly")
	_ = billAddCmd.MarkFlagRequired("amount")
	billCmd.AddCommand(billAddCmd, billListCmd, billPaidCmd, billRmCmd)
}

func withBill(cmd *cobra.Command, prefix string, fn func(context.Context, *app, repository.Bill) (string, error)) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := a.bills.List(ctx, false)
	if err != nil {
		return err
	}
	ids := make([]string, len(all))
	for i, b := range all {
		ids[i] = b.ID
	}
	id, err := resolveID(prefix, ids)
	if err != nil {
		return err
	}
	b, err := a.bills.Get(ctx, id)
	if err != nil {
		return err
	}
	msg, err := fn(ctx, a, b)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), map[string]any{"success": true, "id": b.ID})
	}
	printSuccess(cmd.OutOrStdout(), msg)
	return nil
}

func nextDue(a *app, b repository.Bill) time.Time {
	return service.NextDue(b.DueDay, a.now(), b.PaidThisMonth)
}

func billJSON(a *app, b repository.Bill) map[string]any {
	return map[string]any{
		"id":        b.ID,
		"name":      b.Name,
		"amount":    float64(b.AmountCents) / 100,
		"dueDay":    b.DueDay,
		"category":  b.Category,
		"recurring": b.Recurring,
		"paid":      b.PaidThisMonth,
		"nextDue":   nextDue(a, b).Format("2006-01-02"),
	}
}

// parseCents converts a dollar amount such as "84.5" or "$1,200" to cents.
func parseCents(s string) (int64, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, fmt.Errorf("amount is required")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("amount %q: want a non-negative number", s)
	}
	return int64(math.Round(v * 100)), nil
}
