package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/report"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarise a month by category and payment method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			month, year, err := periodFlags(cmd, time.Now())
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.ledger.MonthlySummary(ctx, a.owner, month, year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
				return report.WriteSummary(out, *summary)
			}

			writeSummary(out, summary)
			return nil
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().Bool("csv", false, "write CSV instead of tables")
	return cmd
}

func writeSummary(out io.Writer, summary *model.MonthlySummary) {
	totals := strings.Join([]string{
		"Income:       " + cli.FormatSigned(summary.TotalIncome, model.TypeIncome),
		"Expenses:     " + cli.FormatSigned(summary.TotalExpense, model.TypeExpense),
		"Balance:      " + cli.FormatBalance(summary.Balance),
		"Transactions: " + strconv.Itoa(summary.Count),
	}, "\n")
	fmt.Fprintln(out, cli.RenderBox(cli.ChartIcon+" "+cli.FormatPeriod(summary.Month, summary.Year), totals))

	categoryRows := make([][]string, 0, len(summary.ByCategory))
	for _, b := range summary.ByCategory {
		categoryRows = append(categoryRows, []string{b.CategoryName, cli.FormatAmount(b.Total), cli.FormatPercentage(b.Percentage)})
	}
	fmt.Fprintln(out, cli.RenderTable([]string{"CATEGORY", "TOTAL", "SHARE"}, categoryRows, "No transactions in this period."))

	methodRows := make([][]string, 0, len(summary.ByPaymentMethod))
	for _, b := range summary.ByPaymentMethod {
		methodRows = append(methodRows, []string{string(b.Method), cli.FormatAmount(b.Total), cli.FormatPercentage(b.Percentage)})
	}
	if len(methodRows) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.RenderTable([]string{"METHOD", "TOTAL", "SHARE"}, methodRows, ""))
	}
}

func statementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statement CARD",
		Short: "Show what a card owes for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			month, year, err := periodFlags(cmd, time.Now())
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			card, err := a.resolveCard(ctx, args[0])
			if err != nil {
				return err
			}

			statement, err := a.ledger.CardStatement(ctx, a.owner, card.ID, month, year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
				return report.WriteStatement(out, *statement)
			}

			rows := make([][]string, 0, len(statement.Entries))
			for _, r := range report.StatementRows(*statement) {
				status := "pending"
				if r.Paid {
					status = "paid"
				}
				rows = append(rows, []string{r.DueDate, r.Description, orDash(r.Installment), r.Amount, status})
			}

			title := fmt.Sprintf("%s %s %s", cli.CardIcon, statement.CardName, cli.FormatPeriod(statement.Month, statement.Year))
			totals := fmt.Sprintf("Total: %s   Paid: %s   Pending: %s",
				cli.FormatAmount(statement.Total), cli.FormatAmount(statement.Paid), cli.FormatAmount(statement.Pending))
			fmt.Fprintln(out, cli.RenderBox(title, totals))
			fmt.Fprintln(out, cli.RenderTable([]string{"DUE", "DESCRIPTION", "INSTALLMENT", "AMOUNT", "STATUS"}, rows,
				"Nothing charged to this card in this period."))
			return nil
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().Bool("csv", false, "write CSV instead of tables")
	return cmd
}
