package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/report"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Record and browse income and expenses",
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(editTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())
	cmd.AddCommand(showTransactionCmd())
	cmd.AddCommand(exportTransactionsCmd())

	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Int("month", 0, "competency month (requires --year)")
	cmd.Flags().Int("year", 0, "competency year (requires --month)")
	cmd.Flags().String("type", "", "income or expense")
	cmd.Flags().String("category", "", "category ID or name")
	cmd.Flags().String("card", "", "card ID or name")
	cmd.Flags().String("from", "", "first transaction date, YYYY-MM-DD")
	cmd.Flags().String("to", "", "last transaction date, YYYY-MM-DD")
}

// transactionFilter builds a listing filter from the flags added by addFilterFlags.
func transactionFilter(ctx context.Context, cmd *cobra.Command, a *app) (model.TransactionFilter, error) {
	var filter model.TransactionFilter

	filter.Month, _ = cmd.Flags().GetInt("month")
	filter.Year, _ = cmd.Flags().GetInt("year")

	typeFlag, _ := cmd.Flags().GetString("type")
	txnType, err := parseTransactionType(typeFlag)
	if err != nil {
		return filter, err
	}
	filter.Type = txnType

	if ref, _ := cmd.Flags().GetString("category"); ref != "" {
		cat, err := a.resolveCategory(ctx, ref, txnType)
		if err != nil {
			return filter, err
		}
		filter.CategoryID = cat.ID
	}
	if ref, _ := cmd.Flags().GetString("card"); ref != "" {
		card, err := a.resolveCard(ctx, ref)
		if err != nil {
			return filter, err
		}
		filter.CardID = card.ID
	}

	for flag, target := range map[string]**time.Time{"from": &filter.StartDate, "to": &filter.EndDate} {
		value, _ := cmd.Flags().GetString(flag)
		if value == "" {
			continue
		}
		date, err := model.ParseDate(value)
		if err != nil {
			return filter, fmt.Errorf("--%s: %w", flag, err)
		}
		*target = &date
	}

	return filter, nil
}

func listTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			filter, err := transactionFilter(ctx, cmd, a)
			if err != nil {
				return err
			}

			txns, err := a.ledger.ListTransactions(ctx, a.owner, filter)
			if err != nil {
				return err
			}

			categoryNames, cardNames, err := a.names(ctx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(txns))
			for _, t := range txns {
				plan := "-"
				if t.IsInstallment {
					plan = fmt.Sprintf("%d× %s", t.InstallmentCount, cli.FormatAmount(t.InstallmentAmount))
				}
				category, ok := categoryNames[t.CategoryID]
				if !ok {
					category = model.UncategorizedName
				}
				rows = append(rows, []string{
					t.ID,
					model.FormatDate(t.Date),
					cli.FormatPeriod(t.CompetencyMonth, t.CompetencyYear),
					t.Description,
					category,
					orDash(cardNames[t.CardID]),
					string(t.PaymentMethod),
					plan,
					cli.FormatSigned(t.Amount, t.Type),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
				[]string{"ID", "DATE", "PERIOD", "DESCRIPTION", "CATEGORY", "CARD", "METHOD", "PLAN", "AMOUNT"},
				rows, "No transactions found."))
			return nil
		},
	}

	addFilterFlags(cmd)
	return cmd
}

func addTransactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add DESCRIPTION AMOUNT",
		Short: "Record a transaction, optionally split into monthly installments",
		Example: `  ledger tx add "Groceries" 182.40 --category Groceries
  ledger tx add "Laptop" 3600 --category Shopping --card Nubank --installments 12
  ledger tx add "Salary" 5000 --type income --category Salary --method transfer`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			typeFlag, _ := cmd.Flags().GetString("type")
			txnType, err := parseTransactionType(typeFlag)
			if err != nil {
				return err
			}

			categoryRef, _ := cmd.Flags().GetString("category")
			category, err := a.resolveCategory(ctx, categoryRef, txnType)
			if err != nil {
				return err
			}

			var card *model.Card
			if ref, _ := cmd.Flags().GetString("card"); ref != "" {
				if card, err = a.resolveCard(ctx, ref); err != nil {
					return err
				}
			}

			dateFlag, _ := cmd.Flags().GetString("date")
			date, err := parseDateFlag(dateFlag, time.Now())
			if err != nil {
				return err
			}

			method := defaultPaymentMethod(card)
			if m, _ := cmd.Flags().GetString("method"); m != "" {
				method = model.PaymentMethod(strings.ToLower(m))
			}

			installments, _ := cmd.Flags().GetInt("installments")
			notes, _ := cmd.Flags().GetString("notes")

			in := model.TransactionInput{
				Description:      args[0],
				Amount:           amount,
				Type:             txnType,
				CategoryID:       category.ID,
				PaymentMethod:    method,
				Date:             date,
				Notes:            notes,
				InstallmentCount: installments,
				IsInstallment:    installments > 1,
			}
			if card != nil {
				in.CardID = card.ID
			}

			txn, err := a.ledger.CreateTransaction(ctx, a.owner, in)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Recorded %s %s %q (%s)", txn.Type, cli.FormatAmount(txn.Amount), txn.Description, txn.ID)
			if txn.IsInstallment {
				msg += fmt.Sprintf(" in %d installments of %s", txn.InstallmentCount, cli.FormatAmount(txn.InstallmentAmount))
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	}

	cmd.Flags().String("type", string(model.TypeExpense), "income or expense")
	cmd.Flags().String("category", "", "category ID or name")
	cmd.Flags().String("card", "", "card ID or name")
	cmd.Flags().String("method", "", "payment method (cash, pix, debit_card, credit_card, transfer, other)")
	cmd.Flags().String("date", "", "transaction date, YYYY-MM-DD (default: today)")
	cmd.Flags().Int("installments", 1, "number of monthly installments")
	cmd.Flags().String("notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func editTransactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a transaction; installment plans are rebuilt when amount or date change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.ledger.GetTransaction(ctx, a.owner, args[0])
			if err != nil {
				return err
			}

			patch := model.TransactionPatch{
				Description: optionalString(cmd, "description"),
				Notes:       optionalString(cmd, "notes"),
			}
			if v := optionalString(cmd, "amount"); v != nil {
				amount, err := parseAmount(*v)
				if err != nil {
					return err
				}
				patch.Amount = &amount
			}
			if v := optionalString(cmd, "date"); v != nil {
				date, err := model.ParseDate(*v)
				if err != nil {
					return err
				}
				patch.Date = &date
			}
			if v := optionalString(cmd, "category"); v != nil {
				cat, err := a.resolveCategory(ctx, *v, current.Type)
				if err != nil {
					return err
				}
				patch.CategoryID = &cat.ID
			}
			if v := optionalString(cmd, "card"); v != nil {
				cardID := ""
				if *v != "" {
					card, err := a.resolveCard(ctx, *v)
					if err != nil {
						return err
					}
					cardID = card.ID
				}
				patch.CardID = &cardID
			}
			if v := optionalString(cmd, "method"); v != nil {
				method := model.PaymentMethod(strings.ToLower(*v))
				patch.PaymentMethod = &method
			}

			txn, err := a.ledger.EditTransaction(ctx, a.owner, current.ID, patch)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %q (%s)", txn.Description, txn.ID)))
			return nil
		},
	}

	cmd.Flags().String("description", "", "new description")
	cmd.Flags().String("amount", "", "new total amount")
	cmd.Flags().String("date", "", "new date, YYYY-MM-DD")
	cmd.Flags().String("category", "", "new category ID or name")
	cmd.Flags().String("card", "", `new card ID or name ("" detaches the card)`)
	cmd.Flags().String("method", "", "new payment method")
	cmd.Flags().String("notes", "", "new notes")
	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a transaction and its installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ledger.DeleteTransaction(ctx, a.owner, args[0]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted transaction "+args[0]))
			return nil
		},
	}
}

func showTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a transaction and its installment plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			txn, err := a.ledger.GetTransaction(ctx, a.owner, args[0])
			if err != nil {
				return err
			}
			installments, err := a.ledger.ListInstallments(ctx, a.owner, txn.ID)
			if err != nil {
				return err
			}
			categoryNames, cardNames, err := a.names(ctx)
			if err != nil {
				return err
			}

			details := strings.Join([]string{
				"Date:        " + model.FormatDate(txn.Date),
				"Period:      " + cli.FormatPeriod(txn.CompetencyMonth, txn.CompetencyYear),
				"Amount:      " + cli.FormatSigned(txn.Amount, txn.Type),
				"Category:    " + orDash(categoryNames[txn.CategoryID]),
				"Card:        " + orDash(cardNames[txn.CardID]),
				"Method:      " + string(txn.PaymentMethod),
				"Notes:       " + orDash(txn.Notes),
			}, "\n")

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderBox(txn.Description, details))

			if txn.IsInstallment {
				fmt.Fprintln(out, installmentTable(installments))
			}
			return nil
		},
	}
}

func installmentTable(installments []model.Installment) string {
	rows := make([][]string, 0, len(installments))
	for _, inst := range installments {
		paid := "pending"
		if inst.Paid && inst.PaidAt != nil {
			paid = "paid " + model.FormatDate(*inst.PaidAt)
		} else if inst.Paid {
			paid = "paid"
		}
		rows = append(rows, []string{
			inst.ID,
			strconv.Itoa(inst.Number) + "/" + strconv.Itoa(len(installments)),
			cli.FormatPeriod(inst.CompetencyMonth, inst.CompetencyYear),
			model.FormatDate(inst.DueDate),
			cli.FormatAmount(inst.Amount),
			paid,
		})
	}
	return cli.RenderTable([]string{"ID", "#", "PERIOD", "DUE", "AMOUNT", "STATUS"}, rows, "No installments.")
}

func exportTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			filter, err := transactionFilter(ctx, cmd, a)
			if err != nil {
				return err
			}

			txns, err := a.ledger.ListTransactions(ctx, a.owner, filter)
			if err != nil {
				return err
			}
			categoryNames, cardNames, err := a.names(ctx)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			return withOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return report.WriteTransactions(w, txns, report.Names{Categories: categoryNames, Cards: cardNames})
			})
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	return cmd
}

// withOutput runs write against path, or against stdout when path is empty.
func withOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintln(stdout, cli.FormatSuccess("Wrote "+path))
	return nil
}
