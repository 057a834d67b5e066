package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/ofx"
	"github.com/Veraticus/spice-ledger/internal/pattern"
)

// importResult counts what happened to each statement line.
type importResult struct {
	Imported    int
	Skipped     int
	Failed      int
	Categorized int
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an OFX/QFX bank or credit card statement",
		Long: `Import every line of an OFX/QFX statement as a single-payment transaction.

Debits become expenses filed under --expense-category (charged to --card when given),
credits become income under --income-category. Lines imported before are skipped.

Rules under import.rules in the config file take precedence over both flags:

  import:
    rules:
      - pattern: supermercado
        category: Groceries
      - pattern: "^uber\\s+eats"
        regex: true
        category: Delivery
        amount_condition: lt
        amount: 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			stmt, err := ofx.NewParser().ParseFile(ctx, f)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			matcher, err := config.LoadImportRules(viper.GetViper())
			if err != nil {
				return err
			}

			mapping, err := importMapping(ctx, cmd, a, matcher.Len() > 0)
			if err != nil {
				return err
			}

			categories, err := a.ledger.ListCategories(ctx, a.owner, model.CategoryFilter{})
			if err != nil {
				return err
			}
			suggester := pattern.NewSuggester(matcher, categories)

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			progress := cli.NewProgress(cmd.ErrOrStderr(), len(stmt.Entries), "Importing transactions...")
			result, err := importEntries(ctx, a, stmt.Entries, mapping, suggester, progress, dryRun)
			progress.Finish()
			if err != nil {
				return err
			}

			verb := "Imported"
			if dryRun {
				verb = "Would import"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s %d transactions (%d already present, %d rejected)",
				verb, result.Imported, result.Skipped, result.Failed)))
			if result.Categorized > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("%d categorized by import rules", result.Categorized)))
			}
			return nil
		},
	}

	cmd.Flags().String("expense-category", "", "category ID or name for debits")
	cmd.Flags().String("income-category", "", "category ID or name for credits")
	cmd.Flags().String("card", "", "card ID or name debits were charged to")
	cmd.Flags().Bool("dry-run", false, "report what would be imported without saving")
	return cmd
}

// importMapping resolves the fallback categories and card. Without rules at least one
// category flag is required.
func importMapping(ctx context.Context, cmd *cobra.Command, a *app, haveRules bool) (ofx.Mapping, error) {
	var mapping ofx.Mapping

	if ref, _ := cmd.Flags().GetString("expense-category"); ref != "" {
		cat, err := a.resolveCategory(ctx, ref, model.TypeExpense)
		if err != nil {
			return mapping, err
		}
		mapping.ExpenseCategoryID = cat.ID
	}
	if ref, _ := cmd.Flags().GetString("income-category"); ref != "" {
		cat, err := a.resolveCategory(ctx, ref, model.TypeIncome)
		if err != nil {
			return mapping, err
		}
		mapping.IncomeCategoryID = cat.ID
	}
	if ref, _ := cmd.Flags().GetString("card"); ref != "" {
		card, err := a.resolveCard(ctx, ref)
		if err != nil {
			return mapping, err
		}
		mapping.CardID = card.ID
	}

	if !haveRules && mapping.ExpenseCategoryID == "" && mapping.IncomeCategoryID == "" {
		return mapping, fmt.Errorf("%w: pass --expense-category, --income-category or both", common.ErrMissingConfig)
	}
	return mapping, nil
}

// importEntries records each entry unless an earlier import already did. A matching rule
// overrides the mapped category. Entries left without a category are skipped; rejected
// entries are logged and counted.
func importEntries(ctx context.Context, a *app, entries []ofx.Entry, mapping ofx.Mapping, suggester *pattern.Suggester, progress *cli.Progress, dryRun bool) (importResult, error) {
	var result importResult

	for _, entry := range entries {
		progress.Step()
		in := entry.Input(mapping)
		ruled := false
		if s, ok := suggester.Suggest(pattern.Line{Description: entry.Description, Amount: entry.Amount, Type: entry.Type}); ok {
			slog.Debug("Import rule matched", "fitid", entry.FitID, "rule", s.Rule, "category", s.Category)
			in.CategoryID = s.CategoryID
			ruled = true
		}
		if in.CategoryID == "" {
			slog.Debug("No category mapped for entry", "fitid", entry.FitID, "type", entry.Type)
			result.Skipped++
			continue
		}

		exists, err := alreadyImported(ctx, a, entry)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			continue
		}

		if dryRun {
			result.Imported++
			if ruled {
				result.Categorized++
			}
			continue
		}

		if _, err := a.ledger.CreateTransaction(ctx, a.owner, in); err != nil {
			if isFatalImportError(err) {
				return result, err
			}
			slog.Warn("Rejected statement line", "fitid", entry.FitID, "description", entry.Description,
				"code", common.CodeOf(err), "error", err)
			result.Failed++
			continue
		}
		result.Imported++
		if ruled {
			result.Categorized++
		}
	}

	return result, nil
}

// alreadyImported reports whether a transaction on the entry's date carries its note.
func alreadyImported(ctx context.Context, a *app, entry ofx.Entry) (bool, error) {
	date := entry.Date
	txns, err := a.ledger.ListTransactions(ctx, a.owner, model.TransactionFilter{StartDate: &date, EndDate: &date})
	if err != nil {
		return false, err
	}
	for _, t := range txns {
		if t.Notes == entry.Notes() {
			return true, nil
		}
	}
	return false, nil
}

// isFatalImportError tells storage trouble, which stops the import, from a rejected line.
func isFatalImportError(err error) bool {
	var ledgerErr *common.LedgerError
	if !errors.As(err, &ledgerErr) {
		return true
	}
	return errors.Is(err, common.ErrPersistence) || errors.Is(err, common.ErrIntegrity)
}
