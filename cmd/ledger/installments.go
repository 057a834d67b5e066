package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func installmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "installments",
		Aliases: []string{"inst"},
		Short:   "Inspect and settle installment plans",
	}

	cmd.AddCommand(listInstallmentsCmd())
	cmd.AddCommand(payInstallmentCmd())

	return cmd
}

func listInstallmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list TRANSACTION_ID",
		Short: "List a transaction's installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			installments, err := a.ledger.ListInstallments(ctx, a.owner, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), installmentTable(installments))
			return nil
		},
	}
}

func payInstallmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay INSTALLMENT_ID",
		Short: "Mark an installment as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var paidOn time.Time
			if dateFlag, _ := cmd.Flags().GetString("date"); dateFlag != "" {
				if paidOn, err = model.ParseDate(dateFlag); err != nil {
					return err
				}
			}

			inst, err := a.ledger.PayInstallment(ctx, a.owner, args[0], paidOn)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Installment %d (%s) paid on %s",
				inst.Number, cli.FormatAmount(inst.Amount), model.FormatDate(*inst.PaidAt))))
			return nil
		},
	}

	cmd.Flags().String("date", "", "payment date, YYYY-MM-DD (default: today)")
	return cmd
}
