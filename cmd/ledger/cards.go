package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cards",
		Aliases: []string{"card"},
		Short:   "Manage credit and debit cards",
	}

	cmd.AddCommand(listCardsCmd())
	cmd.AddCommand(addCardCmd())
	cmd.AddCommand(editCardCmd())
	cmd.AddCommand(toggleCardCmd())
	cmd.AddCommand(deleteCardCmd())

	return cmd
}

func listCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			kind, _ := cmd.Flags().GetString("kind")
			cards, err := a.ledger.ListCards(ctx, a.owner, model.CardFilter{Kind: model.CardKind(strings.ToLower(kind))})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(cards))
			for _, c := range cards {
				limit, available, days := "-", "-", "-"
				if c.TotalLimit != nil {
					limit = cli.FormatAmount(*c.TotalLimit)
				}
				if c.AvailableLimit != nil {
					available = cli.FormatAmount(*c.AvailableLimit)
				}
				if c.ClosingDay != nil && c.DueDay != nil {
					days = fmt.Sprintf("%d/%d", *c.ClosingDay, *c.DueDay)
				}
				status := "active"
				if !c.IsActive {
					status = "inactive"
				}
				rows = append(rows, []string{c.ID, c.Name, string(c.Kind), string(c.Brand),
					"•••• " + c.LastFour, limit, available, days, status})
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
				[]string{"ID", "NAME", "KIND", "BRAND", "NUMBER", "LIMIT", "AVAILABLE", "CLOSE/DUE", "STATUS"}, rows,
				"No cards found. Use 'ledger cards add' to create one."))
			return nil
		},
	}

	cmd.Flags().String("kind", "", "only list credit or debit cards")
	return cmd
}

func addCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			kind, _ := cmd.Flags().GetString("kind")
			brand, _ := cmd.Flags().GetString("brand")
			lastFour, _ := cmd.Flags().GetString("last-four")
			color, _ := cmd.Flags().GetString("color")
			limitFlag, _ := cmd.Flags().GetString("limit")

			limit, err := parseOptionalAmount(limitFlag)
			if err != nil {
				return err
			}

			card, err := a.ledger.CreateCard(ctx, a.owner, model.CardInput{
				Name:       args[0],
				Kind:       model.CardKind(strings.ToLower(kind)),
				Brand:      model.CardBrand(strings.ToLower(brand)),
				LastFour:   lastFour,
				Color:      color,
				TotalLimit: limit,
				ClosingDay: optionalInt(cmd, "closing-day"),
				DueDay:     optionalInt(cmd, "due-day"),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s card %q (%s)", card.Kind, card.Name, card.ID)))
			return nil
		},
	}

	cmd.Flags().String("kind", string(model.CardKindCredit), "card kind (credit, debit)")
	cmd.Flags().String("brand", string(model.BrandOther), "card brand (visa, mastercard, elo, amex, hipercard, other)")
	cmd.Flags().String("last-four", "", "last four digits of the card number")
	cmd.Flags().String("color", "", "hex color such as #8A05BE")
	cmd.Flags().String("limit", "", "credit limit")
	cmd.Flags().Int("closing-day", 0, "statement closing day (1-31)")
	cmd.Flags().Int("due-day", 0, "statement due day (1-31)")
	_ = cmd.MarkFlagRequired("last-four")
	return cmd
}

func editCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit CARD",
		Short: "Edit a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.resolveCard(ctx, args[0])
			if err != nil {
				return err
			}

			patch := model.CardPatch{
				Name:       optionalString(cmd, "name"),
				LastFour:   optionalString(cmd, "last-four"),
				Color:      optionalString(cmd, "color"),
				ClosingDay: optionalInt(cmd, "closing-day"),
				DueDay:     optionalInt(cmd, "due-day"),
			}
			if brand := optionalString(cmd, "brand"); brand != nil {
				b := model.CardBrand(strings.ToLower(*brand))
				patch.Brand = &b
			}
			if limit := optionalString(cmd, "limit"); limit != nil {
				if patch.TotalLimit, err = parseOptionalAmount(*limit); err != nil {
					return err
				}
			}

			card, err := a.ledger.EditCard(ctx, a.owner, current.ID, patch)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated card %q", card.Name)))
			return nil
		},
	}

	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("brand", "", "new brand")
	cmd.Flags().String("last-four", "", "new last four digits")
	cmd.Flags().String("color", "", "new hex color")
	cmd.Flags().String("limit", "", "new credit limit")
	cmd.Flags().Int("closing-day", 0, "new closing day")
	cmd.Flags().Int("due-day", 0, "new due day")
	return cmd
}

func toggleCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle CARD",
		Short: "Activate or deactivate a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.resolveCard(ctx, args[0])
			if err != nil {
				return err
			}

			card, err := a.ledger.ToggleCard(ctx, a.owner, current.ID)
			if err != nil {
				return err
			}

			state := "deactivated"
			if card.IsActive {
				state = "activated"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Card %q %s", card.Name, state)))
			return nil
		},
	}
}

func deleteCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete CARD",
		Short: "Delete a card that no transaction uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.resolveCard(ctx, args[0])
			if err != nil {
				return err
			}

			if err := a.ledger.DeleteCard(ctx, a.owner, current.ID); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted card "+strconv.Quote(current.Name)))
			return nil
		},
	}
}
