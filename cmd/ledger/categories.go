package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage income and expense categories",
		Long:    `List, add, edit, activate/deactivate and delete the categories transactions are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(editCategoryCmd())
	cmd.AddCommand(toggleCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			typeFlag, _ := cmd.Flags().GetString("type")
			txnType, err := parseTransactionType(typeFlag)
			if err != nil {
				return err
			}

			categories, err := a.ledger.ListCategories(ctx, a.owner, model.CategoryFilter{Type: txnType})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(categories))
			for _, c := range categories {
				status := "active"
				if !c.IsActive {
					status = "inactive"
				}
				rows = append(rows, []string{c.ID, c.Name, string(c.Type), c.Color, c.Icon, status})
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
				[]string{"ID", "NAME", "TYPE", "COLOR", "ICON", "STATUS"}, rows,
				"No categories found. Use 'ledger categories add' to create one."))
			return nil
		},
	}

	cmd.Flags().String("type", "", "only list income or expense categories")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			typeFlag, _ := cmd.Flags().GetString("type")
			txnType, err := parseTransactionType(typeFlag)
			if err != nil {
				return err
			}
			color, _ := cmd.Flags().GetString("color")
			icon, _ := cmd.Flags().GetString("icon")

			cat, err := a.ledger.CreateCategory(ctx, a.owner, model.CategoryInput{
				Name:  args[0],
				Type:  txnType,
				Color: color,
				Icon:  icon,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s category %q (%s)", cat.Type, cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().String("type", string(model.TypeExpense), "category type (income, expense)")
	cmd.Flags().String("color", "", "hex color such as #FF6B6B")
	cmd.Flags().String("icon", "", "icon name")
	return cmd
}

func editCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit CATEGORY",
		Short: "Edit a category's name, color or icon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.resolveCategory(ctx, args[0], "")
			if err != nil {
				return err
			}

			cat, err := a.ledger.EditCategory(ctx, a.owner, current.ID, model.CategoryPatch{
				Name:  optionalString(cmd, "name"),
				Color: optionalString(cmd, "color"),
				Icon:  optionalString(cmd, "icon"),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %q", cat.Name)))
			return nil
		},
	}

	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("color", "", "new hex color")
	cmd.Flags().String("icon", "", "new icon name")
	return cmd
}

func toggleCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle CATEGORY",
		Short: "Activate or deactivate a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.resolveCategory(ctx, args[0], "")
			if err != nil {
				return err
			}

			cat, err := a.ledger.ToggleCategory(ctx, a.owner, current.ID)
			if err != nil {
				return err
			}

			state := "deactivated"
			if cat.IsActive {
				state = "activated"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Category %q %s", cat.Name, state)))
			return nil
		},
	}
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete CATEGORY",
		Short: "Delete a category that no transaction uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.resolveCategory(ctx, args[0], "")
			if err != nil {
				return err
			}

			if err := a.ledger.DeleteCategory(ctx, a.owner, current.ID); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %q", current.Name)))
			return nil
		},
	}
}
