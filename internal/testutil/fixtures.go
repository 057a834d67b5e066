package testutil

import "github.com/Veraticus/spice-ledger/internal/model"

// CategoryName represents a strongly-typed fixture category name.
type CategoryName string

// CardName represents a strongly-typed fixture card name.
type CardName string

// Fixture category names.
const (
	CategoryGroceries CategoryName = "Groceries"
	CategoryRent      CategoryName = "Rent"
	CategoryShopping  CategoryName = "Shopping"
	CategorySalary    CategoryName = "Salary"
	CategoryFreelance CategoryName = "Freelance"
)

// Fixture card names.
const (
	CardCredit   CardName = "Nubank"
	CardDebit    CardName = "Checking"
	CardInactive CardName = "Old Visa"
)

// CategorySeed describes a category to insert.
type CategorySeed struct {
	Name CategoryName
	Type model.TransactionType
}

// CardSeed describes a card to insert.
type CardSeed struct {
	Name     CardName
	Kind     model.CardKind
	Inactive bool
}

// Fixture is a predefined set of rows seeded for the default owner.
type Fixture struct {
	Categories []CategorySeed
	Cards      []CardSeed
}

// Predefined fixtures for common test scenarios.
var (
	// FixtureEmpty seeds nothing.
	FixtureEmpty = Fixture{}

	// FixtureBasic seeds income and expense categories plus credit, debit and inactive cards.
	FixtureBasic = Fixture{
		Categories: []CategorySeed{
			{Name: CategoryGroceries, Type: model.TypeExpense},
			{Name: CategoryRent, Type: model.TypeExpense},
			{Name: CategoryShopping, Type: model.TypeExpense},
			{Name: CategorySalary, Type: model.TypeIncome},
			{Name: CategoryFreelance, Type: model.TypeIncome},
		},
		Cards: []CardSeed{
			{Name: CardCredit, Kind: model.CardKindCredit},
			{Name: CardDebit, Kind: model.CardKindDebit},
			{Name: CardInactive, Kind: model.CardKindCredit, Inactive: true},
		},
	}
)
