package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardKind distinguishes credit cards from debit cards.
type CardKind string

const (
	// CardKindCredit is a credit card; it carries limits and billing days.
	CardKindCredit CardKind = "credit"
	// CardKindDebit is a debit card.
	CardKindDebit CardKind = "debit"
)

// Valid reports whether k is a known card kind.
func (k CardKind) Valid() bool {
	return k == CardKindCredit || k == CardKindDebit
}

// CardBrand is the card network.
type CardBrand string

// Known card brands.
const (
	BrandVisa       CardBrand = "visa"
	BrandMastercard CardBrand = "mastercard"
	BrandElo        CardBrand = "elo"
	BrandAmex       CardBrand = "amex"
	BrandHipercard  CardBrand = "hipercard"
	BrandOther      CardBrand = "other"
)

// Valid reports whether b is a known card brand.
func (b CardBrand) Valid() bool {
	switch b {
	case BrandVisa, BrandMastercard, BrandElo, BrandAmex, BrandHipercard, BrandOther:
		return true
	}
	return false
}

// Card is a payment card owned by a user.
type Card struct {
	CreatedAt      time.Time
	TotalLimit     *decimal.Decimal
	AvailableLimit *decimal.Decimal
	ClosingDay     *int
	DueDay         *int
	ID             string
	OwnerID        string
	Name           string
	LastFour       string
	Color          string
	Kind           CardKind
	Brand          CardBrand
	IsActive       bool
}

// CardInput carries the fields accepted when creating a card.
// Limits and billing days are only kept for credit cards.
type CardInput struct {
	TotalLimit *decimal.Decimal
	ClosingDay *int
	DueDay     *int
	Name       string
	LastFour   string
	Color      string
	Kind       CardKind
	Brand      CardBrand
}

// CardPatch carries the fields accepted when editing a card. Nil fields are left untouched.
type CardPatch struct {
	TotalLimit *decimal.Decimal
	ClosingDay *int
	DueDay     *int
	Name       *string
	LastFour   *string
	Color      *string
	Brand      *CardBrand
}

// CardFilter narrows card listings.
type CardFilter struct {
	Kind CardKind
}
