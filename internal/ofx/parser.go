// Package ofx reads OFX/QFX bank and credit card statements into ledger transaction inputs.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// AccountKind tells bank statements apart from credit card statements.
type AccountKind string

// Statement account kinds.
const (
	AccountBank       AccountKind = "bank"
	AccountCreditCard AccountKind = "credit_card"
)

// NotesPrefix marks the notes of imported transactions; the rest of the note is the
// institution's transaction ID.
const NotesPrefix = "ofx:"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement line.
type Entry struct {
	Date        time.Time // Civil date
	Amount      decimal.Decimal
	FitID       string
	Description string
	AccountID   string
	TrnType     string
	Type        model.TransactionType
	Account     AccountKind
}

// Notes returns the note that ties an imported transaction back to its statement line.
func (e Entry) Notes() string {
	return NotesPrefix + e.FitID
}

// Mapping chooses the category, card and payment method for imported entries.
type Mapping struct {
	ExpenseCategoryID string
	IncomeCategoryID  string
	CardID            string
}

// Input converts the entry to a single-payment transaction input.
func (e Entry) Input(m Mapping) model.TransactionInput {
	in := model.TransactionInput{
		Date:             e.Date,
		Amount:           e.Amount,
		Description:      e.Description,
		Notes:            e.Notes(),
		Type:             e.Type,
		InstallmentCount: 1,
		PaymentMethod:    e.paymentMethod(m.CardID != ""),
	}
	if e.Type == model.TypeIncome {
		in.CategoryID = m.IncomeCategoryID
	} else {
		in.CategoryID = m.ExpenseCategoryID
		in.CardID = m.CardID
	}
	return in
}

func (e Entry) paymentMethod(withCard bool) model.PaymentMethod {
	switch {
	case e.Type == model.TypeExpense && withCard && e.Account == AccountCreditCard:
		return model.PaymentCreditCard
	case e.Type == model.TypeExpense && withCard:
		return model.PaymentDebitCard
	case e.TrnType == "XFER" || e.TrnType == "DIRECTDEP" || e.TrnType == "DIRECTDEBIT":
		return model.PaymentTransfer
	case e.TrnType == "CASH" || e.TrnType == "ATM":
		return model.PaymentCash
	default:
		return model.PaymentOther
	}
}

// Statement is the parsed content of one OFX file.
type Statement struct {
	Entries  []Entry
	Accounts []string
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Mixed-case SEVERITY values are rejected by ofxgo.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML exports sometimes drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file. Zero-amount lines are skipped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{Entries: []Entry{}, Accounts: []string{}}
	accounts := make(map[string]bool)
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if bank, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			id := string(bank.BankAcctFrom.AcctID)
			accounts[id] = true
			stmt.Entries = append(stmt.Entries, p.convertList(bank.BankTranList, id, AccountBank)...)
		}
	}

	for _, msg := range resp.CreditCard {
		if cc, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			id := string(cc.CCAcctFrom.AcctID)
			accounts[id] = true
			stmt.Entries = append(stmt.Entries, p.convertList(cc.BankTranList, id, AccountCreditCard)...)
		}
	}

	for id := range accounts {
		if id != "" {
			stmt.Accounts = append(stmt.Accounts, id)
		}
	}
	sort.Strings(stmt.Accounts)

	slog.InfoContext(ctx, "Parsed OFX file",
		"total_transactions", len(stmt.Entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return stmt, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, accountID string, kind AccountKind) []Entry {
	if list == nil {
		return nil
	}

	var entries []Entry
	for _, ofxTx := range list.Transactions {
		entry, ok := p.convertTransaction(ofxTx, accountID, kind)
		if !ok {
			slog.Debug("Skipping zero-amount OFX transaction", "fitid", ofxTx.FiTID)
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// convertTransaction maps an OFX transaction onto a statement entry. OFX signs debits
// negative; the ledger keeps amounts positive and records the direction as the type.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string, kind AccountKind) (Entry, bool) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil || amount.IsZero() {
		return Entry{}, false
	}

	txnType := model.TypeExpense
	if amount.IsPositive() {
		txnType = model.TypeIncome
	}

	description := p.extractMerchantName(ofxTx)
	if description == "" {
		description = strings.TrimSpace(string(ofxTx.Name))
	}

	return Entry{
		FitID:       string(ofxTx.FiTID),
		Date:        model.CivilDate(ofxTx.DtPosted.Time),
		Description: description,
		Amount:      amount.Abs(),
		AccountID:   accountID,
		TrnType:     ofxTx.TrnType.String(),
		Type:        txnType,
		Account:     kind,
	}, true
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE carries the cleanest merchant name when present.
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// MEMO sometimes has the merchant when NAME is generic.
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
		"COMPRA CARTAO ",
		"PIX ENVIADO ",
		"PIX RECEBIDO ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
