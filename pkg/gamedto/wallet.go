package gamedto

import "time"

// Transaction is a read-only ledger entry projected from the backend.
type Transaction struct {
	Type   string    `json:"type"`
	Amount int64     `json:"amount"`
	Date   time.Time `json:"date"`
}

// Transaction types reported by the backend ledger.
const (
	TxTypeWin        = "win"
	TxTypePurchase   = "purchase"
	TxTypeWithdrawal = "withdrawal"
	TxTypeStake      = "stake"
)

var txLabels = map[string]string{
	TxTypeWin:        "Match win",
	TxTypePurchase:   "Purchase",
	TxTypeWithdrawal: "Withdrawal",
	TxTypeStake:      "Stake",
}

// TypeLabel returns a display label for a transaction type, falling
// back to the raw type for values this client does not know.
func (t Transaction) TypeLabel() string {
	if l, ok := txLabels[t.Type]; ok {
		return l
	}
	return t.Type
}

type BalanceResponse struct {
	Coins int64 `json:"coins"`
}

type TransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type InvoiceRequest struct {
	Amount int64 `json:"amount"`
}

type InvoiceResponse struct {
	InvoiceLink string `json:"invoice_link"`
}
