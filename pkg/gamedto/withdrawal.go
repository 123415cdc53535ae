package gamedto

import "time"

// WithdrawalStatus values are defined by the backend; the client only
// displays them.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// Withdrawal is a read-only view of a past withdrawal request.
type Withdrawal struct {
	Amount int64            `json:"amount"`
	Status WithdrawalStatus `json:"status"`
	Date   time.Time        `json:"date"`
}

type WithdrawalRequest struct {
	Amount int64  `json:"amount"`
	Wallet string `json:"wallet"`
}

type WithdrawalsResponse struct {
	Withdrawals []Withdrawal `json:"withdrawals"`
}
