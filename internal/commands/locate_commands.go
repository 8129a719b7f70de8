package commands

import (
	"github.com/shopspring/decimal"
)

// CreateLocateCommand represents a command to open a new locate request
type CreateLocateCommand struct {
	SecurityID        string
	ClientID          string
	RequestorID       string
	AggregationUnitID string
	Market            string
	RequestedQuantity decimal.Decimal
}

// ApproveLocateCommand represents a manual approval
type ApproveLocateCommand struct {
	RequestID           string
	ApprovedQuantity    decimal.Decimal
	ApprovedBy          string
	SecurityTemperature string
	BorrowRate          decimal.Decimal
}

// RejectLocateCommand represents a manual rejection
type RejectLocateCommand struct {
	RequestID  string
	Reason     string
	RejectedBy string
}

// ValidateShortSellCommand asks whether a short-sell order is covered by the
// client's active locates on the security
type ValidateShortSellCommand struct {
	ClientID   string
	SecurityID string
	Quantity   decimal.Decimal
}
