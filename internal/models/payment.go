package models

import "time"

// PaymentStatus of a recorded payment. Walk-in payments are always COMPLETED.
type PaymentStatus string

const PaymentStatusCompleted PaymentStatus = "COMPLETED"

// TuitionRemark is the remarks sentinel that marks a payment as tuition;
// NULL and empty remarks count as tuition too. Anything else (parking,
// documents) is excluded from the tuition balance.
const TuitionRemark = "Tuition Fee"

// Payment is an append-only ledger row keyed by the student number in
// ReferenceNumber. The core never updates or deletes payments.
type Payment struct {
	TransactionID   string        `db:"transaction_id" json:"transaction_id"`
	ReferenceNumber string        `db:"reference_number" json:"reference_number"`
	Amount          float64       `db:"amount" json:"amount"`
	PaymentMethod   string        `db:"payment_method" json:"payment_method"`
	Remarks         *string       `db:"remarks" json:"remarks,omitempty"`
	PaymentDate     time.Time     `db:"payment_date" json:"payment_date"`
	Status          PaymentStatus `db:"status" json:"status"`
}
