package models

// InstallmentStatus marks whether cumulative tuition payments have reached an
// installment's threshold.
type InstallmentStatus string

const (
	InstallmentPaid   InstallmentStatus = "PAID"
	InstallmentUnpaid InstallmentStatus = "UNPAID"
)

// Installment is one step of the payment plan after the downpayment.
type Installment struct {
	Label   string            `json:"label"`
	DueDate string            `json:"due_date"`
	Amount  float64           `json:"amount"`
	Status  InstallmentStatus `json:"status"`
}

// FinancialSnapshot is the derived assessment of a student: charges from the
// current enlistments, tuition-marked payments, and the installment plan.
// It is a pure function of committed store state.
type FinancialSnapshot struct {
	StudentNumber      string            `json:"student_number"`
	TotalUnits         int               `json:"total_units"`
	UnitsCharged       int               `json:"units_charged"`
	TuitionTotal       float64           `json:"tuition_total"`
	MiscFees           float64           `json:"misc_fees"`
	OtherFees          float64           `json:"other_fees"`
	TotalAssessment    float64           `json:"total_assessment"`
	TotalTuitionPaid   float64           `json:"total_tuition_paid"`
	OutstandingBalance float64           `json:"outstanding_balance"`
	DownpaymentAmount  float64           `json:"downpayment_amount"`
	DownpaymentStatus  InstallmentStatus `json:"downpayment_status"`
	Installments       []Installment     `json:"installments"`
	EnlistedSubjects   []EnlistedSubject `json:"enlisted_subjects"`
	PaymentHistory     []Payment         `json:"payment_history"`
}
