package entity

import "encoding/json"

// PaymentMethodMpesa is the storefront selector value that triggers an
// STK push attempt.
const PaymentMethodMpesa = "mpesa"

// OrderSubmission is one storefront order. It lives for the duration of a
// single HTTP request; there is no stored identity beyond the submission ID,
// which exists only for log and audit correlation inside this process.
type OrderSubmission struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	JarSize       string
	Quantity      string
	DeliveryDate  string
	DeliveryTime  string
	Location      string
	PaymentMethod string
	Amount        float64 // server-computed, authoritative
	Notes         string
}

// PaymentRequest is the input for one payment-initiation attempt.
type PaymentRequest struct {
	PhoneNumber      string // normalized, 254-prefixed
	Amount           float64
	AccountReference string
	TransactionDesc  string
}

// PaymentStatus is the lifecycle tag of a PaymentOutcome.
type PaymentStatus string

const (
	PaymentStatusSkipped   PaymentStatus = "SKIPPED"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// PaymentOutcome is the tagged result of the conditional payment sub-step.
// Gateway failures are folded into a Failed outcome at the call site; they
// never unwind past the step that invoked them, so the order flow stays a
// pure function of inputs to outcome.
type PaymentOutcome struct {
	Status  PaymentStatus
	Result  json.RawMessage // raw gateway response when Succeeded
	Message string          // user-facing detail when Failed
}

func PaymentSkipped() PaymentOutcome {
	return PaymentOutcome{Status: PaymentStatusSkipped}
}

func PaymentSucceeded(result json.RawMessage) PaymentOutcome {
	return PaymentOutcome{Status: PaymentStatusSucceeded, Result: result}
}

func PaymentFailed(message string) PaymentOutcome {
	return PaymentOutcome{Status: PaymentStatusFailed, Message: message}
}
