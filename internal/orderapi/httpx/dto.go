package httpx

import "encoding/json"

// FormValue accepts both JSON strings and bare numbers. The storefront
// form submits every field as a string, but API callers tend to send
// numbers for quantity and amount.
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = FormValue(n.String())
	return nil
}

// OrderRequest is the storefront submission payload. Amount is advisory
// only; the server recomputes the charge and discards this value.
type OrderRequest struct {
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	JarSize       string    `json:"jarSize"`
	Quantity      FormValue `json:"quantity"`
	DeliveryDate  string    `json:"deliveryDate"`
	DeliveryTime  string    `json:"deliveryTime"`
	Location      string    `json:"location"`
	PaymentMethod string    `json:"paymentMethod"`
	Amount        FormValue `json:"amount"`
	Notes         string    `json:"notes"`
}

// OrderResponse is the unified reply for an accepted order. Mpesa is the
// raw gateway result, an inline error object, or null when payment was
// skipped.
type OrderResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Mpesa   json.RawMessage `json:"mpesa"`
}

// ErrorResponse covers the 400/405/500 cases.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// paymentError is the inline error object folded into a 200 response when
// payment initiation fails.
type paymentError struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// CallbackAck acknowledges the gateway's asynchronous payment result.
type CallbackAck struct {
	Status string `json:"status"`
}
