package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/chemabeez/honey-orders/internal/orderapi/core/domain/entity"
	"github.com/chemabeez/honey-orders/internal/orderapi/core/ports"
	"github.com/chemabeez/honey-orders/internal/paylog"
	"github.com/chemabeez/honey-orders/internal/phone"
	"github.com/chemabeez/honey-orders/internal/pkg/requestmeta"
	"github.com/chemabeez/honey-orders/internal/pricing"
)

// User-facing response messages.
const (
	msgOrderReceived    = "Order received. You will receive honey delivery as agreed."
	msgMissingFields    = "Please fill in all required fields."
	msgInvalidOrder     = "Invalid jar size or quantity."
	msgMethodNotAllowed = "Method Not Allowed"
	msgServerError      = "Something went wrong while processing your order. Please try again."
	msgPushFailed       = "Failed to initiate M-Pesa STK push. Please try again or pay on delivery."
)

// Callback bodies are gateway-defined JSON; cap reads defensively.
const maxCallbackBody = 1 << 20

// Handler handles the storefront order submission and the gateway's
// asynchronous payment callback.
type Handler struct {
	payments ports.PaymentInitiator
	notifier ports.Notifier
	audit    paylog.Repository // nil-safe: auditing skipped if nil
}

// NewHandler initializes the handler with its collaborators.
// audit may be nil — gateway interactions are then not persisted.
func NewHandler(payments ports.PaymentInitiator, notifier ports.Notifier, audit paylog.Repository) *Handler {
	return &Handler{
		payments: payments,
		notifier: notifier,
		audit:    audit,
	}
}

// CreateOrder validates and prices a submission, conditionally initiates
// an STK push, fires the merchant notification, and replies with the
// unified response. After validation the only non-200 outcome is an
// unanticipated panic, which is folded into a generic 500.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	ctx := r.Context()

	defer func() {
		if rec := recover(); rec != nil {
			slog.ErrorContext(ctx, "order processing panicked",
				"request_id", requestmeta.RequestID(ctx),
				"panic", rec,
			)
			writeError(w, http.StatusInternalServerError, msgServerError)
		}
	}()

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Treat an unreadable body like an empty submission.
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	if req.Name == "" || req.Phone == "" || req.JarSize == "" || req.Quantity == "" {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	amount, err := pricing.Calculate(req.JarSize, string(req.Quantity))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidOrder)
		return
	}

	order := &entity.OrderSubmission{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		JarSize:       req.JarSize,
		Quantity:      string(req.Quantity),
		DeliveryDate:  req.DeliveryDate,
		DeliveryTime:  req.DeliveryTime,
		Location:      req.Location,
		PaymentMethod: req.PaymentMethod,
		Amount:        amount,
		Notes:         req.Notes,
	}

	slog.InfoContext(ctx, "order received",
		"request_id", requestmeta.RequestID(ctx),
		"submission_id", order.ID,
		"jar_size", order.JarSize,
		"quantity", order.Quantity,
		"amount", order.Amount,
		"payment_method", order.PaymentMethod,
	)

	outcome := h.processPayment(ctx, order)

	// Notification is unconditional and best-effort; the dispatcher
	// swallows its own failures.
	h.notifier.Notify(ctx, order)

	writeJSON(w, http.StatusOK, OrderResponse{
		Success: true,
		Message: msgOrderReceived,
		Mpesa:   mpesaField(outcome),
	})
}

// processPayment runs the conditional payment sub-step and folds every
// failure into a tagged outcome. Nothing escapes this function as an error.
func (h *Handler) processPayment(ctx context.Context, order *entity.OrderSubmission) entity.PaymentOutcome {
	if order.PaymentMethod != entity.PaymentMethodMpesa || order.Amount <= 0 || order.Phone == "" {
		return entity.PaymentSkipped()
	}

	msisdn, err := phone.Normalize(order.Phone)
	if err != nil {
		slog.ErrorContext(ctx, "phone normalization failed",
			"submission_id", order.ID,
			"error", err,
		)
		h.auditSave(ctx, paylog.NewEntry(ctx, order.ID, paylog.KindSTKPush, paylog.StatusFailed, "", err.Error()))
		return entity.PaymentFailed(msgPushFailed)
	}

	result, err := h.payments.InitiatePayment(ctx, entity.PaymentRequest{
		PhoneNumber:      msisdn,
		Amount:           order.Amount,
		AccountReference: fmt.Sprintf("Honey-%sx%s", order.Quantity, order.JarSize),
		TransactionDesc:  "ChemaBeez honey order",
	})
	if err != nil {
		slog.ErrorContext(ctx, "stk push failed",
			"submission_id", order.ID,
			"error", err,
		)
		h.auditSave(ctx, paylog.NewEntry(ctx, order.ID, paylog.KindSTKPush, paylog.StatusFailed, "", err.Error()))
		return entity.PaymentFailed(msgPushFailed)
	}

	slog.InfoContext(ctx, "stk push accepted", "submission_id", order.ID)
	h.auditSave(ctx, paylog.NewEntry(ctx, order.ID, paylog.KindSTKPush, paylog.StatusAccepted, string(result), ""))
	return entity.PaymentSucceeded(result)
}

// MpesaCallback acknowledges the gateway's asynchronous payment result.
// The body is opaque to this system: it is logged and audited, never
// parsed, and malformed input is acknowledged all the same.
func (h *Handler) MpesaCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		slog.WarnContext(ctx, "failed to read mpesa callback body", "error", err)
		body = nil
	}

	slog.InfoContext(ctx, "mpesa callback received",
		"request_id", requestmeta.RequestID(ctx),
		"body", string(body),
	)
	h.auditSave(ctx, paylog.NewEntry(ctx, "", paylog.KindCallback, paylog.StatusReceived, string(body), ""))

	writeJSON(w, http.StatusOK, CallbackAck{Status: "received"})
}

// Healthz is a liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auditSave writes a gateway-log row if auditing is enabled. Failures are
// logged and dropped; the audit trail never affects a response.
func (h *Handler) auditSave(ctx context.Context, entry *paylog.Entry) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "gateway audit write failed", "error", err)
	}
}

// mpesaField maps a PaymentOutcome to the wire representation: raw result,
// inline error object, or null.
func mpesaField(outcome entity.PaymentOutcome) json.RawMessage {
	switch outcome.Status {
	case entity.PaymentStatusSucceeded:
		return outcome.Result
	case entity.PaymentStatusFailed:
		raw, err := json.Marshal(paymentError{Error: true, Message: outcome.Message})
		if err != nil {
			return json.RawMessage(`{"error":true}`)
		}
		return raw
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Message: msg,
	})
}
