package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemabeez/honey-orders/internal/orderapi/core/domain/entity"
	"github.com/chemabeez/honey-orders/internal/paylog"
)

type stubInitiator struct {
	calls  []entity.PaymentRequest
	result json.RawMessage
	err    error
}

func (s *stubInitiator) InitiatePayment(_ context.Context, req entity.PaymentRequest) (json.RawMessage, error) {
	s.calls = append(s.calls, req)
	return s.result, s.err
}

type stubNotifier struct {
	orders []*entity.OrderSubmission
}

func (s *stubNotifier) Notify(_ context.Context, order *entity.OrderSubmission) {
	s.orders = append(s.orders, order)
}

type stubAudit struct {
	entries []*paylog.Entry
	err     error
}

func (s *stubAudit) Save(_ context.Context, entry *paylog.Entry) error {
	s.entries = append(s.entries, entry)
	return s.err
}

func newTestHandler() (*Handler, *stubInitiator, *stubNotifier, *stubAudit) {
	payments := &stubInitiator{result: json.RawMessage(`{"ResponseCode":"0","CheckoutRequestID":"ws_CO_1"}`)}
	notifier := &stubNotifier{}
	audit := &stubAudit{}
	return NewHandler(payments, notifier, audit), payments, notifier, audit
}

func postOrder(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/order", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateOrder(rec, req)
	return rec
}

func decodeOrderResponse(t *testing.T, rec *httptest.ResponseRecorder) OrderResponse {
	t.Helper()
	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

const validMpesaOrder = `{
	"name": "A",
	"email": "a@example.com",
	"phone": "0700000000",
	"jarSize": "500g",
	"quantity": "2",
	"paymentMethod": "mpesa",
	"amount": "550"
}`

func TestCreateOrderMethodNotAllowed(t *testing.T) {
	h, payments, notifier, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/order", nil)
	rec := httptest.NewRecorder()
	h.CreateOrder(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
	assert.JSONEq(t, `{"success":false,"message":"Method Not Allowed"}`, rec.Body.String())
	assert.Empty(t, payments.calls, "no business logic on method errors")
	assert.Empty(t, notifier.orders)
}

func TestCreateOrderMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing phone", `{"name":"A","jarSize":"500g","quantity":"2"}`},
		{"missing name", `{"phone":"0700000000","jarSize":"500g","quantity":"2"}`},
		{"missing jar size", `{"name":"A","phone":"0700000000","quantity":"2"}`},
		{"missing quantity", `{"name":"A","phone":"0700000000","jarSize":"500g"}`},
		{"empty body", `{}`},
		{"malformed json", `{"name":`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, payments, notifier, _ := newTestHandler()
			rec := postOrder(t, h, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"success":false,"message":"Please fill in all required fields."}`, rec.Body.String())
			assert.Empty(t, payments.calls, "no outbound calls on validation failure")
			assert.Empty(t, notifier.orders)
		})
	}
}

func TestCreateOrderUnpriceable(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown jar size", `{"name":"A","phone":"0700000000","jarSize":"2kg","quantity":"2"}`},
		{"zero quantity", `{"name":"A","phone":"0700000000","jarSize":"500g","quantity":"0"}`},
		{"negative quantity", `{"name":"A","phone":"0700000000","jarSize":"500g","quantity":"-3"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, payments, _, _ := newTestHandler()
			rec := postOrder(t, h, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"success":false,"message":"Invalid jar size or quantity."}`, rec.Body.String())
			assert.Empty(t, payments.calls)
		})
	}
}

func TestCreateOrderMpesaHappyPath(t *testing.T) {
	h, payments, notifier, audit := newTestHandler()
	rec := postOrder(t, h, validMpesaOrder)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeOrderResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Order received. You will receive honey delivery as agreed.", resp.Message)
	assert.JSONEq(t, `{"ResponseCode":"0","CheckoutRequestID":"ws_CO_1"}`, string(resp.Mpesa))

	require.Len(t, payments.calls, 1)
	push := payments.calls[0]
	assert.Equal(t, "254700000000", push.PhoneNumber)
	assert.Equal(t, 1100.0, push.Amount, "server-computed amount wins over the advisory client value")
	assert.Equal(t, "Honey-2x500g", push.AccountReference)
	assert.Equal(t, "ChemaBeez honey order", push.TransactionDesc)

	require.Len(t, notifier.orders, 1)
	assert.Equal(t, 1100.0, notifier.orders[0].Amount)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, paylog.KindSTKPush, audit.entries[0].Kind)
	assert.Equal(t, paylog.StatusAccepted, audit.entries[0].Status)
}

func TestCreateOrderNumericQuantityAccepted(t *testing.T) {
	h, payments, _, _ := newTestHandler()
	rec := postOrder(t, h, `{"name":"A","phone":"0700000000","jarSize":"250g","quantity":3,"paymentMethod":"mpesa"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, payments.calls, 1)
	assert.Equal(t, 900.0, payments.calls[0].Amount)
}

func TestCreateOrderPaymentSkippedForCash(t *testing.T) {
	h, payments, notifier, _ := newTestHandler()
	rec := postOrder(t, h, `{"name":"A","phone":"0700000000","jarSize":"500g","quantity":"2","paymentMethod":"cash"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeOrderResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "null", string(resp.Mpesa))
	assert.Empty(t, payments.calls)
	assert.Len(t, notifier.orders, 1, "notification fires even when payment is skipped")
}

func TestCreateOrderGatewayFailureStillSucceeds(t *testing.T) {
	h, payments, notifier, audit := newTestHandler()
	payments.result = nil
	payments.err = errors.New("mpesa: token endpoint returned 401 Unauthorized")

	rec := postOrder(t, h, validMpesaOrder)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeOrderResponse(t, rec)
	assert.True(t, resp.Success, "the order is accepted even when payment initiation fails")

	var pe paymentError
	require.NoError(t, json.Unmarshal(resp.Mpesa, &pe))
	assert.True(t, pe.Error)
	assert.Equal(t, "Failed to initiate M-Pesa STK push. Please try again or pay on delivery.", pe.Message)

	assert.Len(t, notifier.orders, 1, "notification fires regardless of payment outcome")
	require.Len(t, audit.entries, 1)
	assert.Equal(t, paylog.StatusFailed, audit.entries[0].Status)
}

func TestCreateOrderAuditFailureIsSwallowed(t *testing.T) {
	h, _, _, audit := newTestHandler()
	audit.err = errors.New("disk full")

	rec := postOrder(t, h, validMpesaOrder)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeOrderResponse(t, rec).Success)
}

func TestCreateOrderNilAuditRepository(t *testing.T) {
	payments := &stubInitiator{result: json.RawMessage(`{}`)}
	h := NewHandler(payments, &stubNotifier{}, nil)

	rec := postOrder(t, h, validMpesaOrder)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateOrderPanicYieldsGeneric500(t *testing.T) {
	h := NewHandler(panickyInitiator{}, &stubNotifier{}, nil)

	rec := postOrder(t, h, validMpesaOrder)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"message":"Something went wrong while processing your order. Please try again."}`,
		rec.Body.String())
}

type panickyInitiator struct{}

func (panickyInitiator) InitiatePayment(context.Context, entity.PaymentRequest) (json.RawMessage, error) {
	panic("gateway client bug")
}

func TestMpesaCallbackAcknowledgesAnyBody(t *testing.T) {
	for _, body := range []string{
		`{"Body":{"stkCallback":{"ResultCode":0}}}`,
		`not even json`,
		``,
	} {
		h, _, _, audit := newTestHandler()
		req := httptest.NewRequest(http.MethodPost, "/api/mpesa/callback", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.MpesaCallback(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "body=%q", body)
		assert.JSONEq(t, `{"status":"received"}`, rec.Body.String())

		require.Len(t, audit.entries, 1)
		assert.Equal(t, paylog.KindCallback, audit.entries[0].Kind)
		assert.Equal(t, body, audit.entries[0].Payload)
		assert.Empty(t, audit.entries[0].SubmissionID, "callbacks carry no order identity")
	}
}

func TestMpesaCallbackMethodNotAllowed(t *testing.T) {
	h, _, _, audit := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/mpesa/callback", nil)
	rec := httptest.NewRecorder()
	h.MpesaCallback(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
	assert.Empty(t, audit.entries)
}

func TestRouterWiresEndpoints(t *testing.T) {
	h, _, _, _ := newTestHandler()
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Post(srv.URL+"/api/mpesa/callback", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
