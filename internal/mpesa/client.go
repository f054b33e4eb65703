// Package mpesa is a client for the Safaricom Daraja STK push API.
//
// Each push is two sequential calls: an OAuth credential fetch with Basic
// auth, then the push itself with the fresh Bearer token. Tokens are never
// cached or reused across requests — the gateway's acceptance window is
// short and a stale credential is not worth the bookkeeping. There are no
// retries; a failed attempt is terminal for that order and the caller
// decides what to do with the error.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	tokenPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	transactionType = "CustomerPayBillOnline"

	// Daraja expects YYYYMMDDHHMMSS in local time; the password must be
	// derived from the same timestamp string.
	timestampLayout = "20060102150405"

	defaultAccountReference = "ChemaBeez Honey"
	defaultTransactionDesc  = "Honey purchase"

	// Gateway responses are small JSON documents; anything bigger is noise.
	maxResponseBody = 1 << 20
)

var (
	// ErrCredentialsMissing means the OAuth consumer key/secret are not
	// configured. No network call is made.
	ErrCredentialsMissing = errors.New("mpesa: consumer key/secret not configured")

	// ErrPushNotConfigured means the shortcode, passkey, or callback URL is
	// missing. No network call is made.
	ErrPushNotConfigured = errors.New("mpesa: shortcode/passkey/callback URL not fully configured")
)

// Config carries the merchant's gateway credentials. Environment selects
// the Daraja host: "production" or anything else for sandbox.
type Config struct {
	Environment    string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	PassKey        string
	CallbackURL    string
}

// PushRequest is the input for one STK push attempt. PhoneNumber must
// already be in 254-prefixed subscriber format.
type PushRequest struct {
	PhoneNumber      string
	Amount           float64
	AccountReference string
	TransactionDesc  string
}

// stkPushPayload matches Daraja's wire format exactly, field names included.
type stkPushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int    `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// Client talks to one Daraja environment. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
	tracer     trace.Tracer
}

func NewClient(cfg Config) *Client {
	base := sandboxBaseURL
	if strings.EqualFold(cfg.Environment, "production") {
		base = productionBaseURL
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    base,
		now:        time.Now,
		tracer:     otel.Tracer("mpesa"),
	}
}

// InitiateSTKPush submits one payment prompt to the payer's device and
// returns the gateway's raw JSON response. Configuration gaps fail before
// any network traffic.
func (c *Client) InitiateSTKPush(ctx context.Context, req PushRequest) (json.RawMessage, error) {
	if c.cfg.ShortCode == "" || c.cfg.PassKey == "" || c.cfg.CallbackURL == "" {
		return nil, ErrPushNotConfigured
	}

	ctx, span := c.tracer.Start(ctx, "mpesa.stk_push", trace.WithAttributes(
		attribute.String("mpesa.shortcode", c.cfg.ShortCode),
		attribute.Float64("mpesa.amount", req.Amount),
	))
	defer span.End()

	// Timestamp and password are generated together; the password is only
	// valid for the gateway's acceptance window around this timestamp.
	ts := c.now().Format(timestampLayout)
	password := base64.StdEncoding.EncodeToString([]byte(c.cfg.ShortCode + c.cfg.PassKey + ts))

	token, err := c.accessToken(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	payload := stkPushPayload{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         ts,
		TransactionType:   transactionType,
		Amount:            int(req.Amount),
		PartyA:            req.PhoneNumber,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       req.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  orDefault(req.AccountReference, defaultAccountReference),
		TransactionDesc:   orDefault(req.TransactionDesc, defaultTransactionDesc),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("mpesa: encode push payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+stkPushPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mpesa: build push request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("mpesa: stk push: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("mpesa: read push response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("mpesa: stk push returned %s: %s", resp.Status, raw)
		span.RecordError(err)
		return nil, err
	}

	return json.RawMessage(raw), nil
}

// accessToken fetches a fresh short-lived OAuth credential.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.cfg.ConsumerKey == "" || c.cfg.ConsumerSecret == "" {
		return "", ErrCredentialsMissing
	}

	ctx, span := c.tracer.Start(ctx, "mpesa.access_token")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("mpesa: build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("mpesa: fetch access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		err := fmt.Errorf("mpesa: token endpoint returned %s: %s", resp.Status, raw)
		span.RecordError(err)
		return "", err
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&tok); err != nil {
		return "", fmt.Errorf("mpesa: decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("mpesa: empty access token in response")
	}

	return tok.AccessToken, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
