package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*PaystackGateway)(nil)

// PaystackGateway implements PaymentGateway using direct HTTP calls against
// the Paystack REST API.
type PaystackGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewPaystackGateway creates a new direct Paystack gateway. baseURL may be
// overridden for tests; empty selects the production API.
func NewPaystackGateway(secretKey, baseURL string) *PaystackGateway {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &PaystackGateway{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *PaystackGateway) Name() string { return "paystack" }

// paystackInitResponse represents the response from the transaction initialize API
type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// paystackVerifyResponse represents the response from the transaction verify API
type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID       int64      `json:"id"`
		Status   string     `json:"status"`
		Amount   int64      `json:"amount"`
		Currency string     `json:"currency"`
		PaidAt   *time.Time `json:"paid_at"`
	} `json:"data"`
}

func (g *PaystackGateway) InitializeCheckout(ctx context.Context, r adapter.CheckoutRequest) (*adapter.CheckoutSession, error) {
	requestData := map[string]interface{}{
		"email":        r.Email,
		"amount":       r.Amount,
		"currency":     r.Currency,
		"reference":    r.Reference,
		"callback_url": r.CallbackURL,
	}
	if r.Metadata != nil {
		requestData["metadata"] = r.Metadata
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := g.baseURL + "/transaction/initialize"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var response paystackInitResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if !response.Status {
		return nil, fmt.Errorf("paystack error: %s", response.Message)
	}

	return &adapter.CheckoutSession{
		CheckoutURL: response.Data.AuthorizationURL,
		Reference:   r.Reference,
	}, nil
}

func (g *PaystackGateway) VerifyTransaction(ctx context.Context, reference string) (*adapter.VerifyResult, error) {
	url := g.baseURL + "/transaction/verify/" + reference
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Paystack answers 404 for references it never saw. That is a definitive
	// outcome, not a transport failure.
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrGatewayTxNotFound, reference)
	}

	var response paystackVerifyResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if !response.Status {
		return nil, fmt.Errorf("paystack error: %s", response.Message)
	}

	return &adapter.VerifyResult{
		Succeeded:   response.Data.Status == "success",
		GatewayTxID: fmt.Sprintf("%d", response.Data.ID),
		Amount:      response.Data.Amount,
		PaidAt:      response.Data.PaidAt,
	}, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header: an
// HMAC-SHA512 of the raw body keyed with the secret key, hex encoded.
func (g *PaystackGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(g.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
