package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// CheckoutSession is the subset of the provider's session object this
// service reads, both from the create-session response and from webhook
// payloads.
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Metadata      map[string]string `json:"metadata"`
}

type CheckoutParams struct {
	Currency    string
	ProductName string
	ImageURL    string
	UnitAmount  int64 // minor units
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the Stripe checkout API.
type Client struct {
	secretKey string
	base      string
	http      *http.Client
}

func NewClient(secretKey string) *Client {
	return &Client{
		secretKey: secretKey,
		base:      "https://api.stripe.com/v1",
		http:      &http.Client{},
	}
}

// CreateCheckoutSession creates a one-off card payment session.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", p.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(p.UnitAmount, 10))
	form.Set("line_items[0][price_data][product_data][name]", p.ProductName)
	if p.ImageURL != "" {
		form.Set("line_items[0][price_data][product_data][images][0]", p.ImageURL)
	}
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	for k, v := range p.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	endpoint := c.base + "/checkout/sessions"
	r, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	r.Header.Set("Authorization", "Bearer "+c.secretKey)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var ae apiError
		if err := json.Unmarshal(bodyBytes, &ae); err == nil && ae.Error.Message != "" {
			return nil, fmt.Errorf("stripe api error: %s", ae.Error.Message)
		}
		return nil, fmt.Errorf("stripe api error: %s", string(bodyBytes))
	}

	var session CheckoutSession
	if err := json.Unmarshal(bodyBytes, &session); err != nil {
		return nil, fmt.Errorf("decode error: %w, body: %s", err, string(bodyBytes))
	}
	return &session, nil
}
