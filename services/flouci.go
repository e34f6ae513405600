// services/flouci.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"

	"creator-platform/utils"
)

// FlouciGateway wraps Flouci's redirect-based TND payment API. Remote
// failures never escape as errors: every call returns a result value with
// Success=false and the cause in Error, and the caller branches on Success.
type FlouciGateway struct {
	BaseURL    string
	AppToken   string
	AppSecret  string
	HTTPClient *http.Client
}

func NewFlouciGateway() *FlouciGateway {
	baseURL := os.Getenv("FLOUCI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://developers.flouci.com/api"
	}
	return &FlouciGateway{
		BaseURL:    baseURL,
		AppToken:   os.Getenv("FLOUCI_APP_TOKEN"),
		AppSecret:  os.Getenv("FLOUCI_APP_SECRET"),
		HTTPClient: utils.GatewayHTTPClient,
	}
}

// FlouciInitResult is the outcome of starting a checkout.
type FlouciInitResult struct {
	Success   bool   `json:"success"`
	PaymentID string `json:"payment_id,omitempty"`
	Link      string `json:"link,omitempty"`
	QRCode    string `json:"qr_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FlouciVerifyResult is the outcome of checking a payment's state.
type FlouciVerifyResult struct {
	Success       bool    `json:"success"`
	Status        string  `json:"status,omitempty"`
	AmountDT      float64 `json:"amount_dt,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// Init opens a payment session. Flouci takes amounts in millimes, so the DT
// amount is scaled by 1000 before the call.
func (g *FlouciGateway) Init(amountDT float64, successURL, failURL, trackingID string) FlouciInitResult {
	body := map[string]interface{}{
		"app_token":             g.AppToken,
		"app_secret":            g.AppSecret,
		"amount":                int64(math.Round(amountDT * 1000)),
		"accept_card":           true,
		"session_timeout_secs":  1200,
		"success_link":          successURL,
		"fail_link":             failURL,
		"developer_tracking_id": trackingID,
	}
	raw, _ := json.Marshal(body)

	resp, err := g.HTTPClient.Post(g.BaseURL+"/generate_payment", "application/json", bytes.NewReader(raw))
	if err != nil {
		return FlouciInitResult{Success: false, Error: fmt.Sprintf("flouci init call failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return FlouciInitResult{Success: false, Error: fmt.Sprintf("flouci init returned status %d: %s", resp.StatusCode, snippet)}
	}

	var parsed struct {
		Result struct {
			Success   bool   `json:"success"`
			Link      string `json:"link"`
			PaymentID string `json:"payment_id"`
			QRCode    string `json:"qr_code"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return FlouciInitResult{Success: false, Error: fmt.Sprintf("flouci init decode failed: %v", err)}
	}
	if !parsed.Result.Success || parsed.Result.PaymentID == "" {
		return FlouciInitResult{Success: false, Error: "flouci refused the payment session"}
	}

	return FlouciInitResult{
		Success:   true,
		PaymentID: parsed.Result.PaymentID,
		Link:      parsed.Result.Link,
		QRCode:    parsed.Result.QRCode,
	}
}

// Verify fetches the payment state. Status is Flouci's own string
// ("SUCCESS", "FAILURE", "PENDING"); Success is true only for SUCCESS.
func (g *FlouciGateway) Verify(paymentID string) FlouciVerifyResult {
	req, err := http.NewRequest(http.MethodGet, g.BaseURL+"/verify_payment/"+paymentID, nil)
	if err != nil {
		return FlouciVerifyResult{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apppublic", g.AppToken)
	req.Header.Set("appsecret", g.AppSecret)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return FlouciVerifyResult{Success: false, Error: fmt.Sprintf("flouci verify call failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return FlouciVerifyResult{Success: false, Error: fmt.Sprintf("flouci verify returned status %d: %s", resp.StatusCode, snippet)}
	}

	var parsed struct {
		Result struct {
			Status  string `json:"status"`
			Details struct {
				Amount int64  `json:"amount"` // millimes
				Name   string `json:"name"`
				Type   string `json:"type"` // wallet or card
			} `json:"details"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return FlouciVerifyResult{Success: false, Error: fmt.Sprintf("flouci verify decode failed: %v", err)}
	}

	method := parsed.Result.Details.Type
	if method == "" {
		method = "flouci"
	}
	return FlouciVerifyResult{
		Success:       parsed.Result.Status == "SUCCESS",
		Status:        parsed.Result.Status,
		AmountDT:      float64(parsed.Result.Details.Amount) / 1000,
		PaymentMethod: method,
	}
}
