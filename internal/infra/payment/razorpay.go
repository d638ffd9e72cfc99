package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com"

// Razorpayの注文API薄いラッパー。
// レスポンスは加工せずそのまま返す。
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(keyID, keySecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// 決済注文（payment intent）を作成する。amountMinorは最小通貨単位。
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency string, receipt string) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay create order failed: status=%d body=%s", res.StatusCode, string(resBody))
	}

	var out map[string]interface{}
	if err := json.Unmarshal(resBody, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// コールバック署名の検証。
// HMAC-SHA256(secret, "orderID|paymentID") の16進表現と完全一致するかを見る。
func (c *Client) VerifySignature(orderID string, paymentID string, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
