package usecase

import (
	"context"
	"math"
	"net/http"

	"github.com/google/uuid"
)

// 決済ゲートウェイ（Razorpay）の窓口。
type PaymentGateway interface {
	//ゲートウェイ側に注文を作り、レスポンスをそのまま返す
	CreateOrder(ctx context.Context, amountMinor int64, currency string, receipt string) (map[string]interface{}, error)

	//署名検証。orderID|paymentIDのHMACをsignatureと突き合わせる
	VerifySignature(orderID string, paymentID string, signature string) bool
}

// 決済の開始と検証。注文確定より前に呼ばれる前提で、
// 注文レコードには触らないゲートウェイの薄いプロキシ。
type PaymentUsecase struct {
	gateway PaymentGateway
}

// DI
func NewPaymentUsecase(gateway PaymentGateway) *PaymentUsecase {
	return &PaymentUsecase{gateway: gateway}
}

type CreateIntentInput struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// ゲートウェイに決済注文を作る。金額は通貨の最小単位（paise）に丸めて渡す。
func (u *PaymentUsecase) CreateIntent(ctx context.Context, in CreateIntentInput) (map[string]interface{}, error) {
	if in.Amount <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "amount must be a positive number")
	}
	currency := in.Currency
	if currency == "" {
		currency = "INR"
	}

	amountMinor := int64(math.Round(in.Amount * 100))
	receipt := uuid.NewString()
	resp, err := u.gateway.CreateOrder(ctx, amountMinor, currency, receipt)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}
	return resp, nil
}

type VerifyPaymentInput struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// 署名検証。orderId|paymentIdのHMACが一致するかだけを見る。
func (u *PaymentUsecase) Verify(ctx context.Context, in VerifyPaymentInput) error {
	if in.RazorpayOrderID == "" || in.RazorpayPaymentID == "" || in.RazorpaySignature == "" {
		return NewHTTPError(http.StatusBadRequest, "missing payment fields")
	}

	if !u.gateway.VerifySignature(in.RazorpayOrderID, in.RazorpayPaymentID, in.RazorpaySignature) {
		return NewHTTPError(http.StatusBadRequest, "invalid signature")
	}
	return nil
}
