package polymarket

// trading.go — real order execution via Polymarket CLOB API.
//
// Implements ports.OrderExecutor using AuthClient for L1/L2 auth.
// Legs are submitted as GTC limit buys at the observed ask; atomicity across
// the two legs of a pair is explicitly NOT provided here — the caller owns
// leg sequencing and one-sided recovery.

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alejandrodnm/gabagool/internal/domain"
)

// clobOrderRequest is the JSON body sent to POST /order.
type clobOrderRequest struct {
	Order     clobOrderBody `json:"order"`
	Owner     string        `json:"owner"`
	OrderType string        `json:"orderType"`
}

type clobOrderBody struct {
	Salt          json.Number `json:"salt"`
	Maker         string      `json:"maker"`
	Signer        string      `json:"signer"`
	Taker         string      `json:"taker"`
	TokenID       string      `json:"tokenId"`
	MakerAmount   string      `json:"makerAmount"`
	TakerAmount   string      `json:"takerAmount"`
	Expiration    string      `json:"expiration"`
	Nonce         string      `json:"nonce"`
	FeeRateBps    string      `json:"feeRateBps"`
	Side          string      `json:"side"`
	SignatureType int         `json:"signatureType"`
	Signature     string      `json:"signature"`
}

type clobOrderResponse struct {
	ErrorMsg     string `json:"errorMsg"`
	OrderID      string `json:"orderID"`
	TakingAmount string `json:"takingAmount"`
	MakingAmount string `json:"makingAmount"`
	Status       string `json:"status"`
	Success      bool   `json:"success"`
}

// clobOrderDetail is the response of GET /data/order/{hash}.
type clobOrderDetail struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	OriginalSize string `json:"original_size"`
	SizeMatched  string `json:"size_matched"`
	Price        string `json:"price"`
	Outcome      string `json:"outcome"`
}

type clobBalanceResponse struct {
	Balance string `json:"balance"`
}

// TradingClient implements ports.OrderExecutor.
type TradingClient struct {
	auth *AuthClient
}

// NewTradingClient creates a TradingClient around an authenticated client.
func NewTradingClient(auth *AuthClient) *TradingClient {
	return &TradingClient{auth: auth}
}

// SubmitOrder signs and submits one BUY limit order to the CLOB.
// A CLOB-level rejection is surfaced as *domain.OrderRejectedError so the
// caller can abort the pair without treating it as a transport failure.
func (tc *TradingClient) SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderHandle, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return domain.OrderHandle{}, fmt.Errorf("submit order: creds: %w", err)
	}

	signed, err := tc.auth.buildSignedOrder(req.TokenID, req.Price, req.Qty)
	if err != nil {
		return domain.OrderHandle{}, fmt.Errorf("submit order: sign: %w", err)
	}

	body := clobOrderRequest{
		Order: clobOrderBody{
			Salt:          json.Number(signed.Order.Salt.String()),
			Maker:         signed.Order.Maker.Hex(),
			Signer:        signed.Order.Signer.Hex(),
			Taker:         signed.Order.Taker.Hex(),
			TokenID:       req.TokenID,
			MakerAmount:   signed.Order.MakerAmount.String(),
			TakerAmount:   signed.Order.TakerAmount.String(),
			Expiration:    signed.Order.Expiration.String(),
			Nonce:         signed.Order.Nonce.String(),
			FeeRateBps:    signed.Order.FeeRateBps.String(),
			Side:          "BUY",
			SignatureType: int(signed.Order.SignatureType.Int64()),
			Signature:     "0x" + hex.EncodeToString(signed.Signature),
		},
		Owner:     tc.auth.creds.APIKey,
		OrderType: "GTC",
	}

	var resp clobOrderResponse
	if err := tc.auth.doL2(ctx, http.MethodPost, "/order", body, &resp); err != nil {
		return domain.OrderHandle{}, fmt.Errorf("submit order: post: %w", err)
	}

	if !resp.Success || resp.ErrorMsg != "" {
		return domain.OrderHandle{}, &domain.OrderRejectedError{
			ConditionID: req.ConditionID,
			Side:        req.Side,
			Reason:      resp.ErrorMsg,
		}
	}

	return domain.OrderHandle{
		CLOBOrderID: resp.OrderID,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// OrderStatus polls the CLOB for the current fill state of an order.
func (tc *TradingClient) OrderStatus(ctx context.Context, handle domain.OrderHandle) (domain.OrderState, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return domain.OrderState{}, fmt.Errorf("order status: creds: %w", err)
	}

	path := "/data/order/" + handle.CLOBOrderID
	var detail clobOrderDetail
	if err := tc.auth.doL2(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return domain.OrderState{}, fmt.Errorf("order status %s: %w", handle.CLOBOrderID, err)
	}

	matched := parseFloat(detail.SizeMatched)
	original := parseFloat(detail.OriginalSize)
	price := parseFloat(detail.Price)

	state := domain.OrderState{FilledQty: matched}
	if matched > 0 {
		state.AvgPrice = price
	}

	switch detail.Status {
	case "MATCHED":
		state.Status = domain.OrderFilled
	case "CANCELED", "CANCELLED", "EXPIRED":
		state.Status = domain.OrderCancelled
	case "LIVE", "DELAYED":
		if matched > 0 && matched < original {
			state.Status = domain.OrderPartiallyFilled
		} else if matched >= original && original > 0 {
			state.Status = domain.OrderFilled
		} else {
			state.Status = domain.OrderPending
		}
	default:
		state.Status = domain.OrderError
	}

	return state, nil
}

// Balance returns the available USDC collateral in the CLOB.
func (tc *TradingClient) Balance(ctx context.Context) (float64, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return 0, fmt.Errorf("balance: creds: %w", err)
	}

	var resp clobBalanceResponse
	if err := tc.auth.doL2(ctx, http.MethodGet, "/balance-allowance?asset_type=COLLATERAL", nil, &resp); err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}

	// Balance comes back in 6-decimal USDC base units.
	raw, err := strconv.ParseFloat(resp.Balance, 64)
	if err != nil {
		return 0, fmt.Errorf("balance: parse %q: %w", resp.Balance, err)
	}
	return raw / 1e6, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
