package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agoradeals/core"
	"agoradeals/crypto"
	"agoradeals/storage"
)

const testNow = int64(1_700_000_000)

func testAddr(b byte) string {
	var a crypto.Address
	a[0] = b
	return a.String()
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	node := core.NewNode(storage.NewMemDB())
	node.SetNowFunc(func() int64 { return testNow })
	srv := NewServer(node, opts)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, token, method string, params interface{}) (*RPCResponse, int) {
	t.Helper()
	payload := map[string]interface{}{
		"jsonrpc": jsonRPCVersion,
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = []interface{}{params}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	decoded := &RPCResponse{}
	if err := json.NewDecoder(resp.Body).Decode(decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return decoded, resp.StatusCode
}

func mustResult(t *testing.T, resp *RPCResponse) map[string]interface{} {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result shape: %T", resp.Result)
	}
	return result
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestMethodNotFound(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, status := call(t, ts, "", "bogus_method", map[string]interface{}{})
	if status != http.StatusNotFound || resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("unexpected response: status=%d err=%+v", status, resp.Error)
	}
}

func TestMarketplaceFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t, Options{})
	authority := testAddr(1)
	merchantAuth := testAddr(2)
	u1 := testAddr(10)
	u2 := testAddr(11)

	resp, _ := call(t, ts, "", "marketplace_initialize", map[string]interface{}{
		"authority":      authority,
		"feeBasisPoints": 250,
	})
	registry := mustResult(t, resp)
	if registry["feeBasisPoints"].(float64) != 250 {
		t.Fatalf("unexpected registry: %+v", registry)
	}

	resp, status := call(t, ts, "", "marketplace_initialize", map[string]interface{}{
		"authority":      authority,
		"feeBasisPoints": 250,
	})
	if status != http.StatusConflict || resp.Error == nil || resp.Error.Code != codeConflict {
		t.Fatalf("second initialize: status=%d err=%+v", status, resp.Error)
	}

	resp, _ = call(t, ts, "", "marketplace_registerMerchant", map[string]interface{}{
		"authority": merchantAuth,
		"name":      "Coffee Shop",
		"category":  "Food",
	})
	mustResult(t, resp)

	resp, _ = call(t, ts, "", "promotion_create", map[string]interface{}{
		"authority":          merchantAuth,
		"discountPercentage": 20,
		"maxSupply":          100,
		"expiryTimestamp":    testNow + 86_400,
		"category":           "Food",
		"description":        "20% off",
		"price":              1_000_000,
	})
	promo := mustResult(t, resp)
	promoAddr := promo["address"].(string)

	resp, _ = call(t, ts, "", "coupon_mint", map[string]interface{}{
		"promotion": promoAddr,
		"recipient": u1,
	})
	minted := mustResult(t, resp)
	couponAddr := minted["address"].(string)
	if minted["owner"].(string) != u1 {
		t.Fatalf("unexpected owner: %+v", minted)
	}

	resp, _ = call(t, ts, "", "exchange_list", map[string]interface{}{
		"coupon": couponAddr,
		"seller": u1,
		"price":  2_000_000,
	})
	listing := mustResult(t, resp)
	listingAddr := listing["address"].(string)

	resp, _ = call(t, ts, "", "account_fund", map[string]interface{}{
		"address": u2,
		"amount":  "2000000",
	})
	mustResult(t, resp)

	resp, _ = call(t, ts, "", "exchange_buy", map[string]interface{}{
		"listing": listingAddr,
		"buyer":   u2,
	})
	sale := mustResult(t, resp)
	soldCoupon := sale["coupon"].(map[string]interface{})
	if soldCoupon["owner"].(string) != u2 {
		t.Fatalf("coupon did not move: %+v", soldCoupon)
	}

	resp, _ = call(t, ts, "", "account_getBalance", map[string]interface{}{"address": u1})
	balance := mustResult(t, resp)
	if balance["balance"].(string) != "1950000" {
		t.Fatalf("seller payout wrong: %+v", balance)
	}
}

func TestAuthTokenGuardsMutations(t *testing.T) {
	ts := newTestServer(t, Options{AuthToken: "secret"})
	authority := testAddr(1)
	params := map[string]interface{}{
		"authority":      authority,
		"feeBasisPoints": 100,
	}

	resp, status := call(t, ts, "", "marketplace_initialize", params)
	if status != http.StatusUnauthorized || resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("missing token accepted: status=%d err=%+v", status, resp.Error)
	}
	resp, status = call(t, ts, "wrong", "marketplace_initialize", params)
	if status != http.StatusUnauthorized {
		t.Fatalf("wrong token accepted: status=%d err=%+v", status, resp.Error)
	}
	resp, _ = call(t, ts, "secret", "marketplace_initialize", params)
	mustResult(t, resp)

	// Reads stay open.
	resp, _ = call(t, ts, "", "marketplace_getRegistry", map[string]interface{}{})
	mustResult(t, resp)
}

func TestErrorCodeMapping(t *testing.T) {
	ts := newTestServer(t, Options{})
	authority := testAddr(1)

	// Validation error: fee above the cap.
	resp, status := call(t, ts, "", "marketplace_initialize", map[string]interface{}{
		"authority":      authority,
		"feeBasisPoints": 10_001,
	})
	if status != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("validation mapping: status=%d err=%+v", status, resp.Error)
	}

	// Not found: merchant that never registered.
	resp, status = call(t, ts, "", "marketplace_getMerchant", map[string]interface{}{
		"authority": testAddr(9),
	})
	if status != http.StatusNotFound || resp.Error == nil || resp.Error.Code != codeNotFound {
		t.Fatalf("not-found mapping: status=%d err=%+v", status, resp.Error)
	}

	// Malformed address.
	resp, status = call(t, ts, "", "marketplace_getMerchant", map[string]interface{}{
		"authority": "not-an-address",
	})
	if status != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("address mapping: status=%d err=%+v", status, resp.Error)
	}
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{RateLimitPerMin: 2})

	for i := 0; i < 2; i++ {
		if _, status := call(t, ts, "", "marketplace_getRegistry", map[string]interface{}{}); status == http.StatusTooManyRequests {
			t.Fatalf("request %d rate limited early", i)
		}
	}
	resp, status := call(t, ts, "", "marketplace_getRegistry", map[string]interface{}{})
	if status != http.StatusTooManyRequests || resp.Error == nil || resp.Error.Code != codeRateLimited {
		t.Fatalf("expected rate limit: status=%d err=%+v", status, resp.Error)
	}
}
