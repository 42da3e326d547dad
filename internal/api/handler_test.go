package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"historyScope/internal/history"
	"historyScope/internal/model"
)

type fakeService struct {
	got  model.HistoryQuery
	page model.HistoryPage
	err  error
}

func (f *fakeService) GetHistory(ctx context.Context, q model.HistoryQuery) (model.HistoryPage, error) {
	f.got = q
	return f.page, f.err
}

func newTestRouter(svc HistoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHandler(svc, zap.NewNop()), zap.NewNop())
}

func serve(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetHistoryParsesQuery(t *testing.T) {
	usd := 100.0
	svc := &fakeService{page: model.HistoryPage{
		Transactions: []model.ClassifiedActivity{{
			Title:     "Swap 100 USDC for 0.05 ETH",
			TxHash:    "0xabc",
			Type:      model.TypeSwap,
			Symbol:    "USDC",
			Amount:    100,
			AmountUSD: &usd,
			Timestamp: 1714564800000,
			ChainID:   8453,
		}},
		Total: 1,
		Page:  2,
	}}
	router := newTestRouter(svc)

	rec := serve(router, http.MethodGet, "/v1/history?wallet=0xabc&chains=8453,10&limit=5&page=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	want := model.HistoryQuery{Wallet: "0xabc", Chains: []int64{8453, 10}, Limit: 5, Page: 2}
	if !reflect.DeepEqual(svc.got, want) {
		t.Fatalf("unexpected query %+v", svc.got)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["total"] != 1.0 || body["page"] != 2.0 {
		t.Fatalf("unexpected envelope %v", body)
	}
	txs := body["transactions"].([]interface{})
	first := txs[0].(map[string]interface{})
	if first["type"] != "Swap" || first["amountUsd"] != 100.0 || first["chainId"] != 8453.0 {
		t.Fatalf("unexpected record %v", first)
	}
	if _, ok := first["actionTitle"]; ok {
		t.Fatalf("empty actionTitle should be omitted")
	}
}

func TestPostHistory(t *testing.T) {
	svc := &fakeService{page: model.HistoryPage{Transactions: []model.ClassifiedActivity{}, Page: 1}}
	router := newTestRouter(svc)

	rec := serve(router, http.MethodPost, "/v1/history", `{"walletAddress":"0xabc","chains":[8453],"limit":20,"page":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if svc.got.Wallet != "0xabc" || len(svc.got.Chains) != 1 || svc.got.Limit != 20 {
		t.Fatalf("unexpected query %+v", svc.got)
	}

	rec = serve(router, http.MethodPost, "/v1/history", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", rec.Code)
	}
}

func TestGetHistoryErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: \"nope\"", history.ErrInvalidWallet), http.StatusBadRequest},
		{fmt.Errorf("%w: no chains", history.ErrInvalidQuery), http.StatusBadRequest},
		{fmt.Errorf("%w: all 2 chains failed", history.ErrUnavailable), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		router := newTestRouter(&fakeService{err: tc.err})
		rec := serve(router, http.MethodGet, "/v1/history?wallet=0xabc", "")
		if rec.Code != tc.want {
			t.Fatalf("%v: want %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestGetHistoryRejectsBadParams(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)
	for _, target := range []string{
		"/v1/history?wallet=0xabc&chains=base",
		"/v1/history?wallet=0xabc&limit=ten",
		"/v1/history?wallet=0xabc&page=-1",
	} {
		if rec := serve(router, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(&fakeService{})
	if rec := serve(router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	rec := serve(router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("metrics endpoint not served: %d", rec.Code)
	}
}
