package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultfolio/ledger-backend/internal/ledger"
	"github.com/vaultfolio/ledger-backend/internal/models"
	"github.com/vaultfolio/ledger-backend/internal/store"
	"github.com/vaultfolio/ledger-backend/internal/testutil"
)

// newTestServer wires a full server over a memory store so requests
// exercise the real routing, middleware, and ledger together.
func newTestServer(t *testing.T) (*httptest.Server, *testutil.StubUpdater) {
	t.Helper()

	st := store.NewMemoryStore()
	up := &testutil.StubUpdater{TxRef: "0xfeed"}
	led := ledger.New(st, up, ledger.Options{
		Now:    func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) },
		Rand:   func() float64 { return 0.9 },
		Logger: zerolog.Nop(),
	})

	srv := NewServer(Deps{Ledger: led, Store: st, Logger: zerolog.Nop()}, 0, "", "*")
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, up
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, buf
}

func TestRoutes_ListBots(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/bots", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var bots []models.Bot
	if err := json.Unmarshal(body, &bots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(bots) != 3 {
		t.Fatalf("expected 3 seed bots, got %d", len(bots))
	}
}

func TestRoutes_CreateBot(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/bots",
		`{"name":"API Bot","strategy":"dca","allocation":3000,"riskLevel":"high"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	var bot models.Bot
	if err := json.Unmarshal(body, &bot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bot.ID == "" || bot.Name != "API Bot" || bot.Strategy != models.StrategyDCA {
		t.Fatalf("unexpected bot: %+v", bot)
	}
	if bot.Status != models.StatusInactive {
		t.Fatalf("new bots start inactive, got %s", bot.Status)
	}
}

func TestRoutes_CreateBot_BadBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/bots", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRoutes_SaveBot_PathWins(t *testing.T) {
	ts, _ := newTestServer(t)

	// The body claims a different id; the path decides.
	resp, body := doJSON(t, http.MethodPut, ts.URL+"/v1/bots/seed-bot-grid",
		`{"id":"spoofed","name":"Renamed Grid","strategy":"grid","allocation":5000}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var bot models.Bot
	if err := json.Unmarshal(body, &bot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bot.ID != "seed-bot-grid" {
		t.Fatalf("path id must win, got %s", bot.ID)
	}
	if bot.Name != "Renamed Grid" {
		t.Fatalf("rename not applied: %s", bot.Name)
	}
}

func TestRoutes_DeleteBot(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/v1/bots/seed-bot-yield", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	_, body := doJSON(t, http.MethodGet, ts.URL+"/v1/bots", "")
	var bots []models.Bot
	if err := json.Unmarshal(body, &bots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, b := range bots {
		if b.ID == "seed-bot-yield" {
			t.Fatal("deleted bot still listed")
		}
	}
}

func TestRoutes_ToggleBot(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/bots/seed-bot-grid/toggle", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var bot models.Bot
	if err := json.Unmarshal(body, &bot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bot.Status != models.StatusPaused {
		t.Fatalf("expected paused, got %s", bot.Status)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/bots/no-such-bot/toggle", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
}

func TestRoutes_ExecuteBot(t *testing.T) {
	ts, up := newTestServer(t)

	// seed-bot-grid ships active
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/bots/seed-bot-grid/execute", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var exec models.Execution
	if err := json.Unmarshal(body, &exec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !exec.Success || exec.TxRef == nil {
		t.Fatalf("unexpected execution: %+v", exec)
	}
	if up.CallCount() != 1 {
		t.Fatalf("chain calls: got %d", up.CallCount())
	}

	// paused bot maps to 409
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/bots/seed-bot-momentum/execute", "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for paused bot, got %d", resp.StatusCode)
	}

	// unknown id maps to 404
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/bots/ghost/execute", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
}

func TestRoutes_ExecuteBot_ChainFailure(t *testing.T) {
	ts, up := newTestServer(t)
	up.Err = errors.New("vault is paused")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/bots/seed-bot-grid/execute", "")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 for chain failure, got %d: %s", resp.StatusCode, body)
	}

	// The failed attempt is still recorded in the log.
	_, body = doJSON(t, http.MethodGet, ts.URL+"/v1/executions", "")
	var execs []models.Execution
	if err := json.Unmarshal(body, &execs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(execs) != 1 || execs[0].Success {
		t.Fatalf("expected one failed execution, got %+v", execs)
	}
}

func TestRoutes_Analytics(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/analytics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var a models.Analytics
	if err := json.Unmarshal(body, &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(a.DailyPnL) != 30 {
		t.Fatalf("dailyPnL entries: got %d", len(a.DailyPnL))
	}
	if a.ActiveBots != 2 { // grid + yield seeds
		t.Fatalf("activeBots: got %d", a.ActiveBots)
	}
	if a.BestPerformer == nil || a.WorstPerformer == nil {
		t.Fatal("performers should be set with seeds present")
	}
}

func TestRoutes_Executions_Limit(t *testing.T) {
	ts, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/bots/seed-bot-grid/execute", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("execute #%d: %d", i, resp.StatusCode)
		}
	}

	_, body := doJSON(t, http.MethodGet, ts.URL+"/v1/executions?limit=2", "")
	var execs []models.Execution
	if err := json.Unmarshal(body, &execs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(execs) != 2 {
		t.Fatalf("limit not honored, got %d", len(execs))
	}
}

func TestRoutes_Health(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var health struct {
		Status   string `json:"status"`
		Services struct {
			Store string `json:"store"`
		} `json:"services"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" {
		t.Fatalf("status: got %q", health.Status)
	}
	if health.Services.Store != "connected" {
		t.Fatalf("store service: got %q", health.Services.Store)
	}
}
