package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linnemanlabs/go-core/httpmw"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/claimwatch/internal/claimapi"
	"github.com/linnemanlabs/claimwatch/internal/insurance"
	"github.com/linnemanlabs/claimwatch/internal/insurance/memstore"
)

func TestNotifySystemd_NoSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	err := notifySystemd()
	if err == nil {
		t.Fatal("expected error when NOTIFY_SOCKET is empty")
	}
	if !strings.Contains(err.Error(), "NOTIFY_SOCKET not set") {
		t.Errorf("error = %q, want substring %q", err, "NOTIFY_SOCKET not set")
	}
}

func TestNotifySystemd_InvalidPath(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", filepath.Join(t.TempDir(), "nonexistent.sock"))

	err := notifySystemd()
	if err == nil {
		t.Fatal("expected error for nonexistent socket")
	}
	if !strings.Contains(err.Error(), "dial failed") {
		t.Errorf("error = %q, want substring %q", err, "dial failed")
	}
}

func TestNotifySystemd_Success(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "notify.sock")

	// Create a real unixgram listener.
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(context.Background(), "unixgram", sockPath)
	if err != nil {
		t.Fatalf("listen unixgram: %v", err)
	}
	defer func() { _ = conn.Close() }()

	t.Setenv("NOTIFY_SOCKET", sockPath)

	if err := notifySystemd(); err != nil {
		t.Fatalf("notifySystemd() = %v, want nil", err)
	}

	buf := make([]byte, 256)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read from socket: %v", err)
	}

	got := string(buf[:n])
	if got != "READY=1" {
		t.Errorf("payload = %q, want %q", got, "READY=1")
	}
}

func TestNewRouter_ServesAPI(t *testing.T) {
	t.Parallel()

	svc := insurance.NewService(memstore.New(), insurance.DefaultRiskPolicy(), log.Nop(), nil, nil)
	h := httpmw.WithLogger(log.Nop())(newRouter(log.Nop(), svc))

	body := `{"name":"Ada","age":40,"policy_type":"Life","sum_insured":5000}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policyholders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("reports status = %d", rec.Code)
	}
	if got := rec.Header().Get(claimapi.DurabilityHeader); got != "none" {
		t.Errorf("%s = %q, want none", claimapi.DurabilityHeader, got)
	}
}

func TestNewRouter_BodyLimit(t *testing.T) {
	t.Parallel()

	svc := insurance.NewService(memstore.New(), insurance.DefaultRiskPolicy(), log.Nop(), nil, nil)
	h := httpmw.WithLogger(log.Nop())(newRouter(log.Nop(), svc))

	big := `{"name":"` + strings.Repeat("a", 32*1024) + `","age":40,"policy_type":"Life","sum_insured":5000}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policyholders", strings.NewReader(big))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code == http.StatusCreated {
		t.Fatalf("oversized body accepted")
	}
}
