package paas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type fakePaaS struct {
	mu     sync.Mutex
	logins int
	logs   []CreateLogRequest
	auth   []string
}

func (f *fakePaaS) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logins++
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"token":"tok-1","expires_at":"2099-01-01T00:00:00Z"}`))
	})
	mux.HandleFunc("/api/v1/logs", func(w http.ResponseWriter, r *http.Request) {
		var req CreateLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		f.mu.Lock()
		f.logs = append(f.logs, req)
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func TestClientLogsInOnceAndWritesLogs(t *testing.T) {
	fake := &fakePaaS{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "")
	for i := 0; i < 2; i++ {
		if err := c.CreateLog(context.Background(), CreateLogRequest{Action: "accrual_run", Level: "info"}); err != nil {
			t.Fatalf("create log: %v", err)
		}
	}
	if fake.logins != 1 {
		t.Fatalf("logins=%d want 1", fake.logins)
	}
	if len(fake.logs) != 2 || fake.logs[0].Agent != DefaultAgent {
		t.Fatalf("logs=%+v", fake.logs)
	}
	if fake.auth[0] != "Bearer tok-1" {
		t.Fatalf("auth=%q", fake.auth[0])
	}
}

func TestNewClientDisabledWithoutSettings(t *testing.T) {
	if c := NewClient("", "key", ""); c != nil {
		t.Fatalf("expected nil client")
	}
	var c *Client
	c.LogBestEffort(context.Background(), "x", "info", nil)
}

func TestLogBestEffortSwallowsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "accrual-test")
	c.LogBestEffort(context.Background(), "accrual_run", "info", map[string]any{"processed": 1})
	if c.Token() != "" {
		t.Fatalf("token set after failed login")
	}
}

func TestLevelFromStatus(t *testing.T) {
	if LevelFromStatus(200) != "info" || LevelFromStatus(409) != "warn" || LevelFromStatus(503) != "error" {
		t.Fatalf("unexpected levels")
	}
}
