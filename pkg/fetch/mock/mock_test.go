package mock_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Ratio1/fetchstore_sdk_go/internal/devseed"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch/mock"
)

func do(t *testing.T, tr *mock.Transport, ctx context.Context, method, path, body string) (*http.Response, error) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, "http://mock"+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return tr.Do(req)
}

func TestScriptedResponsesRepeatLast(t *testing.T) {
	tr := mock.New().On("GET", "/a", mock.Raw(500, "", nil), mock.Raw(200, "text/plain", []byte("ok")))
	ctx := context.Background()

	first, err := do(t, tr, ctx, "GET", "/a", "")
	if err != nil || first.StatusCode != 500 {
		t.Fatalf("first: %v %v", first, err)
	}
	for i := 0; i < 2; i++ {
		resp, err := do(t, tr, ctx, "GET", "/a", "")
		if err != nil || resp.StatusCode != 200 {
			t.Fatalf("repeat %d: %v %v", i, resp, err)
		}
	}
	if got := tr.Calls("GET", "/a"); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestRecordsRequests(t *testing.T) {
	tr := mock.New().On("PUT", "/b")
	if _, err := do(t, tr, context.Background(), "PUT", "/b", "payload"); err != nil {
		t.Fatalf("Do: %v", err)
	}
	rec, ok := tr.LastRequest()
	if !ok || rec.Method != "PUT" || string(rec.Body) != "payload" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestHangCountsAbort(t *testing.T) {
	tr := mock.New().On("GET", "/slow", mock.Hang())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := do(t, tr, ctx, "GET", "/slow", ""); err == nil {
		t.Fatalf("expected context error")
	}
	if got := tr.Aborts(); got != 1 {
		t.Fatalf("expected 1 abort, got %d", got)
	}
}

func TestUnmatchedUsesHandler(t *testing.T) {
	tr := mock.New()
	if _, err := do(t, tr, context.Background(), "GET", "/none", ""); err == nil {
		t.Fatalf("expected ErrNoRoute")
	}

	tr = mock.New(mock.WithHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(append([]byte(r.URL.Path+":"), body...))
	})))
	resp, err := do(t, tr, context.Background(), "POST", "/echo", "hi")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "/echo:hi" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestSeedRoutes(t *testing.T) {
	seed, err := devseed.Parse([]byte("routes:\n  - path: /health\n    json: {ok: true}\n"), "yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tr := mock.New()
	if err := tr.Seed(seed); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	resp, err := do(t, tr, context.Background(), "GET", "/health", "")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}
