package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestPushDisabledIsNoop(t *testing.T) {
	if err := Push(context.Background(), PushConfig{}, zerolog.Nop()); err != nil {
		t.Fatalf("push without gateway: %v", err)
	}
}

func TestPushSendsToJobPath(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	PlaylistResultsTotal.WithLabelValues("created").Inc()

	err := Push(context.Background(), PushConfig{GatewayURL: srv.URL, Instance: "laptop"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("method = %s, want PUT", gotMethod)
	}
	if !strings.HasPrefix(gotPath, "/metrics/job/smartlists") || !strings.Contains(gotPath, "instance/laptop") {
		t.Fatalf("unexpected push path %q", gotPath)
	}
}

func TestPushReportsGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := Push(context.Background(), PushConfig{GatewayURL: srv.URL}, zerolog.Nop()); err == nil {
		t.Fatal("expected error from failing gateway")
	}
}
