package lookup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ncaceres/cardbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveFallsBackToSecondary(t *testing.T) {
	primaryCalls := 0
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("api_key"); got != "k1" {
			t.Errorf("expected api_key k1, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bank":{"name":"Banco Itau"},"scheme":"visa","type":"credit","country":{"name":"Brazil","code":"BR"},"level":"platinum"}`))
	}))
	defer secondary.Close()

	resolver := NewBinResolver(testLogger(),
		&PrimaryBinProvider{BaseURL: primary.URL, HTTP: primary.Client()},
		&SecondaryBinProvider{BaseURL: secondary.URL, APIKey: "k1", HTTP: secondary.Client()},
	)

	info, err := resolver.Resolve(context.Background(), "477349")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primaryCalls != 1 {
		t.Fatalf("expected 1 primary call, got %d", primaryCalls)
	}
	if info.Bank != "Banco Itau" || info.Brand != "visa" || info.Level != "platinum" || info.CountryCode != "BR" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestResolvePrimaryWinsWithoutSecondary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"scheme":"mastercard","type":"debit","bank":{"name":"Nubank"},"country":{"name":"Brazil","alpha2":"BR"}}`))
	}))
	defer primary.Close()

	secondaryCalls := 0
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondaryCalls++
	}))
	defer secondary.Close()

	resolver := NewBinResolver(testLogger(),
		&PrimaryBinProvider{BaseURL: primary.URL, HTTP: primary.Client()},
		&SecondaryBinProvider{BaseURL: secondary.URL, HTTP: secondary.Client()},
	)

	info, err := resolver.Resolve(context.Background(), "515462")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secondaryCalls != 0 {
		t.Fatalf("secondary should not be queried, got %d calls", secondaryCalls)
	}
	if info.Bank != "Nubank" || info.Brand != "mastercard" {
		t.Fatalf("unexpected info: %+v", info)
	}
	// The primary shape carries no level field; the fallback literal applies.
	if info.Level != FallbackUnavailable {
		t.Fatalf("expected fallback level, got %q", info.Level)
	}
}

func TestResolveForbiddenPrimaryFallsBack(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bank":{"name":"Banco Familiar"},"scheme":"mastercard","type":"debit","country":{"name":"Paraguay","code":"PY"},"level":"classic"}`))
	}))
	defer secondary.Close()

	resolver := NewBinResolver(testLogger(),
		&PrimaryBinProvider{BaseURL: primary.URL, HTTP: primary.Client()},
		&SecondaryBinProvider{BaseURL: secondary.URL, HTTP: secondary.Client()},
	)

	info, err := resolver.Resolve(context.Background(), "477349")
	if err != nil {
		t.Fatalf("a 4xx primary must fall through to the secondary, got %v", err)
	}
	if info.Bank != "Banco Familiar" || info.Level != "classic" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestResolveForbiddenEverywhereSurfacesRejection(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer down.Close()

	resolver := NewBinResolver(testLogger(),
		&PrimaryBinProvider{BaseURL: down.URL, HTTP: down.Client()},
		&SecondaryBinProvider{BaseURL: down.URL, HTTP: down.Client()},
	)

	_, err := resolver.Resolve(context.Background(), "477349")
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure after exhaustion, got %v", err)
	}
}

func TestResolveAllProvidersExhausted(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer down.Close()

	resolver := NewBinResolver(testLogger(),
		&PrimaryBinProvider{BaseURL: down.URL, HTTP: down.Client()},
		&SecondaryBinProvider{BaseURL: down.URL, HTTP: down.Client()},
	)

	info, err := resolver.Resolve(context.Background(), "477349")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if info != (domain.BinInfo{}) {
		t.Fatalf("expected zero info on failure, got %+v", info)
	}
}

func TestResolveMalformedPayloadIsDefinitive(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bank":`))
	}))
	defer primary.Close()

	secondaryCalls := 0
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondaryCalls++
	}))
	defer secondary.Close()

	resolver := NewBinResolver(testLogger(),
		&PrimaryBinProvider{BaseURL: primary.URL, HTTP: primary.Client()},
		&SecondaryBinProvider{BaseURL: secondary.URL, HTTP: secondary.Client()},
	)

	_, err := resolver.Resolve(context.Background(), "477349")
	if !errors.Is(err, domain.ErrBadPayload) {
		t.Fatalf("expected ErrBadPayload, got %v", err)
	}
	if secondaryCalls != 0 {
		t.Fatalf("malformed payload must not trigger fallback, got %d calls", secondaryCalls)
	}
}

func TestResolveRejectsInvalidBINBeforeNetwork(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	resolver := NewBinResolver(testLogger(),
		&PrimaryBinProvider{BaseURL: server.URL, HTTP: server.Client()},
	)

	_, err := resolver.Resolve(context.Background(), "12")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("invalid bin must not reach the network, got %d calls", calls)
	}
}

func TestResolveMissingFieldsGetFallbackLiterals(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer primary.Close()

	resolver := NewBinResolver(testLogger(),
		&PrimaryBinProvider{BaseURL: primary.URL, HTTP: primary.Client()},
	)

	info, err := resolver.Resolve(context.Background(), "477349")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Bank != FallbackUnknown || info.Brand != FallbackUnknown || info.CountryCode != FallbackUnavailable {
		t.Fatalf("expected fallback literals, got %+v", info)
	}
}
