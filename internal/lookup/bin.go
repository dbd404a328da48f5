package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ncaceres/cardbot/internal/domain"
)

// Field-level fallback literals applied when a provider payload omits a value.
const (
	FallbackUnknown     = "Unknown"
	FallbackUnavailable = "Not available"
)

// BinProvider is a single source of BIN metadata. Implementations map their
// own payload shape into the common domain.BinInfo; they never assume shape
// equivalence with other providers.
type BinProvider interface {
	Name() string
	Lookup(ctx context.Context, bin string) (domain.BinInfo, error)
}

// BinResolver queries an ordered provider list. The first provider whose
// response parses successfully wins; a provider is skipped only on a
// non-success status or a hard transport error.
type BinResolver struct {
	providers []BinProvider
	logger    *slog.Logger
}

// NewBinResolver constructs a resolver over the supplied providers, queried
// strictly in order.
func NewBinResolver(logger *slog.Logger, providers ...BinProvider) *BinResolver {
	return &BinResolver{providers: providers, logger: logger}
}

// Resolve returns the first successful provider result. When every provider
// is exhausted the last classification is surfaced; the caller never sees
// partial data.
func (r *BinResolver) Resolve(ctx context.Context, bin string) (domain.BinInfo, error) {
	if !domain.ValidBIN(bin) {
		return domain.BinInfo{}, fmt.Errorf("bin %q: %w", bin, domain.ErrValidation)
	}

	var lastErr error
	for _, provider := range r.providers {
		info, err := provider.Lookup(ctx, bin)
		if err == nil {
			return info, nil
		}
		// A malformed payload on a successful status is definitive: the
		// provider contract is broken and a sibling cannot repair it.
		if errors.Is(err, domain.ErrBadPayload) {
			r.logger.Error("bin provider returned malformed payload", "provider", provider.Name(), "error", err)
			return domain.BinInfo{}, err
		}
		r.logger.Debug("bin provider failed, trying next", "provider", provider.Name(), "error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = domain.ErrNotFound
	}
	return domain.BinInfo{}, fmt.Errorf("all bin providers exhausted: %w", lastErr)
}

// PrimaryBinProvider queries the keyless primary provider:
// GET <base>/<bin>.
type PrimaryBinProvider struct {
	BaseURL string
	HTTP    *http.Client
}

func (p *PrimaryBinProvider) Name() string { return "primary" }

func (p *PrimaryBinProvider) Lookup(ctx context.Context, bin string) (domain.BinInfo, error) {
	var payload struct {
		Scheme string `json:"scheme"`
		Brand  string `json:"brand"`
		Type   string `json:"type"`
		Bank   struct {
			Name string `json:"name"`
		} `json:"bank"`
		Country struct {
			Name   string `json:"name"`
			Alpha2 string `json:"alpha2"`
		} `json:"country"`
	}
	if err := fetchJSON(ctx, p.HTTP, p.BaseURL+"/"+url.PathEscape(bin), &payload); err != nil {
		return domain.BinInfo{}, err
	}

	return domain.BinInfo{
		Bank:        orFallback(payload.Bank.Name, FallbackUnknown),
		Brand:       orFallback(payload.Brand, orFallback(payload.Scheme, FallbackUnknown)),
		Type:        orFallback(payload.Type, FallbackUnknown),
		Country:     orFallback(payload.Country.Name, FallbackUnknown),
		CountryCode: orFallback(payload.Country.Alpha2, FallbackUnavailable),
		Level:       FallbackUnavailable,
	}, nil
}

// SecondaryBinProvider queries the keyed fallback provider:
// GET <base>/<bin>?api_key=<key>.
type SecondaryBinProvider struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func (p *SecondaryBinProvider) Name() string { return "secondary" }

func (p *SecondaryBinProvider) Lookup(ctx context.Context, bin string) (domain.BinInfo, error) {
	u := p.BaseURL + "/" + url.PathEscape(bin) + "?api_key=" + url.QueryEscape(p.APIKey)

	var payload struct {
		Scheme string `json:"scheme"`
		Brand  string `json:"brand"`
		Type   string `json:"type"`
		Level  string `json:"level"`
		Bank   struct {
			Name string `json:"name"`
		} `json:"bank"`
		Country struct {
			Name string `json:"name"`
			Code string `json:"code"`
		} `json:"country"`
	}
	if err := fetchJSON(ctx, p.HTTP, u, &payload); err != nil {
		return domain.BinInfo{}, err
	}

	return domain.BinInfo{
		Bank:        orFallback(payload.Bank.Name, FallbackUnknown),
		Brand:       orFallback(payload.Scheme, orFallback(payload.Brand, FallbackUnknown)),
		Type:        orFallback(payload.Type, FallbackUnknown),
		Country:     orFallback(payload.Country.Name, FallbackUnknown),
		CountryCode: orFallback(payload.Country.Code, FallbackUnavailable),
		Level:       orFallback(payload.Level, FallbackUnavailable),
	}, nil
}

// fetchJSON performs a GET and decodes the body into out, translating the
// status into the shared error taxonomy.
func fetchJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w: %v", domain.ErrTransient, err)
	}
	defer res.Body.Close()

	switch classify(res.StatusCode) {
	case outcomeSuccess:
	case outcomeNotFound:
		return domain.ErrNotFound
	case outcomeThrottled, outcomeUpstreamError:
		return fmt.Errorf("status %d: %w", res.StatusCode, domain.ErrTransient)
	default:
		return fmt.Errorf("status %d: %w", res.StatusCode, domain.ErrProviderFailure)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read body: %w: %v", domain.ErrTransient, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode payload: %w: %v", domain.ErrBadPayload, err)
	}
	return nil
}

func orFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
