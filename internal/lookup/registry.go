package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ncaceres/cardbot/internal/domain"
)

// RegistryOptions configures a RegistryClient. Zero durations fall back to
// the defaults below.
type RegistryOptions struct {
	BaseURL          string
	Timeout          time.Duration // per-attempt deadline
	ThrottledBackoff time.Duration // wait after a 429
	UpstreamBackoff  time.Duration // wait after a 5xx
	NetworkBackoff   time.Duration // wait after a transport failure
	UserAgent        string
}

const (
	defaultRegistryTimeout   = 8 * time.Second
	defaultThrottledBackoff  = 1200 * time.Millisecond
	defaultUpstreamBackoff   = 800 * time.Millisecond
	defaultNetworkBackoff    = 700 * time.Millisecond
	defaultRegistryUserAgent = "Mozilla/5.0 (X11; Linux x86_64) cardbot/1.0"

	// registryMaxAttempts caps retries: one retry after a transient
	// classification, then the last classification is surfaced.
	registryMaxAttempts = 2
)

// RegistryClient performs taxpayer-registry lookups with timeout-bounded
// retry. Each attempt runs under its own deadline; cancelling an attempt
// never cancels sibling work.
type RegistryClient struct {
	opts   RegistryOptions
	http   *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewRegistryClient constructs a RegistryClient. A nil httpClient uses a
// plain client; the per-attempt deadline comes from the request context.
func NewRegistryClient(logger *slog.Logger, httpClient *http.Client, opts RegistryOptions) *RegistryClient {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRegistryTimeout
	}
	if opts.ThrottledBackoff <= 0 {
		opts.ThrottledBackoff = defaultThrottledBackoff
	}
	if opts.UpstreamBackoff <= 0 {
		opts.UpstreamBackoff = defaultUpstreamBackoff
	}
	if opts.NetworkBackoff <= 0 {
		opts.NetworkBackoff = defaultNetworkBackoff
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultRegistryUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RegistryClient{opts: opts, http: httpClient, logger: logger, now: time.Now}
}

type registryPayload struct {
	Contribuyente *struct {
		NombreComercial    string `json:"nombreComercial"`
		Denominacion       string `json:"denominacion"`
		Clase              string `json:"clase"`
		TipoIdentificacion string `json:"tipoIdentificacion"`
		FechaInformacion   string `json:"fechaInformacion"`
	} `json:"contribuyente"`
	Deuda *struct {
		Estado string `json:"estado"`
		Monto  string `json:"monto"`
	} `json:"deuda"`
}

// Lookup resolves a registry identifier. Transient responses (429, 5xx,
// transport failure) are retried once after their class-specific backoff;
// on exhaustion the last received classification is surfaced, never a
// later unrelated error.
func (c *RegistryClient) Lookup(ctx context.Context, identifier string) (domain.RegistryInfo, error) {
	var lastErr error
	for attempt := 1; attempt <= registryMaxAttempts; attempt++ {
		info, backoff, err := c.attempt(ctx, identifier)
		if err == nil {
			return info, nil
		}
		if backoff == 0 {
			// Definitive classification: not-found, bad payload, or other 4xx.
			return domain.RegistryInfo{}, err
		}
		lastErr = err
		if attempt == registryMaxAttempts {
			break
		}
		c.logger.Debug("registry attempt failed, backing off",
			"attempt", attempt, "backoff", backoff, "error", err)
		if serr := sleep(ctx, backoff); serr != nil {
			return domain.RegistryInfo{}, fmt.Errorf("registry lookup cancelled: %w", serr)
		}
	}
	return domain.RegistryInfo{}, lastErr
}

// attempt performs one bounded request. A non-zero backoff marks the error
// as transient and tells the caller how long to wait before retrying.
func (c *RegistryClient) attempt(ctx context.Context, identifier string) (domain.RegistryInfo, time.Duration, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	// Cache-buster mirrors the registry's browser client behaviour.
	rawURL := fmt.Sprintf("%s/%s?tipoPersona=N&_=%s",
		c.opts.BaseURL,
		url.PathEscape(identifier),
		strconv.FormatInt(c.now().UnixMilli(), 10))

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.RegistryInfo{}, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return domain.RegistryInfo{}, c.opts.NetworkBackoff,
			fmt.Errorf("registry request failed: %w: %v", domain.ErrTransient, err)
	}
	defer res.Body.Close()

	switch classify(res.StatusCode) {
	case outcomeSuccess:
	case outcomeNotFound:
		return domain.RegistryInfo{}, 0, fmt.Errorf("identifier %s: %w", identifier, domain.ErrNotFound)
	case outcomeThrottled:
		return domain.RegistryInfo{}, c.opts.ThrottledBackoff,
			fmt.Errorf("status %d: %w", res.StatusCode, domain.ErrTransient)
	case outcomeUpstreamError:
		return domain.RegistryInfo{}, c.opts.UpstreamBackoff,
			fmt.Errorf("status %d: %w", res.StatusCode, domain.ErrTransient)
	default:
		return domain.RegistryInfo{}, 0, fmt.Errorf("status %d: %w", res.StatusCode, domain.ErrProviderFailure)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.RegistryInfo{}, c.opts.NetworkBackoff,
			fmt.Errorf("read body: %w: %v", domain.ErrTransient, err)
	}

	var payload registryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("registry payload decode failed", "identifier", identifier, "error", err, "body", string(body))
		return domain.RegistryInfo{}, 0, fmt.Errorf("decode payload: %w: %v", domain.ErrBadPayload, err)
	}
	if payload.Contribuyente == nil {
		return domain.RegistryInfo{}, 0, fmt.Errorf("identifier %s: %w", identifier, domain.ErrNotFound)
	}

	info := domain.RegistryInfo{
		Name:         orFallback(payload.Contribuyente.NombreComercial, orFallback(payload.Contribuyente.Denominacion, FallbackUnknown)),
		Class:        orFallback(payload.Contribuyente.Clase, FallbackUnavailable),
		IdentityType: orFallback(payload.Contribuyente.TipoIdentificacion, FallbackUnavailable),
		UpdatedAt:    orFallback(payload.Contribuyente.FechaInformacion, FallbackUnavailable),
	}
	if payload.Deuda != nil {
		info.HasDebt = true
		info.DebtStatus = orFallback(payload.Deuda.Estado, FallbackUnknown)
		info.DebtAmount = orFallback(payload.Deuda.Monto, FallbackUnavailable)
	}
	return info, 0, nil
}
