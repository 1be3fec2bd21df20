package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/allisson/parceltrack/internal/tracking/domain"
)

// maxResponseBytes caps the carrier response body that will be decoded.
const maxResponseBytes = 2 << 20

// CorreiosConfig configures the Correios SRO tracking client.
type CorreiosConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// CorreiosClient queries GET {BaseURL}/v1/sro-rastro/{code}.
type CorreiosClient struct {
	config     CorreiosConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewCorreiosClient creates a CorreiosClient. A nil httpClient uses a client bounded by config.Timeout.
// A non-positive RateLimit disables throttling.
func NewCorreiosClient(config CorreiosConfig, httpClient *http.Client, logger *slog.Logger) *CorreiosClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &CorreiosClient{
		config:     config,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
}

// Track fetches and normalizes the events of trackingCode.
func (c *CorreiosClient) Track(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error) {
	code := strings.TrimSpace(trackingCode)
	if code == "" {
		return nil, domain.ErrInvalidTrackingCode
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", domain.ErrCarrierUnavailable, err)
	}

	endpoint, err := url.JoinPath(c.config.BaseURL, "v1", "sro-rastro", code)
	if err != nil {
		return nil, fmt.Errorf("failed to build carrier url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create carrier request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrTrackingNotFound, code)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", domain.ErrCarrierUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("carrier rejected request for %s: status %d: %s",
			code, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload sroResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCarrierResponse, err)
	}

	info := payload.toTrackingInfo(code)
	if c.logger != nil {
		c.logger.Debug("carrier lookup completed",
			slog.String("tracking_code", code),
			slog.Int("events", len(info.Events)),
		)
	}
	return info, nil
}

type sroResponse struct {
	Objetos []sroObject `json:"objetos"`
}

type sroObject struct {
	CodObjeto  string      `json:"codObjeto"`
	Mensagem   string      `json:"mensagem"`
	TipoPostal *sroService `json:"tipoPostal"`
	Eventos    []sroEvent  `json:"eventos"`
}

type sroService struct {
	Categoria string `json:"categoria"`
}

type sroEvent struct {
	Descricao  string   `json:"descricao"`
	Detalhe    string   `json:"detalhe"`
	DtHrCriado string   `json:"dtHrCriado"`
	Unidade    *sroUnit `json:"unidade"`
}

type sroUnit struct {
	Cidade   string      `json:"cidade"`
	UF       string      `json:"uf"`
	Endereco *sroAddress `json:"endereco"`
}

type sroAddress struct {
	Cidade string `json:"cidade"`
	UF     string `json:"uf"`
}

// toTrackingInfo picks the object matching code. Carrier events are already most recent first.
func (r *sroResponse) toTrackingInfo(code string) *domain.TrackingInfo {
	info := &domain.TrackingInfo{Code: code, Events: []domain.TrackingEvent{}}

	var object *sroObject
	for i := range r.Objetos {
		if strings.EqualFold(r.Objetos[i].CodObjeto, code) {
			object = &r.Objetos[i]
			break
		}
	}
	if object == nil {
		return info
	}

	if object.TipoPostal != nil {
		info.Service = object.TipoPostal.Categoria
	}

	for _, event := range object.Eventos {
		date, clock := splitCarrierTimestamp(event.DtHrCriado)
		info.Events = append(info.Events, domain.TrackingEvent{
			Date:      date,
			Time:      clock,
			Location:  event.location(),
			Status:    event.Descricao,
			SubStatus: event.Detalhe,
		})
	}
	return info
}

func (e *sroEvent) location() string {
	if e.Unidade == nil {
		return ""
	}
	city, state := e.Unidade.Cidade, e.Unidade.UF
	if e.Unidade.Endereco != nil {
		if city == "" {
			city = e.Unidade.Endereco.Cidade
		}
		if state == "" {
			state = e.Unidade.Endereco.UF
		}
	}
	if city == "" && state == "" {
		return ""
	}
	return city + "/" + state
}

var carrierTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// splitCarrierTimestamp converts an ISO timestamp into dd/mm/yyyy and HH:MM.
func splitCarrierTimestamp(value string) (string, string) {
	if value == "" {
		return "", ""
	}
	for _, layout := range carrierTimestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("02/01/2006"), t.Format("15:04")
		}
	}
	return "", ""
}
