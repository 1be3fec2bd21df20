package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/allisson/parceltrack/internal/tracking/domain"
)

// SimulatedClient fabricates plausible tracking events. It is selected when no carrier
// API key is configured so the dashboard can be exercised without credentials.
type SimulatedClient struct {
	random func() float64
	now    func() time.Time
	logger *slog.Logger
}

// NewSimulatedClient creates a SimulatedClient. Nil random/now use math/rand and time.Now.
func NewSimulatedClient(random func() float64, now func() time.Time, logger *slog.Logger) *SimulatedClient {
	if random == nil {
		random = rand.Float64
	}
	if now == nil {
		now = time.Now
	}
	return &SimulatedClient{random: random, now: now, logger: logger}
}

type simulatedState struct {
	threshold float64
	location  string
	status    string
	subStatus string
}

// simulatedStates is checked in order; the first threshold below the draw wins.
var simulatedStates = []simulatedState{
	{0.7, "São Paulo/SP", "Objeto entregue ao destinatário", ""},
	{0.6, "São Paulo/SP", "Objeto saiu para entrega ao destinatário", ""},
	{0.5, "São Paulo/SP", "Objeto em trânsito - por favor aguarde", ""},
	{0.4, "São Paulo/SP", "Tentativa de entrega não efetuada", "Endereço incorreto"},
	{0.3, "São Paulo/SP", "Objeto aguardando retirada no endereço indicado", "Pode ser retirado em uma agência"},
	{0.2, "São Paulo/SP", "Objeto devolvido ao remetente", "Recusado pelo destinatário"},
	{0.1, "São Paulo/SP", "Objeto em processo de desembaraço", "Aguardando pagamento de tributos"},
	{0.0, "Curitiba/PR", "Objeto postado", ""},
}

// Track returns a random latest event followed by a posting event two days earlier.
func (c *SimulatedClient) Track(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error) {
	code := strings.TrimSpace(trackingCode)
	if code == "" {
		return nil, domain.ErrInvalidTrackingCode
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	draw := c.random()
	state := simulatedStates[len(simulatedStates)-1]
	for _, candidate := range simulatedStates {
		if draw > candidate.threshold {
			state = candidate
			break
		}
	}

	now := c.now()
	posted := now.Add(-48 * time.Hour)

	service := "PAC"
	if c.random() > 0.5 {
		service = "SEDEX"
	}

	if c.logger != nil {
		c.logger.Debug("simulated carrier lookup", slog.String("tracking_code", code))
	}

	return &domain.TrackingInfo{
		Code:    code,
		Service: service,
		Events: []domain.TrackingEvent{
			{
				Date:      now.Format("02/01/2006"),
				Time:      now.Format("15:04"),
				Location:  state.location,
				Status:    state.status,
				SubStatus: state.subStatus,
			},
			{
				Date:     posted.Format("02/01/2006"),
				Time:     posted.Format("15:04"),
				Location: "Curitiba/PR",
				Status:   "Objeto postado",
			},
		},
	}, nil
}
