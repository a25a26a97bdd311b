package crm

import (
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/brightwater-dev/leadboard/internal/metrics"
)

// callResult carries one upstream response through the breaker. API errors
// (4xx) ride along as values so they do not count as breaker failures; only
// transport errors and 5xx trip the circuit.
type callResult struct {
	body   []byte
	links  pageLinks
	apiErr *APIError
}

type breaker struct {
	cb *gobreaker.CircuitBreaker[callResult]
}

// newBreaker opens after a 60% failure rate over at least 10 requests and
// probes again after one minute.
func newBreaker(name string, log zerolog.Logger) *breaker {
	metrics.BreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[callResult](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= 0.6 {
				log.Warn().
					Uint32("failures", counts.TotalFailures).
					Uint32("requests", counts.Requests).
					Msg("circuit breaker opening")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return &breaker{cb: cb}
}

func (b *breaker) execute(fn func() (callResult, error)) (callResult, error) {
	return b.cb.Execute(fn)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
