// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package wikipedia

import (
	"time"

	"github.com/jcodagnone/historiaviva/logging"
	"github.com/jcodagnone/historiaviva/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

const defaultBreakerCooldown = 30 * time.Second

// healthBreaker tracks the health of one upstream source. It never rejects a
// call: while open or half-open the call still goes out, untracked, so one
// request's failures cannot change what another request gets back.
type healthBreaker struct {
	cb *gobreaker.TwoStepCircuitBreaker[[]byte]
}

// newBreaker opens after at least 10 requests in a minute with 60% of them
// failing, and goes half-open after cooldown.
func newBreaker(source Source, cooldown time.Duration) *healthBreaker {
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}

	metrics.BreakerState.WithLabelValues(string(source)).Set(0)

	return &healthBreaker{cb: gobreaker.NewTwoStepCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        string(source),
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("source", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("upstream health changed")
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})}
}

// track runs call and reports its outcome when the breaker admits it.
func (b *healthBreaker) track(call func() ([]byte, error)) (body []byte, tracked bool, err error) {
	done, allowErr := b.cb.Allow()

	body, err = call()
	if allowErr != nil {
		return body, false, err
	}

	done(err)

	return body, true, err
}

func (b *healthBreaker) state() gobreaker.State {
	return b.cb.State()
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
