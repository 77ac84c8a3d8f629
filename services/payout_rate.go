package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"oquvmarkaz_go/config"
	"oquvmarkaz_go/database"

	"github.com/sirupsen/logrus"
)

const payoutRateKey = "dashboard:payout_rate"

// RateBroadcaster pushes payout rate changes to open dashboard sessions.
// The WebSocket hub satisfies it.
type RateBroadcaster interface {
	Broadcast(message interface{})
}

// PayoutRateStore holds the process-wide payout rate. The value is persisted
// to Redis as a decimal string so it survives restarts, read once at startup,
// and every change is pushed to subscribers and broadcast over the hub.
// Redis being down degrades to the in-memory value.
type PayoutRateStore struct {
	mu   sync.RWMutex
	rate float64
	subs []chan float64
	hub  RateBroadcaster
}

var (
	payoutRateStore     *PayoutRateStore
	payoutRateStoreOnce sync.Once
)

// GetPayoutRateStore returns the process-wide store, loading the persisted
// rate on first use.
func GetPayoutRateStore() *PayoutRateStore {
	payoutRateStoreOnce.Do(func() {
		payoutRateStore = &PayoutRateStore{rate: loadPersistedRate()}
	})
	return payoutRateStore
}

func loadPersistedRate() float64 {
	rc := database.GetRedisClient()
	if rc == nil {
		return config.DefaultPayoutRate
	}
	raw, err := rc.Get(context.Background(), payoutRateKey).Result()
	if err != nil {
		return config.DefaultPayoutRate
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || !ValidPayoutRate(rate) {
		logrus.WithField("value", raw).Warn("ignoring invalid persisted payout rate")
		return config.DefaultPayoutRate
	}
	return rate
}

// SetBroadcaster wires the WebSocket hub for cross-session notification.
func (s *PayoutRateStore) SetBroadcaster(hub RateBroadcaster) {
	s.mu.Lock()
	s.hub = hub
	s.mu.Unlock()
}

// Get returns the current rate.
func (s *PayoutRateStore) Get() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// Set validates and applies a new rate. Out-of-range values are rejected with
// a validation error and the previous value stays in force. On success the
// rate is persisted (best-effort) and broadcast to subscribers and open
// sessions.
func (s *PayoutRateStore) Set(rate float64) (float64, error) {
	if !ValidPayoutRate(rate) {
		return s.Get(), validationError(fmt.Sprintf(
			"payout rate %.2f outside allowed range [%.2f, %.2f]",
			rate, config.MinPayoutRate, config.MaxPayoutRate))
	}

	s.mu.Lock()
	s.rate = rate
	subs := make([]chan float64, len(s.subs))
	copy(subs, s.subs)
	hub := s.hub
	s.mu.Unlock()

	if rc := database.GetRedisClient(); rc != nil {
		value := strconv.FormatFloat(rate, 'f', -1, 64)
		if err := rc.Set(context.Background(), payoutRateKey, value, 0).Err(); err != nil {
			logrus.WithError(err).Warn("failed to persist payout rate")
		}
	}

	for _, ch := range subs {
		select {
		case ch <- rate:
		default:
		}
	}
	if hub != nil {
		hub.Broadcast(map[string]interface{}{
			"type": "payout_rate_changed",
			"data": map[string]float64{"rate": rate},
		})
	}

	return rate, nil
}

// Subscribe registers an in-process listener for rate changes. The channel is
// buffered; a slow listener misses intermediate values, never blocks Set.
func (s *PayoutRateStore) Subscribe() <-chan float64 {
	ch := make(chan float64, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}
