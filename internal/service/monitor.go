package service

import (
	"sync"
	"time"
)

// Monitor counts verification outcomes for the admin metrics route.
type Monitor struct {
	mu sync.RWMutex

	CallbacksReceived    int64
	PaymentsVerified     int64
	SignatureFailures    int64
	GatewayNetworkErrors int64
	DuplicateCallbacks   int64
	EventsPublished      int64

	LastCallback     time.Time
	LastNetworkError time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor returns the process-wide monitor.
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordCallback counts an inbound gateway callback.
func (m *Monitor) RecordCallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallbacksReceived++
	m.LastCallback = time.Now()
}

// RecordVerified counts a confirmed payment.
func (m *Monitor) RecordVerified() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentsVerified++
}

// RecordSignatureFailure counts an HMAC mismatch.
func (m *Monitor) RecordSignatureFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SignatureFailures++
}

// RecordNetworkError counts an unreachable gateway.
func (m *Monitor) RecordNetworkError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GatewayNetworkErrors++
	m.LastNetworkError = time.Now()
}

// RecordDuplicate counts a callback that found the order already settled.
func (m *Monitor) RecordDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicateCallbacks++
}

// RecordEventPublished counts an order event handed to the broker.
func (m *Monitor) RecordEventPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsPublished++
}

// Snapshot returns a copy for JSON rendering.
func (m *Monitor) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]any{
		"callbacks_received":     m.CallbacksReceived,
		"payments_verified":      m.PaymentsVerified,
		"signature_failures":     m.SignatureFailures,
		"gateway_network_errors": m.GatewayNetworkErrors,
		"duplicate_callbacks":    m.DuplicateCallbacks,
		"events_published":       m.EventsPublished,
		"last_callback":          m.LastCallback,
		"last_network_error":     m.LastNetworkError,
	}
}
