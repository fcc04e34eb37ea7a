package httpapi

import (
	"sync"
	"time"

	"txdash/internal/application"
)

// Metrics accumulates counters for /metrics. It doubles as the fetcher's observer.
type Metrics struct {
	mu                sync.RWMutex
	startTime         time.Time
	fetchTotal        uint64
	fetchErrors       map[application.ErrorKind]uint64
	transactionsTotal uint64
	lastFetchCount    int
	lastFetchDuration time.Duration
	lastFetchTime     time.Time
	busyRejected      uint64
	walletConnects    uint64
	walletFailures    uint64
	walletDisconnects uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime:   time.Now(),
		fetchErrors: make(map[application.ErrorKind]uint64),
	}
}

var _ application.FetchObserver = (*Metrics)(nil)

func (m *Metrics) OnFetch(event application.FetchEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchTotal++
	m.lastFetchDuration = event.Duration
	m.lastFetchTime = time.Now()
	if event.Err != nil {
		m.fetchErrors[application.KindOf(event.Err)]++
		return
	}
	m.lastFetchCount = event.Count
	m.transactionsTotal += uint64(event.Count)
}

func (m *Metrics) IncBusyRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busyRejected++
}

func (m *Metrics) OnWalletConnect(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.walletConnects++
		return
	}
	m.walletFailures++
}

func (m *Metrics) IncWalletDisconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.walletDisconnects++
}

type Snapshot struct {
	StartTime         time.Time
	FetchTotal        uint64
	FetchErrors       map[application.ErrorKind]uint64
	TransactionsTotal uint64
	LastFetchCount    int
	LastFetchDuration time.Duration
	LastFetchTime     time.Time
	BusyRejected      uint64
	WalletConnects    uint64
	WalletFailures    uint64
	WalletDisconnects uint64
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		StartTime:         m.startTime,
		FetchTotal:        m.fetchTotal,
		FetchErrors:       copyErrorCounts(m.fetchErrors),
		TransactionsTotal: m.transactionsTotal,
		LastFetchCount:    m.lastFetchCount,
		LastFetchDuration: m.lastFetchDuration,
		LastFetchTime:     m.lastFetchTime,
		BusyRejected:      m.busyRejected,
		WalletConnects:    m.walletConnects,
		WalletFailures:    m.walletFailures,
		WalletDisconnects: m.walletDisconnects,
	}
}

func copyErrorCounts(source map[application.ErrorKind]uint64) map[application.ErrorKind]uint64 {
	if len(source) == 0 {
		return nil
	}
	clone := make(map[application.ErrorKind]uint64, len(source))
	for kind, count := range source {
		clone[kind] = count
	}
	return clone
}
