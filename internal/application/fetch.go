package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"txdash/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// MaxDisplayed is how many of the explorer's records are kept per fetch.
const MaxDisplayed = 10

var (
	ErrEmptyAddress  = errors.New("address is required")
	ErrFetchInFlight = errors.New("fetch already in progress")
)

type TransactionSource interface {
	AccountTransactions(ctx context.Context, address string) ([]domain.Transaction, error)
}

// FetchEvent describes one completed fetch for observers and publishers.
type FetchEvent struct {
	Address  string
	Count    int
	Summary  domain.Summary
	Err      error
	Duration time.Duration
}

type FetchObserver interface {
	OnFetch(event FetchEvent)
}

type EventPublisher interface {
	PublishFetch(ctx context.Context, event FetchEvent) error
}

// Report is the outcome of a successful fetch.
type Report struct {
	Address      string               `json:"address"`
	Transactions []domain.Transaction `json:"transactions"`
	Summary      domain.Summary       `json:"summary"`
	FetchedAt    time.Time            `json:"fetched_at"`
}

type Fetcher struct {
	source     TransactionSource
	aggregator Aggregator
	observer   FetchObserver
	publisher  EventPublisher
}

func NewFetcher(source TransactionSource, aggregator Aggregator, observer FetchObserver, publisher EventPublisher) (*Fetcher, error) {
	if source == nil {
		return nil, errors.New("fetcher dependencies must not be nil")
	}
	return &Fetcher{source: source, aggregator: aggregator, observer: observer, publisher: publisher}, nil
}

// Fetch loads the most recent transactions for address and summarizes them.
// The explorer is called exactly once; there is no retry.
func (f *Fetcher) Fetch(ctx context.Context, address string) (Report, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Report{}, ErrEmptyAddress
	}

	ctx, span := otel.Tracer("txdash/fetcher").Start(ctx, "fetcher.Fetch")
	span.SetAttributes(attribute.String("address", address))
	defer span.End()

	start := time.Now()
	txs, err := f.source.AccountTransactions(ctx, address)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		f.notify(ctx, FetchEvent{Address: address, Err: err, Duration: time.Since(start)})
		return Report{}, fmt.Errorf("fetch transactions: %w", err)
	}
	txs = Truncate(txs, MaxDisplayed)

	report := Report{
		Address:      address,
		Transactions: txs,
		Summary:      f.aggregator.Summarize(txs),
		FetchedAt:    time.Now().UTC(),
	}
	span.SetAttributes(attribute.Int("tx.count", len(txs)))
	f.notify(ctx, FetchEvent{Address: address, Count: len(txs), Summary: report.Summary, Duration: time.Since(start)})
	return report, nil
}

func (f *Fetcher) notify(ctx context.Context, event FetchEvent) {
	if f.observer != nil {
		f.observer.OnFetch(event)
	}
	if f.publisher == nil {
		return
	}
	if err := f.publisher.PublishFetch(ctx, event); err != nil {
		slog.Warn("fetch event publish failed", "address", event.Address, "err", err)
	}
}

// Truncate keeps the first n records without reordering.
func Truncate(txs []domain.Transaction, n int) []domain.Transaction {
	if len(txs) <= n {
		return txs
	}
	return txs[:n]
}
