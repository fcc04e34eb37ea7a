package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"txdash/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	txs       []domain.Transaction
	err       error
	calls     int
	addresses []string
}

func (s *stubSource) AccountTransactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	s.calls++
	s.addresses = append(s.addresses, address)
	return s.txs, s.err
}

type recordingObserver struct {
	events []FetchEvent
}

func (o *recordingObserver) OnFetch(event FetchEvent) {
	o.events = append(o.events, event)
}

type recordingPublisher struct {
	events []FetchEvent
	err    error
}

func (p *recordingPublisher) PublishFetch(ctx context.Context, event FetchEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func makeTxs(n int) []domain.Transaction {
	txs := make([]domain.Transaction, n)
	for i := range txs {
		txs[i] = domain.Transaction{
			Hash:     fmt.Sprintf("0x%02d", i),
			Value:    "0",
			GasPrice: "1",
			IsError:  "0",
			Input:    "0x",
		}
	}
	return txs
}

func TestFetcherTruncatesInOrder(t *testing.T) {
	source := &stubSource{txs: makeTxs(15)}
	fetcher, err := NewFetcher(source, NewAggregator("CFX", NativeDecimals), nil, nil)
	require.NoError(t, err)

	report, err := fetcher.Fetch(context.Background(), "  0xabc  ")
	require.NoError(t, err)

	require.Len(t, report.Transactions, MaxDisplayed)
	for i, tx := range report.Transactions {
		assert.Equal(t, fmt.Sprintf("0x%02d", i), tx.Hash)
	}
	assert.Equal(t, "0xabc", report.Address)
	assert.Equal(t, []string{"0xabc"}, source.addresses)
	assert.Equal(t, MaxDisplayed, domain.Total(report.Summary.Value))
}

func TestFetcherKeepsShortLists(t *testing.T) {
	fetcher, err := NewFetcher(&stubSource{txs: makeTxs(3)}, NewAggregator("CFX", NativeDecimals), nil, nil)
	require.NoError(t, err)

	report, err := fetcher.Fetch(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Len(t, report.Transactions, 3)
}

func TestFetcherRejectsEmptyAddress(t *testing.T) {
	source := &stubSource{}
	fetcher, err := NewFetcher(source, NewAggregator("CFX", NativeDecimals), nil, nil)
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyAddress)
	assert.Zero(t, source.calls)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Please enter a valid address", Message(err))
}

func TestFetcherSurfacesAPIError(t *testing.T) {
	source := &stubSource{err: &APIError{Status: "0", Message: "No transactions found"}}
	observer := &recordingObserver{}
	publisher := &recordingPublisher{err: errors.New("broker down")}
	fetcher, err := NewFetcher(source, NewAggregator("CFX", NativeDecimals), observer, publisher)
	require.NoError(t, err)

	report, err := fetcher.Fetch(context.Background(), "0xabc")
	require.Error(t, err)
	assert.Empty(t, report.Transactions)
	assert.Equal(t, KindAPI, KindOf(err))
	assert.Equal(t, "No transactions found", Message(err))
	assert.Equal(t, 1, source.calls)

	require.Len(t, observer.events, 1)
	assert.Error(t, observer.events[0].Err)
	require.Len(t, publisher.events, 1)
}

func TestFetcherSurfacesNetworkError(t *testing.T) {
	fetcher, err := NewFetcher(&stubSource{err: &NetworkError{StatusCode: 503}}, NewAggregator("CFX", NativeDecimals), nil, nil)
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), "0xabc")
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, "API request failed with status 503", Message(err))
}

func TestFetcherNotifiesOnSuccess(t *testing.T) {
	observer := &recordingObserver{}
	publisher := &recordingPublisher{}
	fetcher, err := NewFetcher(&stubSource{txs: makeTxs(4)}, NewAggregator("CFX", NativeDecimals), observer, publisher)
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, observer.events, 1)
	assert.Equal(t, 4, observer.events[0].Count)
	assert.NoError(t, observer.events[0].Err)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "0xabc", publisher.events[0].Address)
}

func TestNewFetcherRequiresSource(t *testing.T) {
	_, err := NewFetcher(nil, NewAggregator("CFX", NativeDecimals), nil, nil)
	assert.Error(t, err)
}

func TestMessageFallsBackForUnknownErrors(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "Failed to fetch transaction data", Message(err))
	assert.Equal(t, "Failed to fetch transactions", (&APIError{Status: "0"}).Error())
}
