package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"txdash/internal/application"
	"txdash/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PageSize is how many records are requested from the explorer per fetch.
const PageSize = 100

type Client struct {
	apiURL     string
	webURL     string
	httpClient *http.Client
}

type Config struct {
	APIURL string
	WebURL string
	// Timeout of zero leaves the transport default in place.
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, errors.New("explorer api url is required")
	}
	if _, err := url.Parse(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("invalid explorer api url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		apiURL:     cfg.APIURL,
		webURL:     strings.TrimRight(cfg.WebURL, "/"),
		httpClient: httpClient,
	}, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// AccountTransactions returns the newest transactions touching address, as ordered by the explorer.
func (c *Client) AccountTransactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	ctx, span := otel.Tracer("txdash/explorer").Start(ctx, "explorer.txlist", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("address", address))
	defer span.End()

	txs, err := c.txlist(ctx, address)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("tx.count", len(txs)))
	return txs, nil
}

func (c *Client) txlist(ctx context.Context, address string) ([]domain.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.TxListURL(address), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &application.NetworkError{StatusCode: resp.StatusCode}
	}

	var decoded envelope
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode explorer response: %w", err)
	}
	if decoded.Status != "1" {
		return nil, &application.APIError{Status: decoded.Status, Message: decoded.Message}
	}

	var txs []domain.Transaction
	if len(decoded.Result) == 0 || string(decoded.Result) == "null" {
		return txs, nil
	}
	if err := json.Unmarshal(decoded.Result, &txs); err != nil {
		return nil, fmt.Errorf("decode explorer result: %w", err)
	}
	return txs, nil
}

// TxListURL builds the account/txlist request for address. The address is passed through unvalidated.
func (c *Client) TxListURL(address string) string {
	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", "txlist")
	query.Set("address", address)
	query.Set("page", "1")
	query.Set("offset", fmt.Sprintf("%d", PageSize))
	query.Set("sort", "desc")

	sep := "?"
	if strings.Contains(c.apiURL, "?") {
		sep = "&"
	}
	return c.apiURL + sep + query.Encode()
}

// TxLink points at the explorer web page of a transaction.
func (c *Client) TxLink(hash string) string {
	return c.webURL + "/tx/" + hash
}

// AddressLink points at the explorer web page of an address.
func (c *Client) AddressLink(address string) string {
	return c.webURL + "/address/" + address
}
