package application

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Network is the chain the dashboard expects the wallet to be on.
type Network struct {
	ChainID      uint64
	Name         string
	Symbol       string
	Decimals     int
	RPCURLs      []string
	ExplorerURLs []string
}

type WalletProvider interface {
	ChainID(ctx context.Context) (uint64, error)
	AddChain(ctx context.Context, network Network) error
	RequestAccounts(ctx context.Context) ([]string, error)
	Balance(ctx context.Context, address string) (*big.Int, error)
}

type AddressStore interface {
	LoadAddress(ctx context.Context) (string, bool, error)
	SaveAddress(ctx context.Context, address string) error
	ClearAddress(ctx context.Context) error
}

// Alerter receives user-facing wallet messages.
type Alerter interface {
	Alert(message string)
}

const (
	AlertNoProvider     = "Please install a wallet provider"
	AlertAddChainFailed = "Failed to add network"
	AlertAccountsDenied = "Wallet did not return an account"
	AlertStoreFailed    = "Failed to remember wallet address"
)

// WalletStatus is what the navbar shows.
type WalletStatus struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address"`
	Balance   string `json:"balance"`
}

type WalletConnector struct {
	provider WalletProvider
	store    AddressStore
	network  Network
}

// NewWalletConnector builds a connector. provider may be nil when no wallet is configured.
func NewWalletConnector(provider WalletProvider, store AddressStore, network Network) (*WalletConnector, error) {
	if store == nil {
		return nil, errors.New("wallet store must not be nil")
	}
	if network.Decimals <= 0 {
		network.Decimals = NativeDecimals
	}
	return &WalletConnector{provider: provider, store: store, network: network}, nil
}

// Connect asks the wallet for an account, switching networks first when needed.
// Failures are reported through alerter; the returned bool is false when nothing was stored.
func (c *WalletConnector) Connect(ctx context.Context, alerter Alerter) (string, bool) {
	if c.provider == nil {
		alerter.Alert(AlertNoProvider)
		return "", false
	}

	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		slog.Warn("wallet chain id failed", "err", err)
	}
	if err != nil || chainID != c.network.ChainID {
		if err := c.provider.AddChain(ctx, c.network); err != nil {
			slog.Warn("wallet add chain rejected", "chain_id", c.network.ChainID, "err", err)
			alerter.Alert(AlertAddChainFailed)
		}
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil || len(accounts) == 0 || strings.TrimSpace(accounts[0]) == "" {
		if err != nil {
			slog.Warn("wallet account request failed", "err", err)
		}
		alerter.Alert(AlertAccountsDenied)
		return "", false
	}

	address := accounts[0]
	if err := c.store.SaveAddress(ctx, address); err != nil {
		slog.Error("wallet address save failed", "err", err)
		alerter.Alert(AlertStoreFailed)
		return "", false
	}
	slog.Info("wallet connected", "address", address)
	return address, true
}

// Disconnect forgets the persisted address.
func (c *WalletConnector) Disconnect(ctx context.Context) {
	if err := c.store.ClearAddress(ctx); err != nil {
		slog.Error("wallet address clear failed", "err", err)
	}
}

// Status reads the persisted address and, when a provider exists, its balance.
func (c *WalletConnector) Status(ctx context.Context) WalletStatus {
	address, ok, err := c.store.LoadAddress(ctx)
	if err != nil {
		slog.Error("wallet address load failed", "err", err)
	}
	if !ok || address == "" {
		return WalletStatus{Balance: "0"}
	}
	status := WalletStatus{Connected: true, Address: address, Balance: "0"}
	if c.provider == nil {
		return status
	}
	balance, err := c.provider.Balance(ctx, address)
	if err != nil {
		slog.Warn("wallet balance failed", "address", address, "err", err)
		return status
	}
	status.Balance = FormatUnits(balance, c.network.Decimals)
	return status
}

// FormatUnits renders a base-unit amount in display units.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}
