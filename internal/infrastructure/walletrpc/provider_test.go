package walletrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"txdash/internal/application"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcCall struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type fakeWallet struct {
	mu      sync.Mutex
	calls   []rpcCall
	results map[string]any
	errs    map[string]string
}

func (f *fakeWallet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.calls = append(f.calls, rpcCall{Method: req.Method, Params: req.Params})
	result, hasResult := f.results[req.Method]
	message, hasErr := f.errs[req.Method]
	f.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	switch {
	case hasErr:
		resp["error"] = map[string]any{"code": 4001, "message": message}
	case hasResult:
		resp["result"] = result
	default:
		resp["result"] = nil
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func dialFake(t *testing.T, wallet *fakeWallet) *Provider {
	t.Helper()
	server := httptest.NewServer(wallet)
	t.Cleanup(server.Close)
	provider, err := Dial(context.Background(), server.URL)
	require.NoError(t, err)
	t.Cleanup(provider.Close)
	return provider
}

func TestProviderChainIDAndAccounts(t *testing.T) {
	wallet := &fakeWallet{results: map[string]any{
		"eth_chainId":         "0x47",
		"eth_requestAccounts": []string{"0x00000000000000000000000000000000000000aa"},
	}}
	provider := dialFake(t, wallet)

	id, err := provider.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(71), id)

	accounts, err := provider.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0x00000000000000000000000000000000000000aa"}, accounts)
}

func TestProviderAddChainParams(t *testing.T) {
	wallet := &fakeWallet{}
	provider := dialFake(t, wallet)

	err := provider.AddChain(context.Background(), application.Network{
		ChainID:      71,
		Name:         "CFXTestnet",
		Symbol:       "CFX",
		Decimals:     18,
		RPCURLs:      []string{"https://evmtestnet.confluxrpc.com"},
		ExplorerURLs: []string{"https://www.confluxscan.io/"},
	})
	require.NoError(t, err)

	require.Len(t, wallet.calls, 1)
	assert.Equal(t, "wallet_addEthereumChain", wallet.calls[0].Method)
	require.Len(t, wallet.calls[0].Params, 1)

	var params addChainParams
	require.NoError(t, json.Unmarshal(wallet.calls[0].Params[0], &params))
	assert.Equal(t, "0x47", params.ChainID)
	assert.Equal(t, "CFX", params.NativeCurrency.Symbol)
	assert.Equal(t, 18, params.NativeCurrency.Decimals)
	assert.Equal(t, []string{"https://evmtestnet.confluxrpc.com"}, params.RPCURLs)
}

func TestProviderAddChainRejected(t *testing.T) {
	wallet := &fakeWallet{errs: map[string]string{"wallet_addEthereumChain": "User rejected the request."}}
	provider := dialFake(t, wallet)

	err := provider.AddChain(context.Background(), application.Network{ChainID: 71})
	assert.Error(t, err)
}

func TestProviderBalance(t *testing.T) {
	wallet := &fakeWallet{results: map[string]any{"eth_getBalance": "0xde0b6b3a7640000"}}
	provider := dialFake(t, wallet)

	balance, err := provider.Balance(context.Background(), "0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", balance.String())

	_, err = provider.Balance(context.Background(), "not-an-address")
	assert.Error(t, err)
}

func TestDialRequiresURL(t *testing.T) {
	_, err := Dial(context.Background(), " ")
	assert.Error(t, err)
}
