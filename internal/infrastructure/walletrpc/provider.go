package walletrpc

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"txdash/internal/application"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Provider talks to a wallet that exposes the EIP-1193 request methods over JSON-RPC.
type Provider struct {
	client *rpc.Client
	eth    *ethclient.Client
}

func Dial(ctx context.Context, url string) (*Provider, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("wallet provider url is required")
	}
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Provider{client: client, eth: ethclient.NewClient(client)}, nil
}

func (p *Provider) Close() {
	p.client.Close()
}

func (p *Provider) ChainID(ctx context.Context) (uint64, error) {
	id, err := p.eth.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	if !id.IsUint64() {
		return 0, errors.New("chain id out of range")
	}
	return id.Uint64(), nil
}

type nativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type addChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    nativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

func (p *Provider) AddChain(ctx context.Context, network application.Network) error {
	params := addChainParams{
		ChainID:   hexutil.EncodeUint64(network.ChainID),
		ChainName: network.Name,
		NativeCurrency: nativeCurrency{
			Name:     network.Name,
			Symbol:   network.Symbol,
			Decimals: network.Decimals,
		},
		RPCURLs:           network.RPCURLs,
		BlockExplorerURLs: network.ExplorerURLs,
	}
	return p.client.CallContext(ctx, nil, "wallet_addEthereumChain", params)
}

func (p *Provider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *Provider) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, errors.New("invalid wallet address")
	}
	return p.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
}
