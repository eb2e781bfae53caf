// Package chain reads stable-coin balances for custodial wallets directly
// from the chain over JSON-RPC.
package chain

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/web3-frozen/defi-sentinel/internal/apperr"
)

// Minimal ERC20 ABI, balanceOf only.
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

const usdcDecimals = 6

type BalanceReader struct {
	client *ethclient.Client
	token  common.Address
	abi    abi.ABI
}

// NewBalanceReader dials the RPC endpoint and prepares balanceOf calls
// against the configured stable-coin contract.
func NewBalanceReader(rpcURL, tokenAddress string) (*BalanceReader, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", rpcURL, err)
	}

	if !common.IsHexAddress(tokenAddress) {
		return nil, fmt.Errorf("invalid token address %q", tokenAddress)
	}

	return &BalanceReader{
		client: client,
		token:  common.HexToAddress(tokenAddress),
		abi:    parsed,
	}, nil
}

func (b *BalanceReader) Close() {
	b.client.Close()
}

// USDCBalance returns the wallet's USDC balance scaled to whole tokens.
func (b *BalanceReader) USDCBalance(ctx context.Context, address string) (float64, error) {
	if !common.IsHexAddress(address) {
		return 0, apperr.Validation("invalid wallet address", nil)
	}

	data, err := b.abi.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return 0, fmt.Errorf("pack balanceOf: %w", err)
	}

	out, err := b.client.CallContract(ctx, ethereum.CallMsg{To: &b.token, Data: data}, nil)
	if err != nil {
		return 0, apperr.Upstream("rpc endpoint unavailable", err)
	}

	var raw *big.Int
	if err := b.abi.UnpackIntoInterface(&raw, "balanceOf", out); err != nil {
		return 0, fmt.Errorf("unpack balanceOf: %w", err)
	}

	scaled, _ := new(big.Float).Quo(
		new(big.Float).SetInt(raw),
		big.NewFloat(math.Pow10(usdcDecimals)),
	).Float64()
	return scaled, nil
}
