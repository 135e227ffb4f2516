package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// DefaultTimeout bounds each RPC call.
const DefaultTimeout = 15 * time.Second

// Client runs read-only deployment checks against an EVM RPC endpoint.
// Nothing is signed or broadcast.
type Client struct {
	rpcURL  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a new wallet client.
func NewClient(rpcURL string, logger *zap.Logger) (c *Client, err error) {
	if rpcURL == "" {
		return nil, errors.New("rpcURL cannot be empty")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	client := &Client{
		rpcURL:  rpcURL,
		timeout: DefaultTimeout,
		logger:  logger,
	}

	return client, nil
}

// Report is the outcome of a preflight check.
type Report struct {
	ChainID         *big.Int
	Factory         common.Address
	FactoryCodeSize int
	Deployer        *common.Address
	Balance         *big.Int // wei; nil without a deployer
	EstimatedGas    uint64   // zero without a deployer
}

// FactoryDeployed reports whether a contract is deployed at Factory.
func (r *Report) FactoryDeployed() bool {
	return r.FactoryCodeSize > 0
}

// PreflightRequest describes what to check.
type PreflightRequest struct {
	Factory common.Address
	// Deployer is optional. When set, its balance is read and CallData is
	// gas-estimated as if sent from it.
	Deployer *common.Address
	CallData []byte
}

// Preflight checks the factory contract and, optionally, the deployer account.
func (c *Client) Preflight(ctx context.Context, req *PreflightRequest) (report *Report, err error) {
	start := time.Now()
	defer func() {
		PreflightDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			RPCErrorsTotal.Inc()
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain ID: %w", err)
	}

	code, err := client.CodeAt(ctx, req.Factory, nil)
	if err != nil {
		return nil, fmt.Errorf("get factory code: %w", err)
	}

	report = &Report{
		ChainID:         chainID,
		Factory:         req.Factory,
		FactoryCodeSize: len(code),
	}

	c.logger.Debug("factory-code-checked",
		zap.String("factory", req.Factory.Hex()),
		zap.Int("code-size", len(code)),
		zap.String("chain-id", chainID.String()))

	if req.Deployer == nil {
		return report, nil
	}
	report.Deployer = req.Deployer

	balance, err := client.BalanceAt(ctx, *req.Deployer, nil)
	if err != nil {
		return nil, fmt.Errorf("get deployer balance: %w", err)
	}
	report.Balance = balance
	DeployerBalance.Set(weiToEther(balance))

	if len(req.CallData) == 0 || !report.FactoryDeployed() {
		return report, nil
	}

	factory := req.Factory
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: *req.Deployer,
		To:   &factory,
		Data: req.CallData,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate createMarket gas: %w", err)
	}
	report.EstimatedGas = gas

	return report, nil
}

// AddressFromPrivateKey derives the account address for a hex private key.
func AddressFromPrivateKey(privateKeyHex string) (common.Address, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("parse private key: %w", err)
	}

	publicKeyECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return common.Address{}, errors.New("public key is not ECDSA")
	}

	return crypto.PubkeyToAddress(*publicKeyECDSA), nil
}

func weiToEther(wei *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	return f
}
