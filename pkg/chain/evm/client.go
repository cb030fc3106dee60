// Package evm talks to the deployed game contract over JSON-RPC.
package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/game/types"
	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

var parsedABI abi.ABI

func init() {
	var err error
	parsedABI, err = abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		panic(fmt.Sprintf("invalid contract abi: %v", err))
	}
}

// Client is both the read-only and the signer view of the contract. The
// signer half is only usable when a private key was configured.
type Client struct {
	eth      *ethclient.Client
	address  common.Address
	contract *bind.BoundContract
	auth     *bind.TransactOpts
	logger   *log.Logger
}

type NewClientOptions struct {
	RPCURL          string
	ContractAddress string
	// PrivateKey is hex encoded, with or without 0x. Empty means read-only.
	PrivateKey string
	ChainID    int64
}

func NewClient(ctx context.Context, opts NewClientOptions) (*Client, error) {
	if opts.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(opts.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", opts.ContractAddress)
	}

	var key *ecdsa.PrivateKey
	if opts.PrivateKey != "" {
		var err error
		key, err = crypto.HexToECDSA(strings.TrimPrefix(opts.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %v", err)
		}
	}

	eth, err := ethclient.DialContext(ctx, opts.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w: %w", opts.RPCURL, chain.ErrUnavailable, err)
	}

	address := common.HexToAddress(opts.ContractAddress)
	c := &Client{
		eth:      eth,
		address:  address,
		contract: bind.NewBoundContract(address, parsedABI, eth, eth, eth),
		logger:   log.With("component", "evm"),
	}
	if key != nil {
		c.auth, err = bind.NewKeyedTransactorWithChainID(key, big.NewInt(opts.ChainID))
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("failed to create transactor: %v", err)
		}
		c.logger.Info("Signing as %s on chain %d", c.auth.From.Hex(), opts.ChainID)
	}
	return c, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

// SignerAddress is the wallet address transactions are sent from.
func (c *Client) SignerAddress() string {
	if c.auth == nil {
		return ""
	}
	return c.auth.From.Hex()
}

func (c *Client) Address(ctx context.Context) (string, error) {
	return c.address.Hex(), nil
}

func (c *Client) call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return out, nil
}

func (c *Client) ListEventIDs(ctx context.Context) ([]string, error) {
	out, err := c.call(ctx, "getAllBusinessIds")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]string)).(*[]string), nil
}

func (c *Client) GetEventRecord(ctx context.Context, id string) (*types.EventRecord, error) {
	out, err := c.call(ctx, "getBusinessData", id)
	if err != nil {
		return nil, err
	}
	return recordFromOutputs(out)
}

func (c *Client) GetEncryptedHandle(ctx context.Context, id string) (string, error) {
	out, err := c.call(ctx, "getEncryptedValue", id)
	if err != nil {
		return "", err
	}
	handle := *abi.ConvertType(out[0], new([32]byte)).(*[32]byte)
	return common.Hash(handle).Hex(), nil
}

func (c *Client) CheckAvailability(ctx context.Context) (bool, error) {
	out, err := c.call(ctx, "isAvailable")
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (c *Client) transact(ctx context.Context, method string, params ...interface{}) (*ethtypes.Transaction, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("no private key configured")
	}
	opts := *c.auth
	opts.Context = ctx
	tx, err := c.contract.Transact(&opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	c.logger.Debug("Sent %s in %s", method, tx.Hash().Hex())
	return tx, nil
}

func (c *Client) CreateEvent(ctx context.Context, params chain.CreateEventParams) (chain.PendingTx, error) {
	if len(params.Ciphertext) != common.HashLength {
		return nil, fmt.Errorf("ciphertext handle must be %d bytes, got %d", common.HashLength, len(params.Ciphertext))
	}
	// uint256 arguments; abi packing would wrap a negative big.Int.
	if params.PublicRadius < 0 || params.PublicExtra < 0 {
		return nil, fmt.Errorf("public values must not be negative, got %d and %d", params.PublicRadius, params.PublicExtra)
	}
	tx, err := c.transact(ctx, "createBusinessData",
		params.ID,
		params.Name,
		common.BytesToHash(params.Ciphertext),
		params.Proof,
		big.NewInt(params.PublicRadius),
		big.NewInt(params.PublicExtra),
		params.Category,
	)
	if err != nil {
		return nil, err
	}
	return &pendingTx{eth: c.eth, tx: tx}, nil
}

func (c *Client) SubmitVerification(ctx context.Context, id string, clearValues []byte, proof []byte) (chain.PendingTx, error) {
	tx, err := c.transact(ctx, "verifyDecryption", id, clearValues, proof)
	if err != nil {
		return nil, err
	}
	return &pendingTx{eth: c.eth, tx: tx, revertErr: chain.ErrProofRejected}, nil
}

// recordFromOutputs maps getBusinessData outputs onto an event record.
func recordFromOutputs(out []interface{}) (*types.EventRecord, error) {
	if len(out) != 8 {
		return nil, fmt.Errorf("getBusinessData: expected 8 outputs, got %d", len(out))
	}
	radius := *abi.ConvertType(out[1], new(*big.Int)).(**big.Int)
	timestamp := *abi.ConvertType(out[5], new(*big.Int)).(**big.Int)
	creator := *abi.ConvertType(out[4], new(common.Address)).(*common.Address)
	return &types.EventRecord{
		Name:          *abi.ConvertType(out[0], new(string)).(*string),
		PublicRadius:  radius.Int64(),
		Description:   *abi.ConvertType(out[3], new(string)).(*string),
		Creator:       creator.Hex(),
		Timestamp:     timestamp.Int64(),
		Triggered:     *abi.ConvertType(out[6], new(bool)).(*bool),
		RevealedValue: int64(*abi.ConvertType(out[7], new(uint32)).(*uint32)),
	}, nil
}

type pendingTx struct {
	eth *ethclient.Client
	tx  *ethtypes.Transaction
	// revertErr is wrapped when the transaction is mined but reverted
	revertErr error
}

func (p *pendingTx) Hash() string {
	return p.tx.Hash().Hex()
}

func (p *pendingTx) Wait(ctx context.Context) error {
	receipt, err := bind.WaitMined(ctx, p.eth, p.tx)
	if err != nil {
		return fmt.Errorf("failed waiting for %s: %w", p.Hash(), err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		if p.revertErr != nil {
			return fmt.Errorf("transaction %s reverted: %w", p.Hash(), p.revertErr)
		}
		return fmt.Errorf("transaction %s reverted", p.Hash())
	}
	return nil
}

var (
	_ chain.ReadOnlyContract = (*Client)(nil)
	_ chain.SignerContract   = (*Client)(nil)
)
