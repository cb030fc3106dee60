// Package memory is an in-process game contract and FHE service for local
// play and tests. Ciphertexts are not encrypted; handles and proofs are
// keccak digests so the verification flow is still exercised end to end.
package memory

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/game/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultAddress is the contract address used when none is given.
const DefaultAddress = "0x00000000000000000000000000000000000f4e01"

type entry struct {
	id         string
	record     types.EventRecord
	handle     common.Hash
	ciphertext []byte
}

// Contract is a thread-safe in-memory game contract.
type Contract struct {
	lock      sync.RWMutex
	address   common.Address
	events    map[string]*entry
	handles   map[common.Hash]*entry
	order     []string
	available bool
	nonce     uint64
	now       func() time.Time
}

type NewContractOptions struct {
	Address string
	// Unavailable starts the contract with availability off
	Unavailable bool
	Now         func() time.Time
}

func NewContract(opts NewContractOptions) *Contract {
	address := opts.Address
	if address == "" {
		address = DefaultAddress
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Contract{
		address:   common.HexToAddress(address),
		events:    make(map[string]*entry),
		handles:   make(map[common.Hash]*entry),
		available: !opts.Unavailable,
		now:       now,
	}
}

func (c *Contract) Address(ctx context.Context) (string, error) {
	return c.address.Hex(), nil
}

func (c *Contract) ListEventIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.lock.RLock()
	defer c.lock.RUnlock()
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids, nil
}

func (c *Contract) GetEventRecord(ctx context.Context, id string) (*types.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.lock.RLock()
	defer c.lock.RUnlock()
	e, ok := c.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", chain.ErrNotFound, id)
	}
	record := e.record
	return &record, nil
}

func (c *Contract) GetEncryptedHandle(ctx context.Context, id string) (string, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	e, ok := c.events[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", chain.ErrNotFound, id)
	}
	return e.handle.Hex(), nil
}

func (c *Contract) CheckAvailability(ctx context.Context) (bool, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.available, nil
}

func (c *Contract) SetAvailable(available bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.available = available
}

// SignerFor returns the write view of the contract bound to owner.
func (c *Contract) SignerFor(owner string) *Signer {
	return &Signer{contract: c, owner: common.HexToAddress(owner)}
}

func (c *Contract) ciphertext(handle common.Hash) ([]byte, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	e, ok := c.handles[handle]
	if !ok {
		return nil, false
	}
	return e.ciphertext, true
}

func (c *Contract) nextTxHash(payload ...[]byte) string {
	c.nonce++
	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, c.nonce)
	return crypto.Keccak256Hash(append(payload, nonce)...).Hex()
}

func (c *Contract) createEvent(owner common.Address, params chain.CreateEventParams) *tx {
	c.lock.Lock()
	defer c.lock.Unlock()

	hash := c.nextTxHash([]byte(params.ID), params.Ciphertext)
	if !c.available {
		return &tx{hash: hash, err: fmt.Errorf("execution reverted: contract unavailable")}
	}
	if _, ok := c.events[params.ID]; ok {
		return &tx{hash: hash, err: fmt.Errorf("execution reverted: event %s already exists", params.ID)}
	}
	if !bytes.Equal(params.Proof, inputProof(c.address, owner, params.Ciphertext)) {
		return &tx{hash: hash, err: fmt.Errorf("execution reverted: invalid input proof")}
	}

	e := &entry{
		id: params.ID,
		record: types.EventRecord{
			Name:         params.Name,
			PublicRadius: params.PublicRadius,
			Description:  params.Category,
			Creator:      owner.Hex(),
			Timestamp:    c.now().Unix(),
		},
		handle:     crypto.Keccak256Hash(c.address.Bytes(), []byte(params.ID), params.Ciphertext),
		ciphertext: append([]byte(nil), params.Ciphertext...),
	}
	c.events[params.ID] = e
	c.handles[e.handle] = e
	c.order = append(c.order, params.ID)
	return &tx{hash: hash}
}

func (c *Contract) verify(id string, clearValues []byte, proof []byte) *tx {
	c.lock.Lock()
	defer c.lock.Unlock()

	hash := c.nextTxHash([]byte(id), clearValues)
	e, ok := c.events[id]
	if !ok {
		return &tx{hash: hash, err: fmt.Errorf("execution reverted: %w", chain.ErrNotFound)}
	}
	if e.record.Triggered {
		return &tx{hash: hash, err: fmt.Errorf("execution reverted: event %s already verified", id)}
	}
	if !bytes.Equal(proof, decryptionProof(c.address, []common.Hash{e.handle}, clearValues)) {
		return &tx{hash: hash, err: fmt.Errorf("execution reverted: %w", chain.ErrProofRejected)}
	}
	value, err := decodeValue(clearValues)
	if err != nil {
		return &tx{hash: hash, err: fmt.Errorf("execution reverted: %w", err)}
	}
	e.record.Triggered = true
	e.record.RevealedValue = value
	return &tx{hash: hash}
}

// Signer is the write view of a Contract for one wallet.
type Signer struct {
	contract *Contract
	owner    common.Address

	lock   sync.Mutex
	reject bool
}

// Reject makes the wallet decline every following signature request.
func (s *Signer) Reject(reject bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.reject = reject
}

func (s *Signer) rejecting() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.reject
}

func (s *Signer) CreateEvent(ctx context.Context, params chain.CreateEventParams) (chain.PendingTx, error) {
	if s.rejecting() {
		return nil, chain.ErrUserRejected
	}
	return s.contract.createEvent(s.owner, params), nil
}

func (s *Signer) SubmitVerification(ctx context.Context, id string, clearValues []byte, proof []byte) (chain.PendingTx, error) {
	if s.rejecting() {
		return nil, chain.ErrUserRejected
	}
	return s.contract.verify(id, clearValues, proof), nil
}

// tx is already mined when it is returned; err is its revert reason.
type tx struct {
	hash string
	err  error
}

func (t *tx) Hash() string {
	return t.hash
}

func (t *tx) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.err
}

func inputProof(contract, owner common.Address, ciphertext []byte) []byte {
	return crypto.Keccak256(contract.Bytes(), owner.Bytes(), ciphertext)
}

func decryptionProof(contract common.Address, handles []common.Hash, clearValues []byte) []byte {
	parts := [][]byte{contract.Bytes()}
	for _, handle := range handles {
		parts = append(parts, handle.Bytes())
	}
	parts = append(parts, clearValues)
	return crypto.Keccak256(parts...)
}

// encodeValue packs v as one 32-byte big-endian word.
func encodeValue(v int64) []byte {
	word := make([]byte, 32)
	binary.BigEndian.PutUint64(word[24:], uint64(v))
	return word
}

func decodeValue(word []byte) (int64, error) {
	if len(word) != 32 {
		return 0, fmt.Errorf("clear value must be 32 bytes, got %d", len(word))
	}
	return int64(binary.BigEndian.Uint64(word[24:])), nil
}

var (
	_ chain.ReadOnlyContract = (*Contract)(nil)
	_ chain.SignerContract   = (*Signer)(nil)
	_ chain.FHEService       = (*FHE)(nil)
)
