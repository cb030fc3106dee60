package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/ethereum/go-ethereum/common"
)

// FHE simulates the relayer against a Contract. Encrypt produces inputs
// the contract accepts and DecryptWithProof produces proofs it verifies.
type FHE struct {
	contract *Contract

	lock        sync.Mutex
	initErr     error
	initialized bool
	initCalls   int
}

func NewFHE(contract *Contract) *FHE {
	return &FHE{contract: contract}
}

// FailInitialize makes following Initialize calls return err.
func (f *FHE) FailInitialize(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.initErr = err
}

func (f *FHE) Initialize(ctx context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.initCalls++
	if f.initErr != nil {
		return f.initErr
	}
	f.initialized = true
	return nil
}

// InitializeCalls is the number of Initialize calls so far.
func (f *FHE) InitializeCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.initCalls
}

func (f *FHE) ready() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.initialized {
		return fmt.Errorf("fhe instance not initialized")
	}
	return nil
}

func (f *FHE) Encrypt(ctx context.Context, contractAddress string, ownerAddress string, value int64) (*chain.EncryptedInput, error) {
	if err := f.ready(); err != nil {
		return nil, err
	}
	ciphertext := encodeValue(value)
	return &chain.EncryptedInput{
		Ciphertext: ciphertext,
		Proof:      inputProof(common.HexToAddress(contractAddress), common.HexToAddress(ownerAddress), ciphertext),
	}, nil
}

func (f *FHE) DecryptWithProof(ctx context.Context, handles []string, contractAddress string, submit chain.SubmitFunc) error {
	if err := f.ready(); err != nil {
		return err
	}
	if len(handles) != 1 {
		return fmt.Errorf("expected exactly one handle, got %d", len(handles))
	}
	handle := common.HexToHash(handles[0])
	clearValues, ok := f.contract.ciphertext(handle)
	if !ok {
		return fmt.Errorf("unknown handle %s", handles[0])
	}
	proof := decryptionProof(common.HexToAddress(contractAddress), []common.Hash{handle}, clearValues)
	return submit(ctx, clearValues, proof)
}
