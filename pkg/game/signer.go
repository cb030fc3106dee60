package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/hideseek/pkg/chain"
)

// SignerFactory binds the contract's write view to a wallet address.
type SignerFactory func(address string) (chain.SignerContract, error)

// sessionSigner forwards to the signer of the connected wallet.
type sessionSigner struct {
	lock    sync.RWMutex
	current chain.SignerContract
}

func (s *sessionSigner) set(signer chain.SignerContract) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.current = signer
}

func (s *sessionSigner) get() (chain.SignerContract, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.current == nil {
		return nil, fmt.Errorf("no wallet connected")
	}
	return s.current, nil
}

func (s *sessionSigner) CreateEvent(ctx context.Context, params chain.CreateEventParams) (chain.PendingTx, error) {
	signer, err := s.get()
	if err != nil {
		return nil, err
	}
	return signer.CreateEvent(ctx, params)
}

func (s *sessionSigner) SubmitVerification(ctx context.Context, id string, clearValues []byte, proof []byte) (chain.PendingTx, error) {
	signer, err := s.get()
	if err != nil {
		return nil, err
	}
	return signer.SubmitVerification(ctx, id, clearValues, proof)
}
