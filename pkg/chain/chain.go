package chain

import (
	"context"

	"github.com/cbodonnell/hideseek/pkg/game/types"
)

const (
	// EventCategory is the fixed metadata every created event carries.
	EventCategory = "Game Event"
)

// ReadOnlyContract is the view of the game contract that needs no signer.
type ReadOnlyContract interface {
	// Address returns the contract address ciphertexts are bound to.
	Address(ctx context.Context) (string, error)
	ListEventIDs(ctx context.Context) ([]string, error)
	GetEventRecord(ctx context.Context, id string) (*types.EventRecord, error)
	// GetEncryptedHandle returns the opaque handle of the event's location ciphertext.
	GetEncryptedHandle(ctx context.Context, id string) (string, error)
	CheckAvailability(ctx context.Context) (bool, error)
}

// SignerContract is the view of the game contract bound to the wallet.
type SignerContract interface {
	CreateEvent(ctx context.Context, params CreateEventParams) (PendingTx, error)
	SubmitVerification(ctx context.Context, id string, clearValues []byte, proof []byte) (PendingTx, error)
}

// PendingTx is a submitted transaction.
type PendingTx interface {
	Hash() string
	// Wait blocks until the transaction is confirmed or fails.
	Wait(ctx context.Context) error
}

type CreateEventParams struct {
	ID           string
	Name         string
	Ciphertext   []byte
	Proof        []byte
	PublicRadius int64
	// PublicExtra is the unused second public value, always 0 today.
	PublicExtra int64
	Category    string
}

// EncryptedInput is a ciphertext bound to a contract and an owner.
type EncryptedInput struct {
	Ciphertext []byte
	Proof      []byte
}

// SubmitFunc posts decrypted values and their proof on-chain.
type SubmitFunc func(ctx context.Context, clearValues []byte, proof []byte) error

// FHEService is the external encryption and decryption-proof service.
type FHEService interface {
	Initializer
	Encrypter
	Decrypter
}

type Initializer interface {
	Initialize(ctx context.Context) error
}

type Encrypter interface {
	Encrypt(ctx context.Context, contractAddress string, ownerAddress string, value int64) (*EncryptedInput, error)
}

type Decrypter interface {
	// DecryptWithProof decrypts handles, builds the proof and hands both to submit.
	DecryptWithProof(ctx context.Context, handles []string, contractAddress string, submit SubmitFunc) error
}

// MapSink receives player markers. It never feeds back into the game.
type MapSink interface {
	PlaceMarker(ctx context.Context, position types.Position) error
}
