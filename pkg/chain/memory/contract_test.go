package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "0x00000000000000000000000000000000000000a1"

func newTestContract() (*Contract, *FHE, *Signer) {
	contract := NewContract(NewContractOptions{Now: func() time.Time { return time.Unix(1700000000, 0) }})
	fhe := NewFHE(contract)
	return contract, fhe, contract.SignerFor(owner)
}

func createEvent(t *testing.T, ctx context.Context, contract *Contract, fhe *FHE, signer *Signer, id string, value int64) {
	t.Helper()
	address, err := contract.Address(ctx)
	require.NoError(t, err)
	input, err := fhe.Encrypt(ctx, address, owner, value)
	require.NoError(t, err)
	tx, err := signer.CreateEvent(ctx, chain.CreateEventParams{
		ID:           id,
		Name:         "Park Meetup",
		Ciphertext:   input.Ciphertext,
		Proof:        input.Proof,
		PublicRadius: 100,
		Category:     chain.EventCategory,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Wait(ctx))
}

func TestContract_CreateAndTrigger(t *testing.T) {
	ctx := context.Background()
	contract, fhe, signer := newTestContract()
	require.NoError(t, fhe.Initialize(ctx))

	createEvent(t, ctx, contract, fhe, signer, "event-1", 12345)

	ids, err := contract.ListEventIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"event-1"}, ids)

	record, err := contract.GetEventRecord(ctx, "event-1")
	require.NoError(t, err)
	assert.Equal(t, "Park Meetup", record.Name)
	assert.Equal(t, int64(100), record.PublicRadius)
	assert.Equal(t, "Game Event", record.Description)
	assert.Equal(t, int64(1700000000), record.Timestamp)
	assert.False(t, record.Triggered)

	handle, err := contract.GetEncryptedHandle(ctx, "event-1")
	require.NoError(t, err)
	address, _ := contract.Address(ctx)

	err = fhe.DecryptWithProof(ctx, []string{handle}, address, func(ctx context.Context, clearValues []byte, proof []byte) error {
		tx, err := signer.SubmitVerification(ctx, "event-1", clearValues, proof)
		if err != nil {
			return err
		}
		return tx.Wait(ctx)
	})
	require.NoError(t, err)

	record, err = contract.GetEventRecord(ctx, "event-1")
	require.NoError(t, err)
	assert.True(t, record.Triggered)
	assert.Equal(t, int64(12345), record.RevealedValue)
}

func TestContract_RejectsForgedProof(t *testing.T) {
	ctx := context.Background()
	contract, fhe, signer := newTestContract()
	require.NoError(t, fhe.Initialize(ctx))
	createEvent(t, ctx, contract, fhe, signer, "event-1", 7)

	tx, err := signer.SubmitVerification(ctx, "event-1", encodeValue(7), []byte("forged"))
	require.NoError(t, err)
	err = tx.Wait(ctx)
	assert.True(t, errors.Is(err, chain.ErrProofRejected))

	record, _ := contract.GetEventRecord(ctx, "event-1")
	assert.False(t, record.Triggered)
}

func TestContract_RejectsInputFromAnotherOwner(t *testing.T) {
	ctx := context.Background()
	contract, fhe, _ := newTestContract()
	require.NoError(t, fhe.Initialize(ctx))
	address, _ := contract.Address(ctx)

	input, err := fhe.Encrypt(ctx, address, owner, 1)
	require.NoError(t, err)
	tx, err := contract.SignerFor("0x00000000000000000000000000000000000000b2").CreateEvent(ctx, chain.CreateEventParams{
		ID:         "event-1",
		Ciphertext: input.Ciphertext,
		Proof:      input.Proof,
	})
	require.NoError(t, err)
	assert.Error(t, tx.Wait(ctx))

	ids, _ := contract.ListEventIDs(ctx)
	assert.Empty(t, ids)
}

func TestContract_DuplicateIDReverts(t *testing.T) {
	ctx := context.Background()
	contract, fhe, signer := newTestContract()
	require.NoError(t, fhe.Initialize(ctx))
	createEvent(t, ctx, contract, fhe, signer, "event-1", 1)

	address, _ := contract.Address(ctx)
	input, _ := fhe.Encrypt(ctx, address, owner, 2)
	tx, err := signer.CreateEvent(ctx, chain.CreateEventParams{ID: "event-1", Ciphertext: input.Ciphertext, Proof: input.Proof})
	require.NoError(t, err)
	assert.Error(t, tx.Wait(ctx))
}

func TestContract_UnknownEvent(t *testing.T) {
	contract, _, _ := newTestContract()
	_, err := contract.GetEventRecord(context.Background(), "missing")
	assert.True(t, errors.Is(err, chain.ErrNotFound))
	_, err = contract.GetEncryptedHandle(context.Background(), "missing")
	assert.True(t, errors.Is(err, chain.ErrNotFound))
}

func TestContract_Availability(t *testing.T) {
	contract, _, _ := newTestContract()
	available, err := contract.CheckAvailability(context.Background())
	require.NoError(t, err)
	assert.True(t, available)

	contract.SetAvailable(false)
	available, err = contract.CheckAvailability(context.Background())
	require.NoError(t, err)
	assert.False(t, available)
}

func TestSigner_Reject(t *testing.T) {
	_, _, signer := newTestContract()
	signer.Reject(true)
	_, err := signer.CreateEvent(context.Background(), chain.CreateEventParams{ID: "event-1"})
	assert.True(t, chain.IsUserRejected(err))
	_, err = signer.SubmitVerification(context.Background(), "event-1", nil, nil)
	assert.True(t, chain.IsUserRejected(err))
}

func TestFHE_RequiresInitialize(t *testing.T) {
	contract, fhe, _ := newTestContract()
	address, _ := contract.Address(context.Background())
	_, err := fhe.Encrypt(context.Background(), address, owner, 1)
	assert.Error(t, err)

	fhe.FailInitialize(errors.New("relayer down"))
	assert.Error(t, fhe.Initialize(context.Background()))
	assert.Equal(t, 1, fhe.InitializeCalls())
}

func TestTx_WaitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, (&tx{hash: "0x1"}).Wait(ctx), context.Canceled)
}
