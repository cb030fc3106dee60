package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mocks "github.com/cbodonnell/hideseek/mocks/github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type triggererFixture struct {
	reader    *mocks.ReadOnlyContract
	signer    *mocks.SignerContract
	fhe       *mocks.FHEService
	store     *fakeRefresher
	history   *fakeRecorder
	statuses  func() []string
	triggerer *Triggerer
}

func newTriggererFixture(t *testing.T, gate *fakeGate) *triggererFixture {
	f := &triggererFixture{
		reader:  mocks.NewReadOnlyContract(t),
		signer:  mocks.NewSignerContract(t),
		fhe:     mocks.NewFHEService(t),
		store:   &fakeRefresher{},
		history: &fakeRecorder{},
	}
	broadcaster, seen := recordingBroadcaster()
	f.statuses = func() []string { return messages(seen()) }
	f.triggerer = NewTriggerer(NewTriggererOptions{
		Gate:     gate,
		Reader:   f.reader,
		Signer:   f.signer,
		FHE:      f.fhe,
		Store:    f.store,
		History:  f.history,
		Notifier: broadcaster,
	})
	return f
}

// submitWith returns a DecryptWithProof result that hands clear and proof
// to the submit callback.
func submitWith(clear, proof []byte) func(chain.SubmitFunc) error {
	return func(submit chain.SubmitFunc) error {
		return submit(context.Background(), clear, proof)
	}
}

func TestTriggerer_Trigger(t *testing.T) {
	f := newTriggererFixture(t, readyGate())
	tx := mocks.NewPendingTx(t)
	tx.On("Hash").Return("0xverify")
	tx.On("Wait", mock.Anything).Return(nil).Once()

	f.reader.On("GetEventRecord", mock.Anything, "event-1").Return(&types.EventRecord{Name: "Park Meetup"}, nil).Once()
	f.reader.On("Address", mock.Anything).Return("0xcontract", nil).Once()
	f.reader.On("GetEncryptedHandle", mock.Anything, "event-1").Return("0xhandle", nil).Once()
	f.fhe.On("DecryptWithProof", mock.Anything, []string{"0xhandle"}, "0xcontract", mock.Anything).
		Return(submitWith([]byte{0x30, 0x39}, []byte{0xaa})).Once()
	f.signer.On("SubmitVerification", mock.Anything, "event-1", []byte{0x30, 0x39}, []byte{0xaa}).Return(tx, nil).Once()

	result, err := f.triggerer.Trigger(context.Background(), "event-1")
	require.NoError(t, err)
	assert.Equal(t, &TriggerResult{ID: "event-1", TxHash: "0xverify"}, result)

	assert.Equal(t, []string{"Triggering event...", "Verifying trigger...", "Event triggered!"}, f.statuses())
	assert.Equal(t, 1, f.store.Calls())
	assert.Equal(t, []string{"Triggered event: event-1"}, f.history.Entries())
	assert.Equal(t, PhaseSucceeded, f.triggerer.Phase())
}

func TestTriggerer_AlreadyTriggered(t *testing.T) {
	f := newTriggererFixture(t, readyGate())
	f.reader.On("GetEventRecord", mock.Anything, "event-1").Return(&types.EventRecord{Triggered: true, RevealedValue: 12345}, nil).Once()

	result, err := f.triggerer.Trigger(context.Background(), "event-1")
	require.NoError(t, err)
	assert.True(t, result.AlreadyTriggered)
	assert.Empty(t, result.TxHash)

	assert.Equal(t, []string{"Triggering event...", "Event already triggered"}, f.statuses())
	f.signer.AssertNotCalled(t, "SubmitVerification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.fhe.AssertNotCalled(t, "DecryptWithProof", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.history.Entries())
}

func TestTriggerer_Preconditions(t *testing.T) {
	f := newTriggererFixture(t, &fakeGate{})
	_, err := f.triggerer.Trigger(context.Background(), "event-1")
	assert.True(t, IsConnectionRequired(err))
	assert.Equal(t, []string{"Connect wallet first"}, f.statuses())

	f = newTriggererFixture(t, &fakeGate{connected: true, address: "0xowner"})
	_, err = f.triggerer.Trigger(context.Background(), "event-1")
	assert.True(t, IsNotReady(err))
	assert.Equal(t, []string{"FHE not initialized"}, f.statuses())
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestTriggerer_Failures(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		setup     func(f *triggererFixture, t *testing.T)
		wantCause TriggerCause
	}{
		{
			name:      "empty id",
			id:        "",
			setup:     func(f *triggererFixture, t *testing.T) {},
			wantCause: TriggerCauseUnknown,
		},
		{
			name: "record fetch times out",
			id:   "event-1",
			setup: func(f *triggererFixture, t *testing.T) {
				f.reader.On("GetEventRecord", mock.Anything, "event-1").Return(nil, timeoutError{}).Once()
			},
			wantCause: TriggerCauseNetwork,
		},
		{
			name: "relayer unavailable",
			id:   "event-1",
			setup: func(f *triggererFixture, t *testing.T) {
				f.reader.On("GetEventRecord", mock.Anything, "event-1").Return(&types.EventRecord{}, nil).Once()
				f.reader.On("Address", mock.Anything).Return("0xcontract", nil).Once()
				f.reader.On("GetEncryptedHandle", mock.Anything, "event-1").Return("0xhandle", nil).Once()
				f.fhe.On("DecryptWithProof", mock.Anything, []string{"0xhandle"}, "0xcontract", mock.Anything).
					Return(fmt.Errorf("public decrypt: %w", chain.ErrUnavailable)).Once()
			},
			wantCause: TriggerCauseNetwork,
		},
		{
			name: "user rejects verification",
			id:   "event-1",
			setup: func(f *triggererFixture, t *testing.T) {
				f.reader.On("GetEventRecord", mock.Anything, "event-1").Return(&types.EventRecord{}, nil).Once()
				f.reader.On("Address", mock.Anything).Return("0xcontract", nil).Once()
				f.reader.On("GetEncryptedHandle", mock.Anything, "event-1").Return("0xhandle", nil).Once()
				f.fhe.On("DecryptWithProof", mock.Anything, []string{"0xhandle"}, "0xcontract", mock.Anything).
					Return(submitWith([]byte{1}, []byte{2})).Once()
				f.signer.On("SubmitVerification", mock.Anything, "event-1", []byte{1}, []byte{2}).Return(nil, chain.ErrUserRejected).Once()
			},
			wantCause: TriggerCauseRejected,
		},
		{
			name: "contract refuses proof",
			id:   "event-1",
			setup: func(f *triggererFixture, t *testing.T) {
				tx := mocks.NewPendingTx(t)
				tx.On("Hash").Return("0xverify")
				tx.On("Wait", mock.Anything).Return(chain.ErrProofRejected).Once()
				f.reader.On("GetEventRecord", mock.Anything, "event-1").Return(&types.EventRecord{}, nil).Once()
				f.reader.On("Address", mock.Anything).Return("0xcontract", nil).Once()
				f.reader.On("GetEncryptedHandle", mock.Anything, "event-1").Return("0xhandle", nil).Once()
				f.fhe.On("DecryptWithProof", mock.Anything, []string{"0xhandle"}, "0xcontract", mock.Anything).
					Return(submitWith([]byte{1}, []byte{2})).Once()
				f.signer.On("SubmitVerification", mock.Anything, "event-1", []byte{1}, []byte{2}).Return(tx, nil).Once()
			},
			wantCause: TriggerCauseProofRejected,
		},
		{
			name: "handle lookup fails",
			id:   "event-1",
			setup: func(f *triggererFixture, t *testing.T) {
				f.reader.On("GetEventRecord", mock.Anything, "event-1").Return(&types.EventRecord{}, nil).Once()
				f.reader.On("Address", mock.Anything).Return("0xcontract", nil).Once()
				f.reader.On("GetEncryptedHandle", mock.Anything, "event-1").Return("", errors.New("execution reverted")).Once()
			},
			wantCause: TriggerCauseUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTriggererFixture(t, readyGate())
			tt.setup(f, t)

			_, err := f.triggerer.Trigger(context.Background(), tt.id)
			require.Error(t, err)

			var failed *TriggerFailedError
			require.True(t, errors.As(err, &failed))
			assert.Equal(t, tt.wantCause, failed.Cause)

			statuses := f.statuses()
			require.NotEmpty(t, statuses)
			assert.Equal(t, "Trigger failed", statuses[len(statuses)-1])
			assert.Equal(t, PhaseFailed, f.triggerer.Phase())
			assert.Zero(t, f.store.Calls())
			assert.Empty(t, f.history.Entries())
		})
	}
}

func TestTriggerer_InFlightIsNoOp(t *testing.T) {
	f := newTriggererFixture(t, readyGate())
	fetching := make(chan struct{})
	release := make(chan struct{})
	f.reader.On("GetEventRecord", mock.Anything, "event-1").Run(func(mock.Arguments) {
		close(fetching)
		<-release
	}).Return(&types.EventRecord{Triggered: true}, nil).Once()

	done := make(chan error)
	go func() {
		_, err := f.triggerer.Trigger(context.Background(), "event-1")
		done <- err
	}()

	<-fetching
	_, err := f.triggerer.Trigger(context.Background(), "event-2")
	assert.ErrorIs(t, err, ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	f.reader.AssertNumberOfCalls(t, "GetEventRecord", 1)
}

func TestTriggerer_CallerCancelledAfterSubmission(t *testing.T) {
	f := newTriggererFixture(t, readyGate())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tx := mocks.NewPendingTx(t)
	tx.On("Hash").Return("0xverify")
	tx.On("Wait", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	})).Return(nil).Once()

	f.reader.On("GetEventRecord", mock.Anything, "event-1").Return(&types.EventRecord{Name: "Park Meetup"}, nil).Once()
	f.reader.On("Address", mock.Anything).Return("0xcontract", nil).Once()
	f.reader.On("GetEncryptedHandle", mock.Anything, "event-1").Return("0xhandle", nil).Once()
	f.fhe.On("DecryptWithProof", mock.Anything, []string{"0xhandle"}, "0xcontract", mock.Anything).
		Return(func(submit chain.SubmitFunc) error {
			if err := submit(ctx, []byte{0x2a}, []byte{0xaa}); err != nil {
				return err
			}
			return ctx.Err()
		}).Once()
	f.signer.On("SubmitVerification", mock.Anything, "event-1", []byte{0x2a}, []byte{0xaa}).Run(func(mock.Arguments) {
		cancel()
	}).Return(tx, nil).Once()

	result, err := f.triggerer.Trigger(ctx, "event-1")
	require.NoError(t, err)
	assert.Equal(t, "0xverify", result.TxHash)

	assert.Equal(t, []string{"Triggering event...", "Verifying trigger...", "Event triggered!"}, f.statuses())
	assert.Equal(t, 1, f.store.Calls())
	assert.Equal(t, []string{"Triggered event: event-1"}, f.history.Entries())
}
