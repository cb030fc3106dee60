package orchestrators

import (
	"context"
	"fmt"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	triggeringMessage       = "Triggering event..."
	alreadyTriggeredMessage = "Event already triggered"
	verifyingMessage        = "Verifying trigger..."
	triggeredMessage        = "Event triggered!"
	triggerFailedMessage    = "Trigger failed"
)

type TriggerResult struct {
	ID               string `json:"id"`
	AlreadyTriggered bool   `json:"alreadyTriggered"`
	TxHash           string `json:"txHash,omitempty"`
}

// Triggerer reveals an event's location through a public decryption
// proof verified by the contract.
type Triggerer struct {
	gate     Gate
	reader   chain.ReadOnlyContract
	signer   chain.SignerContract
	fhe      chain.Decrypter
	store    Refresher
	history  Recorder
	notifier Notifier
	guard    *guard
	logger   *log.Logger
}

type NewTriggererOptions struct {
	Gate     Gate
	Reader   chain.ReadOnlyContract
	Signer   chain.SignerContract
	FHE      chain.Decrypter
	Store    Refresher
	History  Recorder
	Notifier Notifier
}

func NewTriggerer(opts NewTriggererOptions) *Triggerer {
	return &Triggerer{
		gate:     opts.Gate,
		reader:   opts.Reader,
		signer:   opts.Signer,
		fhe:      opts.FHE,
		store:    opts.Store,
		history:  opts.History,
		notifier: opts.Notifier,
		guard:    newGuard(),
		logger:   log.With("component", "triggerer"),
	}
}

func (t *Triggerer) Phase() Phase {
	return t.guard.current()
}

// Trigger verifies event id on-chain. An event whose live record is
// already triggered succeeds without a transaction.
func (t *Triggerer) Trigger(ctx context.Context, id string) (*TriggerResult, error) {
	if err := checkSession(t.gate, t.notifier); err != nil {
		return nil, err
	}
	if !t.guard.begin() {
		t.logger.Debug("Ignoring trigger request for %s, a trigger is in flight", id)
		return nil, ErrInFlight
	}

	ctx, span := tracer.Start(ctx, "Triggerer.Trigger", trace.WithAttributes(attribute.String("event.id", id)))
	result, err := t.trigger(ctx, id)
	t.guard.finish(err)
	endSpan(span, err)
	return result, err
}

func (t *Triggerer) trigger(ctx context.Context, id string) (*TriggerResult, error) {
	t.notifier.Pending(triggeringMessage)

	if id == "" {
		return nil, t.fail(fmt.Errorf("event id is required"))
	}

	// The cached copy may be stale; another client could have triggered it.
	record, err := t.reader.GetEventRecord(ctx, id)
	if err != nil {
		return nil, t.fail(fmt.Errorf("failed to fetch event %s: %w", id, err))
	}
	if record.Triggered {
		t.logger.Info("Event %s already triggered", id)
		t.notifier.Success(alreadyTriggeredMessage)
		return &TriggerResult{ID: id, AlreadyTriggered: true}, nil
	}

	contractAddress, err := t.reader.Address(ctx)
	if err != nil {
		return nil, t.fail(fmt.Errorf("failed to get contract address: %w", err))
	}

	handle, err := t.reader.GetEncryptedHandle(ctx, id)
	if err != nil {
		return nil, t.fail(fmt.Errorf("failed to fetch encrypted handle of %s: %w", id, err))
	}

	var txHash string
	confirmed := false
	submit := func(ctx context.Context, clearValues []byte, proof []byte) error {
		tx, err := t.signer.SubmitVerification(ctx, id, clearValues, proof)
		if err != nil {
			return fmt.Errorf("failed to submit verification: %w", err)
		}
		txHash = tx.Hash()
		t.logger.Debug("Verification of %s submitted in %s", id, txHash)
		// Once submitted the verification is awaited even if the caller
		// goes away.
		if err := tx.Wait(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("verification %s failed: %w", txHash, err)
		}
		confirmed = true
		return nil
	}
	if err := t.fhe.DecryptWithProof(ctx, []string{handle}, contractAddress, submit); err != nil {
		if !confirmed {
			return nil, t.fail(err)
		}
		t.logger.Warn("Ignoring decryption error after %s was confirmed: %v", txHash, err)
	}

	ctx = context.WithoutCancel(ctx)
	t.notifier.Pending(verifyingMessage)
	if err := t.store.Refresh(ctx); err != nil {
		t.logger.Warn("Failed to refresh events after triggering %s: %v", id, err)
	}
	t.notifier.Success(triggeredMessage)
	t.history.Append("Triggered event: " + id)
	t.logger.Info("Event %s triggered in %s", id, txHash)

	return &TriggerResult{ID: id, TxHash: txHash}, nil
}

func (t *Triggerer) fail(err error) error {
	cause := classifyTriggerCause(err)
	t.notifier.Error(triggerFailedMessage)
	t.logger.Error("Trigger failed (%s): %v", cause, err)
	return &TriggerFailedError{Cause: cause, Err: err}
}
