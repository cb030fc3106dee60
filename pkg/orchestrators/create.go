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
	creatingMessage        = "Creating event with FHE..."
	awaitingConfirmMessage = "Waiting for confirmation..."
	createdMessage         = "Event created!"
	rejectedMessage        = "Transaction rejected"
	creationFailedMessage  = "Creation failed"
)

// CreateRequest is the raw form input. Location and Radius are parsed
// leniently; unparseable text becomes 0.
type CreateRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Radius   string `json:"radius"`
}

type CreateResult struct {
	ID     string `json:"id"`
	TxHash string `json:"txHash"`
	Radius int64  `json:"radius"`
}

// Creator encrypts a location code and submits a new event.
type Creator struct {
	gate     Gate
	reader   chain.ReadOnlyContract
	signer   chain.SignerContract
	fhe      chain.Encrypter
	store    Refresher
	history  Recorder
	notifier Notifier
	ids      IDGenerator
	guard    *guard
	logger   *log.Logger
}

type NewCreatorOptions struct {
	Gate     Gate
	Reader   chain.ReadOnlyContract
	Signer   chain.SignerContract
	FHE      chain.Encrypter
	Store    Refresher
	History  Recorder
	Notifier Notifier
	// IDs defaults to timestamp ids
	IDs IDGenerator
}

func NewCreator(opts NewCreatorOptions) *Creator {
	ids := opts.IDs
	if ids == nil {
		ids = &TimestampIDs{}
	}
	return &Creator{
		gate:     opts.Gate,
		reader:   opts.Reader,
		signer:   opts.Signer,
		fhe:      opts.FHE,
		store:    opts.Store,
		history:  opts.History,
		notifier: opts.Notifier,
		ids:      ids,
		guard:    newGuard(),
		logger:   log.With("component", "creator"),
	}
}

// Phase returns the phase of the last or current creation.
func (c *Creator) Phase() Phase {
	return c.guard.current()
}

// Create runs one creation. It returns ErrInFlight without side effects
// while another creation is pending.
func (c *Creator) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := checkSession(c.gate, c.notifier); err != nil {
		return nil, err
	}
	if !c.guard.begin() {
		c.logger.Debug("Ignoring create request for %q, a creation is in flight", req.Name)
		return nil, ErrInFlight
	}

	ctx, span := tracer.Start(ctx, "Creator.Create", trace.WithAttributes(attribute.String("event.name", req.Name)))
	result, err := c.create(ctx, req)
	c.guard.finish(err)
	endSpan(span, err)
	return result, err
}

func (c *Creator) create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	c.notifier.Pending(creatingMessage)

	owner := c.gate.Address()
	location := ParseInt(req.Location)
	radius := ParseInt(req.Radius)
	id := c.ids.Next()
	c.logger.Debug("Creating event %s (%q) with radius %d", id, req.Name, radius)

	// Both values end up as unsigned integers on-chain.
	if location < 0 || radius < 0 {
		return nil, c.fail(fmt.Errorf("location and radius must not be negative, got %d and %d", location, radius))
	}

	contractAddress, err := c.reader.Address(ctx)
	if err != nil {
		return nil, c.fail(fmt.Errorf("failed to get contract address: %w", err))
	}

	encrypted, err := c.fhe.Encrypt(ctx, contractAddress, owner, location)
	if err != nil {
		return nil, c.fail(fmt.Errorf("failed to encrypt location: %w", err))
	}

	tx, err := c.signer.CreateEvent(ctx, chain.CreateEventParams{
		ID:           id,
		Name:         req.Name,
		Ciphertext:   encrypted.Ciphertext,
		Proof:        encrypted.Proof,
		PublicRadius: radius,
		PublicExtra:  0,
		Category:     chain.EventCategory,
	})
	if err != nil {
		return nil, c.fail(fmt.Errorf("failed to submit event: %w", err))
	}

	// A submitted transaction can't be called back, so the remaining steps
	// outlive the caller.
	ctx = context.WithoutCancel(ctx)
	c.notifier.Pending(awaitingConfirmMessage)
	if err := tx.Wait(ctx); err != nil {
		return nil, c.fail(fmt.Errorf("transaction %s failed: %w", tx.Hash(), err))
	}
	c.notifier.Success(createdMessage)
	c.logger.Info("Event %s created in %s", id, tx.Hash())

	// The store broadcasts its own load failure; the event exists regardless.
	if err := c.store.Refresh(ctx); err != nil {
		c.logger.Warn("Failed to refresh events after creating %s: %v", id, err)
	}
	c.history.Append("Created event: " + req.Name)

	return &CreateResult{
		ID:     id,
		TxHash: tx.Hash(),
		Radius: radius,
	}, nil
}

func (c *Creator) fail(err error) error {
	rejected := chain.IsUserRejected(err)
	if rejected {
		c.notifier.Error(rejectedMessage)
	} else {
		c.notifier.Error(creationFailedMessage)
	}
	c.logger.Error("Event creation failed: %v", err)
	return &CreationFailedError{UserRejected: rejected, Err: err}
}
