package engine

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"tcsgo-engine/internal/caseopen"
	"tcsgo-engine/internal/catalog"
	"tcsgo-engine/internal/identity"
	"tcsgo-engine/internal/model"
	"tcsgo-engine/internal/notify"
	"tcsgo-engine/internal/pricing"
	"tcsgo-engine/internal/store"
	"tcsgo-engine/internal/tradelock"
	"tcsgo-engine/pkg/apierror"
)

// Identity names the caller an operation acts for. The platform string is
// normalized; the username must be present.
type Identity struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
}

// Engine is the inventory ledger and transaction engine. It is internally
// single-writer: a mutex serializes every load-mutate-save cycle, so
// overlapping calls cannot lose each other's updates.
type Engine struct {
	store    store.LedgerStore
	catalog  *catalog.Catalog
	oracle   *pricing.Oracle
	lock     tradelock.Policy
	source   caseopen.Source
	notifier notify.Notifier
	results  notify.ResultSlot
	deduper  notify.Deduper
	keyID    string
	sellTTL  time.Duration
	clock    func() time.Time

	mu sync.Mutex
}

// Options configures an Engine. Store and Catalog are required; everything
// else has a sensible default or is optional.
type Options struct {
	Store    store.LedgerStore
	Catalog  *catalog.Catalog
	Source   caseopen.Source
	Notifier notify.Notifier
	Results  notify.ResultSlot
	Deduper  notify.Deduper
	LockDays int
	SellTTL  time.Duration
	KeyID    string
	Clock    func() time.Time
}

// New creates an engine.
func New(opts Options) *Engine {
	if opts.Source == nil {
		opts.Source = caseopen.CryptoSource{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.SellTTL <= 0 {
		opts.SellTTL = 60 * time.Second
	}
	if opts.KeyID == "" {
		opts.KeyID = "case-key"
	}
	return &Engine{
		store:    opts.Store,
		catalog:  opts.Catalog,
		oracle:   pricing.New(opts.Catalog.Prices()),
		lock:     tradelock.New(opts.LockDays),
		source:   opts.Source,
		notifier: opts.Notifier,
		results:  opts.Results,
		deduper:  opts.Deduper,
		keyID:    opts.KeyID,
		sellTTL:  opts.SellTTL,
		clock:    opts.Clock,
	}
}

// mutation is one operation body. It runs against the loaded document and
// the resolved account; returning dirty=true requests a save even when the
// operation itself fails (the sell workflow's lazy expiry needs this).
type mutation func(ledger *model.Ledger, acct *model.Account, now time.Time) (data interface{}, dirty bool, err error)

// commit is the protocol every mutating operation goes through: validate,
// load, resolve, mutate, verified save, envelope, dual-channel delivery.
// No mutation reaches disk before it has fully computed its result.
func (e *Engine) commit(ctx context.Context, opType, eventID string, id Identity, fn mutation) *model.Envelope {
	start := e.clock()
	platform := identity.NormalizePlatform(id.Platform)
	username := strings.TrimSpace(id.Username)

	env := &model.Envelope{
		Type:     opType,
		EventID:  eventID,
		Platform: platform,
		Username: username,
	}

	data, err := e.run(ctx, eventID, platform, username, fn)
	if err != nil {
		apiErr := apierror.From(err)
		env.Error = &model.ErrorBody{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details}
	} else {
		env.Ok = true
		env.Data = data
	}
	env.Timings = model.Timings{MsTotal: e.clock().Sub(start).Milliseconds()}

	e.deliver(ctx, env)
	return env
}

func (e *Engine) run(ctx context.Context, eventID, platform, username string, fn mutation) (interface{}, error) {
	if username == "" {
		return nil, apierror.Validation(CodeMissingUsername, "username is required")
	}

	if e.deduper != nil && eventID != "" {
		seen, err := e.deduper.Seen(ctx, eventID)
		if err != nil {
			log.Printf("[Engine] dedup check failed for event %s: %v", eventID, err)
		} else if seen {
			return nil, apierror.State(CodeDuplicateEvent, "event already processed")
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ledger, err := e.store.Load(ctx)
	if err != nil {
		return nil, apierror.Persistence(CodeLoadError, err.Error())
	}

	now := e.clock().UTC()
	key := identity.CanonicalKey(platform, username)
	acct := identity.Resolve(ledger, key, now)

	data, dirty, opErr := fn(ledger, acct, now)
	if opErr != nil && !dirty {
		return nil, opErr
	}

	acct.LastModified = now
	ledger.LastModified = now
	if err := e.store.Save(ctx, ledger); err != nil {
		if opErr != nil {
			// The failed operation's side effect (e.g. clearing an expired
			// sell) was not persisted; it will be retried lazily next call.
			log.Printf("[Engine] save after failed op: %v", err)
			return nil, opErr
		}
		return nil, apierror.Persistence(CodeSaveError, err.Error())
	}
	return data, opErr
}

// deliver pushes the envelope to both result channels. Delivery is
// best-effort per channel; a caller using either one observes the outcome.
func (e *Engine) deliver(ctx context.Context, env *model.Envelope) {
	if e.results != nil && env.EventID != "" {
		if err := e.results.Put(ctx, env); err != nil {
			log.Printf("[Engine] result slot store failed for event %s: %v", env.EventID, err)
		}
	}
	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, env); err != nil {
			log.Printf("[Engine] notify failed for event %s: %v", env.EventID, err)
		}
	}
}

// Result reads the polled channel for an eventId.
func (e *Engine) Result(ctx context.Context, eventID string) (*model.Envelope, error) {
	if e.results == nil {
		return nil, notify.ErrNoResult
	}
	return e.results.Get(ctx, eventID)
}

// Reconcile merges linked identities into canonical accounts (admin
// operation, fed by the external linking service's export).
func (e *Engine) Reconcile(ctx context.Context, users []identity.LinkedUser) (identity.MergeReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ledger, err := e.store.Load(ctx)
	if err != nil {
		return identity.MergeReport{}, apierror.Persistence(CodeLoadError, err.Error())
	}

	now := e.clock().UTC()
	report := identity.Reconcile(ledger, users, now)

	ledger.LastModified = now
	if err := e.store.Save(ctx, ledger); err != nil {
		return identity.MergeReport{}, apierror.Persistence(CodeSaveError, err.Error())
	}
	return report, nil
}
