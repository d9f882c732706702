// Package upsert implements the reconciliation core: given a mapped contact
// draft, decide whether the target system already holds a matching contact
// and create, update, or tag it without clobbering prior state.
//
// The engine guarantees that within one run it never creates two contacts
// for the same (club, email): a create rejected as a duplicate is recovered
// by resolving the conflicting contact and falling back to the update path.
package upsert

import (
	"context"
	"fmt"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"
)

// Directory is the target-system surface the engine needs. Implementations
// must return ErrNotFound for a genuine empty lookup and a distinct error
// for transport failures, and surface duplicate create rejections as
// *DuplicateError.
type Directory interface {
	// LookupByEmail resolves a contact by email within the club's location.
	LookupByEmail(ctx context.Context, club model.ClubContext, email string) (*model.TargetContact, error)

	// GetContact re-reads a contact by id. The engine always re-reads
	// immediately before an update so it never merges onto stale tag state.
	GetContact(ctx context.Context, club model.ClubContext, id string) (*model.TargetContact, error)

	// CreateContact creates a new contact from the draft.
	CreateContact(ctx context.Context, club model.ClubContext, draft model.ContactDraft) (*model.TargetContact, error)

	// UpdateContact writes the merged contact state.
	UpdateContact(ctx context.Context, club model.ClubContext, id string, contact model.ContactDraft) error

	// AddTags appends tags to a contact without touching its fields, for
	// records whose only purpose is tagging.
	AddTags(ctx context.Context, club model.ClubContext, id string, tags []string) error
}

// Engine orchestrates lookup, merge, and write for one record at a time.
type Engine struct {
	dir    Directory
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New constructs an Engine over the given directory.
func New(dir Directory, opts ...Option) *Engine {
	e := &Engine{
		dir:    dir,
		logger: logger.Get().Named("upsert"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Upsert reconciles one draft against the target system and reports the
// per-record outcome. Per-record failures are folded into the result, never
// returned, so a batch can keep going.
func (e *Engine) Upsert(ctx context.Context, club model.ClubContext, memberID string, draft model.ContactDraft) model.RecordResult {
	res := model.RecordResult{MemberID: memberID, Email: draft.Email}

	// A draft without an identity never touches the target system; matching
	// on anything weaker risks cross-linking unrelated contacts.
	if model.NormalizeEmail(draft.Email) == "" {
		res.Outcome = model.OutcomeError
		res.Reason = "unmappable record: missing email"
		return res
	}

	existing, err := e.dir.LookupByEmail(ctx, club, draft.Email)
	switch {
	case err == nil:
		return e.update(ctx, club, existing.ID, draft, res)
	case isNotFound(err):
		return e.create(ctx, club, draft, res)
	default:
		// Transport-level lookup failure is retryable on the next run; it
		// must not be mistaken for not-found or we would create duplicates.
		res.Outcome = model.OutcomeError
		res.Reason = fmt.Sprintf("lookup failed: %v", err)
		return res
	}
}

// create attempts a fresh contact and recovers from duplicate rejections by
// re-resolving the conflicting contact and updating it instead.
func (e *Engine) create(ctx context.Context, club model.ClubContext, draft model.ContactDraft, res model.RecordResult) model.RecordResult {
	created, err := e.dir.CreateContact(ctx, club, draft)
	if err == nil {
		e.logger.Debug(ctx, "contact created",
			logger.String("club", club.Number),
			logger.String("email", draft.Email),
			logger.String("contactID", created.ID),
		)
		res.Outcome = model.OutcomeCreated
		return res
	}

	dup, ok := asDuplicate(err)
	if !ok {
		res.Outcome = model.OutcomeError
		res.Reason = fmt.Sprintf("write failed: %v", err)
		return res
	}

	// The target already holds this identity: either a race against our own
	// lookup or a lookup blind spot. Resolve the winner and update it.
	id := dup.ContactID
	if id == "" {
		existing, lookupErr := e.dir.LookupByEmail(ctx, club, draft.Email)
		if lookupErr != nil {
			res.Outcome = model.OutcomeError
			res.Reason = fmt.Sprintf("%v: %v", ErrDuplicateUnresolved, lookupErr)
			return res
		}
		id = existing.ID
	}

	e.logger.Warn(ctx, "create rejected as duplicate, merging into existing contact",
		logger.String("club", club.Number),
		logger.String("email", draft.Email),
		logger.String("contactID", id),
	)

	recovered := e.update(ctx, club, id, draft, res)
	if recovered.Outcome == model.OutcomeError {
		recovered.Reason = fmt.Sprintf("%v: %s", ErrDuplicateUnresolved, recovered.Reason)
	}
	return recovered
}

// update re-reads the contact, merges tags and custom fields, and writes the
// result. A tag-only draft whose tag is already present is a no-op reported
// as already_tagged; a draft carrying custom fields always writes.
func (e *Engine) update(ctx context.Context, club model.ClubContext, id string, draft model.ContactDraft, res model.RecordResult) model.RecordResult {
	current, err := e.dir.GetContact(ctx, club, id)
	if err != nil {
		res.Outcome = model.OutcomeError
		res.Reason = fmt.Sprintf("write failed: re-read before update: %v", err)
		return res
	}

	mergedTags, added := MergeTags(current.Tags, draft.Tags)
	mergedFields, _ := MergeCustomFields(current.CustomFields, draft.CustomFields)

	// A tag-only record either no-ops or goes through the lighter tag write.
	if len(draft.CustomFields) == 0 {
		if !added {
			res.Outcome = model.OutcomeAlreadyTagged
			return res
		}
		if err := e.dir.AddTags(ctx, club, id, draft.Tags); err != nil {
			res.Outcome = model.OutcomeError
			res.Reason = fmt.Sprintf("write failed: %v", err)
			return res
		}
		res.Outcome = model.OutcomeUpdated
		return res
	}

	merged := draft
	merged.Tags = mergedTags
	merged.CustomFields = mergedFields

	if err := e.dir.UpdateContact(ctx, club, id, merged); err != nil {
		res.Outcome = model.OutcomeError
		res.Reason = fmt.Sprintf("write failed: %v", err)
		return res
	}

	e.logger.Debug(ctx, "contact updated",
		logger.String("club", club.Number),
		logger.String("email", draft.Email),
		logger.String("contactID", id),
	)
	res.Outcome = model.OutcomeUpdated
	return res
}
