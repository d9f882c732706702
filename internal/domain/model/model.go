// Package model defines the entities shared across the sync pipeline:
// source-side member/service records, target-side CRM contacts, and the
// per-record/per-batch/per-run result values.
package model

import (
	"strings"
	"time"
)

// RecordKind identifies which source record set a sync pass covers.
type RecordKind string

// Record kinds mirrored from the source platform.
const (
	KindMembers          RecordKind = "members"
	KindCancelled        RecordKind = "cancelled"
	KindPastDue          RecordKind = "pastdue"
	KindServices         RecordKind = "services"
	KindInactiveServices RecordKind = "inactive-services"
)

// AllKinds lists every record kind in the order a full run processes them.
func AllKinds() []RecordKind {
	return []RecordKind{KindMembers, KindCancelled, KindPastDue, KindServices, KindInactiveServices}
}

// ClubContext scopes every fetch and write for one club/tenant. It is
// immutable input, loaded once per run; a record fetched for one club must
// never be written with another club's credentials or location.
type ClubContext struct {
	Number     string `koanf:"number"`
	LocationID string `koanf:"location_id"`
	Token      string `koanf:"token"`
}

// SourceRecord is a member or recurring-service entity from the source
// platform. It is read-only: fetched per run, mapped, then discarded.
// The status and date fields overlap because the upstream record shapes do.
type SourceRecord struct {
	MemberID   string
	Email      string
	FirstName  string
	LastName   string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string

	MembershipType string
	ServiceType    string

	Active       bool
	MemberStatus string
	JoinStatus   string

	SignDate         string
	MemberStatusDate string
	CancelDate       string
	NextBillingDate  string
	SaleDate         string
	InactiveDate     string

	SalesPerson string
}

// TargetContact is the CRM-side entity. ID is assigned by the target system
// on creation and immutable afterwards. Tags behave as a set; CustomFields
// hold one logical value per key.
type TargetContact struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	City         string
	State        string
	PostalCode   string
	Tags         []string
	CustomFields []CustomField
}

// CustomField is a single key/value pair on a contact. A later write for the
// same key overwrites the earlier value.
type CustomField struct {
	Key   string
	Value string
}

// ContactDraft is the mapped, write-ready shape of one source record.
type ContactDraft struct {
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	City         string
	State        string
	PostalCode   string
	Tags         []string
	CustomFields []CustomField
}

// Outcome classifies the result of syncing one record.
type Outcome string

// Per-record outcomes.
const (
	OutcomeCreated       Outcome = "created"
	OutcomeUpdated       Outcome = "updated"
	OutcomeAlreadyTagged Outcome = "already_tagged"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeError         Outcome = "error"
)

// ReasonExcludedType is the skip reason for records whose membership or
// service type sits in the configured exclusion set.
const ReasonExcludedType = "Excluded membership type"

// RecordResult is the per-record detail entry carried in a BatchResult.
// Reason is set for skipped and error outcomes.
type RecordResult struct {
	MemberID string  `json:"member_id"`
	Email    string  `json:"email,omitempty"`
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason,omitempty"`
}

// FetchStats reports what a paginated fetch actually did.
type FetchStats struct {
	Pages     int
	Fetched   int
	Truncated bool
	// Excluded holds the member IDs dropped by the exclusion filter so the
	// batch can count them as skipped with a reason.
	Excluded []string
}

// BatchResult aggregates one (club, kind) pass.
type BatchResult struct {
	Club      string         `json:"club"`
	Kind      RecordKind     `json:"kind"`
	Created   int            `json:"created"`
	Updated   int            `json:"updated"`
	Tagged    int            `json:"already_tagged"`
	Skipped   int            `json:"skipped"`
	Errors    int            `json:"errors"`
	Truncated bool           `json:"truncated,omitempty"`
	Details   []RecordResult `json:"details,omitempty"`
}

// Add records one per-record result in the aggregate counters and details.
func (b *BatchResult) Add(r RecordResult) {
	switch r.Outcome {
	case OutcomeCreated:
		b.Created++
	case OutcomeUpdated:
		b.Updated++
	case OutcomeAlreadyTagged:
		b.Tagged++
	case OutcomeSkipped:
		b.Skipped++
	case OutcomeError:
		b.Errors++
	}
	b.Details = append(b.Details, r)
}

// Total returns the number of per-record results recorded.
func (b *BatchResult) Total() int {
	return b.Created + b.Updated + b.Tagged + b.Skipped + b.Errors
}

// BatchFailure records a (club, kind) pass that could not fetch at all.
type BatchFailure struct {
	Club   string     `json:"club"`
	Kind   RecordKind `json:"kind"`
	Reason string     `json:"reason"`
}

// RunResult rolls batch results across clubs and kinds under one run ID.
// It is constructed once per run and never mutated after the run completes.
type RunResult struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Batches    []BatchResult  `json:"batches"`
	Failures   []BatchFailure `json:"failures,omitempty"`
}

// NormalizeEmail lowercases and trims an email for identity comparison.
// Contact matching is case-insensitive throughout.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
