// Package mapper turns a source record into a write-ready contact draft.
// Mapping is pure: no I/O, no clock, and it never fails on missing optional
// fields. Only a record with no email is unmappable, since email is the
// identity key the target system is matched on.
package mapper

import (
	"fmt"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
)

// FieldSpec binds one target custom-field key to a named source field.
type FieldSpec struct {
	Key    string `koanf:"key"`
	Source string `koanf:"source"`
}

// FieldMap is the ordered enumeration of custom fields written on every
// contact. The vocabulary differs between deployments, so it is configured
// rather than hard-coded; DefaultFieldMap covers the canonical set.
type FieldMap []FieldSpec

// DefaultFieldMap returns the canonical custom-field vocabulary.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		{Key: "member_id", Source: "memberId"},
		{Key: "club_number", Source: "club"},
		{Key: "membership_type", Source: "membershipType"},
		{Key: "service_type", Source: "serviceType"},
		{Key: "sign_date", Source: "signDate"},
		{Key: "cancel_date", Source: "cancelDate"},
		{Key: "next_billing_date", Source: "nextBillingDate"},
		{Key: "pt_sign_date", Source: "saleDate"},
		{Key: "pt_inactive_date", Source: "inactiveDate"},
		{Key: "sales_person", Source: "salesPerson"},
	}
}

// ToDraft maps rec into a contact draft carrying the single action tag and
// the configured custom fields. Every configured key is always present in
// the draft, with "" standing in for missing source values, so the merge
// step downstream can overwrite unconditionally. Returns ErrUnmappableRecord
// when the record has no email.
func ToDraft(rec model.SourceRecord, actionTag string, club model.ClubContext, fields FieldMap) (model.ContactDraft, error) {
	if model.NormalizeEmail(rec.Email) == "" {
		return model.ContactDraft{}, fmt.Errorf("member %s: %w", rec.MemberID, ErrUnmappableRecord)
	}

	draft := model.ContactDraft{
		Email:        model.NormalizeEmail(rec.Email),
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		Phone:        rec.Phone,
		Address:      rec.Address,
		City:         rec.City,
		State:        rec.State,
		PostalCode:   rec.PostalCode,
		Tags:         []string{actionTag},
		CustomFields: make([]model.CustomField, 0, len(fields)),
	}

	for _, spec := range fields {
		draft.CustomFields = append(draft.CustomFields, model.CustomField{
			Key:   spec.Key,
			Value: sourceValue(rec, club, spec.Source),
		})
	}

	return draft, nil
}

// sourceValue resolves a named source field to its string value. Unknown
// names resolve to "" so a misconfigured field map degrades to empty values
// instead of failing the record.
func sourceValue(rec model.SourceRecord, club model.ClubContext, name string) string {
	switch name {
	case "memberId":
		return rec.MemberID
	case "club":
		return club.Number
	case "membershipType":
		return rec.MembershipType
	case "serviceType":
		return rec.ServiceType
	case "memberStatus":
		return rec.MemberStatus
	case "joinStatus":
		return rec.JoinStatus
	case "signDate":
		return rec.SignDate
	case "cancelDate":
		return cancelDate(rec)
	case "memberStatusDate":
		return rec.MemberStatusDate
	case "nextBillingDate":
		return rec.NextBillingDate
	case "saleDate":
		return rec.SaleDate
	case "inactiveDate":
		return rec.InactiveDate
	case "salesPerson":
		return rec.SalesPerson
	default:
		return ""
	}
}

// cancelDate prefers the explicit cancel date and falls back to the status
// change date, which is what cancellation records carry on some endpoints.
func cancelDate(rec model.SourceRecord) string {
	if rec.CancelDate != "" {
		return rec.CancelDate
	}
	return rec.MemberStatusDate
}
