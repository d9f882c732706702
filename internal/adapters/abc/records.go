package abc

import (
	"context"
	"fmt"
	"strings"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/window"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/metrics"

	"github.com/goccy/go-json"
)

// kindSpec describes how one record kind is fetched and filtered.
type kindSpec struct {
	path  string            // endpoint under /{club}/
	query map[string]string // server-side status filters
	// dateOf picks the timestamp the date window applies to for this kind.
	dateOf func(model.SourceRecord) string
	// keep applies the kind's status condition after normalization.
	keep func(model.SourceRecord) bool
}

// kindSpecs maps each record kind to its endpoint and filter behavior.
// The members endpoint serves three kinds under different status filters;
// the services endpoint serves the recurring-service (PT) kinds.
var kindSpecs = map[model.RecordKind]kindSpec{
	model.KindMembers: {
		path:   "members",
		query:  map[string]string{"status": "active"},
		dateOf: func(r model.SourceRecord) string { return r.SignDate },
		keep:   func(r model.SourceRecord) bool { return r.Active },
	},
	model.KindCancelled: {
		path:   "members",
		query:  map[string]string{"memberStatus": "cancelled"},
		dateOf: statusChangeDate,
		keep:   func(r model.SourceRecord) bool { return !r.Active },
	},
	model.KindPastDue: {
		path:   "members",
		query:  map[string]string{"memberStatus": "pastdue"},
		dateOf: func(r model.SourceRecord) string { return r.MemberStatusDate },
		keep:   func(model.SourceRecord) bool { return true },
	},
	model.KindServices: {
		path:   "services",
		query:  map[string]string{"status": "active"},
		dateOf: func(r model.SourceRecord) string { return r.SaleDate },
		keep:   func(r model.SourceRecord) bool { return r.Active },
	},
	model.KindInactiveServices: {
		path:   "services",
		query:  map[string]string{"status": "inactive"},
		dateOf: func(r model.SourceRecord) string { return r.InactiveDate },
		keep:   func(r model.SourceRecord) bool { return !r.Active },
	},
}

// statusChangeDate prefers the explicit cancel date over the generic status
// change date; cancellation records carry one or the other by endpoint.
func statusChangeDate(r model.SourceRecord) string {
	if r.CancelDate != "" {
		return r.CancelDate
	}
	return r.MemberStatusDate
}

// FetchRecords pulls every page of the given kind for one club, bounded by
// the page cap, and returns the records that survive the exclusion, status,
// and date-window filters. Hitting the cap truncates the result set and is
// reported through FetchStats, not as an error.
func (c *Client) FetchRecords(ctx context.Context, club model.ClubContext, kind model.RecordKind, win window.Window) ([]model.SourceRecord, model.FetchStats, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, model.FetchStats{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var (
		out   []model.SourceRecord
		stats model.FetchStats
	)

	page := 1
	for {
		records, nextPage, err := c.fetchPage(ctx, club, spec, win, page)
		if err != nil {
			return nil, stats, fmt.Errorf("club %s %s page %d: %w", club.Number, kind, page, err)
		}
		stats.Pages++
		stats.Fetched += len(records)
		metrics.RecordFetchPage()

		for _, rec := range records {
			if c.isExcluded(rec) {
				stats.Excluded = append(stats.Excluded, rec.MemberID)
				continue
			}
			if !spec.keep(rec) {
				continue
			}
			if !win.Contains(spec.dateOf(rec)) {
				continue
			}
			out = append(out, rec)
		}

		if nextPage == "" {
			break
		}
		if stats.Pages >= c.pageCap {
			stats.Truncated = true
			metrics.RecordFetchTruncation()
			c.logger.Warn(ctx, "page cap reached, truncating fetch",
				logger.String("club", club.Number),
				logger.String("kind", string(kind)),
				logger.Int("pages", stats.Pages),
			)
			break
		}
		page++
	}

	metrics.RecordRecordsFetched(string(kind), len(out))
	metrics.RecordExcluded(len(stats.Excluded))
	return out, stats, nil
}

// fetchPage retrieves and decodes one page of records.
func (c *Client) fetchPage(ctx context.Context, club model.ClubContext, spec kindSpec, win window.Window, page int) ([]model.SourceRecord, string, error) {
	body, err := c.get(ctx, club.Number+"/"+spec.path, c.pageQuery(spec, win, page))
	if err != nil {
		return nil, "", err
	}

	switch spec.path {
	case "members":
		var env membersEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, "", fmt.Errorf("%w: decode members page: %v", ErrSourceUnavailable, err)
		}
		records := make([]model.SourceRecord, 0, len(env.Members))
		for _, dto := range env.Members {
			records = append(records, dto.toRecord())
		}
		return records, env.Status.NextPage, nil
	default:
		var env servicesEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, "", fmt.Errorf("%w: decode services page: %v", ErrSourceUnavailable, err)
		}
		records := make([]model.SourceRecord, 0, len(env.Services))
		for _, dto := range env.Services {
			records = append(records, dto.toRecord())
		}
		return records, env.Status.NextPage, nil
	}
}

// statusDTO is the pagination/status block every source response carries.
type statusDTO struct {
	Message  string `json:"message"`
	Count    string `json:"count"`
	NextPage string `json:"nextPage"`
}

// memberDTO mirrors the members endpoint's record shape: personal and
// agreement sections with loosely typed booleans.
type memberDTO struct {
	MemberID string `json:"memberId"`
	Personal struct {
		FirstName        string         `json:"firstName"`
		LastName         string         `json:"lastName"`
		Email            string         `json:"email"`
		PrimaryPhone     string         `json:"primaryPhone"`
		AddressLine1     string         `json:"addressLine1"`
		City             string         `json:"city"`
		State            string         `json:"state"`
		PostalCode       string         `json:"postalCode"`
		IsActive         model.FlexBool `json:"isActive"`
		MemberStatus     string         `json:"memberStatus"`
		JoinStatus       string         `json:"joinStatus"`
		MemberStatusDate string         `json:"memberStatusDate"`
	} `json:"personal"`
	Agreement struct {
		MembershipType  string `json:"membershipType"`
		SignDate        string `json:"signDate"`
		CancelDate      string `json:"cancelDate"`
		NextBillingDate string `json:"nextBillingDate"`
		SalesPerson     string `json:"salesPerson"`
	} `json:"agreement"`
}

func (d memberDTO) toRecord() model.SourceRecord {
	return model.SourceRecord{
		MemberID:         d.MemberID,
		Email:            d.Personal.Email,
		FirstName:        d.Personal.FirstName,
		LastName:         d.Personal.LastName,
		Phone:            d.Personal.PrimaryPhone,
		Address:          d.Personal.AddressLine1,
		City:             d.Personal.City,
		State:            d.Personal.State,
		PostalCode:       d.Personal.PostalCode,
		MembershipType:   d.Agreement.MembershipType,
		Active:           d.Personal.IsActive.Bool(),
		MemberStatus:     d.Personal.MemberStatus,
		JoinStatus:       d.Personal.JoinStatus,
		SignDate:         d.Agreement.SignDate,
		MemberStatusDate: d.Personal.MemberStatusDate,
		CancelDate:       d.Agreement.CancelDate,
		NextBillingDate:  d.Agreement.NextBillingDate,
		SalesPerson:      d.Agreement.SalesPerson,
	}
}

// serviceDTO mirrors the recurring-services endpoint's flat record shape.
type serviceDTO struct {
	MemberID     string         `json:"memberId"`
	Email        string         `json:"email"`
	FirstName    string         `json:"firstName"`
	LastName     string         `json:"lastName"`
	Phone        string         `json:"phone"`
	ServiceType  string         `json:"serviceType"`
	Active       model.FlexBool `json:"active"`
	SaleDate     string         `json:"saleDate"`
	InactiveDate string         `json:"inactiveDate"`
	SalesPerson  string         `json:"salesPerson"`
}

func (d serviceDTO) toRecord() model.SourceRecord {
	return model.SourceRecord{
		MemberID:     d.MemberID,
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        d.Phone,
		ServiceType:  d.ServiceType,
		Active:       d.Active.Bool(),
		SaleDate:     d.SaleDate,
		InactiveDate: d.InactiveDate,
		SalesPerson:  d.SalesPerson,
	}
}

type membersEnvelope struct {
	Status  statusDTO   `json:"status"`
	Members []memberDTO `json:"members"`
}

type servicesEnvelope struct {
	Status   statusDTO    `json:"status"`
	Services []serviceDTO `json:"services"`
}

// normalizeType lowercases a membership/service type for exclusion matching.
func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
