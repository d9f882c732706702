package ghl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/upsert"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"

	"github.com/goccy/go-json"
)

// contactDTO mirrors the CRM's contact shape. Custom fields are keyed by the
// CRM's field id, which this system treats as the field key.
type contactDTO struct {
	ID          string           `json:"id,omitempty"`
	Email       string           `json:"email"`
	FirstName   string           `json:"firstName,omitempty"`
	LastName    string           `json:"lastName,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	Address1    string           `json:"address1,omitempty"`
	City        string           `json:"city,omitempty"`
	State       string           `json:"state,omitempty"`
	PostalCode  string           `json:"postalCode,omitempty"`
	Tags        []string         `json:"tags"`
	CustomField []customFieldDTO `json:"customField"`
}

type customFieldDTO struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

func (d contactDTO) toContact() *model.TargetContact {
	fields := make([]model.CustomField, 0, len(d.CustomField))
	for _, f := range d.CustomField {
		fields = append(fields, model.CustomField{Key: f.ID, Value: f.Value})
	}
	return &model.TargetContact{
		ID:           d.ID,
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        d.Phone,
		Address:      d.Address1,
		City:         d.City,
		State:        d.State,
		PostalCode:   d.PostalCode,
		Tags:         d.Tags,
		CustomFields: fields,
	}
}

func draftDTO(draft model.ContactDraft) contactDTO {
	fields := make([]customFieldDTO, 0, len(draft.CustomFields))
	for _, f := range draft.CustomFields {
		fields = append(fields, customFieldDTO{ID: f.Key, Value: f.Value})
	}
	dto := contactDTO{
		Email:       draft.Email,
		FirstName:   draft.FirstName,
		LastName:    draft.LastName,
		Phone:       draft.Phone,
		Address1:    draft.Address,
		City:        draft.City,
		State:       draft.State,
		PostalCode:  draft.PostalCode,
		Tags:        draft.Tags,
		CustomField: fields,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	return dto
}

// LookupByEmail queries contacts by email within the club's location.
// A contact whose email matches case-insensitively is found. Multiple
// candidates with no exact email match resolve to not-found rather than a
// guess: ambiguity favors safety over recall.
func (c *Client) LookupByEmail(ctx context.Context, club model.ClubContext, email string) (*model.TargetContact, error) {
	q := url.Values{}
	q.Set("locationId", club.LocationID)
	q.Set("query", email)

	status, body, err := c.do(ctx, "lookup", http.MethodGet, "/v1/contacts/?"+q.Encode(), club.Token, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, upsert.ErrNotFound
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: lookup status %d: %s", ErrTargetUnavailable, status, body)
	}

	var env struct {
		Contacts []contactDTO `json:"contacts"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode lookup response: %v", ErrTargetUnavailable, err)
	}

	want := model.NormalizeEmail(email)
	for _, dto := range env.Contacts {
		if model.NormalizeEmail(dto.Email) == want {
			return dto.toContact(), nil
		}
	}

	if len(env.Contacts) > 1 {
		c.logger.Warn(ctx, "ambiguous lookup, treating as not found",
			logger.String("club", club.Number),
			logger.String("email", email),
			logger.Int("candidates", len(env.Contacts)),
		)
	}
	return nil, upsert.ErrNotFound
}

// GetContact re-reads one contact by id.
func (c *Client) GetContact(ctx context.Context, club model.ClubContext, id string) (*model.TargetContact, error) {
	status, body, err := c.do(ctx, "get", http.MethodGet, "/v1/contacts/"+id, club.Token, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, upsert.ErrNotFound
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: get status %d: %s", ErrTargetUnavailable, status, body)
	}

	var env struct {
		Contact contactDTO `json:"contact"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode contact: %v", ErrTargetUnavailable, err)
	}
	return env.Contact.toContact(), nil
}

// CreateContact creates a new contact in the club's location. A rejection
// that signals an existing contact with the same identity comes back as
// *upsert.DuplicateError carrying the conflicting id when the CRM supplied
// one.
func (c *Client) CreateContact(ctx context.Context, club model.ClubContext, draft model.ContactDraft) (*model.TargetContact, error) {
	dto := draftDTO(draft)
	payload, err := json.Marshal(struct {
		contactDTO
		LocationID string `json:"locationId"`
	}{contactDTO: dto, LocationID: club.LocationID})
	if err != nil {
		return nil, fmt.Errorf("encode contact: %w", err)
	}

	status, body, err := c.do(ctx, "create", http.MethodPost, "/v1/contacts/", club.Token, payload)
	if err != nil {
		return nil, err
	}

	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		var env struct {
			Contact contactDTO `json:"contact"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("%w: decode created contact: %v", ErrTargetUnavailable, err)
		}
		return env.Contact.toContact(), nil
	}

	if dup, ok := duplicateFrom(status, body); ok {
		return nil, dup
	}
	return nil, fmt.Errorf("create status %d: %s", status, body)
}

// UpdateContact writes merged contact state over an existing contact.
func (c *Client) UpdateContact(ctx context.Context, club model.ClubContext, id string, contact model.ContactDraft) error {
	payload, err := json.Marshal(draftDTO(contact))
	if err != nil {
		return fmt.Errorf("encode contact: %w", err)
	}

	status, body, err := c.do(ctx, "update", http.MethodPut, "/v1/contacts/"+id, club.Token, payload)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("update status %d: %s", status, body)
	}
	return nil
}

// AddTags appends tags to a contact through the tag-only endpoint.
func (c *Client) AddTags(ctx context.Context, club model.ClubContext, id string, tags []string) error {
	payload, err := json.Marshal(struct {
		Tags []string `json:"tags"`
	}{Tags: tags})
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	status, body, err := c.do(ctx, "tags", http.MethodPost, "/v1/contacts/"+id+"/tags/", club.Token, payload)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("add tags status %d: %s", status, body)
	}
	return nil
}

// duplicateFrom interprets a create rejection body. The CRM reports an
// existing identity as a 400/422 whose message mentions a duplicate, with
// the conflicting contact id directly in the body or under meta.
func duplicateFrom(status int, body []byte) (*upsert.DuplicateError, bool) {
	if status != http.StatusBadRequest && status != http.StatusUnprocessableEntity && status != http.StatusConflict {
		return nil, false
	}

	var rej struct {
		Message   string `json:"message"`
		ContactID string `json:"contactId"`
		Meta      struct {
			ContactID string `json:"contactId"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(body, &rej); err != nil {
		return nil, false
	}

	msg := strings.ToLower(rej.Message)
	if !strings.Contains(msg, "duplicate") && !strings.Contains(msg, "already exist") {
		return nil, false
	}

	id := rej.ContactID
	if id == "" {
		id = rej.Meta.ContactID
	}
	return &upsert.DuplicateError{ContactID: id, Message: rej.Message}, true
}
