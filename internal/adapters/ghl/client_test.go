package ghl_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/adapters/ghl"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/upsert"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

func testClub() model.ClubContext {
	return model.ClubContext{Number: "9001", LocationID: "loc-1", Token: "tok-1"}
}

func TestLookupByEmail(t *testing.T) {
	convey.Convey("Given a contacts search endpoint", t, func() {
		var gotAuth, gotVersion string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotVersion = r.Header.Get("Version")

			switch r.URL.Query().Get("query") {
			case "jane@example.com":
				_, _ = w.Write([]byte(`{"contacts": [
					{"id": "c-1", "email": "Jane@Example.com", "tags": ["sale"], "customField": [{"id": "member_id", "value": "m-1"}]}
				]}`))
			case "many@example.com":
				_, _ = w.Write([]byte(`{"contacts": [
					{"id": "c-2", "email": "other1@example.com"},
					{"id": "c-3", "email": "other2@example.com"}
				]}`))
			default:
				_, _ = w.Write([]byte(`{"contacts": []}`))
			}
		}))
		defer srv.Close()

		client := ghl.New(srv.URL)
		ctx := context.Background()

		convey.Convey("When looking up an email that differs only in case", func() {
			contact, err := client.LookupByEmail(ctx, testClub(), "jane@example.com")

			convey.Convey("Then the contact is found with its tag and field state", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(contact.ID, convey.ShouldEqual, "c-1")
				convey.So(contact.Tags, convey.ShouldResemble, []string{"sale"})
				convey.So(contact.CustomFields, convey.ShouldResemble, []model.CustomField{{Key: "member_id", Value: "m-1"}})
			})

			convey.Convey("Then the request carried the bearer token and version header", func() {
				convey.So(gotAuth, convey.ShouldEqual, "Bearer tok-1")
				convey.So(gotVersion, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When the search returns ambiguous candidates with no exact match", func() {
			_, err := client.LookupByEmail(ctx, testClub(), "many@example.com")

			convey.Convey("Then the lookup resolves to not-found rather than guessing", func() {
				convey.So(errors.Is(err, upsert.ErrNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the search returns nothing", func() {
			_, err := client.LookupByEmail(ctx, testClub(), "nobody@example.com")

			convey.Convey("Then it is a genuine not-found", func() {
				convey.So(errors.Is(err, upsert.ErrNotFound), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given an unreachable target", t, func() {
		client := ghl.New("http://127.0.0.1:1")

		convey.Convey("When looking up", func() {
			_, err := client.LookupByEmail(context.Background(), testClub(), "jane@example.com")

			convey.Convey("Then the failure is transport-level, never not-found", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, upsert.ErrNotFound), convey.ShouldBeFalse)
				convey.So(errors.Is(err, ghl.ErrTargetUnavailable), convey.ShouldBeTrue)
			})
		})
	})
}

func TestCreateContact(t *testing.T) {
	convey.Convey("Given a create endpoint", t, func(c convey.C) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.So(r.Method, convey.ShouldEqual, http.MethodPost)
			_, _ = w.Write([]byte(`{"contact": {"id": "c-9", "email": "new@example.com", "tags": ["sale"]}}`))
		}))
		defer srv.Close()

		client := ghl.New(srv.URL)

		convey.Convey("When creating a draft", func() {
			contact, err := client.CreateContact(context.Background(), testClub(), model.ContactDraft{
				Email: "new@example.com",
				Tags:  []string{"sale"},
			})

			convey.Convey("Then the created contact id comes back", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(contact.ID, convey.ShouldEqual, "c-9")
			})
		})
	})

	convey.Convey("Given a create endpoint that rejects duplicates", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message": "This location does not allow duplicated contacts.", "meta": {"contactId": "c-77"}}`))
		}))
		defer srv.Close()

		client := ghl.New(srv.URL)

		convey.Convey("When creating", func() {
			_, err := client.CreateContact(context.Background(), testClub(), model.ContactDraft{Email: "dup@example.com"})

			convey.Convey("Then the duplicate rejection carries the conflicting contact id", func() {
				var dup *upsert.DuplicateError
				convey.So(errors.As(err, &dup), convey.ShouldBeTrue)
				convey.So(dup.ContactID, convey.ShouldEqual, "c-77")
			})
		})
	})

	convey.Convey("Given a create endpoint that fails validation", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message": "email is invalid"}`))
		}))
		defer srv.Close()

		client := ghl.New(srv.URL)

		convey.Convey("When creating", func() {
			_, err := client.CreateContact(context.Background(), testClub(), model.ContactDraft{Email: "bad"})

			convey.Convey("Then the error is a plain write failure, not a duplicate", func() {
				var dup *upsert.DuplicateError
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.As(err, &dup), convey.ShouldBeFalse)
			})
		})
	})
}

func TestUpdateAndTag(t *testing.T) {
	convey.Convey("Given update and tag endpoints", t, func() {
		var gotPath, gotMethod string
		var gotBody []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotMethod = r.Method
			gotBody, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"contact": {"id": "c-1"}}`))
		}))
		defer srv.Close()

		client := ghl.New(srv.URL)
		ctx := context.Background()

		convey.Convey("When updating a contact", func() {
			err := client.UpdateContact(ctx, testClub(), "c-1", model.ContactDraft{
				Email: "jane@example.com",
				Tags:  []string{"sale", "pt current"},
			})

			convey.Convey("Then it PUTs to the contact resource", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(gotMethod, convey.ShouldEqual, http.MethodPut)
				convey.So(gotPath, convey.ShouldEqual, "/v1/contacts/c-1")
				convey.So(string(gotBody), convey.ShouldContainSubstring, "pt current")
			})
		})

		convey.Convey("When adding tags only", func() {
			err := client.AddTags(ctx, testClub(), "c-1", []string{"past due"})

			convey.Convey("Then it POSTs to the tag subresource", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(gotMethod, convey.ShouldEqual, http.MethodPost)
				convey.So(gotPath, convey.ShouldEqual, "/v1/contacts/c-1/tags/")
				convey.So(string(gotBody), convey.ShouldContainSubstring, "past due")
			})
		})
	})
}

func TestGetContact(t *testing.T) {
	convey.Convey("Given a contact resource", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v1/contacts/c-1" {
				_, _ = w.Write([]byte(`{"contact": {"id": "c-1", "email": "jane@example.com", "tags": ["sale"]}}`))
				return
			}
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "not found"}`))
		}))
		defer srv.Close()

		client := ghl.New(srv.URL)
		ctx := context.Background()

		convey.Convey("When reading an existing contact", func() {
			contact, err := client.GetContact(ctx, testClub(), "c-1")
			convey.So(err, convey.ShouldBeNil)
			convey.So(contact.Email, convey.ShouldEqual, "jane@example.com")
		})

		convey.Convey("When reading a missing contact", func() {
			_, err := client.GetContact(ctx, testClub(), "c-404")
			convey.So(errors.Is(err, upsert.ErrNotFound), convey.ShouldBeTrue)
		})
	})
}
