package mapper_test

import (
	"errors"
	"testing"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/mapper"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func fieldValue(fields []model.CustomField, key string) (string, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

func TestToDraft(t *testing.T) {
	convey.Convey("Given a complete member record", t, func() {
		club := model.ClubContext{Number: "9001", LocationID: "loc-1"}
		rec := model.SourceRecord{
			MemberID:        "m-42",
			Email:           "Jane.Doe@Example.com",
			FirstName:       "Jane",
			LastName:        "Doe",
			Phone:           "555-0100",
			MembershipType:  "Premier",
			SignDate:        "2024-03-01",
			NextBillingDate: "2024-04-01",
			SalesPerson:     "Alex",
		}

		convey.Convey("When mapped with the sale action tag", func() {
			draft, err := mapper.ToDraft(rec, "sale", club, mapper.DefaultFieldMap())

			convey.Convey("Then the draft carries identity, a singleton tag set, and fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(draft.Email, convey.ShouldEqual, "jane.doe@example.com")
				convey.So(draft.FirstName, convey.ShouldEqual, "Jane")
				convey.So(draft.Tags, convey.ShouldResemble, []string{"sale"})

				v, ok := fieldValue(draft.CustomFields, "member_id")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, "m-42")

				v, ok = fieldValue(draft.CustomFields, "club_number")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, "9001")

				v, _ = fieldValue(draft.CustomFields, "next_billing_date")
				convey.So(v, convey.ShouldEqual, "2024-04-01")
			})

			convey.Convey("Then missing source fields map to empty strings, never omitted", func() {
				convey.So(draft.CustomFields, convey.ShouldHaveLength, len(mapper.DefaultFieldMap()))

				v, ok := fieldValue(draft.CustomFields, "cancel_date")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, "")

				v, ok = fieldValue(draft.CustomFields, "service_type")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, "")
			})
		})
	})

	convey.Convey("Given a record with no email", t, func() {
		rec := model.SourceRecord{MemberID: "m-7", FirstName: "Sam"}

		convey.Convey("When mapped", func() {
			_, err := mapper.ToDraft(rec, "sale", model.ClubContext{}, mapper.DefaultFieldMap())

			convey.Convey("Then it fails as unmappable", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, mapper.ErrUnmappableRecord), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a cancellation record without an explicit cancel date", t, func() {
		rec := model.SourceRecord{
			MemberID:         "m-9",
			Email:            "sam@example.com",
			MemberStatusDate: "2024-02-10",
		}

		convey.Convey("When mapped", func() {
			draft, err := mapper.ToDraft(rec, "cancelled / past member", model.ClubContext{}, mapper.DefaultFieldMap())

			convey.Convey("Then the status change date stands in for the cancel date", func() {
				convey.So(err, convey.ShouldBeNil)
				v, _ := fieldValue(draft.CustomFields, "cancel_date")
				convey.So(v, convey.ShouldEqual, "2024-02-10")
			})
		})
	})

	convey.Convey("Given a field map with an unknown source name", t, func() {
		fields := mapper.FieldMap{{Key: "mystery", Source: "noSuchField"}}
		rec := model.SourceRecord{MemberID: "m-1", Email: "a@b.com"}

		convey.Convey("When mapped", func() {
			draft, err := mapper.ToDraft(rec, "sale", model.ClubContext{}, fields)

			convey.Convey("Then the key is present with an empty value", func() {
				convey.So(err, convey.ShouldBeNil)
				v, ok := fieldValue(draft.CustomFields, "mystery")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, "")
			})
		})
	})
}
