package validator

import (
	"paddock/pkg/logger"
	"paddock/pkg/model"
	"strings"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func testValidator() *StableValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewStableValidator(log)
}

func validStable() *model.Stable {
	return &model.Stable{
		OwnerID: "507f1f77bcf86cd799439011",
		Title:   "Sunrise Stables",
		Location: model.Location{
			Address: "12 Meadow Lane",
			City:    "hamburg",
		},
		Rates:    []model.PriceRate{{Amount: 50, Unit: "day"}},
		Status:   "active",
		Capacity: 10,
	}
}

func TestValidate_DayTimeTag(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{"valid slot", "08:00", "17:30", false},
		{"midnight", "00:00", "23:59", false},
		{"hour out of range", "24:00", "17:00", true},
		{"minute out of range", "08:60", "17:00", true},
		{"missing colon", "0800", "17:00", true},
		{"empty start", "", "17:00", true},
		{"with seconds", "08:00:00", "17:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stable := validStable()
			stable.Slots = []model.AvailabilitySlot{
				{Date: mustDate(t, "2026-03-01"), Start: tt.start, End: tt.end},
			}

			err := v.Validate(stable)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for slot %q-%q", tt.start, tt.end)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for slot %q-%q: %v", tt.start, tt.end, err)
			}
		})
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name   string
		mutate func(*model.Stable)
		field  string
	}{
		{"missing owner", func(s *model.Stable) { s.OwnerID = "" }, "OwnerID"},
		{"short title", func(s *model.Stable) { s.Title = "x" }, "Title"},
		{"invalid owner id", func(s *model.Stable) { s.OwnerID = "not-an-oid" }, "OwnerID"},
		{"no rates", func(s *model.Stable) { s.Rates = nil }, "Rates"},
		{"bad rate unit", func(s *model.Stable) { s.Rates[0].Unit = "year" }, "Unit"},
		{"zero capacity", func(s *model.Stable) { s.Capacity = 0 }, "Capacity"},
		{"bad status", func(s *model.Stable) { s.Status = "open" }, "Status"},
		{"rating above max", func(s *model.Stable) { s.Rating = 5.5 }, "Rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stable := validStable()
			tt.mutate(stable)

			err := v.Validate(stable)
			if err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error mentioning %s, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidate_DuplicateRateUnits(t *testing.T) {
	v := testValidator()

	stable := validStable()
	stable.Rates = []model.PriceRate{
		{Amount: 50, Unit: "day"},
		{Amount: 40, Unit: "day"},
	}

	err := v.Validate(stable)
	if err == nil {
		t.Fatal("expected error for duplicate rate units")
	}
	if !strings.Contains(err.Error(), "duplicate rate unit") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestValidateUpdate_PartialInput(t *testing.T) {
	v := testValidator()

	if err := v.ValidateUpdate(&model.StableUpdate{Title: "New Name"}); err != nil {
		t.Errorf("unexpected error for partial update: %v", err)
	}

	capacity := 0
	if err := v.ValidateUpdate(&model.StableUpdate{Capacity: &capacity}); err == nil {
		t.Error("expected error for zero capacity update")
	}
}

func TestValidateRating_Bounds(t *testing.T) {
	v := testValidator()

	score := func(f float64) *float64 { return &f }

	tests := []struct {
		name    string
		sub     model.RatingSubmission
		wantErr bool
	}{
		{"valid", model.RatingSubmission{EntityID: "507f1f77bcf86cd799439011", UserID: "507f1f77bcf86cd799439012", Score: score(4.5)}, false},
		{"zero score allowed", model.RatingSubmission{EntityID: "507f1f77bcf86cd799439011", UserID: "507f1f77bcf86cd799439012", Score: score(0)}, false},
		{"above max", model.RatingSubmission{EntityID: "507f1f77bcf86cd799439011", UserID: "507f1f77bcf86cd799439012", Score: score(5.5)}, true},
		{"missing score", model.RatingSubmission{EntityID: "507f1f77bcf86cd799439011", UserID: "507f1f77bcf86cd799439012"}, true},
		{"bad entity id", model.RatingSubmission{EntityID: "nope", UserID: "507f1f77bcf86cd799439012", Score: score(3)}, true},
		{"missing user", model.RatingSubmission{EntityID: "507f1f77bcf86cd799439011", Score: score(3)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRating(&tt.sub)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
