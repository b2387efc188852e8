package validator_test

import (
	"hotel/shared/failure"
	"hotel/shared/validator"
	"net/http"
	"strings"
	"testing"
)

type roomPayload struct {
	RoomNo        *int     `json:"roomNo"        validate:"required,gt=0"`
	Type          string   `json:"type"          validate:"required,oneof=single double suite"`
	Beds          *int     `json:"beds"          validate:"required,min=1"`
	PricePerNight *float64 `json:"pricePerNight" validate:"required,gte=0"`
	Description   string   `json:"description"   validate:"max=200"`
}

type guestPayload struct {
	GuestName   string `json:"guestName"   validate:"notblank,max=50"`
	CheckInDate string `json:"checkInDate" validate:"omitempty,date"`
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		data        *roomPayload
		expectError bool
	}{
		{
			name:        "valid room",
			data:        &roomPayload{RoomNo: intPtr(101), Type: "single", Beds: intPtr(1), PricePerNight: floatPtr(100)},
			expectError: false,
		},
		{
			name:        "free room is valid",
			data:        &roomPayload{RoomNo: intPtr(102), Type: "suite", Beds: intPtr(2), PricePerNight: floatPtr(0)},
			expectError: false,
		},
		{
			name:        "missing price",
			data:        &roomPayload{RoomNo: intPtr(101), Type: "single", Beds: intPtr(1)},
			expectError: true,
		},
		{
			name:        "zero beds",
			data:        &roomPayload{RoomNo: intPtr(101), Type: "single", Beds: intPtr(0), PricePerNight: floatPtr(10)},
			expectError: true,
		},
		{
			name:        "unknown type",
			data:        &roomPayload{RoomNo: intPtr(101), Type: "penthouse", Beds: intPtr(1), PricePerNight: floatPtr(10)},
			expectError: true,
		},
		{
			name:        "description too long",
			data:        &roomPayload{RoomNo: intPtr(101), Type: "single", Beds: intPtr(1), PricePerNight: floatPtr(10), Description: strings.Repeat("x", 201)},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(tt.data)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidationMessagesAreFlattened(t *testing.T) {
	err := validator.ValidateStruct(&roomPayload{Type: "single"})
	if err == nil {
		t.Fatal("expected validation error for empty payload")
	}

	msg := err.Error()
	for _, want := range []string{"roomNo is required", "beds is required", "pricePerNight is required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}

	if failure.GetCode(err) != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", failure.GetCode(err))
	}
}

func TestCustomTags(t *testing.T) {
	tests := []struct {
		name        string
		data        guestPayload
		expectError string
	}{
		{name: "valid guest", data: guestPayload{GuestName: "Alice", CheckInDate: "2026-01-02"}},
		{name: "no date", data: guestPayload{GuestName: "Alice"}},
		{name: "blank guest", data: guestPayload{GuestName: "   "}, expectError: "guestName cannot be blank"},
		{name: "bad date", data: guestPayload{GuestName: "Alice", CheckInDate: "02/01/2026"}, expectError: "checkInDate must be a date formatted as YYYY-MM-DD"},
		{name: "guest too long", data: guestPayload{GuestName: strings.Repeat("a", 51)}, expectError: "guestName must be at most 50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.expectError == "" {
				if err != nil {
					t.Errorf("expected no validation error, got: %v", err)
				}

				return
			}

			if err == nil || !strings.Contains(err.Error(), tt.expectError) {
				t.Errorf("expected error containing %q, got %v", tt.expectError, err)
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name        string
		field       any
		tag         string
		expectError bool
	}{
		{name: "valid uuid", field: "1f0e4c3a-6a53-4f0b-9a8e-7c2d1b0a9f8e", tag: "uuid", expectError: false},
		{name: "invalid uuid", field: "507f1f77bcf86cd799439011", tag: "uuid", expectError: true},
		{name: "required", field: "", tag: "required", expectError: true},
		{name: "oneof", field: "double", tag: "oneof=single double suite", expectError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		jsonBody    string
		expectError bool
	}{
		{name: "valid JSON", jsonBody: `{"roomNo":101,"type":"double","beds":2,"pricePerNight":150}`, expectError: false},
		{name: "invalid field", jsonBody: `{"roomNo":101,"type":"double","beds":0,"pricePerNight":150}`, expectError: true},
		{name: "malformed JSON", jsonBody: `{"roomNo":`, expectError: true},
		{name: "empty JSON", jsonBody: `{}`, expectError: true},
		{name: "empty body", jsonBody: ``, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data roomPayload
			err := validator.Validate(strings.NewReader(tt.jsonBody), &data)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidateOptional(t *testing.T) {
	type resolutionPayload struct {
		Resolution string `json:"resolution" validate:"omitempty,oneof=checkout delete cancel"`
	}

	tests := []struct {
		name        string
		jsonBody    string
		expectError bool
	}{
		{name: "empty body", jsonBody: ``, expectError: false},
		{name: "valid resolution", jsonBody: `{"resolution":"checkout"}`, expectError: false},
		{name: "invalid resolution", jsonBody: `{"resolution":"explode"}`, expectError: true},
		{name: "malformed", jsonBody: `{"resolution"`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data resolutionPayload
			err := validator.ValidateOptional(strings.NewReader(tt.jsonBody), &data)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}
