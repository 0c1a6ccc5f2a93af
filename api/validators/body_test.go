package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
)

type requestPayload struct {
	ItemID    string `json:"item_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	Limit     int    `json:"limit" validate:"max=100"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "valid payload",
			body: `{"item_id":"i-1","start_date":"2026-03-01","limit":10}`,
		},
		{
			name:    "missing required field",
			body:    `{"item_id":"i-1"}`,
			wantErr: true,
		},
		{
			name:    "unknown field rejected",
			body:    `{"item_id":"i-1","start_date":"2026-03-01","bogus":true}`,
			wantErr: true,
		},
		{
			name:    "limit above max",
			body:    `{"item_id":"i-1","start_date":"2026-03-01","limit":500}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			body:    `{"item_id":`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			var dest requestPayload
			err := DecodeJSONBody(r, &dest)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				typed := pkgerrors.As(err)
				if typed == nil || typed.Code() != pkgerrors.CodeValidation {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=25", nil)
	got, err := ParseQueryInt(r, "limit", 50, 1, 100)
	if err != nil || got != 25 {
		t.Fatalf("ParseQueryInt = %d, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryInt(r, "limit", 50, 1, 100)
	if err != nil || got != 50 {
		t.Fatalf("default = %d, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/?limit=500", nil)
	if _, err = ParseQueryInt(r, "limit", 50, 1, 100); err == nil {
		t.Fatal("expected out of range error")
	}

	r = httptest.NewRequest("GET", "/?limit=abc", nil)
	if _, err = ParseQueryInt(r, "limit", 50, 1, 100); err == nil {
		t.Fatal("expected numeric error")
	}
}
