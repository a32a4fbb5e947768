package validate_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/requisition/internal/validate"
)

type settings struct {
	Name      string            `json:"name" validate:"required"`
	Redirects *int              `json:"redirects" validate:"omitempty,gte=0,lte=10"`
	Headers   map[string]string `json:"headers" validate:"omitempty,dive,keys,required,endkeys"`
	Hidden    string            `json:"-" validate:"omitempty,len=2"`
}

func intPtr(i int) *int { return &i }

func TestCheck_Valid(t *testing.T) {
	s := settings{Name: "alice", Redirects: intPtr(3), Headers: map[string]string{"X-A": "b"}}
	if err := validate.Check(&s); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestCheck_FieldErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input settings
		exp   []string
	}{
		{
			name:  "missing required",
			input: settings{},
			exp:   []string{"name"},
		},
		{
			name:  "out of range pointer",
			input: settings{Name: "a", Redirects: intPtr(-1)},
			exp:   []string{"redirects"},
		},
		{
			name:  "empty map key",
			input: settings{Name: "a", Headers: map[string]string{"": "v"}},
			exp:   []string{"headers[]"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Check(&tc.input)
			if err == nil {
				t.Fatal("expected an error")
			}

			var fe validate.FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %T: %v", err, err)
			}

			var got []string
			for field := range fe.Fields() {
				got = append(got, field)
			}
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheck_RequiredMessage(t *testing.T) {
	err := validate.Check(&settings{})

	var fe validate.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if got := fe.Fields()["name"]; got != "This field is required" {
		t.Errorf("name error = %q, want %q", got, "This field is required")
	}
	if got := fe.Error(); got != "name: This field is required" {
		t.Errorf("Error() = %q", got)
	}
}

type request struct {
	Headers map[string]string `json:"headers" validate:"omitempty,dive,keys,header,endkeys"`
	Type    string            `json:"type" validate:"omitempty,mediatype"`
}

func TestCheck_HTTPTags(t *testing.T) {
	testCases := []struct {
		name  string
		input request
		exp   map[string]string
	}{
		{
			name:  "valid",
			input: request{Headers: map[string]string{"X-Trace": "1"}, Type: "application/json; charset=utf-8"},
		},
		{
			name:  "short type",
			input: request{Type: "json"},
		},
		{
			name:  "bad header name",
			input: request{Headers: map[string]string{"X Trace": "1"}},
			exp:   map[string]string{"headers[X Trace]": "X Trace is not a valid header name"},
		},
		{
			name:  "bad media type",
			input: request{Type: "text/"},
			exp:   map[string]string{"type": "text/ is not a valid media type"},
		},
		{
			name:  "short type with params",
			input: request{Type: "json; q=1"},
			exp:   map[string]string{"type": "json; q=1 is not a valid media type"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Check(&tc.input)
			if tc.exp == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}

			var fe validate.FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %T: %v", err, err)
			}
			if diff := cmp.Diff(tc.exp, fe.Fields()); diff != "" {
				t.Errorf("field errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
