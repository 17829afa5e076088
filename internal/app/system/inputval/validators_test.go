package inputval

import "testing"

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"alice", true},
		{"Alice_99", true},
		{"a.b+c-d@e", true},
		{"zoë", true},
		{"  padded  ", true},

		{"", false},
		{"   ", false},
		{"has space", false},
		{"semi;colon", false},
		{"slash/name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidUsername(tt.name)
			if got != tt.want {
				t.Errorf("IsValidUsername(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		// Valid ObjectIDs (24 hex characters)
		{"507f1f77bcf86cd799439011", true},
		{"000000000000000000000000", true},
		{"ffffffffffffffffffffffff", true},
		{"FFFFFFFFFFFFFFFFFFFFFFFF", true}, // uppercase hex is valid

		// Valid with whitespace (trimmed)
		{"  507f1f77bcf86cd799439011  ", true},

		// Invalid ObjectIDs
		{"", false},
		{"   ", false},
		{"507f1f77bcf86cd79943901", false},   // too short (23 chars)
		{"507f1f77bcf86cd7994390111", false}, // too long (25 chars)
		{"507f1f77bcf86cd79943901g", false},  // invalid hex char
		{"not-a-valid-id", false},
		{"12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := IsValidObjectID(tt.id)
			if got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name     string `form:"name" validate:"required,max=10" label:"Full name"`
		Username string `form:"username" validate:"required,username" label:"Username"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
		wantField  string
	}{
		{
			name:       "valid input",
			input:      TestInput{Name: "John", Username: "john"},
			wantErrors: false,
		},
		{
			name:       "missing name",
			input:      TestInput{Name: "", Username: "john"},
			wantErrors: true,
			wantFirst:  "Full name is required.",
			wantField:  "name",
		},
		{
			name:       "name too long",
			input:      TestInput{Name: "VeryLongNameThatExceedsLimit", Username: "john"},
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
			wantField:  "name",
		},
		{
			name:       "bad username",
			input:      TestInput{Name: "John", Username: "john doe"},
			wantErrors: true,
			wantFirst:  "Username may contain only letters, digits and @/./+/-/_ characters.",
			wantField:  "username",
		},
		{
			name:       "missing both",
			input:      TestInput{Name: "", Username: ""},
			wantErrors: true,
			wantFirst:  "Full name is required.", // First error
			wantField:  "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}

			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
			if tt.wantErrors {
				if _, ok := result.Fields()[tt.wantField]; !ok {
					t.Errorf("Validate() Fields() missing %q: %v", tt.wantField, result.Fields())
				}
			}
		})
	}
}

func TestValidate_EqField(t *testing.T) {
	type PasswordInput struct {
		Password string `form:"password1" validate:"required,min=8" label:"Password"`
		Confirm  string `form:"password2" validate:"eqfield=Password" label:"Password confirmation"`
	}

	res := Validate(PasswordInput{Password: "longenough", Confirm: "different1"})
	if res.First() != "Password confirmation does not match." {
		t.Errorf("First() = %q", res.First())
	}
	if _, ok := res.Fields()["password2"]; !ok {
		t.Errorf("expected password2 field error, got %v", res.Fields())
	}

	if res := Validate(PasswordInput{Password: "longenough", Confirm: "longenough"}); res.HasErrors() {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
}

func TestResult_All(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
	})

	t.Run("one error", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{{Message: "Error 1"}},
		}
		if r.All() != "Error 1" {
			t.Errorf("All() = %q, want %q", r.All(), "Error 1")
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "Error 1"},
				{Message: "Error 2"},
			},
		}
		want := "Error 1; Error 2"
		if r.All() != want {
			t.Errorf("All() = %q, want %q", r.All(), want)
		}
	})
}

func TestResult_First(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.First() != "" {
			t.Errorf("First() = %q, want empty", r.First())
		}
	})

	t.Run("with errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "First error"},
				{Message: "Second error"},
			},
		}
		if r.First() != "First error" {
			t.Errorf("First() = %q, want %q", r.First(), "First error")
		}
	})
}
