package fund

import (
	"errors"
	"testing"
)

func TestIsValidFundType(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"general", true},
		{"designated", true},
		{"GENERAL", false},
		{"operating", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := IsValidFundType(tt.input)
			if got != tt.want {
				t.Errorf("IsValidFundType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCreateParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{
			name:   "valid designated fund",
			params: CreateParams{Name: "building", Type: TypeDesignated},
		},
		{
			name:    "missing name",
			params:  CreateParams{Type: TypeDesignated},
			wantErr: ErrInvalidFund,
		},
		{
			name:    "unknown type",
			params:  CreateParams{Name: "building", Type: "special"},
			wantErr: ErrInvalidFundType,
		},
		{
			name:    "missing type",
			params:  CreateParams{Name: "building"},
			wantErr: ErrInvalidFund,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
