package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "x1", false},
		{"schema path", "/data/wing/span", false},
		{"with spaces inside", "wing span", false},
		{"unicode", "höhe", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 513), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"tab", "foo\tbar", true},
		{"leading space", " foo", true},
		{"trailing space", "foo ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNodeID) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidNodeID)
			}
		})
	}
}

func TestValidateNodeIDs(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantErr bool
	}{
		{"empty list", nil, false},
		{"distinct", []string{"A", "B", "C"}, false},
		{"duplicate", []string{"A", "B", "A"}, true},
		{"one invalid", []string{"A", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeIDs(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeIDs(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
