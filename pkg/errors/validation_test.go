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
		{"root", "1", false},
		{"child", "1-5", false},
		{"grandchild", "1-5-100", false},
		{"anonymous", "1-anon3", false},
		{"label root", "octo/hello", false},

		{"empty", "", true},
		{"too long", strings.Repeat("1", 600), true},
		{"traversal", "1/../2", true},
		{"control char", "1\x01", true},
		{"trailing separator", "1-", true},
		{"non numeric segment", "1-abc", true},
		{"space", "1 5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNodeID) {
				t.Errorf("ValidateNodeID(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://api.github.com", false},
		{"http://127.0.0.1:9999", false},
		{"", true},
		{"ftp://example.com", true},
		{"api.github.com", true},
	}

	for _, tt := range tests {
		if err := ValidateURL(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
