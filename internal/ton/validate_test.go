package ton

import (
	"strings"
	"testing"
)

func TestValidator_RawAddresses(t *testing.T) {
	v := NewValidator()

	valid := "0:" + strings.Repeat("ab", 32)
	if err := v.Validate(valid); err != nil {
		t.Fatalf("expected raw address to validate, got %v", err)
	}

	masterchain := "-1:" + strings.Repeat("cd", 32)
	if err := v.Validate(masterchain); err != nil {
		t.Fatalf("expected masterchain raw address to validate, got %v", err)
	}
}

func TestValidator_Invalid(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"short hash", "0:abcd"},
		{"bad hex", "0:" + strings.Repeat("zz", 32)},
		{"unknown workchain prefix", "7:" + strings.Repeat("ab", 32)},
		{"garbage friendly form", "not-a-ton-address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := v.Validate(tc.addr); err == nil {
				t.Fatalf("expected %q to be rejected", tc.addr)
			}
		})
	}
}
