package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/remiblancher/keyder/internal/keyfile"
	"github.com/remiblancher/keyder/pkg/der"
)

func TestF_Raw_InputForms(t *testing.T) {
	tc := newTestContext(t)
	derPath, pemPath, hexPath := tc.writeKeyFiles()

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"der file", "", []string{"raw", derPath}},
		{"pem file", "", []string{"raw", pemPath}},
		{"hex file", "", []string{"raw", hexPath}},
		{"hex flag", "", []string{"raw", "--hex", ed25519PrivateKeyInfoHex}},
		{"stdin dash", ed25519PrivateKeyInfoHex, []string{"raw", "-"}},
		{"stdin default", ed25519PrivateKeyInfoHex, []string{"raw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, tt.stdin, tt.args...)
			assertNoError(t, err)
			if strings.TrimSpace(out) != ed25519SeedHex {
				t.Errorf("output = %q, want %s", out, ed25519SeedHex)
			}
		})
	}
}

func TestF_Raw_Errors(t *testing.T) {
	tc := newTestContext(t)
	derPath, _, _ := tc.writeKeyFiles()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"invalid hex", []string{"raw", "--hex", "zz"}, der.ErrInvalidHex},
		{"truncated", []string{"raw", "--hex", "3005020101"}, der.ErrUnexpectedEnd},
		{"no key", []string{"raw", "--hex", "3003020101"}, der.ErrNoKeyFound},
		{"unsupported tag", []string{"raw", "--hex", "0500"}, der.ErrUnsupportedTag},
		{"bit string unused bits above 7", []string{"raw", "--hex", "3004030208ff"}, der.ErrMalformedBitString},
		{"max depth", []string{"raw", "--max-depth", "1", "--hex", "30023000"}, der.ErrMaxDepth},
		{"too large", []string{"raw", "--hex", ed25519PrivateKeyInfoHex}, keyfile.ErrTooLarge},
		{"hex and file", []string{"raw", "--hex", "00", derPath}, nil},
		{"missing file", []string{"raw", tc.path("missing.der")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "too large" {
				t.Setenv("KEYDER_MAX_INPUT_BYTES", "16")
			}
			_, err := executeCommand(t, "", tt.args...)
			assertError(t, err)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestF_Raw_PublicKey(t *testing.T) {
	newTestContext(t)
	spki := "302a300506032b6570032100" + strings.Repeat("11", 32)

	out, err := executeCommand(t, "", "raw", "--hex", spki)
	assertNoError(t, err)
	if strings.TrimSpace(out) != strings.Repeat("11", 32) {
		t.Errorf("output = %q", out)
	}
}
