package main

import (
	"bytes"
	"encoding/hex"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/remiblancher/keyder/internal/config"
)

const (
	ed25519PrivateKeyInfoHex = "302e020100300506032b657004220420c036915d924e5b517fae86ce34d8c76005cb5099798a37a137831ff5e3dc0622"
	ed25519SeedHex           = "c036915d924e5b517fae86ce34d8c76005cb5099798a37a137831ff5e3dc0622"
)

// executeCommand runs the root command with args and stdin, returning the
// combined output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag of cmd and its children to its default,
// since cobra keeps parsed values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
	cfg = config.Default()
}

// testContext holds test resources.
type testContext struct {
	t       *testing.T
	tempDir string
}

func newTestContext(t *testing.T) *testContext {
	t.Helper()
	for _, name := range []string{
		config.EnvHost, config.EnvPort, config.EnvTLSCert, config.EnvTLSKey,
		config.EnvMaxDepth, config.EnvMaxInputBytes, config.EnvAuditLog,
	} {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	return &testContext{t: t, tempDir: t.TempDir()}
}

// path returns a path within the temp directory.
func (tc *testContext) path(name string) string {
	return filepath.Join(tc.tempDir, name)
}

// writeFile writes content to a file in the temp directory.
func (tc *testContext) writeFile(name string, content []byte) string {
	tc.t.Helper()
	path := tc.path(name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		tc.t.Fatalf("Failed to write file %s: %v", name, err)
	}
	return path
}

// writeKeyFiles writes the Ed25519 PKCS#8 fixture as DER, PEM and hex.
func (tc *testContext) writeKeyFiles() (derPath, pemPath, hexPath string) {
	tc.t.Helper()
	blob, err := hex.DecodeString(ed25519PrivateKeyInfoHex)
	if err != nil {
		tc.t.Fatal(err)
	}
	derPath = tc.writeFile("key.der", blob)
	pemPath = tc.writeFile("key.pem", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: blob}))
	hexPath = tc.writeFile("key.hex", []byte(ed25519PrivateKeyInfoHex+"\n"))
	return derPath, pemPath, hexPath
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func assertContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Errorf("output does not contain %q:\n%s", want, output)
	}
}
