//go:build acceptance

// Package acceptance contains black-box CLI acceptance tests (TestA_*).
// Run with: go test -tags=acceptance ./test/acceptance/...
package acceptance

import (
	"bytes"
	"context"
	"crypto"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// keyderBinary is the path to the keyder binary.
// Set via KEYDER_BINARY env var or default to ./bin/keyder in the repo root.
var keyderBinary string

func init() {
	if bin := os.Getenv("KEYDER_BINARY"); bin != "" {
		keyderBinary = bin
	} else {
		keyderBinary = "../../bin/keyder"
	}
}

func newKeyderCmd(stdin string, args ...string) (*exec.Cmd, *bytes.Buffer, *bytes.Buffer) {
	cmd := exec.Command(keyderBinary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = strings.NewReader(stdin)
	// Keep the caller's KEYDER_* settings out of the run.
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "KEYDER_") {
			cmd.Env = append(cmd.Env, kv)
		}
	}
	return cmd, &stdout, &stderr
}

// runKeyder executes the keyder CLI with the given arguments and returns stdout.
// Fails the test if the command returns a non-zero exit code.
func runKeyder(t *testing.T, args ...string) string {
	t.Helper()
	return runKeyderStdin(t, "", args...)
}

// runKeyderStdin is runKeyder with data piped to standard input.
func runKeyderStdin(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	cmd, stdout, stderr := newKeyderCmd(stdin, args...)
	if err := cmd.Run(); err != nil {
		t.Fatalf("keyder %s failed: %v\nstderr: %s\nstdout: %s",
			strings.Join(args, " "), err, stderr.String(), stdout.String())
	}
	return stdout.String()
}

// runKeyderExpectError executes keyder and expects it to fail.
// Returns the combined output (stdout + stderr).
func runKeyderExpectError(t *testing.T, args ...string) string {
	t.Helper()
	cmd, stdout, stderr := newKeyderCmd("", args...)
	if err := cmd.Run(); err == nil {
		t.Fatalf("keyder %s expected to fail but succeeded\nstdout: %s",
			strings.Join(args, " "), stdout.String())
	}
	return stdout.String() + stderr.String()
}

// startKeyder runs keyder in the background until the test ends.
func startKeyder(t *testing.T, args ...string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, keyderBinary, args...)
	if err := cmd.Start(); err != nil {
		cancel()
		t.Fatalf("failed to start keyder: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		_ = cmd.Wait()
	})
}

// waitHealthy polls baseURL/health until it answers 200.
func waitHealthy(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server at %s did not become healthy", baseURL)
}

// writeKeyPair writes the PKCS#8 private key and SPKI public key of priv
// as PEM files and returns their paths.
func writeKeyPair(t *testing.T, priv crypto.Signer) (privPath, pubPath string) {
	t.Helper()
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		t.Fatalf("MarshalPKCS8PrivateKey() error = %v", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(priv.Public())
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey() error = %v", err)
	}
	dir := t.TempDir()
	privPath = filepath.Join(dir, "key.pem")
	pubPath = filepath.Join(dir, "pub.pem")
	writePEM(t, privPath, "PRIVATE KEY", privDER)
	writePEM(t, pubPath, "PUBLIC KEY", pubDER)
	return privPath, pubPath
}

func writePEM(t *testing.T, path, blockType string, der []byte) {
	t.Helper()
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// writeTestFile creates a temporary file with the given content.
func writeTestFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

// assertOutputContains fails if the output does not contain the expected substring.
func assertOutputContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got: %s", expected, output)
	}
}

// assertRawHex fails if the raw output is not want in hex.
func assertRawHex(t *testing.T, output string, want []byte) {
	t.Helper()
	if got := strings.TrimSpace(output); got != hex.EncodeToString(want) {
		t.Errorf("raw = %s, want %x", got, want)
	}
}
