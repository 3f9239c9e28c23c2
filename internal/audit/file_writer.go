package audit

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

const (
	// GenesisHash is the HashPrev of the first event in a log.
	GenesisHash = "sha256:genesis"

	// HashPrefix prefixes every event hash.
	HashPrefix = "sha256:"
)

// FileWriter appends hash-chained events to a JSONL file.
type FileWriter struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	lastHash string
}

var _ Writer = (*FileWriter)(nil)

// NewFileWriter opens path for appending. An existing log is continued from
// its last event hash.
func NewFileWriter(path string) (*FileWriter, error) {
	lastHash := GenesisHash
	if data, err := os.ReadFile(path); err == nil {
		h, err := lastEventHash(data)
		if err != nil {
			return nil, fmt.Errorf("failed to read last hash from %s: %w", path, err)
		}
		lastHash = h
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &FileWriter{file: f, path: path, lastHash: lastHash}, nil
}

// Write chains, appends and syncs event.
func (w *FileWriter) Write(event *Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("audit log %s is closed", w.path)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	event.HashPrev = w.lastHash
	canonical, err := event.canonicalJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	event.Hash = chainHash(canonical, event.HashPrev)

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	if _, err := w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}

	w.lastHash = event.Hash
	return nil
}

// Close syncs and closes the file. Later writes fail.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (w *FileWriter) LastHash() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastHash
}

// Path returns the log file path.
func (w *FileWriter) Path() string {
	return w.path
}

// chainHash is SHA-256 over the canonical event followed by the previous hash.
func chainHash(canonical []byte, prev string) string {
	h := sha256.New()
	_, _ = h.Write(canonical)
	_, _ = h.Write([]byte(prev))
	return HashPrefix + hex.EncodeToString(h.Sum(nil))
}

func lastEventHash(data []byte) (string, error) {
	var last []byte
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := bytes.TrimSpace(sc.Bytes()); len(line) > 0 {
			last = append(last[:0], line...)
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if last == nil {
		return GenesisHash, nil
	}

	var ev struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(last, &ev); err != nil {
		return "", fmt.Errorf("failed to parse last event: %w", err)
	}
	if ev.Hash == "" {
		return "", fmt.Errorf("last event has no hash")
	}
	return ev.Hash, nil
}

// VerifyChain recomputes the hash chain of the log at path. It returns the
// number of events verified before the first broken link.
func VerifyChain(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read audit log: %w", err)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	prev := GenesisHash
	verified := 0
	for lineNum := 1; sc.Scan(); lineNum++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return verified, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		if ev.HashPrev != prev {
			return verified, fmt.Errorf("line %d: hash chain broken: expected prev=%s, got prev=%s", lineNum, prev, ev.HashPrev)
		}
		canonical, err := ev.canonicalJSON()
		if err != nil {
			return verified, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if want := chainHash(canonical, ev.HashPrev); ev.Hash != want {
			return verified, fmt.Errorf("line %d: hash mismatch: expected=%s, got=%s", lineNum, want, ev.Hash)
		}

		prev = ev.Hash
		verified++
	}
	if err := sc.Err(); err != nil {
		return verified, fmt.Errorf("scan error: %w", err)
	}
	return verified, nil
}
