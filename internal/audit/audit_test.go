package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/remiblancher/keyder/pkg/der"
)

func ed25519Info() *der.KeyInfo {
	return &der.KeyInfo{
		Kind:       der.KindPrivate,
		Raw:        make([]byte, 32),
		OIDs:       []string{der.OIDEd25519},
		Algorithms: []string{der.LabelEd25519},
		Algorithm:  der.LabelEd25519,
	}
}

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		events = append(events, ev)
	}
	return events
}

func TestU_NewEvent(t *testing.T) {
	event := NewEvent(EventKeyExtracted, ResultSuccess)

	if event.EventType != EventKeyExtracted {
		t.Errorf("EventType = %s, want %s", event.EventType, EventKeyExtracted)
	}
	if event.Timestamp == "" {
		t.Error("Timestamp should not be empty")
	}
	if event.Actor.Type != "user" || event.Actor.ID == "" {
		t.Errorf("Actor = %+v, want a user actor", event.Actor)
	}
	if event.Object.Type != "key" {
		t.Errorf("Object.Type = %q, want key", event.Object.Type)
	}
}

func TestU_Event_Validate(t *testing.T) {
	tests := []struct {
		name    string
		event   *Event
		wantErr bool
	}{
		{"valid", NewEvent(EventKeyChecked, ResultSuccess), false},
		{"missing event type", &Event{Timestamp: "2026-01-01T00:00:00Z", Actor: Actor{Type: "user", ID: "a"}, Result: ResultSuccess}, true},
		{"missing timestamp", &Event{EventType: EventKeyChecked, Actor: Actor{Type: "user", ID: "a"}, Result: ResultSuccess}, true},
		{"missing actor", &Event{EventType: EventKeyChecked, Timestamp: "2026-01-01T00:00:00Z", Result: ResultSuccess}, true},
		{"missing result", &Event{EventType: EventKeyChecked, Timestamp: "2026-01-01T00:00:00Z", Actor: Actor{Type: "user", ID: "a"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.event.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestU_FileWriter_Chain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	w, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}

	if w.LastHash() != GenesisHash {
		t.Errorf("LastHash() = %s, want %s", w.LastHash(), GenesisHash)
	}
	for i := 0; i < 3; i++ {
		if err := w.Write(NewEvent(EventKeyExtracted, ResultSuccess)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	events := readEvents(t, path)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].HashPrev != GenesisHash {
		t.Errorf("first HashPrev = %s, want genesis", events[0].HashPrev)
	}
	for i := 1; i < len(events); i++ {
		if events[i].HashPrev != events[i-1].Hash {
			t.Errorf("event %d HashPrev does not link to event %d", i, i-1)
		}
	}

	n, err := VerifyChain(path)
	if err != nil {
		t.Fatalf("VerifyChain() error = %v", err)
	}
	if n != 3 {
		t.Errorf("VerifyChain() = %d, want 3", n)
	}
}

func TestU_FileWriter_ContinuesExistingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	w1, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	if err := w1.Write(NewEvent(EventKeyExtracted, ResultSuccess)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	head := w1.LastHash()
	_ = w1.Close()

	w2, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	defer func() { _ = w2.Close() }()
	if w2.LastHash() != head {
		t.Errorf("LastHash() = %s, want %s", w2.LastHash(), head)
	}
	if err := w2.Write(NewEvent(EventKeyChecked, ResultFailure)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if n, err := VerifyChain(path); err != nil || n != 2 {
		t.Errorf("VerifyChain() = %d, %v; want 2, nil", n, err)
	}
}

func TestU_FileWriter_WriteAfterClose(t *testing.T) {
	w, err := NewFileWriter(filepath.Join(t.TempDir(), "audit.jsonl"))
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	_ = w.Close()
	if err := w.Write(NewEvent(EventKeyExtracted, ResultSuccess)); err == nil {
		t.Error("Write() after Close() should fail")
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestU_FileWriter_RejectsInvalidEvent(t *testing.T) {
	w, err := NewFileWriter(filepath.Join(t.TempDir(), "audit.jsonl"))
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Write(&Event{}); err == nil {
		t.Error("Write() should reject an empty event")
	}
	if w.LastHash() != GenesisHash {
		t.Error("a rejected event must not advance the chain")
	}
}

func TestU_NewFileWriter_CorruptLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	if err := os.WriteFile(path, []byte("not json\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileWriter(path); err == nil {
		t.Error("NewFileWriter() should fail on a corrupt log")
	}
}

func TestU_VerifyChain_DetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	w, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	for _, alg := range []string{"ed25519", "ecdsa"} {
		ev := NewEvent(EventKeyExtracted, ResultSuccess).WithContext(Context{Algorithm: alg})
		if err := w.Write(ev); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	_ = w.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), `"algorithm":"ecdsa"`, `"algorithm":"rsa"`, 1)
	if err := os.WriteFile(path, []byte(tampered), 0600); err != nil {
		t.Fatal(err)
	}

	n, err := VerifyChain(path)
	if err == nil {
		t.Fatal("VerifyChain() should detect the edited event")
	}
	if n != 1 {
		t.Errorf("VerifyChain() verified %d events, want 1", n)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want it to name line 2", err)
	}
}

func TestU_VerifyChain_EmptyLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if n, err := VerifyChain(path); err != nil || n != 0 {
		t.Errorf("VerifyChain() = %d, %v; want 0, nil", n, err)
	}
}

type failingWriter struct{ NopWriter }

func (failingWriter) Write(*Event) error { return errors.New("disk full") }

func TestU_MultiWriter(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileWriter(filepath.Join(dir, "a.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewFileWriter(filepath.Join(dir, "b.jsonl"))
	if err != nil {
		t.Fatal(err)
	}

	m := NewMultiWriter(a, b)
	if err := m.Write(NewEvent(EventKeyExtracted, ResultSuccess)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if m.LastHash() != a.LastHash() {
		t.Error("LastHash() should report the first writer")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for _, name := range []string{"a.jsonl", "b.jsonl"} {
		if n, err := VerifyChain(filepath.Join(dir, name)); err != nil || n != 1 {
			t.Errorf("%s: VerifyChain() = %d, %v; want 1, nil", name, n, err)
		}
	}

	if err := NewMultiWriter(NopWriter{}, failingWriter{}).Write(NewEvent(EventKeyExtracted, ResultSuccess)); err == nil {
		t.Error("Write() should fail when any writer fails")
	}
	if NewMultiWriter().LastHash() != GenesisHash {
		t.Error("empty MultiWriter LastHash() should be genesis")
	}
}

func TestU_Global_LogHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	if err := InitFile(path); err != nil {
		t.Fatalf("InitFile() error = %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	if !Enabled() {
		t.Fatal("Enabled() = false after InitFile")
	}

	src := Source{Path: "key.pem", Format: "pem"}
	if err := LogKeyExtracted(src, ed25519Info()); err != nil {
		t.Fatalf("LogKeyExtracted() error = %v", err)
	}
	if err := LogKeyChecked(src, ed25519Info(), errors.New("bad point")); err != nil {
		t.Fatalf("LogKeyChecked() error = %v", err)
	}
	svc := &Actor{Type: "service", ID: "keyder-api"}
	if err := LogDecodeFailed(Source{Actor: svc, Path: "req-1"}, der.ErrUnexpectedEnd); err != nil {
		t.Fatalf("LogDecodeFailed() error = %v", err)
	}
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if Enabled() {
		t.Error("Enabled() = true after Close")
	}

	events := readEvents(t, path)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	ext := events[0]
	if ext.EventType != EventKeyExtracted || ext.Result != ResultSuccess {
		t.Errorf("event 0 = %s/%s", ext.EventType, ext.Result)
	}
	if ext.Context.Length != 32 || ext.Context.Kind != "private" || ext.Context.Algorithm != der.LabelEd25519 {
		t.Errorf("event 0 context = %+v", ext.Context)
	}
	if ext.Object.Source != "key.pem" || ext.Object.Format != "pem" {
		t.Errorf("event 0 object = %+v", ext.Object)
	}

	if events[1].Result != ResultFailure || events[1].Context.Reason != "bad point" {
		t.Errorf("event 1 = %s reason %q", events[1].Result, events[1].Context.Reason)
	}
	if events[2].EventType != EventDecodeFailed || events[2].Actor.Type != "service" {
		t.Errorf("event 2 = %s actor %+v", events[2].EventType, events[2].Actor)
	}

	if n, err := VerifyChain(path); err != nil || n != 3 {
		t.Errorf("VerifyChain() = %d, %v; want 3, nil", n, err)
	}
}

func TestU_Global_NoKeyBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	if err := InitFile(path); err != nil {
		t.Fatalf("InitFile() error = %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	info := ed25519Info()
	for i := range info.Raw {
		info.Raw[i] = 0xab
	}
	if err := LogKeyExtracted(Source{}, info); err != nil {
		t.Fatalf("LogKeyExtracted() error = %v", err)
	}
	_ = Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "abababab") {
		t.Error("audit log contains key bytes")
	}
}

func TestU_Global_Disabled(t *testing.T) {
	if err := InitFile(""); err != nil {
		t.Fatalf("InitFile(\"\") error = %v", err)
	}
	if Enabled() {
		t.Error("Enabled() = true with an empty path")
	}
	if err := LogKeyExtracted(Source{}, ed25519Info()); err != nil {
		t.Errorf("LogKeyExtracted() with auditing disabled error = %v", err)
	}
}

func TestU_MustLog_WrapsError(t *testing.T) {
	if err := Init(failingWriter{}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = Close() })

	err := MustLog(NewEvent(EventKeyExtracted, ResultSuccess))
	if err == nil || !strings.HasPrefix(err.Error(), "audit log failed") {
		t.Errorf("MustLog() error = %v", err)
	}
}

type closeFailingWriter struct{ NopWriter }

func (closeFailingWriter) Close() error { return errors.New("sync failed") }

func TestU_Init_PreviousCloseFails(t *testing.T) {
	if err := Init(closeFailingWriter{}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = Close() })

	path := filepath.Join(t.TempDir(), "audit.jsonl")
	next, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}

	if err := Init(next); err == nil {
		t.Fatal("Init() should report the close failure")
	}
	if Enabled() {
		t.Error("Enabled() = true after a failed Init")
	}
	// The new writer was closed rather than leaked.
	if err := next.Write(NewEvent(EventKeyExtracted, ResultSuccess)); err == nil {
		t.Error("Write() on the rejected writer should fail")
	}

	if err := InitFile(path); err != nil {
		t.Fatalf("InitFile() after a failed Init error = %v", err)
	}
	if !Enabled() {
		t.Error("Enabled() = false after InitFile")
	}
}
