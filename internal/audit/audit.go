package audit

import (
	"fmt"
	"sync"

	"github.com/remiblancher/keyder/pkg/der"
)

var (
	globalMu     sync.RWMutex
	globalWriter Writer = NopWriter{}
	enabled      bool
)

// Init installs w as the process-wide writer, closing the previous one.
// A nil w disables auditing. If the previous writer fails to close, w is
// closed too and auditing is left disabled.
func Init(w Writer) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if err := globalWriter.Close(); err != nil {
		if w != nil {
			_ = w.Close()
		}
		globalWriter = NopWriter{}
		enabled = false
		return fmt.Errorf("failed to close previous audit writer: %w", err)
	}
	if w == nil {
		globalWriter = NopWriter{}
		enabled = false
		return nil
	}
	globalWriter = w
	enabled = true
	return nil
}

// InitFile installs a FileWriter for path. An empty path disables auditing.
func InitFile(path string) error {
	if path == "" {
		return Init(nil)
	}
	w, err := NewFileWriter(path)
	if err != nil {
		return err
	}
	return Init(w)
}

// Close closes the process-wide writer and disables auditing.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	err := globalWriter.Close()
	globalWriter = NopWriter{}
	enabled = false
	return err
}

// Enabled reports whether a writer is installed.
func Enabled() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return enabled
}

// Log writes event to the process-wide writer.
func Log(event *Event) error {
	globalMu.RLock()
	w := globalWriter
	globalMu.RUnlock()

	return w.Write(event)
}

// MustLog is Log with the error wrapped for returning from the audited
// operation:
//
//	if err := audit.MustLog(event); err != nil {
//	    return err
//	}
func MustLog(event *Event) error {
	if err := Log(event); err != nil {
		return fmt.Errorf("audit log failed: %w", err)
	}
	return nil
}

// Source identifies where a key blob came from.
type Source struct {
	Actor  *Actor // nil keeps the local user
	Path   string
	Format string
}

func newKeyEvent(t EventType, result Result, src Source) *Event {
	e := NewEvent(t, result).WithObject(Object{Type: "key", Source: src.Path, Format: src.Format})
	if src.Actor != nil {
		e.WithActor(*src.Actor)
	}
	return e
}

func keyContext(info *der.KeyInfo) Context {
	return Context{
		Kind:      info.Kind.String(),
		Algorithm: info.Algorithm,
		OIDs:      info.OIDs,
		Length:    len(info.Raw),
	}
}

// LogKeyExtracted records a successful extraction. Only the length of the
// key is logged.
func LogKeyExtracted(src Source, info *der.KeyInfo) error {
	return MustLog(newKeyEvent(EventKeyExtracted, ResultSuccess, src).WithContext(keyContext(info)))
}

// LogKeyChecked records a key material check. checkErr is the check result.
func LogKeyChecked(src Source, info *der.KeyInfo, checkErr error) error {
	result := ResultSuccess
	ctx := keyContext(info)
	if checkErr != nil {
		result = ResultFailure
		ctx.Reason = checkErr.Error()
	}
	return MustLog(newKeyEvent(EventKeyChecked, result, src).WithContext(ctx))
}

// LogDecodeFailed records a blob that could not be decoded or held no key.
func LogDecodeFailed(src Source, decodeErr error) error {
	return MustLog(newKeyEvent(EventDecodeFailed, ResultFailure, src).
		WithContext(Context{Reason: decodeErr.Error()}))
}
