package audit

import "errors"

// Writer persists audit events.
//
// Write must set HashPrev and Hash before storing the event, and must not
// return until the event is durable. A failed Write fails the operation
// being audited.
type Writer interface {
	Write(event *Event) error
	Close() error

	// LastHash returns the hash of the last event, GenesisHash if none.
	LastHash() string
}

// NopWriter discards events. It is installed while auditing is disabled.
type NopWriter struct{}

var _ Writer = NopWriter{}

func (NopWriter) Write(*Event) error { return nil }
func (NopWriter) Close() error       { return nil }
func (NopWriter) LastHash() string   { return GenesisHash }

// MultiWriter fans events out to several writers, stopping at the first
// failure.
type MultiWriter struct {
	writers []Writer
}

var _ Writer = (*MultiWriter)(nil)

// NewMultiWriter returns a writer that writes to all of writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (m *MultiWriter) Write(event *Event) error {
	for _, w := range m.writers {
		if err := w.Write(event); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every writer and joins their errors.
func (m *MultiWriter) Close() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LastHash reports the chain head of the first writer.
func (m *MultiWriter) LastHash() string {
	if len(m.writers) == 0 {
		return GenesisHash
	}
	return m.writers[0].LastHash()
}
