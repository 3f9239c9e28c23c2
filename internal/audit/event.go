// Package audit records key extraction activity as a tamper-evident log.
//
// Events are written as JSON lines, each carrying the SHA-256 hash of the
// previous event so that edits and deletions break the chain. Events never
// contain key bytes: only the key kind, algorithm label and length.
package audit

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// EventType is the category of an audit event.
type EventType string

const (
	EventKeyExtracted EventType = "KEY_EXTRACTED"
	EventKeyChecked   EventType = "KEY_CHECKED"
	EventDecodeFailed EventType = "DECODE_FAILED"
)

// Result is the outcome of an audited operation.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Actor is who ran the operation.
type Actor struct {
	Type string `json:"type"` // "user" for the CLI, "service" for the API
	ID   string `json:"id"`
	Host string `json:"host,omitempty"`
}

// Object is the key blob acted upon.
type Object struct {
	Type   string `json:"type"`             // always "key"
	Source string `json:"source,omitempty"` // file path, "-" or request ID
	Format string `json:"format,omitempty"` // der, pem or hex
}

// Context carries what was learned about the key.
type Context struct {
	Kind      string   `json:"kind,omitempty"`
	Algorithm string   `json:"algorithm,omitempty"`
	OIDs      []string `json:"oids,omitempty"`
	Length    int      `json:"length,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// Event is one audit log entry.
type Event struct {
	EventType EventType `json:"event_type"`
	Timestamp string    `json:"timestamp"` // RFC3339 UTC
	Actor     Actor     `json:"actor"`
	Object    Object    `json:"object"`
	Context   Context   `json:"context"`
	Result    Result    `json:"result"`
	HashPrev  string    `json:"hash_prev"`
	Hash      string    `json:"hash"`
}

// NewEvent returns an event stamped with the current time and the local
// user as actor.
func NewEvent(eventType EventType, result Result) *Event {
	host, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	if user == "" {
		user = "unknown"
	}

	return &Event{
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Actor:     Actor{Type: "user", ID: user, Host: host},
		Object:    Object{Type: "key"},
		Result:    result,
	}
}

// WithObject sets the object.
func (e *Event) WithObject(obj Object) *Event {
	e.Object = obj
	return e
}

// WithContext sets the context.
func (e *Event) WithContext(ctx Context) *Event {
	e.Context = ctx
	return e
}

// WithActor replaces the default actor.
func (e *Event) WithActor(actor Actor) *Event {
	e.Actor = actor
	return e
}

// Validate checks that required fields are set.
func (e *Event) Validate() error {
	switch {
	case e.EventType == "":
		return errors.New("event_type is required")
	case e.Timestamp == "":
		return errors.New("timestamp is required")
	case e.Actor.Type == "" || e.Actor.ID == "":
		return errors.New("actor type and id are required")
	case e.Result == "":
		return errors.New("result is required")
	}
	return nil
}

// canonicalJSON is the hashed form of e: every field except Hash.
func (e *Event) canonicalJSON() ([]byte, error) {
	type hashed struct {
		EventType EventType `json:"event_type"`
		Timestamp string    `json:"timestamp"`
		Actor     Actor     `json:"actor"`
		Object    Object    `json:"object"`
		Context   Context   `json:"context"`
		Result    Result    `json:"result"`
		HashPrev  string    `json:"hash_prev"`
	}
	return json.Marshal(hashed{
		EventType: e.EventType,
		Timestamp: e.Timestamp,
		Actor:     e.Actor,
		Object:    e.Object,
		Context:   e.Context,
		Result:    e.Result,
		HashPrev:  e.HashPrev,
	})
}
