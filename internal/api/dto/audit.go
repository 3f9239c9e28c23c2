package dto

// AuditVerifyResponse is the result of re-computing the audit hash chain.
type AuditVerifyResponse struct {
	// Valid indicates the whole chain verified.
	Valid bool `json:"valid"`

	// EntryCount is the number of events verified.
	EntryCount int `json:"entry_count"`

	// Errors lists the first broken link, if any.
	Errors []string `json:"errors,omitempty"`
}
