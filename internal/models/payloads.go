package models

// These structs define the JSON payloads exchanged between the browser page
// and the exam-solver HTTP function.

// CreateSessionResponse is returned when a new session is opened.
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// CredentialRequest sets the generation-service access key for a session.
type CredentialRequest struct {
	APIKey string `json:"apiKey"`
}

// DocumentUploadRequest is the JSON form of a file selection. DataURL is what a
// browser FileReader.readAsDataURL produces.
type DocumentUploadRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	DataURL string `json:"dataUrl"`
}

// SessionView is the client-facing projection of a session's state.
type SessionView struct {
	SessionID     string `json:"sessionId"`
	HasDocument   bool   `json:"hasDocument"`
	DocumentName  string `json:"documentName,omitempty"`
	PageCount     int    `json:"pageCount,omitempty"`
	HasCredential bool   `json:"hasCredential"`
	Loading       bool   `json:"loading"`
	Result        string `json:"result"`
	CanGenerate   bool   `json:"canGenerate"`
	GenerateLabel string `json:"generateLabel"`
	CanDownload   bool   `json:"canDownload"`
}

// ErrorResponse carries a user-facing notice.
type ErrorResponse struct {
	Error string `json:"error"`
}
