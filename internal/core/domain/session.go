package domain

import "time"

// SessionStatus is the lifecycle state of one answering session.
//
//	uninitialized --initialize--> initializing --ok--> ready
//	                                           --err-> failed (a new initialize may retry)
type SessionStatus string

const (
	SessionUninitialized SessionStatus = "uninitialized"
	SessionInitializing  SessionStatus = "initializing"
	SessionReady         SessionStatus = "ready"
	SessionFailed        SessionStatus = "failed"
)

type SessionInfo struct {
	DocumentID string        `json:"document_id,omitempty"`
	Status     SessionStatus `json:"status"`
	Backend    string        `json:"backend,omitempty"`
	Chunks     int           `json:"chunks"`
	Indexed    bool          `json:"indexed"`
	Error      string        `json:"error,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
