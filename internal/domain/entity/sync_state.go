package entity

import "time"

// SyncState is a point-in-time snapshot of the sync coordinator's
// transient status. It never carries record data.
type SyncState struct {
	Online         bool       `json:"online"`
	IsSyncing      bool       `json:"isSyncing"`
	LastSync       *time.Time `json:"lastSync,omitempty"`
	PendingChanges int        `json:"pendingChanges"`
	HasError       bool       `json:"hasError"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
}
