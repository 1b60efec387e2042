package entity

import (
	"time"

	"github.com/google/uuid"
)

// OriginKind records where a user identity came from. Sync logic treats
// all three kinds identically once it has an owner UUID.
type OriginKind string

const (
	OriginHostedPlatform    OriginKind = "hosted-platform"
	OriginAnonymousPlatform OriginKind = "anonymous-hosted-platform"
	OriginStandalone        OriginKind = "standalone"
)

// UserIdentity is the owner of every local record and the partition key
// for the remote datastore. It is persisted per installation, not synced
// as a record.
type UserIdentity struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Origin      OriginKind `json:"origin"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ParseOwnerID checks that an owner identifier is a syntactically valid
// UUID, failing fast with a FormatError before any network call.
func ParseOwnerID(ownerID string) error {
	if _, err := uuid.Parse(ownerID); err != nil {
		return &FormatError{Field: "owner id", Value: ownerID}
	}
	return nil
}
