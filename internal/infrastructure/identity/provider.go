package identity

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"
)

const identityFileName = "identity.json"

// Options carries what the hosted platform handshake supplied for this
// session, if anything. Empty options mean a standalone browser launch.
type Options struct {
	PlatformUserID   string
	PlatformUsername string
	Anonymous        bool
}

// Provider resolves the per-installation user identity. The identity is
// created once, persisted next to the flight snapshot, and reused on
// every later launch from the same installation slot.
type Provider struct {
	path string
	log  logger.Logger
}

// NewProvider creates a provider rooted at dir.
func NewProvider(dir string, log logger.Logger) *Provider {
	return &Provider{
		path: filepath.Join(dir, identityFileName),
		log:  log,
	}
}

// Resolve returns the stored identity when one exists, otherwise mints a
// new one from the handshake options and persists it.
func (p *Provider) Resolve(opts Options) (entity.UserIdentity, error) {
	if stored, ok := p.load(); ok {
		return stored, nil
	}

	id := p.mint(opts)
	if err := p.save(id); err != nil {
		return entity.UserIdentity{}, err
	}

	p.log.Info("Created user identity", "origin", id.Origin, "owner", id.ID)
	return id, nil
}

func (p *Provider) load() (entity.UserIdentity, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.log.Warn("Failed to read stored identity, minting a new one", "error", err)
		}
		return entity.UserIdentity{}, false
	}

	var id entity.UserIdentity
	if err := json.Unmarshal(data, &id); err != nil {
		p.log.Warn("Stored identity is corrupt, minting a new one", "error", err)
		return entity.UserIdentity{}, false
	}
	if entity.ParseOwnerID(id.ID) != nil {
		p.log.Warn("Stored identity has a malformed owner id, minting a new one", "owner", id.ID)
		return entity.UserIdentity{}, false
	}

	return id, true
}

func (p *Provider) mint(opts Options) entity.UserIdentity {
	id := entity.UserIdentity{
		DisplayName: opts.PlatformUsername,
		CreatedAt:   time.Now().UTC(),
	}

	switch {
	case opts.PlatformUserID != "" && opts.Anonymous:
		id.Origin = entity.OriginAnonymousPlatform
		id.ID = platformUUID(opts.PlatformUserID)
	case opts.PlatformUserID != "":
		id.Origin = entity.OriginHostedPlatform
		id.ID = platformUUID(opts.PlatformUserID)
	default:
		id.Origin = entity.OriginStandalone
		id.ID = uuid.NewString()
	}

	if id.DisplayName == "" {
		id.DisplayName = "Traveler"
	}

	return id
}

// platformUUID derives a stable UUID from a hosted platform user id, so
// the same platform account always maps to the same owner partition.
func platformUUID(platformID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("tg://user?id="+platformID)).String()
}

func (p *Provider) save(id entity.UserIdentity) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return &entity.StorageError{Op: "mkdir", Err: err}
	}

	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return &entity.StorageError{Op: "encode", Err: err}
	}

	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return &entity.StorageError{Op: "write", Err: err}
	}

	return nil
}
