package identity

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"
)

func TestResolve_StandaloneMintsRandomUUID(t *testing.T) {
	provider := NewProvider(t.TempDir(), logger.NewNop())

	id, err := provider.Resolve(Options{})
	require.NoError(t, err)

	assert.Equal(t, entity.OriginStandalone, id.Origin)
	assert.Equal(t, "Traveler", id.DisplayName)
	_, err = uuid.Parse(id.ID)
	assert.NoError(t, err)
}

func TestResolve_ReusesStoredIdentity(t *testing.T) {
	dir := t.TempDir()

	first, err := NewProvider(dir, logger.NewNop()).Resolve(Options{})
	require.NoError(t, err)

	// a fresh provider over the same installation slot sees the same identity
	second, err := NewProvider(dir, logger.NewNop()).Resolve(Options{PlatformUserID: "12345"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, entity.OriginStandalone, second.Origin)
}

func TestResolve_PlatformIdentityIsDeterministic(t *testing.T) {
	a, err := NewProvider(t.TempDir(), logger.NewNop()).Resolve(Options{PlatformUserID: "12345", PlatformUsername: "maria"})
	require.NoError(t, err)
	b, err := NewProvider(t.TempDir(), logger.NewNop()).Resolve(Options{PlatformUserID: "12345", PlatformUsername: "maria"})
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID, "same platform account maps to the same owner partition")
	assert.Equal(t, entity.OriginHostedPlatform, a.Origin)
	assert.Equal(t, "maria", a.DisplayName)
}

func TestResolve_AnonymousPlatformOrigin(t *testing.T) {
	id, err := NewProvider(t.TempDir(), logger.NewNop()).Resolve(Options{PlatformUserID: "999", Anonymous: true})
	require.NoError(t, err)

	assert.Equal(t, entity.OriginAnonymousPlatform, id.Origin)
}

func TestResolve_CorruptFileIsReplaced(t *testing.T) {
	dir := t.TempDir()
	provider := NewProvider(dir, logger.NewNop())

	_, err := provider.Resolve(Options{})
	require.NoError(t, err)

	// clobber the stored identity, next resolve mints a fresh one
	require.NoError(t, os.WriteFile(provider.path, []byte("garbage"), 0o600))

	id, err := provider.Resolve(Options{})
	require.NoError(t, err)
	assert.NoError(t, entity.ParseOwnerID(id.ID))
}
