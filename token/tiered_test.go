package token

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiered_SessionClassStaysInMemory(t *testing.T) {
	durable := NewFileStore(filepath.Join(t.TempDir(), "tokens.json"))
	ts := NewTiered(NewMemoryStore(), durable)

	require.NoError(t, ts.SetTokens("access-1", "refresh-1", Session))

	assert.Equal(t, Session, ts.Class())
	assert.Equal(t, "access-1", ts.AccessToken())
	assert.Empty(t, durable.AccessToken(), "session tokens must not reach the durable tier")
}

func TestTiered_PermanentClassPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	ts := NewTiered(NewMemoryStore(), NewFileStore(path))

	require.NoError(t, ts.SetTokens("access-1", "refresh-1", Permanent))

	assert.Equal(t, Permanent, ts.Class())
	assert.Equal(t, "access-1", ts.AccessToken())

	// A rebuilt tiered store resumes the remembered login
	ts2 := NewTiered(NewMemoryStore(), NewFileStore(path))
	assert.Equal(t, Permanent, ts2.Class())
	assert.Equal(t, "refresh-1", ts2.RefreshToken())
}

func TestTiered_ClassSwitchClearsOtherTier(t *testing.T) {
	session := NewMemoryStore()
	durable := NewFileStore(filepath.Join(t.TempDir(), "tokens.json"))
	ts := NewTiered(session, durable)

	require.NoError(t, ts.SetTokens("access-1", "refresh-1", Permanent))
	require.NoError(t, ts.SetTokens("access-2", "refresh-2", Session))

	assert.Equal(t, Session, ts.Class())
	assert.Equal(t, "access-2", ts.AccessToken())
	assert.Empty(t, durable.AccessToken(), "durable tier must be cleared on switch to session")

	require.NoError(t, ts.SetTokens("access-3", "refresh-3", Permanent))
	assert.Empty(t, session.AccessToken(), "session tier must be cleared on switch to permanent")
}

func TestTiered_UpdateKeepsClass(t *testing.T) {
	durable := NewFileStore(filepath.Join(t.TempDir(), "tokens.json"))
	ts := NewTiered(NewMemoryStore(), durable)

	require.NoError(t, ts.SetTokens("access-1", "refresh-1", Permanent))
	require.NoError(t, ts.UpdateTokens("access-2", "refresh-2"))

	assert.Equal(t, Permanent, ts.Class())
	assert.Equal(t, "access-2", durable.AccessToken(), "refresh writes stay in the active tier")
}

func TestTiered_NoDurableTier(t *testing.T) {
	ts := NewTiered(NewMemoryStore(), nil)

	// Permanent requests degrade to the session tier instead of failing
	require.NoError(t, ts.SetTokens("access-1", "refresh-1", Permanent))
	assert.Equal(t, Session, ts.Class())
	assert.Equal(t, "access-1", ts.AccessToken())

	require.NoError(t, ts.Clear())
	assert.Empty(t, ts.AccessToken())
}

func TestTiered_ClearWipesBothTiers(t *testing.T) {
	session := NewMemoryStore()
	durable := NewFileStore(filepath.Join(t.TempDir(), "tokens.json"))
	ts := NewTiered(session, durable)

	require.NoError(t, durable.SetTokens("d-access", "d-refresh", Permanent))
	require.NoError(t, session.SetTokens("s-access", "s-refresh", Session))

	require.NoError(t, ts.Clear())
	assert.Empty(t, session.AccessToken())
	assert.Empty(t, durable.AccessToken())
}
