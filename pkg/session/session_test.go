package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/community-services/pkg/localstore"
)

func TestSignInRoundTrip(t *testing.T) {
	storage := localstore.NewMemStore()
	s := Load(storage)
	assert.False(t, s.SignedIn())

	require.NoError(t, s.SignIn("tok-123", Profile{ID: "u1", Name: "Sam", Email: "sam@example.com"}))
	assert.True(t, s.SignedIn())

	reloaded := Load(storage)
	assert.True(t, reloaded.SignedIn())
	assert.Equal(t, "tok-123", reloaded.Token())
	require.NotNil(t, reloaded.Profile())
	assert.Equal(t, "Sam", reloaded.Profile().Name)
}

func TestSignOutClearsStorage(t *testing.T) {
	storage := localstore.NewMemStore()
	s := Load(storage)
	require.NoError(t, s.SignIn("tok-123", Profile{ID: "u1"}))

	require.NoError(t, s.SignOut())
	assert.False(t, s.SignedIn())
	assert.Nil(t, s.Profile())

	reloaded := Load(storage)
	assert.False(t, reloaded.SignedIn())
}

func TestCorruptProfileDiscarded(t *testing.T) {
	storage := localstore.NewMemStore()
	require.NoError(t, storage.Save(localstore.KeyToken, []byte("tok-123")))
	require.NoError(t, storage.Save(localstore.KeyProfile, []byte("{broken")))

	s := Load(storage)

	assert.True(t, s.SignedIn(), "a corrupt profile must not sign the user out")
	assert.Nil(t, s.Profile())
	_, err := storage.Load(localstore.KeyProfile)
	assert.ErrorIs(t, err, localstore.ErrNoEntry)
}
