package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/storefront/internal/auth"
	"github.com/mmynk/storefront/internal/models"
)

type fakePersist struct {
	token    string
	user     *models.User
	clearErr error
	loadErr  error
	clears   int
}

func (f *fakePersist) SaveSession(ctx context.Context, token string, user *models.User) error {
	f.token, f.user = token, user
	return nil
}

func (f *fakePersist) LoadSession(ctx context.Context) (string, *models.User, error) {
	return f.token, f.user, f.loadErr
}

func (f *fakePersist) ClearSession(ctx context.Context) error {
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.token, f.user = "", nil
	return nil
}

func (f *fakePersist) Close() error { return nil }

func TestStore_RoundTrip(t *testing.T) {
	s := New()
	u := &models.User{ID: 1, Username: "alice"}

	s.Set("abc", u)
	assert.Equal(t, "abc", s.Token())
	assert.Same(t, u, s.User())
	assert.True(t, s.LoggedIn())

	s.Clear()
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.False(t, s.LoggedIn())
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	s := New()
	s.Set("abc", &models.User{ID: 1})

	s.Clear()
	first := []any{s.Token(), s.User()}
	s.Clear()
	second := []any{s.Token(), s.User()}

	assert.Equal(t, first, second)
	assert.Empty(t, s.Token())
}

func TestStore_ClearSwallowsStorageFailure(t *testing.T) {
	p := &fakePersist{clearErr: errors.New("disk unavailable")}
	s := New(WithPersistence(p))
	s.Set("abc", &models.User{ID: 1})

	assert.NotPanics(t, func() {
		s.Clear()
		s.Clear()
	})
	assert.Empty(t, s.Token())
	assert.Equal(t, 2, p.clears)
}

func TestStore_EmptyTokenMeansLoggedOut(t *testing.T) {
	s := New()
	s.Set("", &models.User{ID: 1})
	assert.Nil(t, s.User(), "a cached user without a token must read as logged out")

	s.SetUser(&models.User{ID: 2})
	assert.Nil(t, s.User())
}

func TestStore_SetUserKeepsToken(t *testing.T) {
	s := New()
	s.Set("abc", &models.User{ID: 1, Nickname: "old"})
	s.SetUser(&models.User{ID: 1, Nickname: "new"})

	assert.Equal(t, "abc", s.Token())
	assert.Equal(t, "new", s.User().Nickname)
}

func TestStore_SaveAndRestore(t *testing.T) {
	ctx := context.Background()
	p := &fakePersist{}

	s := New(WithPersistence(p))
	s.Set("opaque-token", &models.User{ID: 5, Username: "bob"})
	require.NoError(t, s.Save(ctx))

	restored := New(WithPersistence(p))
	require.NoError(t, restored.Restore(ctx))
	assert.Equal(t, "opaque-token", restored.Token())
	assert.Equal(t, "bob", restored.User().Username)
}

func TestStore_RestoreDiscardsExpiredToken(t *testing.T) {
	expired, err := auth.NewJWTManager("secret", -time.Hour).Generate(&models.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	p := &fakePersist{token: expired, user: &models.User{ID: 1}}
	s := New(WithPersistence(p))

	require.NoError(t, s.Restore(context.Background()))
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.User())
	assert.Empty(t, p.token, "expired session should be removed from storage")
}

func TestStore_RestoreKeepsLiveToken(t *testing.T) {
	live, err := auth.NewJWTManager("secret", time.Hour).Generate(&models.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	s := New(WithPersistence(&fakePersist{token: live}))
	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, live, s.Token())
}

func TestStore_RestoreError(t *testing.T) {
	s := New(WithPersistence(&fakePersist{loadErr: errors.New("corrupt")}))
	assert.Error(t, s.Restore(context.Background()))
	assert.False(t, s.LoggedIn())
}

func TestStore_WithoutPersistence(t *testing.T) {
	s := New()
	assert.NoError(t, s.Save(context.Background()))
	assert.NoError(t, s.Restore(context.Background()))
}
