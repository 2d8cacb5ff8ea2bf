package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/newsroom-console/internal/models"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

func TestSessionManagerReturnsLoadingWhileRestoreRuns(t *testing.T) {
	env := newTestEnv(t)
	env.auth.current = &models.User{ID: "u1", Role: models.RoleAdmin}
	env.auth.block = make(chan struct{})
	env.manager.cfg.RestoreWait = 20 * time.Millisecond
	ctx := context.Background()

	seed := env.browser("ctx-1")
	require.NoError(t, seed.Storage.SetAccessToken(ctx, "tok"))

	b := env.manager.Open(ctx, "ctx-1")
	assert.True(t, b.Session.State().Loading)

	close(env.auth.block)
	assert.Eventually(t, func() bool {
		var cached models.User
		ok, _ := seed.Storage.Session().Get(ctx, KeyIdentity, &cached)
		return ok
	}, time.Second, 5*time.Millisecond)

	next := env.manager.Open(ctx, "ctx-1")
	state := next.Session.State()
	assert.False(t, state.Loading)
	assert.True(t, state.IsAdmin())
	assert.Equal(t, 1, env.auth.Calls("current"))
}

func TestSessionManagerCoalescesRestoreOfOneContext(t *testing.T) {
	env := newTestEnv(t)
	env.auth.current = &models.User{ID: "u1", Role: models.RoleUser}
	env.auth.block = make(chan struct{})
	env.manager.cfg.RestoreWait = time.Second
	ctx := context.Background()
	require.NoError(t, env.browser("ctx-1").Storage.SetAccessToken(ctx, "tok"))

	var wg sync.WaitGroup
	states := make([]models.SessionState, 4)
	for i := range states {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i] = env.manager.Open(ctx, "ctx-1").Session.State()
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(env.auth.block)
	wg.Wait()

	assert.Equal(t, 1, env.auth.Calls("current"))
	for _, state := range states {
		assert.True(t, state.IsAuthenticated())
	}
}

func TestSessionManagerOpenWithoutTokenIsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	state := env.manager.Open(context.Background(), "ctx-9").Session.State()

	assert.False(t, state.Loading)
	assert.False(t, state.IsAuthenticated())
}

func TestSessionManagerLateRestoreFailureKeepsNewerLogin(t *testing.T) {
	env := newTestEnv(t)
	env.auth.currentErr = appErrors.Clone(appErrors.ErrUnauthorized, "jwt expired")
	env.auth.block = make(chan struct{})
	env.auth.loginResult = &models.LoginResult{User: models.User{ID: "u1", Role: models.RoleEditor}, AccessToken: "fresh"}
	env.manager.cfg.RestoreWait = 20 * time.Millisecond
	ctx := context.Background()
	require.NoError(t, env.browser("ctx-1").Storage.SetAccessToken(ctx, "expired"))

	first := env.manager.Open(ctx, "ctx-1")
	require.True(t, first.Session.State().Loading)

	login := env.browser("ctx-1")
	_, err := login.Session.Login(ctx, models.LoginRequest{Email: "ed@news.test", Password: "secret"}, "")
	require.NoError(t, err)

	close(env.auth.block)
	var state models.SessionState
	assert.Eventually(t, func() bool {
		state = env.manager.Open(ctx, "ctx-1").Session.State()
		return !state.Loading
	}, time.Second, 5*time.Millisecond)

	assert.True(t, state.IsEditor())
	token, err := login.Storage.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, 1, env.auth.Calls("current"))
}
