package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/positions-ui/internal/domain/auth"
	"github.com/target/positions-ui/internal/mocks"
	mockauth "github.com/target/positions-ui/internal/mocks/auth"
	"github.com/target/positions-ui/internal/testutil"
	"go.uber.org/mock/gomock"
)

func TestSessionGuard_Check(t *testing.T) {
	ctx := context.Background()
	now := testutil.TestTime()

	sessions := mockauth.NewMemorySessionStore()
	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "with-token", AccessToken: "tok", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "no-token", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "expired", AccessToken: "tok", ExpiresAt: now.Add(-time.Hour)}))

	guard := NewSessionGuard(newAuthService(t, mocks.NewMockAccountAPI(gomock.NewController(t)), sessions))

	tests := []struct {
		name       string
		sessionID  string
		authorized bool
		reason     string
	}{
		{name: "no cookie", sessionID: "", reason: ReasonNoCookie},
		{name: "unknown session", sessionID: "nope", reason: ReasonNoSession},
		{name: "expired session", sessionID: "expired", reason: ReasonNoSession},
		{name: "session without credential", sessionID: "no-token", reason: ReasonNoCredential},
		{name: "authorized", sessionID: "with-token", authorized: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := guard.Check(ctx, tt.sessionID)
			require.NoError(t, err)
			assert.Equal(t, tt.authorized, decision.Authorized)
			assert.Equal(t, tt.reason, decision.Reason)
			if !tt.authorized {
				assert.Nil(t, decision.Session)
				assert.Nil(t, decision.Credentials)
				return
			}
			require.NotNil(t, decision.Credentials)
			token, err := decision.Credentials.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok", token)
		})
	}
}

func TestSessionGuard_LookupFailure(t *testing.T) {
	storeErr := errors.New("redis down")
	guard := NewSessionGuard(newAuthService(t, mocks.NewMockAccountAPI(gomock.NewController(t)), &mockSessionStore{
		getFunc: func(context.Context, string) (domainauth.Session, error) {
			return domainauth.Session{}, storeErr
		},
	}))

	decision, err := guard.Check(context.Background(), "sid")
	require.ErrorIs(t, err, storeErr)
	assert.False(t, decision.Authorized)
	assert.Equal(t, ReasonLookupFailed, decision.Reason)
}

func TestSessionGuard_LogoutThenCheck(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountAPI(ctrl)
	auth := newAuthService(t, accounts, mockauth.NewMemorySessionStore())
	guard := NewSessionGuard(auth)

	accounts.EXPECT().Login(gomock.Any(), "alice", "secret").Return("tok", nil)
	sess, err := auth.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	decision, err := guard.Check(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, decision.Authorized)

	require.NoError(t, auth.Logout(ctx, sess.ID))

	decision, err = guard.Check(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, decision.Authorized)
}

func TestNewSessionGuard_RequiresAuth(t *testing.T) {
	assert.Panics(t, func() { NewSessionGuard(nil) })
}
