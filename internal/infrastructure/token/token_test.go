package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-storage-api/internal/domain/user"
)

func newService(t *testing.T, secret string) *Service {
	t.Helper()
	s, err := New(secret, time.Hour)
	require.NoError(t, err)
	return s
}

func someUser() *user.User {
	return &user.User{ID: 42, Username: "alice", Role: user.RoleAdmin}
}

func TestNew_EmptySecret(t *testing.T) {
	s, err := New("", time.Hour)
	require.ErrorIs(t, err, ErrEmptySecret)
	assert.Nil(t, s)
}

func TestIssueAndVerify_Success(t *testing.T) {
	s := newService(t, "super-secret")
	claims := s.ClaimsFor(someUser())

	tok, err := s.Issue(claims)
	require.NoError(t, err, "Issue should not error")
	require.Len(t, strings.Split(tok, "."), 3)

	got, err := s.Verify(tok)
	require.NoError(t, err, "Verify should not error for fresh token")
	require.NotNil(t, got)

	assert.Equal(t, claims, *got)
	assert.Equal(t, user.ID(42), got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, user.RoleAdmin, got.Role)
	assert.True(t, got.ExpiresAt.Time.After(time.Now()))
}

func TestVerify_Table(t *testing.T) {
	makeToken := func(secret string, exp time.Duration) string {
		s := newService(t, secret)
		c := s.ClaimsFor(someUser())
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(exp))
		tok, err := s.Issue(c)
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"invalid secret (signature mismatch)", "k2", makeToken("k1", 5*time.Minute)},
		{"expired token", "k1", makeToken("k1", -1*time.Minute)},
		{"malformed token string", "k1", "not-a-token"},
		{"two segments", "k1", "aGVhZGVy.Y2xhaW1z"},
		{"four segments", "k1", makeToken("k1", time.Minute) + ".extra"},
		{"empty", "k1", ""},
		{
			"alg none",
			"k1",
			func() string {
				c := newService(t, "k1").ClaimsFor(someUser())
				tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return tok
			}(),
		},
		{
			"missing expiry",
			"k1",
			func() string {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1, Role: user.RoleUser}).SignedString([]byte("k1"))
				require.NoError(t, err)
				return tok
			}(),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t, tt.secret)

			claims, err := s.Verify(tt.token)
			require.Error(t, err)
			assert.EqualError(t, err, "invalid token")
			assert.Nil(t, claims)
		})
	}
}

func TestVerify_AnyAlteredByteIsRejected(t *testing.T) {
	s := newService(t, "k1")
	tok, err := s.Issue(s.ClaimsFor(someUser()))
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		if tok[i] == '.' {
			continue
		}
		repl := byte('A')
		if tok[i] == 'A' {
			repl = 'B'
		}
		altered := tok[:i] + string(repl) + tok[i+1:]

		claims, err := s.Verify(altered)
		require.Errorf(t, err, "altered byte %d must be rejected", i)
		require.Nil(t, claims)
	}
}

func TestVerify_ExpiryUsesClock(t *testing.T) {
	s := newService(t, "k1")
	tok, err := s.Issue(s.ClaimsFor(someUser()))
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
