package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	owner := uuid.New()
	token, err := GenerateToken("secret", owner, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestParseToken_Rejects(t *testing.T) {
	owner := uuid.New()

	good, err := GenerateToken("secret", owner, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken("secret", owner, -time.Minute)
	require.NoError(t, err)

	cases := map[string]struct{ secret, token string }{
		"wrong secret": {"other", good},
		"expired":      {"secret", expired},
		"garbage":      {"secret", "not.a.token"},
		"empty":        {"secret", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tc.secret, tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
