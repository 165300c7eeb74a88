package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	u, err := CreateUser("Jane Buyer", "jane@example.com", "s3cret-pass")
	require.NoError(t, err)

	assert.Equal(t, STATUS_ACTIVE, u.Status)
	assert.NotEqual(t, "s3cret-pass", u.Password)
	assert.True(t, CheckPasswordHash("s3cret-pass", u.Password))
	assert.False(t, CheckPasswordHash("wrong-pass", u.Password))
}

func TestCreateUserInvalid(t *testing.T) {
	_, err := CreateUser("Jo", "not-an-email", "s3cret-pass")
	assert.Error(t, err)

	_, err = CreateUser("Jane Buyer", "jane@example.com", "short")
	assert.Error(t, err)
}

func TestIssueAPIToken(t *testing.T) {
	u := &User{}
	raw, err := u.IssueAPIToken()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, "cfl_"))
	assert.Equal(t, HashAPIToken(raw), u.APITokenHash)
	assert.Len(t, u.APITokenHash, 64)
	assert.NotNil(t, u.APITokenIssuedAt)

	// Tokens are unique per issue.
	again, err := u.IssueAPIToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, again)
}

func TestHashAPITokenTrimsWhitespace(t *testing.T) {
	assert.Equal(t, HashAPIToken("cfl_abc"), HashAPIToken("  cfl_abc \n"))
	assert.NotEqual(t, HashAPIToken("cfl_abc"), HashAPIToken("cfl_abd"))
}
