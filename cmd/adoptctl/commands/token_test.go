package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/app/seed"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestTokenForSeededAdmin(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")

	raw, err := runRoot(t, "token", "--as", "admin")
	require.NoError(t, err)

	verifier, err := auth.NewVerifier("cli-secret")
	require.NoError(t, err)
	identity, err := verifier.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, seed.Admin.UserID, identity.UserID)
	assert.True(t, identity.IsAdmin())
}

func TestTokenRejectsBadSubject(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")

	_, err := runRoot(t, "token", "--user-id", "nope")
	assert.Error(t, err)
}

func TestMigrateRequiresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := runRoot(t, "migrate", "up")
	assert.ErrorContains(t, err, "POSTGRES_DSN")
}
