package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuePrintsToken(t *testing.T) {
	t.Setenv("CARDVAULT_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "issue", "--subject", "7", "--roles", "ROLE_ADMIN"})
	require.NoError(t, root.Execute())

	token := strings.TrimSpace(out.String())
	assert.Len(t, strings.Split(token, "."), 3)
}

func TestTokenIssueWithoutSecretFails(t *testing.T) {
	t.Setenv("CARDVAULT_AUTH_JWT_SECRET", "")

	root := rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"token", "issue", "--subject", "7"})
	assert.Error(t, root.Execute())
}

func TestMigrateCreatesSQLiteSchema(t *testing.T) {
	t.Setenv("CARDVAULT_DATABASE_DSN", t.TempDir()+"/cardvault.db")
	t.Setenv("CARDVAULT_LOGGING_LEVEL", "error")

	root := rootCmd()
	root.SetArgs([]string{"migrate"})
	require.NoError(t, root.Execute())
}

func TestCacheFlushMemory(t *testing.T) {
	t.Setenv("CARDVAULT_LOGGING_LEVEL", "error")

	root := rootCmd()
	root.SetArgs([]string{"cache", "flush"})
	require.NoError(t, root.Execute())
}
