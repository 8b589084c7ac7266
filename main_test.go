package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func runHashPassword(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"hash-password"}, args...))
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestHashPasswordFromArg(t *testing.T) {
	hash, err := runHashPassword(t, "", "s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestHashPasswordFromStdin(t *testing.T) {
	hash, err := runHashPassword(t, "s3cret\n")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := runHashPassword(t, "\n")
	assert.Error(t, err)

	_, err = runHashPassword(t, "", "a", "b")
	assert.Error(t, err)
}
