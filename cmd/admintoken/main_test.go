package main

import (
	"bytes"
	"strings"
	"testing"

	"bookstore-be/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("Mints an admin token", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"-sub", "ops@bookstore", "-ttl", "1h"}, &out))

		claims, err := auth.ParseToken("test-secret", strings.TrimSpace(out.String()))
		require.NoError(t, err)
		assert.Equal(t, "ops@bookstore", claims.Subject)
		assert.True(t, claims.IsAdmin())
	})

	t.Run("Subject is required", func(t *testing.T) {
		assert.ErrorContains(t, run(nil, &bytes.Buffer{}), "-sub")
	})

	t.Run("Missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		assert.ErrorIs(t, run([]string{"-sub", "ops"}, &bytes.Buffer{}), auth.ErrMissingSecret)
	})
}
