package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEnvInt(t *testing.T) {
	const key = "CYCLES_TEST_INT"
	defer os.Unsetenv(key)

	os.Unsetenv(key)
	require.Equal(t, 7, getEnvInt(key, 7))

	os.Setenv(key, "42")
	require.Equal(t, 42, getEnvInt(key, 7))

	os.Setenv(key, "forty-two")
	require.Equal(t, 7, getEnvInt(key, 7))
}
