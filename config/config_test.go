package config

import (
	"os"
	"testing"

	"github.com/battlesnakeio/gridsnake/rules"
	"github.com/stretchr/testify/require"
)

func TestGetEnvInt(t *testing.T) {
	defer os.Unsetenv("GRIDSNAKE_TEST_INT")

	require.Equal(t, 7, getEnvInt("GRIDSNAKE_TEST_INT", 7))

	os.Setenv("GRIDSNAKE_TEST_INT", "42")
	require.Equal(t, 42, getEnvInt("GRIDSNAKE_TEST_INT", 7))

	os.Setenv("GRIDSNAKE_TEST_INT", "forty")
	require.Equal(t, 7, getEnvInt("GRIDSNAKE_TEST_INT", 7))
}

func TestGetEnvPolicy(t *testing.T) {
	defer os.Unsetenv("GRIDSNAKE_TEST_POLICY")

	require.Equal(t, rules.Wrap, getEnvPolicy("GRIDSNAKE_TEST_POLICY", rules.Wrap))

	os.Setenv("GRIDSNAKE_TEST_POLICY", "wall")
	require.Equal(t, rules.Wall, getEnvPolicy("GRIDSNAKE_TEST_POLICY", rules.Wrap))

	os.Setenv("GRIDSNAKE_TEST_POLICY", "bouncy")
	require.Equal(t, rules.Wrap, getEnvPolicy("GRIDSNAKE_TEST_POLICY", rules.Wrap))
}
