package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEnvFloat(t *testing.T) {
	t.Setenv("WEATHER_LAT", "")
	f, err := parseEnvFloat("WEATHER_LAT", 40.4168)
	require.NoError(t, err)
	require.Equal(t, 40.4168, f)

	t.Setenv("WEATHER_LAT", " 38.7223 ")
	f, err = parseEnvFloat("WEATHER_LAT", 40.4168)
	require.NoError(t, err)
	require.Equal(t, 38.7223, f)

	t.Setenv("WEATHER_LAT", "40,4")
	_, err = parseEnvFloat("WEATHER_LAT", 40.4168)
	require.Error(t, err)
}

func TestParseEnvBool(t *testing.T) {
	t.Setenv("SILENCE_ENABLED", "")
	b, err := parseEnvBool("SILENCE_ENABLED", true)
	require.NoError(t, err)
	require.True(t, b)

	t.Setenv("SILENCE_ENABLED", "false")
	b, err = parseEnvBool("SILENCE_ENABLED", true)
	require.NoError(t, err)
	require.False(t, b)

	t.Setenv("SILENCE_ENABLED", "yes")
	_, err = parseEnvBool("SILENCE_ENABLED", true)
	require.Error(t, err)
}
