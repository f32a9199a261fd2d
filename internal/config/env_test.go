package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("SCORER_SIGNING_KEY", "0123456789abcdef")
	t.Setenv("SCORER_ADDR", ":7000")
	t.Setenv("SCORER_WORKERS", "3")
	t.Setenv("SCORER_LOG_LEVEL", "debug")
	t.Setenv("SCORER_TOKEN_SYMBOL", "scrt")
	t.Setenv("SCORER_TOKEN_RATE", "1.25")

	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, ":7000", env.Addr)
	assert.Equal(t, DefaultMetricsAddr, env.MetricsAddr)
	assert.Equal(t, 3, env.Workers)
	assert.Equal(t, "SCRT", env.TokenSymbol)
	assert.True(t, env.TokenRate.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, "DEBUG", env.LogLevel.String())
}

func TestLoadEnv_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"short signing key": {"SCORER_SIGNING_KEY": "short"},
		"bad workers":       {"SCORER_SIGNING_KEY": "0123456789abcdef", "SCORER_WORKERS": "many"},
		"bad token rate":    {"SCORER_SIGNING_KEY": "0123456789abcdef", "SCORER_TOKEN_RATE": "cheap"},
		"bad log level":     {"SCORER_SIGNING_KEY": "0123456789abcdef", "SCORER_LOG_LEVEL": "loud"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("SCORER_SIGNING_KEY", "")
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := LoadEnv()
			assert.Error(t, err)
		})
	}
}

func TestEnv_LoadScoringDefault(t *testing.T) {
	env := &Env{}
	cfg, err := env.LoadScoring()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
