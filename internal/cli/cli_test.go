package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbalancer/internal/report"
)

func TestParse(t *testing.T) {
	t.Run("positional path with defaults", func(t *testing.T) {
		cfg, exit, err := Parse([]string{"problem.hcl"}, &bytes.Buffer{})
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "problem.hcl", cfg.GridPath)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, report.FormatText, cfg.OutputFormat)
		assert.Empty(t, cfg.Policy)
		assert.False(t, cfg.RibbonPrepass)
	})

	t.Run("flags", func(t *testing.T) {
		cfg, _, err := Parse([]string{
			"-g", "dir", "-output", "YAML", "-policy", "maximize_t_minimize_grid",
			"-target-cycles", "1234", "-prepass", "-disable-cache", "-log-level", "debug",
		}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "dir", cfg.GridPath)
		assert.Equal(t, report.FormatYAML, cfg.OutputFormat)
		assert.Equal(t, "maximize_t_minimize_grid", cfg.Policy)
		assert.Equal(t, 1234, cfg.TargetCycles)
		assert.True(t, cfg.RibbonPrepass)
		assert.True(t, cfg.DisableCache)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("grid flag wins over positional", func(t *testing.T) {
		cfg, _, err := Parse([]string{"-grid", "a.hcl", "b.hcl"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "a.hcl", cfg.GridPath)
	})

	t.Run("no path prints usage", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(nil, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"log format", []string{"-log-format", "xml", "p.hcl"}, "invalid log-format"},
		{"log level", []string{"-log-level", "loud", "p.hcl"}, "invalid log-level"},
		{"output", []string{"-output", "csv", "p.hcl"}, "invalid output"},
		{"policy", []string{"-policy", "greedy", "p.hcl"}, "invalid policy"},
		{"target cycles", []string{"-target-cycles", "-5", "p.hcl"}, "target cycles cannot be negative"},
		{"unknown flag", []string{"-workers", "3"}, "flag provided but not defined"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
