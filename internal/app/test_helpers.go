package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gridbalancer/internal/hcl"
	"github.com/vk/gridbalancer/internal/testutil"
)

// SetupAppTest writes problem into a temporary .hcl file and creates an app
// instance for system testing. It returns the app, its report output and its
// log output.
func SetupAppTest(t *testing.T, appConfig *Config, problem string) (*App, *testutil.SafeBuffer, *testutil.SafeBuffer) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "problem.hcl")
	require.NoError(t, os.WriteFile(path, []byte(problem), 0o600))
	appConfig.GridPath = path
	if appConfig.OutputFormat == "" {
		appConfig.OutputFormat = "text"
	}

	outBuffer := &testutil.SafeBuffer{}
	logBuffer := &testutil.SafeBuffer{}
	appConfig.LogLevel = "debug"
	testApp := NewApp(outBuffer, logBuffer, appConfig, hcl.NewLoader())

	t.Cleanup(func() {
		if os.Getenv("GRIDBALANCER_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
