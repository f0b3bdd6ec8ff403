package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/hcl_adapter"
	"github.com/specialistvlad/featuregraph/internal/registry"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteDocument writes the given HCL files into a fresh temp directory and
// returns its path.
func WriteDocument(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

// SetupAppTest creates a new app instance over the given HCL files for
// system testing. cfg may be nil; DocumentPath is always overwritten.
func SetupAppTest(t *testing.T, files map[string]string, cfg *Config, modules ...registry.Module) (*App, *SafeBuffer) {
	t.Helper()

	if cfg == nil {
		cfg = &Config{}
	}
	cfg.DocumentPath = WriteDocument(t, files)
	cfg.LogLevel = "debug"
	validated, err := NewConfig(*cfg)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp, err := NewApp(context.Background(), logBuffer, validated, hcl_adapter.NewLoader(), modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = testApp.Close()
		if os.Getenv("FEATUREGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
