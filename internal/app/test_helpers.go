package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/vk/spadequery/internal/session"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
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

// SetupAppTest creates an app whose sessions come from factory. It returns
// the app plus its query output and log output.
func SetupAppTest(t *testing.T, appConfig *Config, factory session.SessionFactory) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	out, logs := &SafeBuffer{}, &SafeBuffer{}
	appConfig.LogLevel = "debug"
	testApp := NewApp(out, logs, appConfig, NewLoader(), factory)

	t.Cleanup(func() {
		if os.Getenv("SPADEQUERY_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return testApp, out, logs
}
