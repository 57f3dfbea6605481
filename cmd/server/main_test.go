package main

import (
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("ARTIFACTS_DIR", dir)
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "cinesuggest.db"))
	t.Setenv("MIGRATIONS_PATH", filepath.Join("..", "..", "migrations"))
	t.Setenv("LOG_LEVEL", "disabled")
	return dir
}

func TestRun_InvalidConfigReturnsError(t *testing.T) {
	setupEnv(t)
	t.Setenv("LOG_FORMAT", "xml")

	if err := run(); err == nil {
		t.Fatal("Expected configuration error")
	}
}

// A listen failure after the database is open must come back as an error
// rather than exiting the process.
func TestRun_ListenFailureReturnsError(t *testing.T) {
	setupEnv(t)
	t.Setenv("HISTORY_ENABLED", "true")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve a port: %v", err)
	}
	defer ln.Close()

	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("PORT", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port))

	done := make(chan error, 1)
	go func() { done <- run() }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Expected listen error")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after listen failure")
	}
}
