package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/sawlet/events"
	"github.com/mezonai/sawlet/types"
)

func writeClientConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	keyDir := filepath.Join(dir, "keys")
	path := filepath.Join(dir, "client.yml")
	content := "config:\n  wallet:\n    key_dir: " + keyDir + "\n    cache:\n      type: memory\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path, keyDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	globalFlags = GlobalFlags{}
	createConfig = CreateConfig{}
	keygenForce = false

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseAmount(t *testing.T) {
	v, err := parseAmount("1_000")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v)

	_, err = parseAmount("ten")
	assert.Error(t, err)
}

func TestKeygen(t *testing.T) {
	cfgPath, keyDir := writeClientConfig(t)

	out, err := run(t, "--config", cfgPath, "keygen", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Public key: ")
	assert.FileExists(t, filepath.Join(keyDir, "alice.priv"))

	again, err := run(t, "--config", cfgPath, "keygen", "alice")
	require.NoError(t, err)
	assert.Contains(t, again, "already exists")
	assert.Equal(t, publicKeyLine(out), publicKeyLine(again))
}

func publicKeyLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Public key: ") {
			return line
		}
	}
	return ""
}

func TestCreateLoadsExistingAccount(t *testing.T) {
	cfgPath, _ := writeClientConfig(t)
	record := base64.StdEncoding.EncodeToString([]byte(`{"name":"alice","balance":7}`))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/state/") {
			_, _ = w.Write([]byte(`{"data":"` + record + `"}`))
			return
		}
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	out, err := run(t, "--config", cfgPath, "--url", srv.URL, "create", "alice", "-b", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Account alice already exists with balance 7.")
}

func TestTransferRejectsBadAmount(t *testing.T) {
	_, err := run(t, "transfer", "alice", "bob", "lots")
	assert.Error(t, err)
}

func TestBalanceListsEmptyCache(t *testing.T) {
	cfgPath, _ := writeClientConfig(t)

	out, err := run(t, "--config", cfgPath, "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "No cached accounts.")
}

func TestPrintEventsStopsWhenWatcherIsSilent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan events.AccountEvent, 2)
	ch <- events.NewAccountUpdated("addr-alice", &types.Account{Name: "alice", Balance: 7}, 3)
	ch <- events.NewAccountDeleted("addr-bob", 4)

	out := new(bytes.Buffer)
	stopped := make(chan error, 1)
	// done never receives, as when the watcher goroutine panicked
	go func() { stopped <- printEvents(ctx, out, make(chan error), ch) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("printEvents kept waiting after cancellation")
	}
	assert.Contains(t, out.String(), "[block 3] alice balance=7 (addr-alice)")
	assert.Contains(t, out.String(), "[block 4] purged addr-bob")
}

func TestPrintEventsReturnsWatcherError(t *testing.T) {
	done := make(chan error, 1)
	done <- assert.AnError
	err := printEvents(context.Background(), new(bytes.Buffer), done, make(chan events.AccountEvent))
	assert.ErrorIs(t, err, assert.AnError)
}
