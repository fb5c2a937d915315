package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "LABDESK_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "internal", "navigation")
	requireMkdirAll(t, sub)

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(sub); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("LABDESK_TEST_ENV_LOAD")
	t.Cleanup(func() { _ = os.Unsetenv("LABDESK_TEST_ENV_LOAD") })

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("LABDESK_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from repo root, got %q", got)
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	require.Equal(t, ".container", c.Navigation.ContentSelector)
	require.Equal(t, "data-no-ajax", c.Navigation.OptOutAttribute)
	require.Equal(t, "Processing...", c.Navigation.BusyLabel)
	require.Equal(t, RedirectFollow, c.Navigation.RedirectMode)
	require.Equal(t, "dashboard", c.Navigation.DefaultPanel)
	require.Equal(t, 4*time.Second, c.Toast.Dwell)
	require.Equal(t, 300*time.Millisecond, c.Toast.Exit)
	require.Equal(t, "/calendar/fragment", c.Fragment.Endpoint)
	require.Equal(t, "calendar-container", c.Fragment.ContainerID)
	require.Equal(t, "localhost:3200", c.SocketAddress)
	require.Equal(t, []string{"http://localhost:3200"}, c.AllowedOrigins)
	require.False(t, c.RateLimit.Enabled)
	require.NotNil(t, c.Logger())
}

func TestRateLimitOptions_Validate(t *testing.T) {
	require.NoError(t, (&RateLimitOptions{GlobalRPS: 10, Storage: "memory"}).Validate())
	require.Error(t, (&RateLimitOptions{GlobalRPS: -1, Storage: "memory"}).Validate())
	require.Error(t, (&RateLimitOptions{GlobalRPS: 10, Storage: "disk"}).Validate())
	require.Error(t, (&RateLimitOptions{Enabled: true, GlobalRPS: 10, Storage: "redis"}).Validate())
	require.NoError(t, (&RateLimitOptions{Enabled: true, GlobalRPS: 10, Storage: "redis", RedisURL: "redis://localhost:6379/0"}).Validate())
}

func TestNew_RejectsInvalidRedirectMode(t *testing.T) {
	t.Setenv("NAV_REDIRECT_MODE", "sideways")

	_, err := New()
	require.Error(t, err)
	require.Contains(t, err.Error(), "NAV_REDIRECT_MODE")
}

func TestNavigationOptions_NormalizesRedirectMode(t *testing.T) {
	opts := NavigationOptions{ContentSelector: "main", RedirectMode: " MANUAL "}
	require.NoError(t, opts.Validate())
	require.Equal(t, RedirectManual, opts.RedirectMode)
}

func TestToastOptions_Validate(t *testing.T) {
	cases := []struct {
		name    string
		opts    ToastOptions
		wantErr bool
	}{
		{name: "defaults", opts: ToastOptions{Dwell: 4 * time.Second, Exit: 300 * time.Millisecond}},
		{name: "zero dwell", opts: ToastOptions{Dwell: 0}, wantErr: true},
		{name: "negative exit", opts: ToastOptions{Dwell: time.Second, Exit: -1}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLogrusLogLevel(t *testing.T) {
	c := &Configuration{LogLevel: "debug"}
	require.Equal(t, "debug", c.LogrusLogLevel().String())
	c.LogLevel = "bogus"
	require.Equal(t, "error", c.LogrusLogLevel().String())
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
