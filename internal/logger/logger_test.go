package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestInitFile(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev })

	path := filepath.Join(t.TempDir(), "logs", "poolkit.log")
	require.NoError(t, Init(Options{Enabled: true, Path: path, Level: slog.LevelDebug, JSON: true}))
	Default().Debug("pool grown", "blocks", 8)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"pool grown"`)
	require.Contains(t, string(data), `"blocks":8`)
}

func TestInitDisabled(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev })

	require.NoError(t, Init(Options{}))
	require.NotNil(t, Default())
	require.False(t, Default().Enabled(t.Context(), slog.LevelError))
}

func TestNewText(t *testing.T) {
	var out bytes.Buffer
	l := New(&out, slog.LevelWarn, false)
	l.Info("dropped")
	l.Warn("kept", "op", "Swap")
	require.NotContains(t, out.String(), "dropped")
	require.Contains(t, out.String(), "op=Swap")
}

func TestFromEnv(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev })

	t.Setenv(EnvLevel, "bogus")
	require.Error(t, FromEnv())

	t.Setenv(EnvLevel, "")
	require.NoError(t, FromEnv())
}
