package speech_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"smart_alarm/internal/logger"
	"smart_alarm/internal/speech"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCommand_Errors(t *testing.T) {
	_, err := speech.NewCommand(nil)
	require.Error(t, err)

	_, err = speech.NewCommand([]string{"definitely-not-a-tts-binary"})
	require.Error(t, err)
}

func TestCommand_SpeaksLinesInOrder(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	out := filepath.Join(t.TempDir(), "spoken.txt")
	script := `printf '%s\n' "$1" >> ` + out
	cmd, err := speech.NewCommand([]string{sh, "-c", script, "tts"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cmd.Say(ctx, "take medicine"))
	require.NoError(t, cmd.Say(ctx, "Could not retrieve weather data"))
	require.NoError(t, cmd.FlushAndWait(ctx))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, []string{"take medicine", "Could not retrieve weather data"},
		strings.Split(strings.TrimSpace(string(data)), "\n"))

	// Flushing again speaks nothing new.
	require.NoError(t, cmd.FlushAndWait(ctx))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestLog_Flush(t *testing.T) {
	logger.Discard()
	var l speech.Log
	require.NoError(t, l.Say(context.Background(), "hello"))
	require.NoError(t, l.FlushAndWait(context.Background()))
}
