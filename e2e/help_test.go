//go:build e2e && unix

package main

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHelpCommand(t *testing.T) {
	t.Parallel()

	if _, err := os.Stat(binPath); os.IsNotExist(err) {
		t.Skip("Test binary not found - TestMain may not have run yet")
	}

	out, err := exec.Command(binPath, "--help").CombinedOutput()
	require.NoError(t, err, "Help command should run without error")

	output := string(out)
	require.Contains(t, output, "Usage")
	require.Contains(t, output, "--community")
	require.Contains(t, output, "--backend")
	require.Contains(t, output, "serve-fixture")
}

func TestHelpPopup(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartFixture())
	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready())

	tf.SendKeys("?")
	require.True(t, tf.SeePlain("subpager Help"), "Help popup should open")
	tf.SendKeys(KeyEsc)
	require.True(t, tf.SeePlain("Press ? for help"), "Footer should be back")
}
