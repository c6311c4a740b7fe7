package commands

import (
	"bytes"
	"strings"
	"testing"

	"sigwatch/internal/plugins"

	"github.com/stretchr/testify/require"
)

func TestSelectPlugin(t *testing.T) {
	testCases := []struct {
		input    string
		expected plugins.ID
	}{
		{input: "1\n", expected: plugins.SignatureWatch},
		{input: "2\n", expected: plugins.WindowDump},
		{input: "window-dump\n", expected: plugins.WindowDump},
		{input: "9\nnope\n 1 \n", expected: plugins.SignatureWatch},
	}

	for _, test := range testCases {
		var out bytes.Buffer
		entry, err := selectPlugin(strings.NewReader(test.input), &out)
		require.NoError(t, err, test.input)
		require.Equal(t, test.expected, entry.ID, test.input)
		require.Contains(t, out.String(), "1) signature-watch - Reads signatures from open Agency window and tracks their changes")
	}
}

func TestSelectPluginNoInput(t *testing.T) {
	var out bytes.Buffer
	_, err := selectPlugin(strings.NewReader(""), &out)
	require.ErrorContains(t, err, "no plugin selected")
}

func TestPluginsCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"plugins", "--config", t.TempDir() + "/missing.json5"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "signature-watch")
	require.Contains(t, out.String(), "window-dump")
}
