package chat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadPolicy_MissingFileUsesDefaults(t *testing.T) {
	p, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultPolicy(), p)
}

func TestLoadPolicy_EmptyPathUsesDefaults(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	require.Equal(t, DefaultPolicy(), p)
}

func TestLoadPolicy_PartialFileKeepsDefaultsForUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.yaml")
	content := "system: Be terse.\ndefault_chips:\n  - Book a call\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	require.Equal(t, "Be terse.", p.System)
	require.Equal(t, []string{"Book a call"}, p.DefaultChips)
	require.Equal(t, DefaultPolicy().FallbackReply, p.FallbackReply)
	require.Equal(t, DefaultPolicy().MaxTokens, p.MaxTokens)
	require.Equal(t, DefaultPolicy().Model, p.Model)
}

func TestLoadPolicy_BadYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system: [unclosed"), 0o644))
	_, err := LoadPolicy(path)
	require.Error(t, err)
}
