package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linaspasv/cms/internal/nocache"
)

type sectionOut struct {
	Key   string `json:"key"`
	Items []struct {
		ID       string `json:"id"`
		Display  string `json:"display"`
		URL      string `json:"url"`
		Children []struct {
			ID      string `json:"id"`
			Display string `json:"display"`
		} `json:"children"`
	} `json:"items"`
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(body)+"\n"), 0o600))
	return path
}

func decodeTree(t *testing.T, out string) []sectionOut {
	t.Helper()
	var resp struct {
		Nav []sectionOut `json:"nav"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp.Nav
}

func section(sections []sectionOut, key string) *sectionOut {
	for i := range sections {
		if sections[i].Key == key {
			return &sections[i]
		}
	}
	return nil
}

func TestBuild_DefaultsWithoutPrefs(t *testing.T) {
	out, err := execute(t, "build", "--site", "https://example.com")
	require.NoError(t, err)

	tree := decodeTree(t, out)
	require.NotEmpty(t, tree)
	assert.Equal(t, "top_level", tree[0].Key)
	assert.Equal(t, "top_level::dashboard", tree[0].Items[0].ID)
	assert.True(t, strings.HasPrefix(tree[0].Items[0].URL, "https://example.com/cp"))
}

func TestBuild_StrongestLayerWins(t *testing.T) {
	user := writeFile(t, "user.yaml", `
nav:
  content:
    content::collections:
      display: Library
`)
	role := writeFile(t, "role.yaml", `
nav:
  content:
    content::collections:
      display: Shelf
    content::globals: '@remove'
`)

	out, err := execute(t, "build", "--prefs", user, "--prefs", role)
	require.NoError(t, err)

	content := section(decodeTree(t, out), "content")
	require.NotNil(t, content)
	var displays []string
	for _, item := range content.Items {
		displays = append(displays, item.Display)
	}
	assert.Contains(t, displays, "Library")
	assert.NotContains(t, displays, "Shelf")
	assert.Contains(t, displays, "Globals")
}

func TestBuild_CollectionsFromContentFile(t *testing.T) {
	contentFile := writeFile(t, "content.yaml", `
collections:
  - handle: pages
    title: Pages
  - handle: articles
    title: Articles
`)

	out, err := execute(t, "build", "--content", contentFile)
	require.NoError(t, err)

	content := section(decodeTree(t, out), "content")
	require.NotNil(t, content)
	require.Equal(t, "content::collections", content.Items[0].ID)
	children := content.Items[0].Children
	require.Len(t, children, 2)
	assert.Equal(t, "Articles", children[0].Display)
	assert.Equal(t, "Pages", children[1].Display)
}

func TestBuild_MissingPrefsFile(t *testing.T) {
	_, err := execute(t, "build", "--prefs", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read preferences")
}

func TestValidate(t *testing.T) {
	path := writeFile(t, "nav.yaml", `
reorder: true
top_level:
  content::collections: '@alias'
tools:
  tools::forms: '@remove'
  tools::updates: '@remove'
`)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "ok: 2 sections, 3 top-level entries, reorder=true\n", out)
}

func TestValidate_Empty(t *testing.T) {
	out, err := execute(t, "validate", writeFile(t, "nav.yaml", "{}"))
	require.NoError(t, err)
	assert.Equal(t, "ok: document is empty\n", out)
}

func TestValidate_Malformed(t *testing.T) {
	_, err := execute(t, "validate", writeFile(t, "nav.yaml", "top_level: [unclosed"))
	assert.Error(t, err)
}

func TestValidate_RequiresOneArg(t *testing.T) {
	_, err := execute(t, "validate")
	assert.ErrorIs(t, err, errUsage)
}

func TestKey(t *testing.T) {
	out, err := execute(t, "key", "http://localhost/test")
	require.NoError(t, err)
	assert.Equal(t, nocache.Key("http://localhost/test")+"\n", out)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
}
