package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main/java/com/acme/Widget.java", "class Widget {}")
	writeFile(t, dir, "src/main/java/com/acme/App.java", "class App {}")
	writeFile(t, dir, "src/test/java/com/acme/WidgetTest.java", "class WidgetTest {}")
	writeFile(t, dir, "src/main/java/com/acme/HelperTest.java", "class HelperTest {}")
	writeFile(t, dir, "target/classes/Gen.java", "class Gen {}")
	writeFile(t, dir, ".idea/Hidden.java", "class Hidden {}")
	writeFile(t, dir, "README.md", "# readme")

	files, err := New(Config{}, nil).Discover(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/main/java/com/acme/App.java",
		"src/main/java/com/acme/Widget.java",
	}, relPaths(t, dir, files))
}

func TestDiscoverIncludeTests(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main/java/Widget.java", "class Widget {}")
	writeFile(t, dir, "src/test/java/WidgetTest.java", "class WidgetTest {}")

	files, err := New(Config{IncludeTests: true}, nil).Discover(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/main/java/Widget.java",
		"src/test/java/WidgetTest.java",
	}, relPaths(t, dir, files))
}

func TestDiscoverGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "legacy/\n*Generated.java\n")
	writeFile(t, dir, "Keep.java", "class Keep {}")
	writeFile(t, dir, "ModelGenerated.java", "class ModelGenerated {}")
	writeFile(t, dir, "legacy/Old.java", "class Old {}")

	files, err := New(Config{}, nil).Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Keep.java"}, relPaths(t, dir, files))
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := New(Config{}, nil).Discover(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	widget := writeFile(t, dir, "pkg/Widget.java", "package com.acme;\n\npublic class Widget {}\n")
	writeFile(t, dir, "pkg/Other.java", "class Other {}")
	notes := writeFile(t, dir, "notes.txt", "not java")

	units, err := New(Config{}, nil).Load(filepath.Join(dir, "pkg"), widget, notes)
	require.NoError(t, err)
	require.Len(t, units, 2, "directory expansion plus a duplicate file path")

	byType := map[string]string{}
	for _, u := range units {
		byType[u.TypeName] = u.Package
	}
	assert.Equal(t, "com.acme", byType["Widget"])
	assert.Contains(t, byType, "Other")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	p := New(Config{}, nil)

	_, err := p.Load(filepath.Join(dir, "Missing.java"))
	assert.Error(t, err)

	notes := writeFile(t, dir, "notes.txt", "x")
	_, err = p.Load(notes)
	assert.ErrorIs(t, err, ErrNoSources)
}
