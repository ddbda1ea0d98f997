package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditConfig(t *testing.T) {
	dir := t.TempDir()
	editor := filepath.Join(dir, "editor.sh")
	require.NoError(t, os.WriteFile(editor, []byte("#!/bin/sh\necho 'debug: true' >> \"$1\"\n"), 0700))
	t.Setenv(TextEditorVariableName, editor)

	conf := filepath.Join(dir, "config.yaml")
	require.NoError(t, WriteEncrypted(conf, "pw", []byte("length_bytes: 3\n")))
	require.NoError(t, EditConfig(conf, "pw"))

	data, err := ReadEncrypted(conf, "pw")
	require.NoError(t, err)
	assert.Equal(t, "length_bytes: 3\ndebug: true\n", string(data))

	// only the configuration and the editor remain
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEditConfigMissing(t *testing.T) {
	assert.Error(t, EditConfig(filepath.Join(t.TempDir(), "none.yaml"), ""))
}

func TestShredFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(filename, []byte("very secret"), 0600))
	require.NoError(t, ShredFile(filename))
	_, err := os.Stat(filename)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Error(t, ShredFile(filename))
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.gif", "notes.txt", "c.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0700))

	files, err := ReadFiles(dir, []string{"png", "gif", "jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.gif"),
		filepath.Join(dir, "b.PNG"),
		filepath.Join(dir, "c.jpg"),
	}, files)

	_, err = ReadFiles(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}
