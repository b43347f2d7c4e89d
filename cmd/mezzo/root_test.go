package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezzoeditor/mezzo-sub000/internal/config"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/document"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/text"
	"github.com/mezzoeditor/mezzo-sub000/internal/log"
	"github.com/mezzoeditor/mezzo-sub000/internal/watch"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestStats(t *testing.T) {
	path := writeFile(t, "a.txt", "hello\nworld!\n")
	out, err := execute(t, "stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "length:       13\n")
	assert.Contains(t, out, "lines:        3\n")
	assert.Contains(t, out, "longest line: 6 columns")
}

func TestPosition(t *testing.T) {
	path := writeFile(t, "a.txt", "ab\ncd")
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"offset", []string{"4"}, "4 -> 1:1\n", false},
		{"position", []string{"1:1"}, "1:1 -> 4\n", false},
		{"out of range", []string{"5:0"}, "", true},
		{"clamped", []string{"5:0", "--clamp"}, "5:0 -> 5\n", false},
		{"bad offset", []string{"x"}, "", true},
		{"bad column", []string{"1:y"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"position", path}, tt.args...)...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestHighlight(t *testing.T) {
	path := writeFile(t, "a.c", "a /* b */ c = \"s\";\n")
	out, err := execute(t, "highlight", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2-9\tcomment\t\"/* b */\"\n")
	assert.Contains(t, out, "\tstring\t")

	out, err = execute(t, "highlight", path, "--from", "10")
	require.NoError(t, err)
	assert.NotContains(t, out, "comment")

	path = writeFile(t, "b.c", "// one\nx = 1; /* two */\n'three'\n")
	out, err = execute(t, "highlight", path, "--line", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "14-23\tcomment\t\"/* two */\"\n")
	assert.NotContains(t, out, "one")
	assert.NotContains(t, out, "three")

	_, err = execute(t, "highlight", path, "--line", "9")
	assert.ErrorIs(t, err, text.ErrPositionOutOfRange)

	path = writeFile(t, "c.c", "a /* b */ c = \"s\";\n")
	out, err = execute(t, "highlight", path, "--checkpoints")
	require.NoError(t, err)
	assert.Equal(t, "0\tcode\n", out)
}

func TestSearch(t *testing.T) {
	path := writeFile(t, "a.txt", "foo bar\nFoo foobar")

	out, err := execute(t, "search", path, "foo")
	require.NoError(t, err)
	assert.Equal(t, "0:0\t0-3\t\"foo\"\n1:4\t12-15\t\"foo\"\n", out)

	out, err = execute(t, "search", path, "foo", "-i", "--count")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = execute(t, "search", path, "foo", "-i", "-w", "--count")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = execute(t, "search", path, "o", "--markers", "10")
	require.NoError(t, err)
	assert.Equal(t, "0-10\n10-20\n", out)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mezzo dev\n")
}

func TestConfigErrors(t *testing.T) {
	path := writeFile(t, "a.txt", "x")

	_, err := execute(t, "stats", path, "--log-level", "loud")
	assert.ErrorIs(t, err, config.ErrValidationFailed)

	cfgPath := writeFile(t, "mezzo.json", "{}")
	_, err = execute(t, "stats", path, "--config", cfgPath)
	assert.Error(t, err)

	_, err = execute(t, "stats", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigFile(t *testing.T) {
	path := writeFile(t, "a.txt", "abcdefgh")
	cfgPath := writeFile(t, "mezzo.toml", "[text]\nchunkSize = 3\n")
	out, err := execute(t, "stats", path, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "chunk size:   3\n")
}

func TestFollowFile(t *testing.T) {
	var stdout bytes.Buffer
	a := &app{stdout: &stdout, stderr: &stdout, cfg: config.Default(), log: log.Nop()}
	doc := document.FromString("one needle")

	changes := make(chan watch.Change, 3)
	changes <- watch.Change{Content: "one needle, two needle"}
	changes <- watch.Change{Err: os.ErrNotExist}
	changes <- watch.Change{Content: "needle"}
	close(changes)

	require.NoError(t, followFile(context.Background(), a, doc, changes, "needle"))
	assert.Equal(t, "needle", doc.Text().String())
	assert.Equal(t, "0 matches\n"+
		"1 matches\n"+
		"revision 1: 1 edits, length 22\n"+
		"2 matches\n"+
		"1 matches\n"+
		"revision 2: 1 edits, length 6\n", stdout.String())
}

func TestRun(t *testing.T) {
	assert.Equal(t, 1, run([]string{"position"}))
}
