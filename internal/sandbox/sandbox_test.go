package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("b"), 0o644))
	return dir
}

func TestResolveRoot(t *testing.T) {
	dir := newTestRoot(t)
	r, err := New(dir)
	require.NoError(t, err)

	got, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, r.Root(), got)
}

func TestResolveNestedFile(t *testing.T) {
	dir := newTestRoot(t)
	r, err := New(dir)
	require.NoError(t, err)

	got, err := r.Resolve("sub/b.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Root(), "sub", "b.txt"), got)
}

func TestResolveRejectsTraversal(t *testing.T) {
	dir := newTestRoot(t)
	r, err := New(dir)
	require.NoError(t, err)

	_, err = r.Resolve("../../etc/passwd")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEscapesRoot)
}

func TestResolveRejectsSymlinkEscape(t *testing.T) {
	dir := newTestRoot(t)
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("nope"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(dir, "escape")))

	r, err := New(dir)
	require.NoError(t, err)

	_, err = r.Resolve("escape")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEscapesRoot)
}

func TestResolveMissingPath(t *testing.T) {
	dir := newTestRoot(t)
	r, err := New(dir)
	require.NoError(t, err)

	_, err = r.Resolve("does/not/exist")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEscapesRoot)
}

func TestResolveIdempotence(t *testing.T) {
	dir := newTestRoot(t)
	r, err := New(dir)
	require.NoError(t, err)

	p, err := r.Resolve("sub/b.txt")
	require.NoError(t, err)

	rel, ok := r.ToRelative(p)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("sub", "b.txt"), rel)

	p2, err := r.Resolve(rel)
	require.NoError(t, err)
	assert.Equal(t, p, p2)
}

func TestToRelativeOutsideRoot(t *testing.T) {
	dir := newTestRoot(t)
	r, err := New(dir)
	require.NoError(t, err)

	_, ok := r.ToRelative("/etc/passwd")
	assert.False(t, ok)
}
