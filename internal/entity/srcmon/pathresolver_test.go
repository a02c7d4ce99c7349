package srcmon

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativePath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "Billing.Core"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "B"), 0o750))
	sibling := root + "-sibling"
	require.NoError(t, os.MkdirAll(sibling, 0o750))
	t.Cleanup(func() { _ = os.RemoveAll(sibling) })

	tests := []struct {
		name      string
		candidate string
		want      string
		wantErr   bool
	}{
		{name: "direct child", candidate: filepath.Join(root, "B"), want: "B"},
		{name: "nested", candidate: filepath.Join(root, "src", "Billing.Core"), want: "src/Billing.Core"},
		{name: "trailing separator", candidate: filepath.Join(root, "B") + string(os.PathSeparator), want: "B"},
		{name: "dot segments", candidate: filepath.Join(root, "src", "..", "B"), want: "B"},
		{name: "missing leaf", candidate: filepath.Join(root, "src", "New"), want: "src/New"},
		{name: "missing chain", candidate: filepath.Join(root, "gen", "obj", "x"), want: "gen/obj/x"},
		{name: "root itself", candidate: root, wantErr: true},
		{name: "outside root", candidate: filepath.Dir(root), wantErr: true},
		{name: "sibling with common prefix", candidate: sibling, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RelativePath(root, tt.candidate)
			if tt.wantErr {
				var pre *PathResolutionError
				require.True(t, errors.As(err, &pre), "ожидалась PathResolutionError, получено %v", err)
				assert.Equal(t, root, pre.Root)
				assert.Equal(t, tt.candidate, pre.Candidate)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := RelativePath(root, tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestRelativePath_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("символические ссылки требуют прав администратора")
	}
	realDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(realDir, "C"), 0o750))
	link := filepath.Join(t.TempDir(), "solution")
	require.NoError(t, os.Symlink(realDir, link))

	// корень через ссылку, проект через реальный путь и наоборот
	viaLink, err := RelativePath(link, filepath.Join(realDir, "C"))
	require.NoError(t, err)
	viaReal, err := RelativePath(realDir, filepath.Join(link, "C"))
	require.NoError(t, err)

	assert.Equal(t, "C", viaLink)
	assert.Equal(t, viaLink, viaReal)
}

func TestRelativePath_RootMissing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "absent")

	_, err := RelativePath(root, filepath.Join(root, "A"))

	var pre *PathResolutionError
	require.True(t, errors.As(err, &pre))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTrimRoot(t *testing.T) {
	sep := string(os.PathSeparator)
	root := sep + "w"

	tests := []struct {
		name      string
		root      string
		candidate string
		fold      bool
		want      string
		ok        bool
	}{
		{name: "child", root: root, candidate: root + sep + "A", want: "A", ok: true},
		{name: "filesystem root", root: sep, candidate: sep + "w", want: "w", ok: true},
		{name: "equal", root: root, candidate: root},
		{name: "prefix only", root: root, candidate: root + "x" + sep + "A"},
		{name: "case differs strict", root: root, candidate: sep + "W" + sep + "A"},
		{name: "case differs folded", root: root, candidate: sep + "W" + sep + "Api", fold: true, want: "Api", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := trimRoot(tt.root, tt.candidate, tt.fold)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
