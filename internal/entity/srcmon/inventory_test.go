package srcmon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceInventory(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"Program.cs",
		"src/Core/Order.cs",
		"src/Core/Order.Designer.cs",
		"src/Core/Order.g.cs",
		"src/Legacy/Old.cs",
		"tests/Core.Tests/OrderTests.cs",
		"tests/Core.Tests/fixture.json",
		"src/Legacy.Extra/New.cs",
	} {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte("//"), 0o600))
	}

	tests := []struct {
		name     string
		language string
		ext      []string
		dirs     []string
		want     Inventory
	}{
		{name: "no exclusions", language: "C#", want: Inventory{Included: 7}},
		{
			name:     "globs and directories",
			language: "",
			ext:      []string{"*.Designer.cs", "*.g.cs"},
			dirs:     []string{"tests/Core.Tests", "src/Legacy"},
			want:     Inventory{Included: 3, ExcludedByDir: 2, ExcludedByGlob: 2},
		},
		{name: "other language", language: "Java", want: Inventory{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SourceInventory(context.Background(), root, tt.language, tt.ext, tt.dirs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
