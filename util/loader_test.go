package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNameSize(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "name_size.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadNameSizeFile(t *testing.T) {
	entries, err := LoadNameSizeFile(writeNameSize(t, "000001 500 353\n000002 335 500\n\n000004  375\t500\n"))
	require.NoError(t, err)

	assert.Equal(t, []NameSize{
		{Name: "000001", Height: 500, Width: 353},
		{Name: "000002", Height: 335, Width: 500},
		{Name: "000004", Height: 375, Width: 500},
	}, entries)
}

func TestLoadNameSizeFile_Empty(t *testing.T) {
	entries, err := LoadNameSizeFile(writeNameSize(t, ""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadNameSizeFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"incomplete triple", "000001 500\n"},
		{"non numeric height", "000001 tall 353\n"},
		{"non numeric width", "000001 500 wide\n"},
		{"zero size", "000001 0 353\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadNameSizeFile(writeNameSize(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadNameSizeFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
