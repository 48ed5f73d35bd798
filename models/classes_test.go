package models

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLabelMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labelmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLabelMap(t *testing.T) {
	path := writeLabelMap(t, `
items:
  - name: background
    label: 0
  - name: cat
    label: 3
    display_name: Cat
  - name: dog
    label: 7
`)

	set, err := LoadLabelMap(path)
	require.NoError(t, err)
	assert.Equal(t, ModelFamilyCustom, set.Style)
	require.Len(t, set.Classes, 3)

	name, ok := set.Name(3)
	assert.True(t, ok)
	assert.Equal(t, "cat", name)

	name, ok = set.Name(7)
	assert.True(t, ok)
	assert.Equal(t, "dog", name)

	_, ok = set.Name(1)
	assert.False(t, ok)
}

func TestLoadLabelMap_BuiltinVOC(t *testing.T) {
	set, err := LoadLabelMap("VOC")
	require.NoError(t, err)
	assert.Equal(t, ModelFamilyVOC, set.Style)
	assert.Len(t, set.Classes, 21)

	name, ok := set.Name(15)
	assert.True(t, ok)
	assert.Equal(t, "person", name)
}

func TestLoadLabelMap_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"duplicate label", "items:\n  - {name: a, label: 1}\n  - {name: b, label: 1}\n"},
		{"missing name", "items:\n  - {label: 1}\n"},
		{"no items", "items: []\n"},
		{"malformed yaml", "items: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLabelMap(writeLabelMap(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadLabelMap(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewBuiltinLabelMap(t *testing.T) {
	set, err := NewBuiltinLabelMap("coco")
	require.NoError(t, err)
	assert.Equal(t, ModelFamilyCOCO, set.Style)
	assert.Len(t, set.Classes, 81)

	name, ok := set.Name(10)
	assert.True(t, ok)
	assert.Equal(t, "traffic_light", name)
	assert.Equal(t, "traffic light", set.Classes[10].DisplayName)

	// Copies do not share classes with the package value.
	set.Classes[1].Name = "changed"
	assert.Equal(t, "person", COCOClasses.Classes[1].Name)

	assert.True(t, IsBuiltinLabelMap("VOC"))
	assert.False(t, IsBuiltinLabelMap("labelmap.yaml"))

	_, err = NewBuiltinLabelMap("imagenet")
	assert.Error(t, err)
}

func TestOutputClassSet_ConcurrentName(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(label int) {
			defer wg.Done()
			name, ok := PascalVOCClasses.Name(label)
			assert.True(t, ok)
			assert.Equal(t, PascalVOCClasses.Classes[label].Name, name)
			_, ok = COCOClasses.Name(label)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
}

func TestOutputClassSet_NameWithoutIndex(t *testing.T) {
	set := &OutputClassSet{Classes: []OutputClass{{Index: 4, Name: "boat"}}}

	name, ok := set.Name(4)
	assert.True(t, ok)
	assert.Equal(t, "boat", name)

	_, ok = set.Name(5)
	assert.False(t, ok)
	assert.Nil(t, set.idxToName)
}
