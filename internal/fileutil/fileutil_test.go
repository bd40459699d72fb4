package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lepinkainen/bookrank/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFileExists(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("present.txt", "x")

	assert.True(t, FileExists(env.Path("present.txt")))
	assert.False(t, FileExists(env.Path("missing.txt")))
	assert.False(t, FileExists(env.RootDir()), "directories are not files")
}

func TestWriteFileWithOverwrite(t *testing.T) {
	tempDir := testutil.NewTestEnv(t).RootDir()

	testCases := []struct {
		name           string
		filePath       string
		data           []byte
		overwrite      bool
		setupExisting  bool
		existingData   []byte
		expectedResult bool
		expectedData   []byte
	}{
		{
			name:           "new file",
			filePath:       filepath.Join(tempDir, "new-file.txt"),
			data:           []byte("new content"),
			overwrite:      false,
			expectedResult: true,
			expectedData:   []byte("new content"),
		},
		{
			name:           "existing file with overwrite",
			filePath:       filepath.Join(tempDir, "existing-overwrite.txt"),
			data:           []byte("new content"),
			overwrite:      true,
			setupExisting:  true,
			existingData:   []byte("old content"),
			expectedResult: true,
			expectedData:   []byte("new content"),
		},
		{
			name:           "existing file without overwrite",
			filePath:       filepath.Join(tempDir, "existing-no-overwrite.txt"),
			data:           []byte("new content"),
			overwrite:      false,
			setupExisting:  true,
			existingData:   []byte("old content"),
			expectedResult: false,
			expectedData:   []byte("old content"),
		},
		{
			name:           "creates parent directories",
			filePath:       filepath.Join(tempDir, "nested", "dir", "file.txt"),
			data:           []byte("nested"),
			expectedResult: true,
			expectedData:   []byte("nested"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setupExisting {
				require.NoError(t, os.WriteFile(tc.filePath, tc.existingData, 0644))
			}

			result, err := WriteFileWithOverwrite(tc.filePath, tc.data, 0644, tc.overwrite)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedResult, result)

			actualData, err := os.ReadFile(tc.filePath)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedData, actualData)
		})
	}
}

func TestWriteYAMLFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.Path("out", "summary.yaml")

	type entry struct {
		Title string  `yaml:"title"`
		Score float64 `yaml:"score"`
	}
	in := []entry{{Title: "DUNE", Score: 3.5}, {Title: "EMMA", Score: -0.8}}

	written, err := WriteYAMLFile(in, path, false)
	require.NoError(t, err)
	assert.True(t, written)

	var out []entry
	require.NoError(t, yaml.Unmarshal([]byte(env.ReadFileString("out/summary.yaml")), &out))
	assert.Equal(t, in, out)

	written, err = WriteYAMLFile([]entry{}, path, false)
	require.NoError(t, err)
	assert.False(t, written)
}
