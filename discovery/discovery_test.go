package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("# test"), 0o644))
	}
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func TestFindMatchesPattern(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"test_alpha.py",
		"test_beta.py",
		"helper.py",
		"notes.txt",
	)

	files, err := Find(root, "test*.py", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"test_alpha.py", "test_beta.py"}, baseNames(files))
}

func TestFindRecursesInLexicalOrder(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"b/test_two.py",
		"a/test_one.py",
		"test_root.py",
	)

	files, err := Find(root, "test*.py", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"test_one.py", "test_two.py", "test_root.py"}, baseNames(files))
}

func TestFindTokensNarrowButNeverWiden(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"test_rig.py",
		"test_shader.py",
		"rig_helper.py", // matches token but not pattern
	)

	files, err := Find(root, "test*.py", []string{"rig"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"test_rig.py"}, baseNames(files))
}

func TestFindAnyTokenSuffices(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"test_rig.py",
		"test_shader.py",
		"test_export.py",
	)

	files, err := Find(root, "test*.py", []string{"rig", "shader"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"test_rig.py", "test_shader.py"}, baseNames(files))
}

func TestFindSkipsContextFolders(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"test_root.py",
		"mayapy/test_maya.py",
		"nested/mayapy/test_deep.py",
		"nested/test_nested.py",
	)

	files, err := Find(root, "test*.py", nil, []string{"mayapy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"test_nested.py", "test_root.py"}, baseNames(files))
}

func TestFindDoesNotSkipRootWithContextName(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "mayapy")
	writeFiles(t, parent, "mayapy/test_maya.py")

	files, err := Find(root, "test*.py", nil, []string{"mayapy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"test_maya.py"}, baseNames(files))
}

func TestFindBadPattern(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "test_a.py")

	_, err := Find(root, "[", nil, nil)
	require.Error(t, err)
}

func TestFindMissingRoot(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "gone"), "test*.py", nil, nil)
	require.Error(t, err)
}
