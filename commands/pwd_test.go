package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ncsh/ncsh/core/vos"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSymlinkOS(t *testing.T) (sys *vos.OS, realDir, linkDir string, stdout *bytes.Buffer) {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	realDir = filepath.Join(dir, "real")
	linkDir = filepath.Join(dir, "link")
	require.NoError(t, os.Mkdir(realDir, 0755))
	require.NoError(t, os.Symlink(realDir, linkDir))

	stdout = &bytes.Buffer{}
	env := vos.NewMapEnv()
	sys = vos.New(afero.NewOsFs(), env, vos.NewVIOAdapter(nil, stdout, nil), dir)
	return sys, realDir, linkDir, stdout
}

func TestPwd_Physical(t *testing.T) {
	sys, realDir, linkDir, stdout := newSymlinkOS(t)
	require.NoError(t, sys.Chdir(linkDir))

	assert.Equal(t, 0, Pwd(sys.Invoke([]string{"pwd"}, nil)))
	assert.Equal(t, 0, Pwd(sys.Invoke([]string{"pwd", "-P"}, nil)))

	assert.Equal(t, linkDir+"\n"+realDir+"\n", stdout.String())
}

func TestCd_Physical(t *testing.T) {
	sys, realDir, linkDir, _ := newSymlinkOS(t)

	assert.Equal(t, 0, Cd(sys.Invoke([]string{"cd", "-P", "link"}, nil)))
	wd, _ := sys.Getwd()
	assert.Equal(t, realDir, wd)

	assert.Equal(t, 0, Cd(sys.Invoke([]string{"cd", linkDir}, nil)))
	wd, _ = sys.Getwd()
	assert.Equal(t, linkDir, wd)
}

func TestPhysicalPath_NoSymlinks(t *testing.T) {
	sys := vos.New(afero.NewMemMapFs(), vos.NewMapEnv(), nil, "/")
	require.NoError(t, sys.MkdirAll("/a/b", 0755))

	got, err := physicalPath(sys, "/a/./b/../b")

	assert.NoError(t, err)
	assert.Equal(t, "/a/b", got)
}
