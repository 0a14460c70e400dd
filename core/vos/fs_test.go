package vos

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func FSTestCase(t *testing.T, suite FSTestSuite, testPath string) *FSTestCaseSetup {
	testFS, checkFS := suite.MakeFS(t)

	prefixer := func(in string) string {
		return in
	}
	if suite.Prefixer != nil {
		prefixer = suite.Prefixer
	}

	return &FSTestCaseSetup{
		check: &FSTestCaseCheck{
			t:    t,
			fs:   checkFS,
			name: testPath,
		},

		t:        t,
		fs:       testFS,
		testPath: testPath,
		prefixer: prefixer,
	}
}

type FSTestCaseSetup struct {
	check *FSTestCaseCheck

	t        *testing.T
	fs       VFS
	testPath string
	prefixer func(string) string
}

func (tc *FSTestCaseSetup) MkdirTestPath(perm fs.FileMode) *FSTestCaseSetup {
	require.NoError(tc.t, tc.fs.Mkdir(tc.prefixer(tc.testPath), perm))
	return tc
}

func (tc *FSTestCaseSetup) MkdirAllParents(perm fs.FileMode) *FSTestCaseSetup {
	require.NoError(tc.t, tc.fs.MkdirAll(tc.prefixer(path.Dir(tc.testPath)), perm))
	return tc
}

func (tc *FSTestCaseSetup) WriteTestPath(contents string) *FSTestCaseSetup {
	require.NoError(tc.t, afero.WriteFile(tc.fs, tc.prefixer(tc.testPath), []byte(contents), 0600))
	return tc
}

func (tc *FSTestCaseSetup) AssertAfter(callback func(fs VFS, name string) error) *FSTestCaseCheck {
	tc.check.err = callback(tc.fs, tc.prefixer(tc.testPath))
	return tc.check
}

type FSTestCaseCheck struct {
	t    *testing.T
	fs   VFS
	name string
	err  error
}

func (tc *FSTestCaseCheck) NoError() *FSTestCaseCheck {
	assert.NoError(tc.t, tc.err)
	return tc
}

func (tc *FSTestCaseCheck) Error() *FSTestCaseCheck {
	assert.Error(tc.t, tc.err)
	return tc
}

func (tc *FSTestCaseCheck) ErrorIs(desired error) *FSTestCaseCheck {
	assert.ErrorIs(tc.t, tc.err, desired)
	return tc
}

func (tc *FSTestCaseCheck) Exists(name string) *FSTestCaseCheck {
	exists, err := afero.Exists(tc.fs, name)
	assert.NoError(tc.t, err)
	assert.True(tc.t, exists, "%q should exist", name)
	return tc
}

func (tc *FSTestCaseCheck) Missing(name string) *FSTestCaseCheck {
	exists, err := afero.Exists(tc.fs, name)
	assert.NoError(tc.t, err)
	assert.False(tc.t, exists, "%q shouldn't exist", name)
	return tc
}

func (tc *FSTestCaseCheck) OutExists() *FSTestCaseCheck {
	return tc.Exists(tc.name)
}

func (tc *FSTestCaseCheck) OutMissing() *FSTestCaseCheck {
	return tc.Missing(tc.name)
}

func (tc *FSTestCaseCheck) OutIsDir() *FSTestCaseCheck {
	info, err := tc.fs.Stat(tc.name)
	if assert.NoError(tc.t, err) {
		assert.True(tc.t, info.IsDir(), "IsDir()")
	}
	return tc
}

func (tc *FSTestCaseCheck) OutContains(want string) *FSTestCaseCheck {
	got, err := afero.ReadFile(tc.fs, tc.name)
	if assert.NoError(tc.t, err) {
		assert.Equal(tc.t, want, string(got))
	}
	return tc
}

type FSTestSuite struct {
	// MakeFS creates the filesystem operated on by a test and the one its
	// results are checked against.
	MakeFS func(t *testing.T) (in, out VFS)

	// Prefixer rewrites the absolute, slash delimited test paths before they're
	// handed to the input filesystem.
	Prefixer func(name string) (outname string)
}

func RunFsTest(t *testing.T, suite FSTestSuite) {
	t.Run("Create", func(t *testing.T) {
		create := func(fs VFS, name string) error {
			fd, err := fs.Create(name)
			if err == nil {
				fd.Close()
			}
			return err
		}

		t.Run("nominal", func(t *testing.T) {
			FSTestCase(t, suite, "/note.txt").
				AssertAfter(create).
				NoError().
				OutExists()
		})
		t.Run("truncates", func(t *testing.T) {
			FSTestCase(t, suite, "/note.txt").
				WriteTestPath("old").
				AssertAfter(create).
				NoError().
				OutContains("")
		})
		t.Run("exists as a dir", func(t *testing.T) {
			FSTestCase(t, suite, "/note").
				MkdirTestPath(0700).
				AssertAfter(create).
				Error()
		})
		t.Run("missing dir", func(t *testing.T) {
			FSTestCase(t, suite, "/does/not/exist/note").
				AssertAfter(create).
				ErrorIs(fs.ErrNotExist)
		})
		t.Run("nested", func(t *testing.T) {
			FSTestCase(t, suite, "/path/that/exists/note").
				MkdirAllParents(0700).
				AssertAfter(create).
				NoError().
				OutExists()
		})
	})

	t.Run("Append", func(t *testing.T) {
		appendLine := func(fs VFS, name string) error {
			fd, err := fs.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return err
			}
			defer fd.Close()
			_, err = fd.WriteString("new\n")
			return err
		}

		t.Run("existing", func(t *testing.T) {
			FSTestCase(t, suite, "/log").
				WriteTestPath("old\n").
				AssertAfter(appendLine).
				NoError().
				OutContains("old\nnew\n")
		})
		t.Run("missing", func(t *testing.T) {
			FSTestCase(t, suite, "/log").
				AssertAfter(appendLine).
				NoError().
				OutContains("new\n")
		})
	})

	t.Run("Mkdir", func(t *testing.T) {
		mkdir := func(fs VFS, name string) error {
			return fs.Mkdir(name, 0700)
		}

		t.Run("nominal", func(t *testing.T) {
			FSTestCase(t, suite, "/dir").
				AssertAfter(mkdir).
				NoError().
				OutIsDir()
		})
		t.Run("exists", func(t *testing.T) {
			FSTestCase(t, suite, "/dir").
				MkdirTestPath(0777).
				AssertAfter(mkdir).
				ErrorIs(fs.ErrExist).
				OutIsDir()
		})
		t.Run("exists as file", func(t *testing.T) {
			FSTestCase(t, suite, "/dir").
				WriteTestPath("").
				AssertAfter(mkdir).
				Error()
		})
		t.Run("missing dir", func(t *testing.T) {
			FSTestCase(t, suite, "/does/not/exist/dir").
				AssertAfter(mkdir).
				ErrorIs(fs.ErrNotExist)
		})
	})

	t.Run("Remove", func(t *testing.T) {
		remove := func(fs VFS, name string) error {
			return fs.Remove(name)
		}

		t.Run("file", func(t *testing.T) {
			FSTestCase(t, suite, "/note.txt").
				WriteTestPath("hello").
				AssertAfter(remove).
				NoError().
				OutMissing()
		})
		t.Run("missing", func(t *testing.T) {
			FSTestCase(t, suite, "/note.txt").
				AssertAfter(remove).
				ErrorIs(fs.ErrNotExist)
		})
	})

	t.Run("Rename", func(t *testing.T) {
		rename := func(fs VFS, name string) error {
			return fs.Rename(name, suite.prefix(name+".bak"))
		}

		t.Run("file", func(t *testing.T) {
			FSTestCase(t, suite, "/note.txt").
				WriteTestPath("hello").
				AssertAfter(rename).
				NoError().
				OutMissing().
				Exists("/note.txt.bak")
		})
	})
}

func (suite FSTestSuite) prefix(name string) string {
	if suite.Prefixer == nil {
		return name
	}
	return suite.Prefixer(name)
}

func tempOsFs(t *testing.T) (VFS, string) {
	t.Helper()
	dir := t.TempDir()
	return afero.NewBasePathFs(afero.NewOsFs(), dir), dir
}

func TestRelativeFs_AbsolutePaths(t *testing.T) {
	suite := FSTestSuite{
		MakeFS: func(t *testing.T) (VFS, VFS) {
			base, _ := tempOsFs(t)
			return NewRelativeFs(base, func() string { return "/elsewhere" }), base
		},
	}

	RunFsTest(t, suite)
}

func TestRelativeFs_RelativePaths(t *testing.T) {
	suite := FSTestSuite{
		MakeFS: func(t *testing.T) (VFS, VFS) {
			base, dir := tempOsFs(t)
			require.NoError(t, os.Mkdir(filepath.Join(dir, "work"), 0700))
			return NewRelativeFs(base, func() string { return "/work" }), afero.NewBasePathFs(base, "/work")
		},
		Prefixer: func(name string) string {
			return strings.TrimPrefix(name, "/")
		},
	}

	RunFsTest(t, suite)
}

func TestPathMappingFs_MapperError(t *testing.T) {
	mapErr := fs.ErrPermission
	mfs := NewPathMappingFs(afero.NewMemMapFs(), func(op FsOp, name string) (string, error) {
		return "", mapErr
	})

	_, err := mfs.Open("/etc/motd")

	var pathErr *os.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, FsOpOpen, pathErr.Op)
	assert.Equal(t, "/etc/motd", pathErr.Path)
	assert.ErrorIs(t, err, fs.ErrPermission)
}
