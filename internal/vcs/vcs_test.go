package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

func commitFile(t *testing.T, repo *git.Repository, dir string) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docgen.yaml"), []byte("output: {}\n"), 0o600))
	_, err = wt.Add("docgen.yaml")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()}})
	require.NoError(t, err)
	return hash
}

func TestVariables(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	hash := commitFile(t, repo, dir)

	sub := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	vars, err := Variables(sub)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), vars[VarCommit])
	assert.Equal(t, hash.String()[:8], vars[VarShortCommit])
	assert.Equal(t, "master", vars[VarBranch])
}

func TestVariablesDetachedHead(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	hash := commitFile(t, repo, dir)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: hash}))

	vars, err := Variables(dir)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), vars[VarCommit])
	assert.Empty(t, vars[VarBranch])
}

func TestVariablesNotARepository(t *testing.T) {
	_, err := Variables(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryReadFailure))
}
