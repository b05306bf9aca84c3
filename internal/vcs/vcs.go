// Package vcs exposes repository state as substitution variables.
package vcs

import (
	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// Variable names set by Variables.
const (
	VarCommit      = "git.commit"
	VarShortCommit = "git.short_commit"
	VarBranch      = "git.branch"
)

// Variables reads HEAD of the repository containing path. The branch
// variable is empty for a detached HEAD.
func Variables(path string) (map[string]string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.ReadFailure("cannot open git repository").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	ref, err := repo.Head()
	if err != nil {
		return nil, errors.ReadFailure("cannot read git HEAD").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	hash := ref.Hash().String()
	vars := map[string]string{
		VarCommit:      hash,
		VarShortCommit: hash[:8],
		VarBranch:      "",
	}
	if ref.Name().IsBranch() {
		vars[VarBranch] = ref.Name().Short()
	}
	return vars, nil
}
