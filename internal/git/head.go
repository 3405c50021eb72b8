package git

import (
	"errors"
	"fmt"

	ggit "github.com/go-git/go-git/v5"
)

// ErrNotRepository indicates dir is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// HeadCommit returns the commit hash HEAD points at for the repository
// containing dir. Parent directories are searched for .git.
func HeadCommit(dir string) (string, error) {
	repo, err := ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, ggit.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}
		return "", fmt.Errorf("open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}
