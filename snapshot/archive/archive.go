// Package archive pushes memory snapshots to a remote git repository.
//
// The archive is a plain git working tree holding the snapshot file. After
// each export the archiver pulls, copies the fresh snapshot in, commits,
// and pushes. Every step is best-effort: the local database stays
// authoritative and any failure here degrades to a warning upstream.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/qt-konan/zeroiq-bot/config"
	"github.com/qt-konan/zeroiq-bot/errors"
)

// CommitAuthor identifies snapshot commits in the archive history.
const CommitAuthor = "zeroiq-bot"

// Archiver mirrors a snapshot file into a git repository and pushes it.
type Archiver struct {
	repoPath     string
	snapshotName string
	remote       string
	branch       string
	logger       *zap.SugaredLogger
}

// New creates an archiver for the configured repository. The repository
// at cfg.Path must already exist (cloned by the operator); snapshots are
// committed under the snapshot file's base name.
func New(cfg config.ArchiveConfig, snapshotPath string, logger *zap.SugaredLogger) *Archiver {
	remote := cfg.Remote
	if remote == "" {
		remote = "origin"
	}
	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}
	return &Archiver{
		repoPath:     cfg.Path,
		snapshotName: filepath.Base(snapshotPath),
		remote:       remote,
		branch:       branch,
		logger:       logger,
	}
}

// Push runs the fetch-merge-commit-push sequence for the given snapshot
// file. Conflicts, auth failures, and network errors all come back as
// export errors for the caller to log as warnings.
func (a *Archiver) Push(ctx context.Context, snapshotPath string) error {
	repo, err := git.PlainOpen(a.repoPath)
	if err != nil {
		return errors.WrapExport(err, "open archive repository")
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return errors.WrapExport(err, "open archive worktree")
	}

	branchRef := plumbing.NewBranchReferenceName(a.branch)
	if err := a.checkoutBranch(repo, worktree, branchRef); err != nil {
		return err
	}

	// Fetch-merge first so the push applies on top of remote state
	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:    a.remote,
		ReferenceName: branchRef,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		if a.logger != nil {
			a.logger.Warnw("Archive pull failed, pushing on local state", "error", err)
		}
	}

	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		return errors.WrapExport(err, "read snapshot for archive")
	}

	dest := filepath.Join(a.repoPath, a.snapshotName)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return errors.WrapExport(err, "copy snapshot into archive")
	}

	if _, err := worktree.Add(a.snapshotName); err != nil {
		return errors.WrapExport(err, "stage snapshot")
	}

	status, err := worktree.Status()
	if err != nil {
		return errors.WrapExport(err, "read archive status")
	}
	if status.IsClean() {
		// Snapshot unchanged since last push
		return nil
	}

	_, err = worktree.Commit("Update memory snapshot", &git.CommitOptions{
		Author: &object.Signature{
			Name: CommitAuthor,
			When: time.Now(),
		},
	})
	if err != nil {
		return errors.WrapExport(err, "commit snapshot")
	}

	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: a.remote,
		RefSpecs: []gitconfig.RefSpec{
			gitconfig.RefSpec(fmt.Sprintf("%s:%s", branchRef, branchRef)),
		},
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return errors.WrapExport(err, "push archive")
	}

	if a.logger != nil {
		a.logger.Infow("Snapshot archived",
			"repo", a.repoPath,
			"remote", a.remote,
			"branch", a.branch,
		)
	}
	return nil
}

// checkoutBranch puts the worktree on the configured branch so commits
// and pushes land there, never on whatever HEAD the clone was left at.
// In a repository with no commits yet, HEAD is repointed at the branch so
// the first snapshot commit creates it.
func (a *Archiver) checkoutBranch(repo *git.Repository, worktree *git.Worktree, branchRef plumbing.ReferenceName) error {
	head, err := repo.Head()
	if err != nil {
		// No commits yet: repoint HEAD so the first commit creates the branch
		if setErr := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branchRef)); setErr != nil {
			return errors.WrapExport(setErr, "select archive branch")
		}
		return nil
	}
	if head.Name() == branchRef {
		return nil
	}

	if err := worktree.Checkout(&git.CheckoutOptions{Branch: branchRef}); err == nil {
		return nil
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Branch: branchRef, Create: true}); err != nil {
		return errors.WrapExport(err, "checkout archive branch")
	}
	return nil
}
