// Package replay writes selections into a git repository as real commits,
// doing natively what the generated shell script does.
package replay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/script"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

const (
	DefaultAuthorName  = "time-travel"
	DefaultAuthorEmail = "time-travel@localhost"

	// commitHour keeps the commit on its calendar day in every timezone
	// between UTC-12 and UTC+11
	commitHour = 12
)

var ErrReplay = errors.New("replay failed")

// Author identifies who the fake commits are attributed to
type Author struct {
	Name  string
	Email string
}

// Result summarizes a replay
type Result struct {
	Commits int
	Head    plumbing.Hash
}

// Replayer commits selections into one repository
type Replayer struct {
	repo   *gogit.Repository
	fs     billy.Filesystem
	author Author
	logger *zap.Logger
}

// Open opens the repository at path, initializing it when it does not exist
func Open(path string, author Author, logger *zap.Logger) (*Replayer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo, err := gogit.PlainOpen(path)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create repo dir: %w", err)
		}
		repo, err = gogit.PlainInit(path, false)
		if err == nil {
			logger.Info("initialized repository", zap.String("path", path))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}

	return newReplayer(repo, author, logger)
}

// NewInMemory returns a replayer over a fresh in-memory repository
func NewInMemory(author Author, logger *zap.Logger) (*Replayer, error) {
	repo, err := gogit.Init(memory.NewStorage(), memfs.New())
	if err != nil {
		return nil, fmt.Errorf("init in-memory repository: %w", err)
	}
	return newReplayer(repo, author, logger)
}

func newReplayer(repo *gogit.Repository, author Author, logger *zap.Logger) (*Replayer, error) {
	w, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	if author.Name == "" {
		author.Name = DefaultAuthorName
	}
	if author.Email == "" {
		author.Email = DefaultAuthorEmail
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Replayer{repo: repo, fs: w.Filesystem, author: author, logger: logger}, nil
}

// Repository exposes the underlying repository
func (r *Replayer) Repository() *gogit.Repository {
	return r.repo
}

// Replay makes count+1 commits per selection, in order, each appending a
// line to the README and dated on the selection's day.
func (r *Replayer) Replay(ctx context.Context, selections []selection.Selection) (Result, error) {
	var res Result

	w, err := r.repo.Worktree()
	if err != nil {
		return res, fmt.Errorf("%w: get worktree: %w", ErrReplay, err)
	}

	for _, sel := range selections {
		day, err := calendar.ParseDate(sel.Date)
		if err != nil {
			return res, fmt.Errorf("%w: %w", ErrReplay, err)
		}
		when := day.Add(commitHour * time.Hour)

		for i := range script.Commits(sel) {
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("%w: %w", ErrReplay, err)
			}

			if err := r.appendLine(script.ReadmeLine(sel, i)); err != nil {
				return res, fmt.Errorf("%w: %s commit %d: %w", ErrReplay, sel.Date, i, err)
			}

			if err := w.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
				return res, fmt.Errorf("%w: %s commit %d: stage: %w", ErrReplay, sel.Date, i, err)
			}

			sig := &object.Signature{Name: r.author.Name, Email: r.author.Email, When: when}
			hash, err := w.Commit(script.Message(sel, i), &gogit.CommitOptions{
				Author:    sig,
				Committer: sig,
			})
			if err != nil {
				return res, fmt.Errorf("%w: %s commit %d: %w", ErrReplay, sel.Date, i, err)
			}

			res.Commits++
			res.Head = hash
			r.logger.Debug("committed",
				zap.String("date", sel.Date),
				zap.Int("index", i),
				zap.String("hash", hash.String()),
			)
		}
	}

	r.logger.Info("replay finished",
		zap.Int("selections", len(selections)),
		zap.Int("commits", res.Commits),
	)
	return res, nil
}

func (r *Replayer) appendLine(line string) error {
	f, err := r.fs.OpenFile(script.ReadmeFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", script.ReadmeFile, err)
	}
	if _, err := f.Write([]byte(line + "\n")); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", script.ReadmeFile, err)
	}
	return f.Close()
}
