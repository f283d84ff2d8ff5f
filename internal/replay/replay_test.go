package replay

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/time-travel/internal/script"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

func commitsOf(t *testing.T, r *Replayer) []*object.Commit {
	t.Helper()
	iter, err := r.Repository().Log(&gogit.LogOptions{})
	require.NoError(t, err)

	var commits []*object.Commit
	require.NoError(t, iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c)
		return nil
	}))

	// oldest first
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits
}

func TestReplay(t *testing.T) {
	r, err := NewInMemory(Author{Name: "Marty", Email: "marty@example.com"}, zap.NewNop())
	require.NoError(t, err)

	sels := []selection.Selection{
		{Date: "2024-01-01", Count: 1},
		{Date: "2023-12-24", Count: 0},
	}

	res, err := r.Replay(context.Background(), sels)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Commits)

	commits := commitsOf(t, r)
	require.Len(t, commits, 3)
	assert.Equal(t, res.Head, commits[2].Hash)

	wantDates := []string{"2024-01-01", "2024-01-01", "2023-12-24"}
	for i, c := range commits {
		assert.Equal(t, wantDates[i], c.Author.When.UTC().Format("2006-01-02"))
		assert.Equal(t, "Marty", c.Author.Name)
		assert.Equal(t, "marty@example.com", c.Author.Email)
	}
	assert.Equal(t, script.Message(sels[0], 0), commits[0].Message)
	assert.Equal(t, script.Message(sels[0], 1), commits[1].Message)
	assert.Equal(t, script.Message(sels[1], 0), commits[2].Message)

	f, err := r.fs.Open(script.ReadmeFile)
	require.NoError(t, err)
	defer f.Close()
	content, err := io.ReadAll(f)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, script.ReadmeLine(sels[1], 0), lines[2])
}

func TestReplayDefaultsAuthor(t *testing.T) {
	r, err := NewInMemory(Author{}, nil)
	require.NoError(t, err)

	_, err = r.Replay(context.Background(), []selection.Selection{{Date: "2024-02-29", Count: 0}})
	require.NoError(t, err)

	commits := commitsOf(t, r)
	require.Len(t, commits, 1)
	assert.Equal(t, DefaultAuthorName, commits[0].Author.Name)
	assert.Equal(t, time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), commits[0].Committer.When.UTC())
}

func TestReplayInvalidDate(t *testing.T) {
	r, err := NewInMemory(Author{}, zap.NewNop())
	require.NoError(t, err)

	res, err := r.Replay(context.Background(), []selection.Selection{{Date: "yesterday", Count: 1}})
	assert.ErrorIs(t, err, ErrReplay)
	assert.Zero(t, res.Commits)
}

func TestReplayCanceled(t *testing.T) {
	r, err := NewInMemory(Author{}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Replay(ctx, []selection.Selection{{Date: "2024-01-01", Count: 2}})
	assert.ErrorIs(t, err, ErrReplay)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenInitializesRepository(t *testing.T) {
	dir := t.TempDir() + "/history"

	r, err := Open(dir, Author{}, zap.NewNop())
	require.NoError(t, err)

	res, err := r.Replay(context.Background(), []selection.Selection{{Date: "2024-04-01", Count: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Commits)

	// reopening finds the existing history
	again, err := Open(dir, Author{}, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, commitsOf(t, again), 2)
}

func TestOpenWithoutLogger(t *testing.T) {
	dir := t.TempDir() + "/new"

	r, err := Open(dir, Author{}, nil)
	require.NoError(t, err)

	res, err := r.Replay(context.Background(), []selection.Selection{{Date: "2024-04-01", Count: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Commits)
}
