package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/time-travel/internal/app"
	"github.com/klabast/wb-services/time-travel/internal/replay"
)

// Replay commits the selections file into the repository at repoPath
func Replay(ctx context.Context, w io.Writer, file *app.SelectionFile, repoPath string, cfg app.ReplayConfig, logger *zap.Logger) error {
	selections, err := file.Load()
	if err != nil {
		return err
	}

	r, err := replay.Open(repoPath, replay.Author{Name: cfg.AuthorName, Email: cfg.AuthorEmail}, logger)
	if err != nil {
		return err
	}

	res, err := r.Replay(ctx, selections)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "Replayed %d commits into %s (HEAD %s)\n", res.Commits, repoPath, res.Head)
	return err
}
