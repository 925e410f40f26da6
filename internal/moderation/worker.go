package moderation

import (
	"context"

	"github.com/Farengier/usernotes-bot/internal/platform"
)

// Worker consumes the feed of one community, one comment at a time.
type Worker struct {
	community string
	feed      platform.Feed
	orch      *Orchestrator
}

func NewWorker(community string, feed platform.Feed, orch *Orchestrator) *Worker {
	return &Worker{community: community, feed: feed, orch: orch}
}

func (w *Worker) Name() string {
	return w.community
}

func (w *Worker) Run(ctx context.Context) error {
	return w.feed.Stream(ctx, w.community, func(c platform.Comment) {
		w.orch.Handle(ctx, c)
	})
}
