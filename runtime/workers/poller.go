package workers

import (
	"context"
	"log/slog"
	"time"

	"moonhall/docstore"
	"moonhall/domain"
	"moonhall/domain/event"
)

const DefaultPollInterval = 2 * time.Minute

// WatermarkPoller periodically checks the topics a user follows for posts
// newer than the last completed sweep. One watermark covers the whole sweep:
// it is captured when the cycle starts, compared against every topic, and
// advanced once the cycle ends whether or not anything was found. A post can
// therefore never be reported twice, at the cost of missing nothing newer
// than one interval.
//
// The watermark starts at "now" each time Run is called. Activity from
// while the poller was not running is skipped; stale topics surface
// through the notification feed, not through polling.
type WatermarkPoller struct {
	log        *slog.Logger
	store      docstore.Store
	events     chan<- event.DomainEvent
	userID     string
	interval   time.Duration
	now        func() time.Time
	lastPollAt time.Time
}

func NewWatermarkPoller(log *slog.Logger, store docstore.Store, events chan<- event.DomainEvent, userID string) *WatermarkPoller {
	return &WatermarkPoller{
		log:      log,
		store:    store,
		events:   events,
		userID:   userID,
		interval: DefaultPollInterval,
		now:      time.Now,
	}
}

func (w *WatermarkPoller) Run(ctx context.Context) error {
	w.log.Info("Starting watermark poller", "user", w.userID, "interval", w.interval)
	w.lastPollAt = w.now()

	if err := w.Sweep(ctx); err != nil {
		w.log.Warn("Poll sweep failed", "user", w.userID, "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.log.Warn("Poll sweep failed", "user", w.userID, "error", err)
			}
		}
	}
}

// Sweep checks every followed topic against the shared watermark and emits
// one event per topic with fresh activity. The watermark always advances to
// the cycle start time, even when a topic query fails.
func (w *WatermarkPoller) Sweep(ctx context.Context) error {
	cycleStart := w.now()
	watermark := w.lastPollAt
	defer func() { w.lastPollAt = cycleStart }()

	doc, err := w.store.Get(ctx, "users", w.userID)
	if err != nil {
		return err
	}
	user := domain.UserFromData(w.userID, doc.Data)

	for _, followed := range user.FollowedTopics {
		post, ok, err := w.newestPost(ctx, followed.Forum, followed.TopicID)
		if err != nil {
			w.log.Warn("Topic check failed", "topic", followed.TopicID, "error", err)
			continue
		}
		if !ok || !post.CreatedAt.After(watermark) || post.AuthorID == w.userID {
			continue
		}

		evt := event.ReplyPosted{
			Forum:      followed.Forum,
			TopicID:    followed.TopicID,
			TopicTitle: followed.Title,
			PostID:     post.ID,
			ActorID:    post.AuthorID,
			ActorName:  post.Author,
			CreatedAt:  post.CreatedAt,
		}
		select {
		case w.events <- evt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// newestPost fetches only the most recent entry of a topic. Older unseen
// posts collapse into that single probe; one event per topic per sweep.
func (w *WatermarkPoller) newestPost(ctx context.Context, forum, topicID string) (domain.Post, bool, error) {
	docs, err := w.store.Query(ctx, domain.PostsCollection(forum, topicID), nil,
		&docstore.OrderBy{Field: "created", Desc: true}, 1)
	if err != nil {
		return domain.Post{}, false, err
	}
	if len(docs) == 0 {
		return domain.Post{}, false, nil
	}
	return domain.PostFromData(docs[0].ID, docs[0].Data), true, nil
}
