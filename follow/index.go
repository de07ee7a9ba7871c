package follow

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"moonhall/docstore"
	"moonhall/domain"
	"moonhall/errors"
)

// IndexRegistry keeps the same user-owned followedTopics writes as the
// scan strategy but additionally maintains one reverse-index document per
// topic, so FollowersOf becomes a point read. The two writes are not
// transactional: the user record is the source of truth and the index can
// briefly disagree with it after a partial failure. Re-running the same
// follow or unfollow converges both sides, which is why every mutation
// here is idempotent.
type IndexRegistry struct {
	scan  *ScanRegistry
	store docstore.Store
	log   *slog.Logger
}

const indexCollection = "topic_followers"

func NewIndexRegistry(store docstore.Store, log *slog.Logger) *IndexRegistry {
	return &IndexRegistry{scan: NewScanRegistry(store, log), store: store, log: log}
}

func (r *IndexRegistry) Follow(ctx context.Context, userID string, topic domain.FollowedTopic) error {
	if err := r.scan.Follow(ctx, userID, topic); err != nil {
		return err
	}
	return r.store.Update(ctx, indexCollection, topic.TopicID, map[string]any{
		"followers": map[string]any{userID: true},
	})
}

func (r *IndexRegistry) Unfollow(ctx context.Context, userID, topicID string) error {
	if err := r.scan.Unfollow(ctx, userID, topicID); err != nil {
		return err
	}
	// nil removes the member key from the index document.
	return r.store.Update(ctx, indexCollection, topicID, map[string]any{
		"followers": map[string]any{userID: nil},
	})
}

func (r *IndexRegistry) IsFollowing(ctx context.Context, userID, topicID string) (bool, error) {
	return r.scan.IsFollowing(ctx, userID, topicID)
}

func (r *IndexRegistry) FollowersOf(ctx context.Context, topicID string) ([]string, error) {
	doc, err := r.store.Get(ctx, indexCollection, topicID)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	members, _ := doc.Data["followers"].(map[string]any)
	followers := lo.Keys(members)
	sort.Strings(followers)
	return followers, nil
}

// Rebuild regenerates one topic's index entry from the user records. Meant
// for repairing drift after a partial failure, not for the hot path.
func (r *IndexRegistry) Rebuild(ctx context.Context, topicID string) error {
	followers, err := r.scan.FollowersOf(ctx, topicID)
	if err != nil {
		return err
	}
	members := make(map[string]any, len(followers))
	for _, id := range followers {
		members[id] = true
	}
	if err := r.store.Delete(ctx, indexCollection, topicID); err != nil {
		return err
	}
	return r.store.Update(ctx, indexCollection, topicID, map[string]any{"followers": members})
}
