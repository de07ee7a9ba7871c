// Package follow tracks which users want updates for which discussion
// threads. The relationship lives inside the acting user's own record
// (their followedTopics list); resolving a topic's audience is a read-time
// aggregation. Two strategies implement contract.FollowerRegistry: a full
// scan of user records, and a maintained reverse index for deployments
// where the scan gets too expensive.
package follow

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"time"

	"github.com/samber/lo"

	"moonhall/contract"
	"moonhall/docstore"
	"moonhall/domain"
	"moonhall/errors"
)

// ScanRegistry is the naive strategy: a single-document write on follow,
// a walk over every user record on read. No index can drift out of sync
// because there is no index.
type ScanRegistry struct {
	store docstore.Store
	log   *slog.Logger
	now   func() time.Time
}

func NewScanRegistry(store docstore.Store, log *slog.Logger) *ScanRegistry {
	return &ScanRegistry{store: store, log: log, now: time.Now}
}

// Follow adds the topic to the user's followed list. Following a topic
// twice leaves exactly one entry.
func (r *ScanRegistry) Follow(ctx context.Context, userID string, topic domain.FollowedTopic) error {
	user, err := r.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	already := lo.ContainsBy(user.FollowedTopics, func(t domain.FollowedTopic) bool {
		return t.TopicID == topic.TopicID
	})
	if already {
		return nil
	}
	if topic.FollowedAt.IsZero() {
		topic.FollowedAt = r.now()
	}
	updated := append(user.FollowedTopics, topic)
	return r.store.Update(ctx, "users", userID, map[string]any{
		"followedTopics": domain.FollowedTopicsData(updated),
	})
}

// Unfollow removes the topic from the user's followed list. Unfollowing a
// topic that was never followed is a no-op.
func (r *ScanRegistry) Unfollow(ctx context.Context, userID, topicID string) error {
	user, err := r.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	kept := lo.Filter(user.FollowedTopics, func(t domain.FollowedTopic, _ int) bool {
		return t.TopicID != topicID
	})
	if len(kept) == len(user.FollowedTopics) {
		return nil
	}
	return r.store.Update(ctx, "users", userID, map[string]any{
		"followedTopics": domain.FollowedTopicsData(kept),
	})
}

func (r *ScanRegistry) IsFollowing(ctx context.Context, userID, topicID string) (bool, error) {
	user, err := r.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(user.FollowedTopics, func(t domain.FollowedTopic) bool {
		return t.TopicID == topicID
	}), nil
}

// FollowersOf scans every user record and keeps those following the
// topic. Accepted cost: the registry is expected to stay small.
func (r *ScanRegistry) FollowersOf(ctx context.Context, topicID string) ([]string, error) {
	docs, err := r.store.Query(ctx, "users", nil, nil, 0)
	if err != nil {
		return nil, err
	}
	followers := lo.FilterMap(docs, func(doc docstore.Document, _ int) (string, bool) {
		user := domain.UserFromData(doc.ID, doc.Data)
		following := lo.ContainsBy(user.FollowedTopics, func(t domain.FollowedTopic) bool {
			return t.TopicID == topicID
		})
		return user.ID, following
	})
	sort.Strings(followers)
	return followers, nil
}

// loadUser tolerates a missing record: a brand new user simply follows
// nothing yet.
func (r *ScanRegistry) loadUser(ctx context.Context, userID string) (domain.User, error) {
	doc, err := r.store.Get(ctx, "users", userID)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return domain.User{ID: userID}, nil
		}
		return domain.User{}, err
	}
	return domain.UserFromData(doc.ID, doc.Data), nil
}

// AutoFollow subscribes the actor to a thread they just created or replied
// to, unless they already follow it. Services call this strictly before
// computing fan-out recipients, which is what keeps actors from notifying
// themselves.
func AutoFollow(ctx context.Context, registry contract.FollowerRegistry, userID string, topic domain.FollowedTopic) error {
	following, err := registry.IsFollowing(ctx, userID, topic.TopicID)
	if err != nil {
		return err
	}
	if following {
		return nil
	}
	return registry.Follow(ctx, userID, topic)
}
