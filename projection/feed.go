package projection

import (
	"sort"
	"sync"

	"moonhall/docstore"
	"moonhall/domain"
)

// Feed accumulates one user's notifications from pushed document updates,
// so the badge reacts without re-querying. It is the push-side counterpart
// of notify.Engine.Feed and follows the same cap.
//
// On any stream trouble the owner calls Reset: the view drops to a safe
// empty default instead of rendering half a state.
type Feed struct {
	mu     sync.RWMutex
	userID string
	byID   map[string]domain.Notification
	limit  int
}

func NewFeed(userID string, limit int) *Feed {
	return &Feed{userID: userID, byID: make(map[string]domain.Notification), limit: limit}
}

// Apply folds one pushed document into the view. Documents addressed to
// somebody else are ignored, so one subscription can serve the whole
// notifications collection.
func (f *Feed) Apply(doc docstore.Document) {
	n := domain.NotificationFromData(doc.ID, doc.Data)
	if n.Recipient != f.userID {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[n.ID] = n
}

// Reset drops everything. Used when the subscription errors out.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID = make(map[string]domain.Notification)
}

// Unread is the badge count.
func (f *Feed) Unread() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	count := 0
	for _, n := range f.byID {
		if !n.Read {
			count++
		}
	}
	return count
}

// List returns the accumulated notifications newest first, capped.
func (f *Feed) List() []domain.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Notification, 0, len(f.byID))
	for _, n := range f.byID {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.limit > 0 && len(out) > f.limit {
		out = out[:f.limit]
	}
	return out
}
