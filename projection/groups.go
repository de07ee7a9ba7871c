// Package projection builds the read-side views handed to the UI.
// Everything here is a pure transform over stored records or a local
// accumulation of pushed updates; nothing writes back.
package projection

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"moonhall/domain"
)

// Group is a presentation-time bundle of notifications sharing a kind and
// a subject. The stored records stay individual; only their rendering
// collapses.
type Group struct {
	Kind    domain.NotificationKind
	Subject string
	Count   int
	Latest  domain.Notification
	Unread  int
}

// Summary is the line the UI shows for the group.
func (g Group) Summary() string {
	if g.Count > 1 {
		return fmt.Sprintf("%d updates · %s", g.Count, g.Latest.Title)
	}
	return g.Latest.Title
}

// Groups collapses a feed by (kind, subject), newest group first. Input is
// expected newest-first, as the notification feed returns it.
func Groups(notifications []domain.Notification) []Group {
	byKey := lo.GroupBy(notifications, func(n domain.Notification) string {
		return string(n.Kind) + "|" + n.Subject
	})
	groups := lo.MapToSlice(byKey, func(_ string, members []domain.Notification) Group {
		latest := members[0]
		for _, n := range members {
			if n.CreatedAt.After(latest.CreatedAt) {
				latest = n
			}
		}
		return Group{
			Kind:    latest.Kind,
			Subject: latest.Subject,
			Count:   len(members),
			Latest:  latest,
			Unread:  lo.CountBy(members, func(n domain.Notification) bool { return !n.Read }),
		}
	})
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Latest.CreatedAt.After(groups[j].Latest.CreatedAt)
	})
	return groups
}
