package domain

import "time"

// FollowedTopic is one entry of a user's followed topics list.
// Entries are unique by TopicID; insertion order carries no meaning.
type FollowedTopic struct {
	TopicID    string
	Title      string
	Forum      string
	FollowedAt time.Time
}

// User is the per-user record. It is owned by the user but also mutated by
// other users' actions targeting them (gifts, love effect), so every field
// here must survive concurrent last-write-wins merges.
type User struct {
	ID             string
	DisplayName    string
	LastActive     time.Time
	StatusEffects  map[Effect]time.Time // deadline per effect, possibly long expired
	FollowedTopics []FollowedTopic
	Conversations  []string // ids of direct conversations this user takes part in
}

// UserFromData rebuilds a User from a raw document payload. Unknown fields
// (inventory, currency, pending discoveries...) are simply ignored: they
// belong to collaborators outside the synchronization core.
func UserFromData(id string, data map[string]any) User {
	u := User{
		ID:          id,
		DisplayName: asString(data["displayName"]),
		LastActive:  asMillis(data["lastActive"]),
	}
	if raw, ok := data["effects"].(map[string]any); ok {
		u.StatusEffects = make(map[Effect]time.Time, len(raw))
		for name, deadline := range raw {
			u.StatusEffects[Effect(name)] = asMillis(deadline)
		}
	}
	if raw, ok := data["followedTopics"].([]any); ok {
		for _, entry := range raw {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			u.FollowedTopics = append(u.FollowedTopics, FollowedTopic{
				TopicID:    asString(m["id"]),
				Title:      asString(m["title"]),
				Forum:      asString(m["forum"]),
				FollowedAt: asMillis(m["followedAt"]),
			})
		}
	}
	if raw, ok := data["conversations"].([]any); ok {
		for _, entry := range raw {
			if s, ok := entry.(string); ok {
				u.Conversations = append(u.Conversations, s)
			}
		}
	}
	return u
}

// FollowedTopicsData renders the followed topics list back to its stored
// shape. The whole list is always written at once, mirroring how the
// record is mutated by a single owner.
func FollowedTopicsData(topics []FollowedTopic) []any {
	out := make([]any, 0, len(topics))
	for _, t := range topics {
		out = append(out, map[string]any{
			"id":         t.TopicID,
			"title":      t.Title,
			"forum":      t.Forum,
			"followedAt": t.FollowedAt.UnixMilli(),
		})
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asMillis reads a unix-milliseconds timestamp out of a decoded JSON value.
// Numbers come back as float64 after JSON decoding, but freshly written
// documents may still hold int64 or time.Time.
func asMillis(v any) time.Time {
	switch n := v.(type) {
	case float64:
		return time.UnixMilli(int64(n))
	case int64:
		return time.UnixMilli(n)
	case int:
		return time.UnixMilli(int64(n))
	case time.Time:
		return n
	}
	return time.Time{}
}
