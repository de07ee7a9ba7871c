// Package effects decides which time-bounded status effects are live on a
// user record. Expired entries are never swept from storage; the single
// source of truth for "is this still on" is ActiveAt, applied at read time
// by every consumer.
package effects

import (
	"fmt"
	"sort"
	"time"

	"moonhall/domain"
	"moonhall/errors"
)

// ActiveAt is the shared expiry check: a stored deadline is live only
// while it is strictly in the future. A deadline equal to now is expired.
// Every reader in the codebase goes through this function rather than
// comparing timestamps ad hoc.
func ActiveAt(deadline, now time.Time) bool {
	return deadline.After(now)
}

// IsActive reports whether the named effect is currently live on the user.
// A stale stored deadline and an absent key answer identically.
func IsActive(u domain.User, e domain.Effect, now time.Time) bool {
	deadline, ok := u.StatusEffects[e]
	return ok && ActiveAt(deadline, now)
}

// Active returns the currently live subset of the user's effects, sorted
// by name so repeated reads render stably.
func Active(u domain.User, now time.Time) []domain.Effect {
	var live []domain.Effect
	for e, deadline := range u.StatusEffects {
		if ActiveAt(deadline, now) {
			live = append(live, e)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i] < live[j] })
	return live
}

// Apply builds the merge patch that puts the named effect on a user record.
// The deadline always overwrites whatever was there before: re-drinking a
// potion resets its clock, it never stacks. Duration comes from the static
// table, never from the caller.
func Apply(e domain.Effect, now time.Time) (map[string]any, error) {
	duration, ok := domain.EffectDurations[e]
	if !ok {
		return nil, fmt.Errorf("%q: %w", e, errors.ErrUnknownEffect)
	}
	return map[string]any{
		"effects": map[string]any{
			string(e): now.Add(duration).UnixMilli(),
		},
	}, nil
}

// Snapshot freezes the sender's live effects for storage on a message, so
// an edited or expired profile never changes how history renders.
func Snapshot(u domain.User, now time.Time) []domain.Effect {
	return Active(u, now)
}
