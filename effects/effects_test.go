package effects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"moonhall/domain"
	"moonhall/errors"
)

func Test_Rainbow_Lifecycle(t *testing.T) {
	req := require.New(t)
	t0 := time.UnixMilli(1_700_000_000_000)
	user := domain.User{
		ID: "selene",
		StatusEffects: map[domain.Effect]time.Time{
			domain.EffectRainbow: t0.Add(3_600_000 * time.Millisecond),
		},
	}

	req.True(IsActive(user, domain.EffectRainbow, t0.Add(1_800_000*time.Millisecond)))
	req.False(IsActive(user, domain.EffectRainbow, t0.Add(3_600_001*time.Millisecond)))
}

func Test_Deadline_Equal_To_Now_Is_Expired(t *testing.T) {
	req := require.New(t)
	now := time.UnixMilli(1_700_000_000_000)
	user := domain.User{StatusEffects: map[domain.Effect]time.Time{domain.EffectGlow: now}}

	req.False(IsActive(user, domain.EffectGlow, now))
	req.True(IsActive(user, domain.EffectGlow, now.Add(-time.Millisecond)))
}

func Test_Absent_And_Stale_Keys_Read_The_Same(t *testing.T) {
	req := require.New(t)
	now := time.UnixMilli(1_700_000_000_000)
	stale := domain.User{
		StatusEffects: map[domain.Effect]time.Time{domain.EffectEcho: now.Add(-time.Hour)},
	}
	absent := domain.User{}

	req.Equal(IsActive(absent, domain.EffectEcho, now), IsActive(stale, domain.EffectEcho, now))
	req.Empty(Active(stale, now))
}

func Test_Active_Returns_Only_Live_Effects_Sorted(t *testing.T) {
	req := require.New(t)
	now := time.UnixMilli(1_700_000_000_000)
	user := domain.User{
		StatusEffects: map[domain.Effect]time.Time{
			domain.EffectWhisper: now.Add(time.Hour),
			domain.EffectGlow:    now.Add(time.Minute),
			domain.EffectShout:   now.Add(-time.Second),
		},
	}

	req.Equal([]domain.Effect{domain.EffectGlow, domain.EffectWhisper}, Active(user, now))
}

func Test_Apply_Overwrites_Deadline_Never_Stacks(t *testing.T) {
	req := require.New(t)
	now := time.UnixMilli(1_700_000_000_000)

	first, err := Apply(domain.EffectShout, now)
	req.NoError(err)
	later := now.Add(10 * time.Minute)
	second, err := Apply(domain.EffectShout, later)
	req.NoError(err)

	firstDeadline := first["effects"].(map[string]any)["shout"].(int64)
	secondDeadline := second["effects"].(map[string]any)["shout"].(int64)
	req.Equal(now.Add(domain.EffectDurations[domain.EffectShout]).UnixMilli(), firstDeadline)
	req.Equal(later.Add(domain.EffectDurations[domain.EffectShout]).UnixMilli(), secondDeadline)
}

func Test_Apply_Unknown_Effect(t *testing.T) {
	_, err := Apply(domain.Effect("polyjuice"), time.Now())
	require.ErrorIs(t, err, errors.ErrUnknownEffect)
}

func Test_Snapshot_Matches_Active(t *testing.T) {
	req := require.New(t)
	now := time.UnixMilli(1_700_000_000_000)
	user := domain.User{
		StatusEffects: map[domain.Effect]time.Time{
			domain.EffectCharm:  now.Add(time.Hour),
			domain.EffectMirror: now.Add(-time.Hour),
		},
	}
	req.Equal(Active(user, now), Snapshot(user, now))
}
