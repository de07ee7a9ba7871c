// Package domain contains the core records of the platform.
// Records are plain structs; persistence mapping stays at the edges.
package domain

import "time"

// Effect is the name of a time-bounded status effect on a user profile.
// An effect is never deleted when it runs out: readers must always compare
// the stored deadline against the current time.
type Effect string

const (
	EffectLove         Effect = "love"
	EffectHairColor    Effect = "haircolor"
	EffectRainbow      Effect = "rainbow"
	EffectGlow         Effect = "glow"
	EffectSparkle      Effect = "sparkle"
	EffectTranslation  Effect = "translation"
	EffectEcho         Effect = "echo"
	EffectWhisper      Effect = "whisper"
	EffectShout        Effect = "shout"
	EffectDarkMode     Effect = "darkmode"
	EffectRetro        Effect = "retro"
	EffectMirror       Effect = "mirror"
	EffectSpeed        Effect = "speed"
	EffectSlowMotion   Effect = "slowmotion"
	EffectSurveillance Effect = "surveillance"
	EffectLucky        Effect = "lucky"
	EffectWisdom       Effect = "wisdom"
	EffectCharm        Effect = "charm"
	EffectMystery      Effect = "mystery"
	EffectInvisible    Effect = "invisible"
)

// EffectDurations is the static configuration table: how long each effect
// lasts once applied. Duration is never user input.
var EffectDurations = map[Effect]time.Duration{
	EffectLove:         1 * time.Hour,
	EffectHairColor:    2 * time.Hour,
	EffectRainbow:      1 * time.Hour,
	EffectGlow:         3 * time.Hour,
	EffectSparkle:      2 * time.Hour,
	EffectTranslation:  2 * time.Hour,
	EffectEcho:         1 * time.Hour,
	EffectWhisper:      2 * time.Hour,
	EffectShout:        15 * time.Minute,
	EffectDarkMode:     24 * time.Hour,
	EffectRetro:        2 * time.Hour,
	EffectMirror:       2 * time.Hour,
	EffectSpeed:        15 * time.Minute,
	EffectSlowMotion:   1 * time.Hour,
	EffectSurveillance: 1 * time.Hour,
	EffectLucky:        3 * time.Hour,
	EffectWisdom:       2 * time.Hour,
	EffectCharm:        2 * time.Hour,
	EffectMystery:      2 * time.Hour,
	EffectInvisible:    5 * time.Minute,
}
