package main

import "time"

type Config struct {
	UserID             string        `env:"USER_ID,required=true"`
	DisplayName        string        `env:"DISPLAY_NAME"`
	BadgerFilepath     string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel           string        `env:"LOG_LEVEL,required=true"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,required=true"`
	PresenceStaleAfter time.Duration `env:"PRESENCE_STALE_AFTER"`
	HistoryLimit       int           `env:"HISTORY_LIMIT"`
	FollowerIndex      bool          `env:"FOLLOWER_INDEX,default=false"`
	DebugPort          int           `env:"DEBUG_PORT"`
}
