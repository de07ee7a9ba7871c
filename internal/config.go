package internal

// Config covers the debug tooling: the viewer binary and the embedded
// inspector share it.
type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	DebugPort      int    `env:"DEBUG_PORT,default=6060"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
}
