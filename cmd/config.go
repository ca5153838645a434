package main

import "time"

type Config struct {
	BufferSize        int           `env:"BUFFER_SIZE,required=true"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,required=true"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	TelemetryInterval time.Duration `env:"TELEMETRY_INTERVAL,default=5s"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`

	ProviderBaseURL string        `env:"PROVIDER_BASE_URL,default=https://api.videosdk.live"`
	ProviderToken   string        `env:"PROVIDER_TOKEN,required=true"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT,default=10s"`
	RoomPoolSize    int           `env:"ROOM_POOL_SIZE,default=0"`

	EventID       string        `env:"EVENT_ID,required=true"`
	Roster        string        `env:"EVENT_ROSTER,required=true"`
	RoundDuration time.Duration `env:"ROUND_DURATION,default=10m"`
	AllowRepeats  bool          `env:"ALLOW_REPEATS,default=false"`
	LeftCategory  string        `env:"LEFT_CATEGORY,default=male"`
	RightCategory string        `env:"RIGHT_CATEGORY,default=female"`
	AutoStart     bool          `env:"AUTO_START,default=true"`
}
