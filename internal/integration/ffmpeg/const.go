package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Long takes decoded from network mounts are slow to read.
	timeout = 10 * time.Minute
)
