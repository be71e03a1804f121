package ffprobe

import "time"

const (
	name = "ffprobe"
	// Spinning disks and network mounts can take a while to answer.
	timeout = 60 * time.Second
)
