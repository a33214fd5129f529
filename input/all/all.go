// Package all imports all backends implemented by the input package.
package all

import (
	_ "github.com/noriah/catvj/input/ffmpeg"
	_ "github.com/noriah/catvj/input/parec"
)
