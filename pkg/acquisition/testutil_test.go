package acquisition

import (
	"github.com/rs/zerolog"
)

// testLogger returns a silent logger for tests.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
