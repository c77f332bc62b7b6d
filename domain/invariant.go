package domain

import (
	"fmt"
	"log/slog"
)

// violated reports a broken internal invariant. Builds tagged "debug" panic,
// release builds log the violation and keep running.
func violated(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if debugInvariants {
		panic(msg)
	}
	slog.Error("invariant violated", "detail", msg)
}
