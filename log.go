package grove

import (
	"fmt"
	"io"
	"os"
)

// logWriter receives all diagnostic output. Defaults to stderr.
// Not synchronized; grove is single-threaded.
var logWriter io.Writer = os.Stderr

// SetLogWriter redirects grove's diagnostic output. Pass io.Discard to
// silence it (tests do).
func SetLogWriter(w io.Writer) {
	logWriter = w
}

func logInfof(format string, args ...any) {
	_, _ = fmt.Fprintf(logWriter, "[grove] "+format+"\n", args...)
}

func logWarnf(format string, args ...any) {
	_, _ = fmt.Fprintf(logWriter, "[grove] warning: "+format+"\n", args...)
}

func logErrorf(format string, args ...any) {
	_, _ = fmt.Fprintf(logWriter, "[grove] error: "+format+"\n", args...)
}
