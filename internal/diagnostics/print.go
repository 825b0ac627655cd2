package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// colorEnabled reports whether w is a real terminal, not piped, with
// NO_COLOR unset.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	ansiRed = "\x1b[31m"
	ansiDim = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

// Print renders a CompileError to w, colorized only when w is a real
// terminal. Coloring is purely an ambient rendering concern, not part
// of the error's identity.
func Print(w io.Writer, err *CompileError) {
	if err == nil {
		return
	}
	if !colorEnabled(w) {
		fmt.Fprintln(w, err.Error())
		return
	}
	loc := err.Location.String()
	if err.Stage != "" {
		fmt.Fprintf(w, "%s%s%s: %s[%s]%s %s\n", ansiDim, loc, ansiReset, ansiDim, err.Stage, ansiReset, redden(err.Message))
		return
	}
	fmt.Fprintf(w, "%s%s%s: %s\n", ansiDim, loc, ansiReset, redden(err.Message))
}

func redden(msg string) string {
	return ansiRed + msg + ansiReset
}

// Warnf writes an annotation-unknown warning to w.
func Warnf(w io.Writer, loc fmt.Stringer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s: warning: %s\n", loc.String(), fmt.Sprintf(format, args...))
}
