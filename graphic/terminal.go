package graphic

import (
	"os"
	"strings"
)

// normalizeTerminal works around terminal settings termbox can not handle.
// The returned function restores the environment.
func normalizeTerminal() (func(), error) {
	prevTERMINFO, hadTERMINFO := os.LookupEnv("TERMINFO")

	term := os.Getenv("TERM")

	// tmux and screen with a custom TERMINFO make termbox fail to load
	if strings.HasPrefix(term, "tmux") || strings.HasPrefix(term, "screen") {
		if err := os.Unsetenv("TERMINFO"); err != nil {
			return nil, err
		}
	}

	restore := func() {
		if hadTERMINFO {
			os.Setenv("TERMINFO", prevTERMINFO)
		}
	}

	return restore, nil
}
