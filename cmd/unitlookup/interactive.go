package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"
)

// selectColumn lets the user move through the column names with arrow keys
// and press Enter to choose. Returns ok=false when stdin is not a terminal
// or the user backs out with Esc; the caller then falls back to defaultIdx.
func selectColumn(columns []string, defaultIdx int) (int, bool) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return 0, false
	}
	defer term.Restore(fd, oldState)

	reader := bufio.NewReader(os.Stdin)
	selected := defaultIdx

	redraw := func() {
		fmt.Fprint(os.Stderr, "\033[H\033[2J")
		fmt.Fprint(os.Stderr, "Select the BBL column:\r\n\r\n")

		for i, c := range columns {
			prefix := "  "
			if i == selected {
				prefix = "> "
			}

			fmt.Fprintf(os.Stderr, "%s%s\r\n", prefix, c)
		}

		fmt.Fprint(os.Stderr, "\r\n(↑/↓ to navigate, Enter to choose, Esc for default)\r\n")
	}

	redraw()

	for {
		b1, err := reader.ReadByte()
		if err != nil {
			return 0, false
		}

		switch b1 {
		case '\r', '\n':
			return selected, true
		case 27: // ESC or an ANSI sequence
			if reader.Buffered() == 0 {
				return 0, false
			}

			b2, _ := reader.ReadByte()
			if b2 != '[' {
				continue
			}

			b3, _ := reader.ReadByte()
			switch b3 {
			case 'A': // up
				if selected > 0 {
					selected--
					redraw()
				}
			case 'B': // down
				if selected < len(columns)-1 {
					selected++
					redraw()
				}
			}
		case 'q', 3: // q or Ctrl-C
			return 0, false
		}
	}
}
