package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPasswordSource reads without echo when stdin is a terminal and
// falls back to a plain line read for piped input.
func TerminalPasswordSource(stdin *os.File, out io.Writer) PasswordSource {
	reader := bufio.NewReader(stdin)
	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)

		fd := int(stdin.Fd())
		if term.IsTerminal(fd) {
			secret, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			if err != nil {
				return "", err
			}
			return string(secret), nil
		}

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if err != nil && line == "" {
			return "", io.ErrUnexpectedEOF
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
