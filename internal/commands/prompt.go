package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/push"
)

// ErrNoInput is returned when stdin ends before a line was read.
var ErrNoInput = errors.New("no input")

// readLine reads one line from in without its line ending.
func readLine(in *bufio.Reader) (string, error) {
	if in == nil {
		return "", ErrNoInput
	}
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword prompts on errOut (unless quiet) and reads a password line.
func readPassword(app *App, errOut io.Writer) (string, error) {
	if !app.Config.Quiet {
		fmt.Fprint(errOut, "password: ")
	}
	pw, err := readLine(app.In)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

// StdinPrompter returns a push.Prompter that asks on out and reads a y/n
// answer from in. End of input is an error, leaving the decision open.
func StdinPrompter(in *bufio.Reader, out io.Writer) push.Prompter {
	return func(ctx context.Context, question string) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "%s [y/N] ", question)
		answer, err := readLine(in)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
