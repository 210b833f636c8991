package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pogoda/internal/weather"
)

const shellHelp = "Wpisz nazwę miasta. Polecenia: :history, :reset, :quit"

// runShell drives one session from line-based input until EOF or :quit.
func runShell(ctx context.Context, in io.Reader, out io.Writer, svc weather.Searcher) error {
	sess := weather.NewSession()
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, shellHelp)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":history":
			renderHistory(out, sess.State().History)
			continue
		case ":reset":
			sess.Reset()
			fmt.Fprintln(out, shellHelp)
			continue
		}

		state, err := sess.Search(ctx, svc, line)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			fmt.Fprintln(out, state.Error)
			continue
		}
		renderResult(out, state.City, *state.Current, state.Alert, state.Forecast)
	}
}
