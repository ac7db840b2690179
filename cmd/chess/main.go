// Package main runs a local two-player chess session in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sensei/internal/cli"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

func main() {
	theme := flag.String("color", "", "board color theme: off, brown, green, gray (default brown on a terminal)")
	fen := flag.String("fen", "", "start from this position instead of waiting for 'new'")
	historyFile := flag.String("history", defaultHistoryFile(), "readline history file")
	flag.Parse()

	if *theme == "" {
		*theme = string(cli.ThemeOff)
		if term.IsTerminal(int(os.Stdout.Fd())) {
			*theme = string(cli.ThemeBrown)
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "chess > ",
		HistoryFile:     *historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	view := cli.NewView(rl.Stdout(), cli.ColorTheme(*theme))
	session := cli.NewSession(view, func(question string) (string, error) {
		rl.SetPrompt(question)
		return rl.Readline()
	})

	view.ShowWelcome()
	if *fen != "" {
		session.Execute("resume " + *fen)
	}

	for {
		rl.SetPrompt(session.Prompt() + " > ")

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		}
		if err != nil {
			continue
		}

		if !session.Execute(strings.TrimSpace(line)) {
			break
		}
	}
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chess_history"
	}
	return filepath.Join(home, ".chess_history")
}
