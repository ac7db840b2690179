package cli

import (
	"fmt"
	"io"
	"strings"

	"sensei/internal/board"
	"sensei/internal/core"
)

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	white   string
	black   string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m",
		darkBg:  "\033[48;5;22m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m",
		darkBg:  "\033[48;5;240m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
}

// View renders boards and messages to a terminal
type View struct {
	output io.Writer
	theme  ColorTheme
}

func NewView(output io.Writer, theme ColorTheme) *View {
	if _, ok := themes[theme]; !ok {
		theme = ThemeOff
	}
	return &View{output: output, theme: theme}
}

func (v *View) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	v.theme = theme
	return nil
}

func (v *View) Theme() ColorTheme {
	return v.theme
}

func (v *View) ShowMessage(msg string) {
	fmt.Fprintln(v.output, msg)
}

func (v *View) ShowError(err error) {
	v.ShowMessage(fmt.Sprintf("Error: %v", err))
}

func (v *View) DisplayBoard(b *board.Board) {
	theme := themes[v.theme]
	var sb strings.Builder

	sb.WriteString("\n  a b c d e f g h\n")

	for y := 0; y < board.Size; y++ {
		sb.WriteString(fmt.Sprintf("%d ", board.Size-y))
		for x := 0; x < board.Size; x++ {
			piece := b.At(board.Sq(x, y))

			if v.theme == ThemeOff {
				if piece.IsNone() {
					sb.WriteString(". ")
				} else {
					sb.WriteString(fmt.Sprintf("%c ", piece.Code()))
				}
				continue
			}

			bg := theme.darkBg
			if (x+y)%2 == 0 {
				bg = theme.lightBg
			}
			if piece.IsNone() {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
				continue
			}
			fg := theme.black
			if piece.Color == core.ColorWhite {
				fg = theme.white
			}
			sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, fg, piece.Code(), theme.reset))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", board.Size-y))
	}
	sb.WriteString("  a b c d e f g h\n")

	v.ShowMessage(sb.String())
}

func (v *View) ShowHelp() {
	help := `Commands:
  new              - Start a new game from the standard position
  resume <FEN>     - Resume from a specific board position
  <move>           - Make a move (e.g., e2e4, e1g1, a7a8q)
  moves [square]   - List legal moves, for one square or the whole side
  undo [count]     - Undo last move(s), default 1
  fen              - Print the current position as FEN
  history          - Show game move history and positions
  color <theme>    - Set board color theme (off|brown|green|gray)
  quit/exit        - Exit the program
  help/?           - Show this help message`

	v.ShowMessage(help)
}

func (v *View) ShowWelcome() {
	v.ShowMessage("Welcome to Chess!")
	v.ShowMessage("Commands: new, resume <FEN>, <move>, moves, undo, fen, history, color, help/?, quit/exit")
	v.ShowMessage("Example: 'resume 4k3/8/8/8/8/8/8/4K2R w K - 0 1' to start from a puzzle.")
	v.ShowMessage("")
}

// ShowHistory prints the moves in numbered pairs, starting from the position's own move number
func (v *View) ShowHistory(initialFEN string, firstMover core.Color, moves []string, currentFEN string, state core.State) {
	v.ShowMessage(fmt.Sprintf("Starting FEN: %s", initialFEN))

	i := 0
	n := 1
	if firstMover == core.ColorBlack && len(moves) > 0 {
		v.ShowMessage(fmt.Sprintf("%d. ... | %s", n, moves[0]))
		i = 1
		n++
	}
	for ; i < len(moves); i += 2 {
		if i+1 < len(moves) {
			v.ShowMessage(fmt.Sprintf("%d. %s | %s", n, moves[i], moves[i+1]))
		} else {
			v.ShowMessage(fmt.Sprintf("%d. %s | ...", n, moves[i]))
		}
		n++
	}

	v.ShowMessage(fmt.Sprintf("Current FEN: %s", currentFEN))
	v.ShowMessage(fmt.Sprintf("Game state: %s", state))
}

func (v *View) ShowGameOver(state core.State) {
	v.ShowMessage(fmt.Sprintf("\nGame Over: %s", state))
	v.ShowMessage("Start a new game with 'new' or 'resume', or take moves back with 'undo'.")
}
