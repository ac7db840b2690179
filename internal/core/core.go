package core

type State int

const (
	StateOngoing State = iota
	StateWhiteWins
	StateBlackWins
	StateDraw
)

func (s State) String() string {
	switch s {
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateDraw:
		return "draw"
	case StateOngoing:
		return "ongoing"
	default:
		return "unknown"
	}
}

// IsOver reports whether no further moves are accepted
func (s State) IsOver() bool {
	return s == StateWhiteWins || s == StateBlackWins || s == StateDraw
}

// Result maps a finished state onto its outcome, zero while ongoing
func (s State) Result() Result {
	switch s {
	case StateWhiteWins:
		return ResultWhiteWin
	case StateBlackWins:
		return ResultBlackWin
	case StateDraw:
		return ResultDraw
	default:
		return 0
	}
}

// Result is a terminal game outcome as decided by the rule engine
type Result int

const (
	ResultWhiteWin Result = iota + 1
	ResultBlackWin
	ResultDraw
)

func (r Result) String() string {
	switch r {
	case ResultWhiteWin:
		return "1-0"
	case ResultBlackWin:
		return "0-1"
	case ResultDraw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// ParseResult reads a PGN result token; anything else is the unfinished "*"
func ParseResult(s string) Result {
	switch s {
	case "1-0":
		return ResultWhiteWin
	case "0-1":
		return ResultBlackWin
	case "1/2-1/2":
		return ResultDraw
	default:
		return 0
	}
}

// WinFor returns the decisive result in favour of c
func WinFor(c Color) Result {
	if c == ColorWhite {
		return ResultWhiteWin
	}
	return ResultBlackWin
}

// StateFromResult maps an engine result onto the game state machine
func StateFromResult(r Result) State {
	switch r {
	case ResultWhiteWin:
		return StateWhiteWins
	case ResultBlackWin:
		return StateBlackWins
	case ResultDraw:
		return StateDraw
	default:
		return StateOngoing
	}
}

type Color byte

const (
	ColorWhite Color = iota + 1
	ColorBlack
)

func (c Color) String() string {
	if c == ColorWhite {
		return "w"
	} else if c == ColorBlack {
		return "b"
	} else {
		return "-"
	}
}

// Name returns the capitalised colour name for display
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts "w" or "b"
func ParseColor(s string) (Color, bool) {
	switch s {
	case "w":
		return ColorWhite, true
	case "b":
		return ColorBlack, true
	default:
		return 0, false
	}
}
