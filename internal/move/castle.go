package move

import (
	"sensei/internal/board"
	"sensei/internal/core"
)

// Path holds the fixed squares involved in one castle
type Path struct {
	KingFrom board.Square
	KingTo   board.Square
	RookFrom board.Square
	RookTo   board.Square
	// Between must be empty; Transit must not be reachable by the opponent (king start, crossing and destination)
	Between []board.Square
	Transit []board.Square
}

func castlePath(rank string, side board.CastleSide) Path {
	sq := func(file string) board.Square { return board.MustSquare(file + rank) }
	if side == board.Kingside {
		return Path{
			KingFrom: sq("e"), KingTo: sq("g"),
			RookFrom: sq("h"), RookTo: sq("f"),
			Between: []board.Square{sq("f"), sq("g")},
			Transit: []board.Square{sq("e"), sq("f"), sq("g")},
		}
	}
	return Path{
		KingFrom: sq("e"), KingTo: sq("c"),
		RookFrom: sq("a"), RookTo: sq("d"),
		Between: []board.Square{sq("b"), sq("c"), sq("d")},
		Transit: []board.Square{sq("e"), sq("d"), sq("c")},
	}
}

var paths = map[core.Color]map[board.CastleSide]Path{
	core.ColorWhite: {
		board.Kingside:  castlePath("1", board.Kingside),
		board.Queenside: castlePath("1", board.Queenside),
	},
	core.ColorBlack: {
		board.Kingside:  castlePath("8", board.Kingside),
		board.Queenside: castlePath("8", board.Queenside),
	},
}

// PathFor returns the squares for castling on side with colour c
func PathFor(side board.CastleSide, c core.Color) Path {
	return paths[c][side]
}

// HomeKingSquare is where a king must stand to castle
func HomeKingSquare(c core.Color) board.Square {
	return PathFor(board.Kingside, c).KingFrom
}
