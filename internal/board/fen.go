package board

import (
	"fmt"
	"strconv"
	"strings"

	"sensei/internal/core"
)

// FEN field names used in ParseError
const (
	FieldLayout    = "fields"
	FieldPlacement = "placement"
	FieldActive    = "active color"
	FieldCastling  = "castling"
	FieldEnPassant = "en passant"
	FieldHalfMove  = "halfmove clock"
	FieldFullMove  = "fullmove number"
)

// ParseError describes one problem found while reading a FEN record
type ParseError struct {
	Field   string
	Message string
}

func (e ParseError) Error() string {
	return e.Field + ": " + e.Message
}

// fenParser accumulates errors so a malformed record still yields a best-effort board
type fenParser struct {
	board  *Board
	fields []string
	errs   []ParseError
}

// ParseFEN reads a six-field FEN record. It never aborts: every problem is reported in the returned
// slice and the affected part of the board is left at its zero value, except the active colour,
// which falls back to White.
func ParseFEN(fen string) (*Board, []ParseError) {
	p := &fenParser{
		board:  &Board{Active: core.ColorWhite},
		fields: strings.Fields(fen),
	}

	if len(p.fields) != 6 {
		p.addError(FieldLayout, "expected 6 fields, got %d", len(p.fields))
	}

	p.parsePlacement()
	p.parseActive()
	p.parseCastling()
	p.parseEnPassant()
	p.board.HalfMove = p.parseCounter(4, FieldHalfMove)
	p.board.FullMove = p.parseCounter(5, FieldFullMove)

	return p.board, p.errs
}

func (p *fenParser) addError(field, format string, args ...any) {
	p.errs = append(p.errs, ParseError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (p *fenParser) field(i int) (string, bool) {
	if i < len(p.fields) {
		return p.fields[i], true
	}
	return "", false
}

func (p *fenParser) parsePlacement() {
	placement, ok := p.field(0)
	if !ok {
		p.addError(FieldPlacement, "missing piece placement")
		return
	}

	ranks := strings.Split(placement, "/")
	if len(ranks) != Size {
		p.addError(FieldPlacement, "contains %d ranks", len(ranks))
	}

	for y := 0; y < len(ranks) && y < Size; y++ {
		p.parseRank(y, ranks[y])
	}
}

func (p *fenParser) parseRank(y int, rank string) {
	x := 0
	for i := 0; i < len(rank); i++ {
		if x >= Size {
			p.addError(FieldPlacement, "rank %q has trailing characters %q", rank, rank[i:])
			return
		}

		c := rank[i]
		if c >= '1' && c <= '8' {
			x += int(c - '0')
			continue
		}

		piece, ok := PieceFromCode(c)
		if !ok {
			p.addError(FieldPlacement, "rank %q: unknown character %q", rank, c)
			// skip the square, leaving it empty
			x++
			continue
		}

		p.board.squares[y][x] = piece
		x++
	}

	if x != Size {
		p.addError(FieldPlacement, "rank %q describes %d files", rank, x)
	}
}

func (p *fenParser) parseActive() {
	active, ok := p.field(1)
	if !ok {
		p.addError(FieldActive, "missing active color")
		return
	}

	c, ok := core.ParseColor(active)
	if !ok {
		p.addError(FieldActive, "expected 'w' or 'b', got %q", active)
		return
	}
	p.board.Active = c
}

func (p *fenParser) parseCastling() {
	castling, ok := p.field(2)
	if !ok {
		p.addError(FieldCastling, "missing castling availability")
		return
	}

	for i := 0; i < len(castling); i++ {
		c := castling[i]
		if c == '-' {
			if i != len(castling)-1 {
				p.addError(FieldCastling, "'-' is not the last character in %q", castling)
			}
			continue
		}

		right, ok := castleRightFromCode(c)
		if !ok {
			p.addError(FieldCastling, "unknown character %q", c)
			continue
		}
		p.board.Castling = p.board.Castling.Add(right)
	}
}

func (p *fenParser) parseEnPassant() {
	ep, ok := p.field(3)
	if !ok {
		p.addError(FieldEnPassant, "missing en passant target")
		return
	}
	if ep == "-" {
		return
	}

	sq, err := ParseSquare(ep)
	if err != nil {
		p.addError(FieldEnPassant, "%v", err)
		return
	}
	p.board.SetEnPassant(sq)
}

func (p *fenParser) parseCounter(i int, field string) int {
	text, ok := p.field(i)
	if !ok {
		p.addError(field, "missing")
		return 0
	}

	for j := 0; j < len(text); j++ {
		if text[j] < '0' || text[j] > '9' {
			p.addError(field, "expected a decimal number, got %q", text)
			return 0
		}
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		p.addError(field, "expected a decimal number, got %q", text)
		return 0
	}
	return n
}

// FEN serialises the board into the six-field record read by ParseFEN
func (b *Board) FEN() string {
	var sb strings.Builder

	for y := 0; y < Size; y++ {
		empty := 0
		for x := 0; x < Size; x++ {
			piece := b.squares[y][x]
			if piece.IsNone() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(piece.Code())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if y < Size-1 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(b.Active.String())

	sb.WriteByte(' ')
	sb.WriteString(b.Castling.String())

	sb.WriteByte(' ')
	if sq, ok := b.EnPassantTarget(); ok {
		sb.WriteString(sq.Lower())
	} else {
		sb.WriteByte('-')
	}

	sb.WriteString(fmt.Sprintf(" %d %d", b.HalfMove, b.FullMove))

	return sb.String()
}
