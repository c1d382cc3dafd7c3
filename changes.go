package viamboard

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/corentings/chess/v2"
)

// Changes is the outcome of comparing two frames of a known board.
type Changes struct {
	Matrix  [][]FieldState `json:"matrix"`
	Changed []string       `json:"changed"`
	// Move is set on 8x8 boards when exactly one piece left one square and
	// arrived on another.
	Move *Move `json:"move,omitempty"`
}

// Move is a single inferred piece movement.
type Move struct {
	From    chess.Square
	To      chess.Square
	Piece   chess.Piece
	Capture bool
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// MarshalJSON writes squares in algebraic notation.
func (m Move) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"from":    m.From.String(),
		"to":      m.To.String(),
		"piece":   m.Piece.String(),
		"capture": m.Capture,
	})
}

// DetermineChanges classifies every field on both frames, stores the state of
// cur as the current matrix and reports which labels changed.
func (b *Board) DetermineChanges(prev, cur image.Image) (*Changes, error) {
	if b.Transform == nil {
		return nil, fmt.Errorf("board has no transform")
	}
	prevRect, err := b.rectifyFrame(prev)
	if err != nil {
		return nil, fmt.Errorf("previous frame: %w", err)
	}
	curRect, err := b.rectifyFrame(cur)
	if err != nil {
		return nil, fmt.Errorf("current frame: %w", err)
	}

	before := b.classifyAll(prevRect)
	after := b.classifyAll(curRect)
	b.setMatrix(after)

	ch := &Changes{Matrix: copyMatrix(after)}
	for _, f := range b.Fields {
		if before[f.Row][f.Col] != after[f.Row][f.Col] {
			ch.Changed = append(ch.Changed, f.Label)
		}
	}

	if b.Rows == 8 && b.Cols == 8 {
		if mv, ok := inferMove(b.chessBoard(before), b.chessBoard(after)); ok {
			ch.Move = &mv
			b.logger.Infof("inferred move %s", mv)
		}
	}
	b.logger.Debugf("%d fields changed", len(ch.Changed))
	return ch, nil
}

// rectifyFrame brings a camera frame into the rectified plane of the board.
func (b *Board) rectifyFrame(img image.Image) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrInvalidImage
	}
	t := b.tunables
	working := resizeToWorking(unsharpMask(img, t.SharpenSigma, t.sharpenAmount(), t.SharpenThreshold), t.WorkingSize)
	return warpPerspective(working, b.Transform)
}

func (b *Board) classifyAll(rect image.Image) [][]FieldState {
	m := make([][]FieldState, b.Rows)
	for r := range m {
		m[r] = make([]FieldState, b.Cols)
	}
	for _, f := range b.Fields {
		m[f.Row][f.Col] = b.classifier.Classify(rect, f.roi(b.tunables.ROIInset))
	}
	return m
}

// chessBoard places a pawn of the seen colour on every occupied field.
func (b *Board) chessBoard(m [][]FieldState) *chess.Board {
	squares := map[chess.Square]chess.Piece{}
	for _, f := range b.Fields {
		sq, err := labelSquare(f.Label)
		if err != nil {
			continue
		}
		switch m[f.Row][f.Col] {
		case White:
			squares[sq] = chess.WhitePawn
		case Black:
			squares[sq] = chess.BlackPawn
		}
	}
	return chess.NewBoard(squares)
}

func labelSquare(label string) (chess.Square, error) {
	letter, number, err := parseLabel(label)
	if err != nil {
		return chess.A1, err
	}
	if letter > 7 || number > 7 {
		return chess.A1, fmt.Errorf("%s is not a chess square", label)
	}
	return chess.NewSquare(chess.File(letter), chess.Rank(number)), nil
}

// inferMove finds the single square that was vacated and the single square
// that gained a (different) piece.
func inferMove(before, after *chess.Board) (Move, bool) {
	var vacated, arrived []chess.Square
	for r := chess.Rank1; r <= chess.Rank8; r++ {
		for f := chess.FileA; f <= chess.FileH; f++ {
			sq := chess.NewSquare(f, r)
			was, is := before.Piece(sq), after.Piece(sq)
			if was == is {
				continue
			}
			if is == chess.NoPiece {
				vacated = append(vacated, sq)
			} else {
				arrived = append(arrived, sq)
			}
		}
	}

	if len(vacated) != 1 || len(arrived) != 1 {
		return Move{}, false
	}
	from, to := vacated[0], arrived[0]
	return Move{
		From:    from,
		To:      to,
		Piece:   after.Piece(to),
		Capture: before.Piece(to) != chess.NoPiece,
	}, true
}
