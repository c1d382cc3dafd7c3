package viamboard

import (
	"encoding/json"
	"errors"
	"image"
	"testing"

	"github.com/corentings/chess/v2"
	"go.viam.com/test"
)

var (
	e2 = square{3, 6}
	e4 = square{3, 4}
	d5 = square{4, 3}
)

func TestDetermineChangesMove(t *testing.T) {
	b := recognizeEmptyBoard(t)

	ch, err := b.DetermineChanges(renderBoard(map[square]uint8{e2: 250}), renderBoard(map[square]uint8{e4: 250}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ch.Changed, test.ShouldHaveLength, 2)
	test.That(t, ch.Changed, test.ShouldContain, "e2")
	test.That(t, ch.Changed, test.ShouldContain, "e4")

	test.That(t, ch.Move, test.ShouldNotBeNil)
	test.That(t, ch.Move.String(), test.ShouldEqual, "e2e4")
	test.That(t, ch.Move.Piece, test.ShouldEqual, chess.WhitePawn)
	test.That(t, ch.Move.Capture, test.ShouldBeFalse)

	test.That(t, ch.Matrix[4][3], test.ShouldEqual, White)
	test.That(t, ch.Matrix[6][3], test.ShouldEqual, Empty)
	test.That(t, b.CurrentMatrix(), test.ShouldResemble, ch.Matrix)
}

func TestDetermineChangesCapture(t *testing.T) {
	b := recognizeEmptyBoard(t)

	// white on e4 takes black on d5
	ch, err := b.DetermineChanges(
		renderBoard(map[square]uint8{e4: 250, d5: 10}),
		renderBoard(map[square]uint8{d5: 250}),
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ch.Move, test.ShouldNotBeNil)
	test.That(t, ch.Move.String(), test.ShouldEqual, "e4d5")
	test.That(t, ch.Move.Capture, test.ShouldBeTrue)

	data, err := json.Marshal(ch.Move)
	test.That(t, err, test.ShouldBeNil)
	var decoded map[string]interface{}
	test.That(t, json.Unmarshal(data, &decoded), test.ShouldBeNil)
	test.That(t, decoded["from"], test.ShouldEqual, "e4")
	test.That(t, decoded["to"], test.ShouldEqual, "d5")
	test.That(t, decoded["capture"], test.ShouldEqual, true)
}

func TestDetermineChangesNoChange(t *testing.T) {
	b := recognizeEmptyBoard(t)
	frame := renderBoard(map[square]uint8{e2: 250})

	ch, err := b.DetermineChanges(frame, frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ch.Changed, test.ShouldBeEmpty)
	test.That(t, ch.Move, test.ShouldBeNil)
	test.That(t, ch.Matrix[6][3], test.ShouldEqual, White)
}

func TestDetermineChangesInvalid(t *testing.T) {
	b := recognizeEmptyBoard(t)
	before := b.CurrentMatrix()

	_, err := b.DetermineChanges(nil, renderBoard(nil))
	test.That(t, errors.Is(err, ErrInvalidImage), test.ShouldBeTrue)
	_, err = b.DetermineChanges(renderBoard(nil), image.NewNRGBA(image.Rectangle{}))
	test.That(t, errors.Is(err, ErrInvalidImage), test.ShouldBeTrue)

	test.That(t, b.CurrentMatrix(), test.ShouldResemble, before)
}

func TestInferMove(t *testing.T) {
	before := chess.NewBoard(map[chess.Square]chess.Piece{chess.E2: chess.WhitePawn, chess.D7: chess.BlackPawn})

	after := chess.NewBoard(map[chess.Square]chess.Piece{chess.E4: chess.WhitePawn, chess.D7: chess.BlackPawn})
	mv, ok := inferMove(before, after)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, mv.From, test.ShouldEqual, chess.E2)
	test.That(t, mv.To, test.ShouldEqual, chess.E4)

	// two pieces moved
	after = chess.NewBoard(map[chess.Square]chess.Piece{chess.E4: chess.WhitePawn, chess.D5: chess.BlackPawn})
	_, ok = inferMove(before, after)
	test.That(t, ok, test.ShouldBeFalse)

	// a piece vanished
	after = chess.NewBoard(map[chess.Square]chess.Piece{chess.D7: chess.BlackPawn})
	_, ok = inferMove(before, after)
	test.That(t, ok, test.ShouldBeFalse)

	_, ok = inferMove(before, before)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestLabelSquare(t *testing.T) {
	sq, err := labelSquare("e4")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sq, test.ShouldEqual, chess.E4)

	_, err = labelSquare("i1")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = labelSquare("a9")
	test.That(t, err, test.ShouldNotBeNil)
}
