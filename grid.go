package viamboard

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"go.viam.com/rdk/logging"
)

const fieldLetters = "abcdefghijklmnopqrstuvwxyz"

const maxFieldNumber = 25

// groupRows clusters corners into rows. Sorted by y, a corner starts a new
// anchor unless it lies within tolerance of the previous one; every corner
// then goes to its nearest anchor and each row is ordered by x.
func groupRows(corners []image.Point, tolerance float64) [][]image.Point {
	sorted := append([]image.Point{}, corners...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	var anchors []int
	for _, c := range sorted {
		if len(anchors) > 0 && math.Abs(float64(anchors[len(anchors)-1]-c.Y)) < tolerance {
			continue
		}
		anchors = append(anchors, c.Y)
	}

	rows := make([][]image.Point, len(anchors))
	for _, c := range sorted {
		nearest := 0
		for i, a := range anchors {
			if abs(c.Y-a) < abs(c.Y-anchors[nearest]) {
				nearest = i
			}
		}
		rows[nearest] = append(rows[nearest], c)
	}

	for _, r := range rows {
		sort.SliceStable(r, func(i, j int) bool { return r[i].X < r[j].X })
	}
	return rows
}

// buildFields turns consecutive rows into labeled fields. Cells with a missing
// corner or a label outside the alphabet are reported and skipped.
func buildFields(rows [][]image.Point, logger logging.Logger) ([]Field, []FieldDiagnostic) {
	if len(rows) < 2 || len(rows[0]) < 2 {
		logger.Warnf("grid has %d rows, need at least 2 rows of 2 corners", len(rows))
		return nil, nil
	}

	maxRows := len(rows) - 1
	maxCols := len(rows[0]) - 1
	consistent := lo.EveryBy(rows, func(r []image.Point) bool { return len(r) == len(rows[0]) })
	logger.Infof("rows found: %d, cols found: %d, consistent: %v", len(rows), len(rows[0]), consistent)

	var fields []Field
	var skipped []FieldDiagnostic
	skip := func(r, c int, reason string) {
		d := FieldDiagnostic{Row: r, Col: c, Reason: reason}
		logger.Warnf("skipping field: row %d col %d (rows: %d, cols: %d): %s", r, c, len(rows), len(rows[0]), reason)
		skipped = append(skipped, d)
	}

	for r := range maxRows {
		for c := range maxCols {
			if c+1 >= len(rows[r]) || c+1 >= len(rows[r+1]) {
				skip(r, c, "missing corner")
				continue
			}
			label, err := fieldLabel(maxRows-r-1, maxCols-c-1)
			if err != nil {
				skip(r, c, err.Error())
				continue
			}
			fields = append(fields, Field{
				Label:   label,
				Row:     r,
				Col:     c,
				Corners: [4]image.Point{rows[r][c], rows[r][c+1], rows[r+1][c], rows[r+1][c+1]},
			})
		}
	}
	return fields, skipped
}

func fieldLabel(numberIdx, letterIdx int) (string, error) {
	if letterIdx < 0 || letterIdx >= len(fieldLetters) {
		return "", fmt.Errorf("column index %d outside a-z", letterIdx)
	}
	if numberIdx < 0 || numberIdx >= maxFieldNumber {
		return "", fmt.Errorf("row index %d outside 1-%d", numberIdx, maxFieldNumber)
	}
	return string(fieldLetters[letterIdx]) + strconv.Itoa(numberIdx+1), nil
}

// parseLabel splits a label such as "e4" into zero based letter and number
// indices.
func parseLabel(label string) (int, int, error) {
	if len(label) < 2 {
		return 0, 0, fmt.Errorf("bad field label %q", label)
	}
	letter := int(label[0] - 'a')
	if letter < 0 || letter >= len(fieldLetters) {
		return 0, 0, fmt.Errorf("bad field label %q", label)
	}
	n, err := strconv.Atoi(label[1:])
	if err != nil || n < 1 || n > maxFieldNumber {
		return 0, 0, fmt.Errorf("bad field label %q", label)
	}
	return letter, n - 1, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
