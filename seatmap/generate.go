// Package seatmap builds, lays out and encodes the seat maps embedded in each
// function record.
//
// A seat map is generated once, when the function is created, as the most
// square grid that holds the requested number of seats. Labels follow the
// spreadsheet convention: a base-26 column (A..Z, AA, AB, ...) followed by a
// 1-based row number, so "B3" is the second column of the third row.
package seatmap

import (
	"errors"
	"fmt"

	"cine-reservas-cli/model"
)

var ErrInvalidCapacity = errors.New("seat count must be positive")

// Dimensions returns the grid chosen for total seats. It scans column counts
// in ascending order and keeps the first one whose row count is closest to it.
func Dimensions(total int) (rows int, cols int, err error) {
	if total <= 0 {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidCapacity, total)
	}

	bestCols, bestRows, bestDiff := 1, total, total
	for c := 1; c <= total; c++ {
		r := (total + c - 1) / c
		if r*c < total {
			continue
		}
		diff := r - c
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			bestCols = c
			bestRows = r
		}
	}
	return bestRows, bestCols, nil
}

// Labels returns the seat labels for total seats in generation (row-major) order.
func Labels(total int) ([]string, error) {
	rows, cols, err := Dimensions(total)
	if err != nil {
		return nil, err
	}

	columns := make([]string, cols)
	for i := range columns {
		columns[i] = ColumnLabel(i)
	}

	labels := make([]string, 0, total)
	for row := 1; row <= rows; row++ {
		for _, col := range columns {
			if len(labels) == total {
				return labels, nil
			}
			labels = append(labels, fmt.Sprintf("%s%d", col, row))
		}
	}
	return labels, nil
}

// Generate returns a seat map with total free seats.
func Generate(total int) (model.SeatMap, error) {
	labels, err := Labels(total)
	if err != nil {
		return nil, err
	}
	seats := make(model.SeatMap, len(labels))
	for _, label := range labels {
		seats[label] = model.SeatFree
	}
	return seats, nil
}

// ColumnLabel returns the zero-based column index as letters: 0 is "A", 25 is
// "Z", 26 is "AA".
func ColumnLabel(index int) string {
	if index < 0 {
		return ""
	}
	var out []byte
	for j := index; j >= 0; j = j/26 - 1 {
		out = append([]byte{byte('A' + j%26)}, out...)
	}
	return string(out)
}

// ColumnIndex is the inverse of ColumnLabel. It returns -1 for anything that
// is not a run of at most three uppercase ASCII letters.
func ColumnIndex(letters string) int {
	if letters == "" || len(letters) > maxColumnLetters {
		return -1
	}
	n := 0
	for i := 0; i < len(letters); i++ {
		ch := letters[i]
		if ch < 'A' || ch > 'Z' {
			return -1
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1
}
