package seatmap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-reservas-cli/model"
)

func TestDimensions_MostSquareFirstMinimum(t *testing.T) {
	cases := []struct {
		total int
		rows  int
		cols  int
	}{
		{total: 1, rows: 1, cols: 1},
		{total: 2, rows: 2, cols: 1},
		{total: 4, rows: 2, cols: 2},
		{total: 5, rows: 3, cols: 2},
		{total: 10, rows: 4, cols: 3},
		{total: 12, rows: 4, cols: 3},
		{total: 30, rows: 6, cols: 5},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("n=%d", tc.total), func(t *testing.T) {
			rows, cols, err := Dimensions(tc.total)
			require.NoError(t, err)
			assert.Equal(t, tc.rows, rows)
			assert.Equal(t, tc.cols, cols)
			assert.GreaterOrEqual(t, rows*cols, tc.total)
		})
	}
}

func TestGenerate_InvalidCapacity(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Generate(n)
		if !errors.Is(err, ErrInvalidCapacity) {
			t.Fatalf("Generate(%d): expected ErrInvalidCapacity, got %v", n, err)
		}
	}
}

func TestGenerate_CountFreeAndUnique(t *testing.T) {
	for n := 1; n <= 60; n++ {
		seats, err := Generate(n)
		require.NoError(t, err)
		require.Len(t, seats, n)
		for label, state := range seats {
			require.Equal(t, model.SeatFree, state, "seat %s", label)
		}

		labels, err := Labels(n)
		require.NoError(t, err)
		seen := map[string]bool{}
		for _, label := range labels {
			require.False(t, seen[label], "duplicate label %s for n=%d", label, n)
			seen[label] = true
		}
	}
}

func TestLabels_RowMajorWithPartialLastRow(t *testing.T) {
	labels, err := Labels(4)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B1", "A2", "B2"}, labels)

	labels, err = Labels(5)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B1", "A2", "B2", "A3"}, labels)

	labels, err = Labels(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B1", "C1", "A2", "B2", "C2", "A3", "B3", "C3", "A4"}, labels)
}

func TestGenerate_Idempotent(t *testing.T) {
	first, err := Generate(37)
	require.NoError(t, err)
	second, err := Generate(37)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	first["A1"] = model.SeatOccupied
	assert.Equal(t, model.SeatFree, second["A1"], "maps must not share storage")
}

func TestColumnLabel_RoundTrip(t *testing.T) {
	expected := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for index, label := range expected {
		assert.Equal(t, label, ColumnLabel(index))
		assert.Equal(t, index, ColumnIndex(label))
	}
	assert.Equal(t, -1, ColumnIndex(""))
	assert.Equal(t, -1, ColumnIndex("a"))
	assert.Equal(t, -1, ColumnIndex("AAAA"))
}

func TestGenerate_WideGridUsesDoubleLetters(t *testing.T) {
	// 30x30 grid needs columns past Z.
	seats, err := Generate(900)
	require.NoError(t, err)
	assert.Contains(t, seats, "AD30")
	assert.NotContains(t, seats, "AE1")
}
