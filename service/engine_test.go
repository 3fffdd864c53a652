package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-reservas-cli/model"
	"cine-reservas-cli/seatmap"
	"cine-reservas-cli/store"
)

type fixture struct {
	functions *store.FunctionStore
	ledger    *store.Ledger
	engine    *Engine
}

func newFixture(t *testing.T, capacities map[string]int) fixture {
	t.Helper()
	dir := t.TempDir()
	ledger := store.NewLedger(filepath.Join(dir, "reservas.json"), nil)
	functions := store.NewFunctionStore(filepath.Join(dir, "funciones.csv"), ledger, nil)

	var list []model.Function
	for _, id := range []string{"F1", "F2", "F3"} {
		capacity, ok := capacities[id]
		if !ok {
			continue
		}
		seats, err := seatmap.Generate(capacity)
		require.NoError(t, err)
		list = append(list, model.Function{ID: id, MovieID: "P1", Room: "1", Time: "18:00", Capacity: capacity, Seats: seats})
	}
	require.NoError(t, functions.Save(list))

	return fixture{functions: functions, ledger: ledger, engine: NewEngine(functions, ledger, nil)}
}

func (f fixture) function(t *testing.T, id string) model.Function {
	t.Helper()
	list, err := f.functions.Load()
	require.NoError(t, err)
	idx, ok := model.FindFunction(list, id)
	require.True(t, ok)
	return list[idx]
}

func TestEngine_BookingScenario(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 4})

	first, err := f.engine.Reserve("Ana", "F1", []string{"A1", "B1"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Reservation.ID)
	assert.Equal(t, []string{"A1", "B1"}, first.Booked)
	assert.False(t, first.Partial())
	assert.Equal(t, 2, f.function(t, "F1").FreeCount())

	second, err := f.engine.Reserve("Luis", "F1", []string{"A1", "A2"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Reservation.ID)
	assert.Equal(t, []string{"A2"}, second.Booked)
	assert.Equal(t, []string{"A2"}, second.Reservation.Seats)
	assert.True(t, second.Partial())
	require.Len(t, second.Rejected, 1)
	assert.Equal(t, SeatRejection{Label: "A1", Reason: RejectOccupied}, second.Rejected[0])

	fn := f.function(t, "F1")
	assert.Equal(t, 1, fn.FreeCount())
	assert.True(t, fn.Seats.IsFree("B2"))

	all, err := f.ledger.Load()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[0].TicketCount)
	assert.Equal(t, "F1", all[1].FunctionID)
}

func TestEngine_NoDoubleBooking(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 6})

	_, err := f.engine.Reserve("Ana", "F1", []string{"A1", "B1", "C1"})
	require.NoError(t, err)
	_, err = f.engine.Reserve("Eva", "F1", []string{"C1", "A2"})
	require.NoError(t, err)

	all, err := f.ledger.Load()
	require.NoError(t, err)
	owners := map[string]int{}
	for _, r := range all {
		for _, seat := range r.Seats {
			owners[seat]++
		}
	}
	for seat, n := range owners {
		assert.Equal(t, 1, n, "seat %s", seat)
	}
	occupied, err := f.ledger.OccupiedSeatsFor("F1")
	require.NoError(t, err)
	assert.Len(t, occupied, f.function(t, "F1").OccupiedCount())
}

func TestEngine_PreservesOrderAndNormalisesLabels(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 9})

	result, err := f.engine.Reserve("Ana", "F1", []string{" c3", "A1", "b2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C3", "A1", "B2"}, result.Booked)
	assert.Equal(t, []string{"C3", "A1", "B2"}, result.Reservation.Seats)
}

func TestEngine_DropsDuplicatesAndUnknownSeats(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 4})

	result, err := f.engine.Reserve("Ana", "F1", []string{"A1", "A1", "Z9"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, result.Booked)
	assert.Equal(t, 2, result.Requested)
	assert.True(t, result.Partial())
	assert.Equal(t, []SeatRejection{
		{Label: "A1", Reason: RejectDuplicate},
		{Label: "Z9", Reason: RejectUnknown},
	}, result.Rejected)
}

func TestEngine_RepeatedSeatIsNotPartial(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 4})

	result, err := f.engine.Reserve("Ana", "F1", []string{"A1", " a1", "A1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, result.Booked)
	assert.Equal(t, 1, result.Requested)
	assert.False(t, result.Partial())
	assert.Len(t, result.Rejected, 2)
}

func TestEngine_BookingKeepsUnreadableRows(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 4})
	bad := "F2,P1,1,tarde,4,\"{\"\"A1\"\": \"\"ocupado\"\"}\"\r\n"
	file, err := os.OpenFile(f.functions.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString(bad)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	_, err = f.engine.Reserve("Ana", "F1", []string{"A1"})
	require.NoError(t, err)
	_, err = f.engine.Reserve("Eva", "F1", []string{"B1"})
	require.NoError(t, err)

	data, err := os.ReadFile(f.functions.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), bad))
	assert.True(t, strings.HasSuffix(string(data), bad))
	assert.Equal(t, 2, f.function(t, "F1").OccupiedCount())
}

func TestEngine_Errors(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 2, "F2": 1})
	_, err := f.engine.Reserve("Ana", "F2", []string{"A1"})
	require.NoError(t, err)

	_, err = f.engine.Reserve("Ana", "F9", []string{"A1"})
	assert.ErrorIs(t, err, ErrUnknownFunction)

	_, err = f.engine.Reserve("Ana", "F2", []string{"A1"})
	assert.ErrorIs(t, err, ErrSoldOut)

	result, err := f.engine.Reserve("Ana", "F1", []string{"Q1", "Q1"})
	assert.ErrorIs(t, err, ErrNoValidSeats)
	assert.Len(t, result.Rejected, 2)

	_, err = f.engine.Reserve("Ana", "F1", nil)
	assert.ErrorIs(t, err, ErrNoValidSeats)

	_, err = f.engine.Reserve("Ana 2", "F1", []string{"A1"})
	assert.Error(t, err)

	all, err := f.ledger.Load()
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 2, f.function(t, "F1").FreeCount())
}

type failingLedger struct{ err error }

func (l failingLedger) Append(string, string, []string) (model.Reservation, error) {
	return model.Reservation{}, l.err
}

func TestEngine_LedgerFailureRestoresSeats(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 4})
	engine := NewEngine(f.functions, failingLedger{err: errors.New("disk full")}, nil)

	_, err := engine.Reserve("Ana", "F1", []string{"A1"})
	require.ErrorIs(t, err, store.ErrStorageWrite)
	var partial *PartialCommitError
	assert.False(t, errors.As(err, &partial))

	fn := f.function(t, "F1")
	assert.Equal(t, 4, fn.FreeCount())
}

// flakyRepository fails every Save after the first n.
type flakyRepository struct {
	FunctionRepository
	mu    sync.Mutex
	saves int
	allow int
}

func (r *flakyRepository) Save(functions []model.Function) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saves > r.allow {
		return store.ErrStorageWrite
	}
	return r.FunctionRepository.Save(functions)
}

func TestEngine_FailedRollbackIsPartialCommit(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 4})
	repo := &flakyRepository{FunctionRepository: f.functions, allow: 1}
	engine := NewEngine(repo, failingLedger{err: errors.New("disk full")}, nil)

	_, err := engine.Reserve("Ana", "F1", []string{"A1", "B1"})
	var partial *PartialCommitError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "F1", partial.FunctionID)
	assert.Equal(t, []string{"A1", "B1"}, partial.Seats)
	assert.Equal(t, 2, f.function(t, "F1").FreeCount())
}

func TestEngine_FailedFunctionSaveLeavesLedgerAlone(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 4})
	repo := &flakyRepository{FunctionRepository: f.functions, allow: 0}
	engine := NewEngine(repo, f.ledger, nil)

	_, err := engine.Reserve("Ana", "F1", []string{"A1"})
	require.ErrorIs(t, err, store.ErrStorageWrite)

	all, err := f.ledger.Load()
	require.NoError(t, err)
	assert.Empty(t, all)
}

// racingSelector books its seats through another engine call before
// returning, so the outer booking sees stale state during selection.
type racingSelector struct {
	engine *Engine
	seats  []string
}

func (s racingSelector) SelectSeats(ctx context.Context, fn model.Function) ([]string, error) {
	if _, err := s.engine.Reserve("Eva", fn.ID, s.seats); err != nil {
		return nil, err
	}
	return s.seats, nil
}

func TestEngine_RevalidatesAfterSelection(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 4})

	result, err := f.engine.Book(context.Background(), "Ana", "F1", racingSelector{engine: f.engine, seats: []string{"A1", "B1"}})
	require.ErrorIs(t, err, ErrNoValidSeats)
	assert.Len(t, result.Rejected, 2)
	assert.Equal(t, 2, f.function(t, "F1").FreeCount())
}

func TestEngine_CancelledSelection(t *testing.T) {
	f := newFixture(t, map[string]int{"F1": 4})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.engine.Book(ctx, "Ana", "F1", SeatList{"A1"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 4, f.function(t, "F1").FreeCount())
}
