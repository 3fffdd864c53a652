package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"cine-reservas-cli/logger"
	"cine-reservas-cli/model"
	"cine-reservas-cli/seatmap"
	"cine-reservas-cli/validate"
)

// FunctionHeader is the column order of the functions file.
var FunctionHeader = []string{"id_funcion", "id_pelicula", "sala", "hora", "asientos_disponibles", "asientos"}

var ErrUnexpectedHeader = errors.New("unexpected header")

// RecordError describes a functions file row that could not be used as is.
type RecordError struct {
	Line  int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// OccupiedSource supplies the seats already sold for a function. The ledger
// implements it and is only consulted to backfill rows without a seat map.
type OccupiedSource interface {
	OccupiedSeatsFor(functionID string) (map[string]struct{}, error)
}

type FunctionStore struct {
	path     string
	occupied OccupiedSource
	log      *logger.Logger

	mu   sync.Mutex
	kept []keptRow
}

// keptRow is a skipped row carried verbatim into the next Save so a bad line
// is reported, never erased.
type keptRow struct {
	id  string
	raw []byte
}

func NewFunctionStore(path string, occupied OccupiedSource, log *logger.Logger) *FunctionStore {
	if log == nil {
		log = logger.Discard()
	}
	return &FunctionStore{path: path, occupied: occupied, log: log.With("store", "functions")}
}

func (s *FunctionStore) Path() string { return s.path }

// Load reads every usable function and logs the rows it had to skip or repair.
func (s *FunctionStore) Load() ([]model.Function, error) {
	functions, issues, err := s.Scan()
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		s.log.Warn("functions file record", "path", s.path, "issue", issue.Error())
	}
	return functions, nil
}

// Scan reads the functions file and returns the usable functions along with
// a RecordError for every skipped or repaired row. A missing file is empty.
// Skipped rows are remembered and written back unchanged by Save.
func (s *FunctionStore) Scan() ([]model.Function, []*RecordError, error) {
	functions, issues, kept, err := s.scan()
	if err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	s.kept = kept
	s.mu.Unlock()
	return functions, issues, nil
}

// SkippedIDs lists the ids of rows the last Scan could not load. New
// functions must not reuse them.
func (s *FunctionStore) SkippedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, row := range s.kept {
		if row.id != "" {
			ids = append(ids, row.id)
		}
	}
	return ids
}

func (s *FunctionStore) scan() ([]model.Function, []*RecordError, []keptRow, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil, nil
		}
		return nil, nil, nil, fmt.Errorf("read functions: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil, nil
		}
		return nil, nil, nil, fmt.Errorf("read functions header: %w", err)
	}
	columns, err := headerIndex(header, FunctionHeader)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", s.path, err)
	}

	var (
		functions []model.Function
		issues    []*RecordError
		kept      []keptRow
		seen      = map[string]bool{}
	)
	for {
		start := reader.InputOffset()
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		raw := data[start:reader.InputOffset()]
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				issues = append(issues, &RecordError{Line: parseErr.Line, Err: parseErr.Err})
				kept = append(kept, keptRow{raw: raw})
				continue
			}
			return nil, nil, nil, fmt.Errorf("read functions: %w", err)
		}
		if blankRecord(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		fn, recIssues, ok := s.parseRecord(line, record, columns)
		issues = append(issues, recIssues...)
		if !ok {
			kept = append(kept, keptRow{id: fn.ID, raw: raw})
			continue
		}
		if seen[fn.ID] {
			issues = append(issues, &RecordError{Line: line, Field: "id_funcion", Err: fmt.Errorf("duplicate id %q", fn.ID)})
			kept = append(kept, keptRow{id: fn.ID, raw: raw})
			continue
		}
		seen[fn.ID] = true
		functions = append(functions, fn)
	}
	return functions, issues, kept, nil
}

func (s *FunctionStore) parseRecord(line int, record []string, columns map[string]int) (model.Function, []*RecordError, bool) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var issues []*RecordError
	fn := model.Function{
		ID:      field("id_funcion"),
		MovieID: field("id_pelicula"),
		Room:    field("sala"),
	}

	if fn.ID == "" {
		return fn, []*RecordError{{Line: line, Field: "id_funcion", Err: errors.New("missing id")}}, false
	}

	hora, err := validate.Time(field("hora"))
	if err != nil {
		return fn, []*RecordError{{Line: line, Field: "hora", Err: err}}, false
	}
	fn.Time = hora

	capacity, err := strconv.Atoi(field("asientos_disponibles"))
	if err != nil || capacity <= 0 {
		if err == nil {
			err = seatmap.ErrInvalidCapacity
		}
		return fn, []*RecordError{{Line: line, Field: "asientos_disponibles", Err: err}}, false
	}
	fn.Capacity = capacity

	seats, err := seatmap.Decode(field("asientos"))
	if err != nil {
		issues = append(issues, &RecordError{Line: line, Field: "asientos", Err: err})
		seats = nil
	}
	if len(seats) == 0 {
		seats, err = s.backfill(fn)
		if err != nil {
			issues = append(issues, &RecordError{Line: line, Field: "asientos", Err: err})
			return fn, issues, false
		}
		issues = append(issues, &RecordError{Line: line, Field: "asientos", Err: errors.New("seat map regenerated from capacity")})
	} else if len(seats) != fn.Capacity {
		issues = append(issues, &RecordError{
			Line:  line,
			Field: "asientos_disponibles",
			Err:   fmt.Errorf("capacity %d disagrees with %d mapped seats, using the seat map", fn.Capacity, len(seats)),
		})
		fn.Capacity = len(seats)
	}
	fn.Seats = seats

	if err := validate.Function(fn); err != nil {
		issues = append(issues, &RecordError{Line: line, Err: err})
		return fn, issues, false
	}
	return fn, issues, true
}

// backfill rebuilds the seat map from the capacity and marks the seats the
// ledger already sold for this function.
func (s *FunctionStore) backfill(fn model.Function) (model.SeatMap, error) {
	seats, err := seatmap.Generate(fn.Capacity)
	if err != nil {
		return nil, err
	}
	if s.occupied == nil {
		return seats, nil
	}
	sold, err := s.occupied.OccupiedSeatsFor(fn.ID)
	if err != nil {
		return nil, fmt.Errorf("backfill from reservations: %w", err)
	}
	for label := range sold {
		if _, ok := seats[label]; ok {
			seats[label] = model.SeatOccupied
		}
	}
	return seats, nil
}

// Save replaces the functions file with the given functions followed by the
// rows the last Scan skipped, byte for byte.
func (s *FunctionStore) Save(functions []model.Function) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(FunctionHeader); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	for _, fn := range functions {
		encoded, err := seatmap.Encode(fn.Seats)
		if err != nil {
			return fmt.Errorf("%w: function %s: %v", ErrStorageWrite, fn.ID, err)
		}
		capacity := fn.Capacity
		if capacity == 0 {
			capacity = len(fn.Seats)
		}
		row := []string{fn.ID, fn.MovieID, fn.Room, fn.Time, strconv.Itoa(capacity), encoded}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageWrite, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	s.mu.Lock()
	kept := s.kept
	s.mu.Unlock()
	for _, row := range kept {
		writeLine(&buf, row.raw)
	}

	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return err
	}
	s.log.Debug("functions saved", "path", s.path, "count", len(functions), "kept", len(kept))
	return nil
}

// headerIndex maps each expected column to its position in header, matching
// names case-insensitively after trimming spaces and a UTF-8 BOM.
func headerIndex(header []string, expected []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	columns := make(map[string]int, len(expected))
	var missing []string
	for _, name := range expected {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		columns[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrUnexpectedHeader, strings.Join(missing, ", "))
	}
	return columns, nil
}

func blankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
