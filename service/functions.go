package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cine-reservas-cli/logger"
	"cine-reservas-cli/model"
	"cine-reservas-cli/seatmap"
	"cine-reservas-cli/validate"
)

var (
	ErrScheduleConflict = errors.New("room already has a function at that time")
	ErrUnknownMovie     = errors.New("unknown movie")
)

type MovieSource interface {
	Load() ([]model.Movie, error)
	Lookup(id string) (model.Movie, bool, error)
}

// skippedIDs is implemented by repositories that keep rows they could not
// load. Their ids stay reserved.
type skippedIDs interface {
	SkippedIDs() []string
}

type CreateFunctionInput struct {
	MovieID string
	Room    string
	Time    string
	Seats   int
}

// FunctionService schedules and edits functions.
type FunctionService struct {
	functions FunctionRepository
	movies    MovieSource
	maxSeats  int
	log       *logger.Logger
	mu        sync.Mutex
}

func NewFunctionService(functions FunctionRepository, movies MovieSource, maxSeats int, log *logger.Logger) *FunctionService {
	if log == nil {
		log = logger.Discard()
	}
	return &FunctionService{
		functions: functions,
		movies:    movies,
		maxSeats:  maxSeats,
		log:       log.With("component", "functions"),
	}
}

func (s *FunctionService) List() ([]model.Function, error) {
	return s.functions.Load()
}

func (s *FunctionService) Get(id string) (model.Function, error) {
	functions, err := s.functions.Load()
	if err != nil {
		return model.Function{}, err
	}
	idx, ok := model.FindFunction(functions, strings.TrimSpace(id))
	if !ok {
		return model.Function{}, fmt.Errorf("%w: %s", ErrUnknownFunction, id)
	}
	return functions[idx], nil
}

// Create validates in, assigns the next free numeric id and stores a function
// with every seat free. Movie ids are only checked when the catalog has movies.
func (s *FunctionService) Create(in CreateFunctionInput) (model.Function, error) {
	movieID := strings.TrimSpace(in.MovieID)
	if movieID == "" {
		return model.Function{}, validate.Errors{{Field: "MovieID", Message: "cannot be empty"}}
	}
	if err := s.checkMovie(movieID); err != nil {
		return model.Function{}, err
	}
	room, err := validate.Room(in.Room)
	if err != nil {
		return model.Function{}, err
	}
	hora, err := validate.Time(in.Time)
	if err != nil {
		return model.Function{}, err
	}
	capacity, err := validate.SeatCount(strconv.Itoa(in.Seats), 1, s.maxSeats)
	if err != nil {
		return model.Function{}, err
	}
	seats, err := seatmap.Generate(capacity)
	if err != nil {
		return model.Function{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	functions, err := s.functions.Load()
	if err != nil {
		return model.Function{}, fmt.Errorf("load functions: %w", err)
	}
	if err := scheduleConflict(functions, "", room, hora); err != nil {
		return model.Function{}, err
	}

	fn := model.Function{
		ID:       nextFunctionID(functions, s.reservedIDs()),
		MovieID:  movieID,
		Room:     room,
		Time:     hora,
		Capacity: capacity,
		Seats:    seats,
	}
	if err := validate.Function(fn); err != nil {
		return model.Function{}, err
	}
	if err := s.functions.Save(append(functions, fn)); err != nil {
		return model.Function{}, fmt.Errorf("save functions: %w", err)
	}
	s.log.Info("function created", "id", fn.ID, "movie", fn.MovieID, "room", fn.Room, "time", fn.Time, "seats", capacity)
	return fn, nil
}

// Edit changes the room and time of a function. Blank values keep the
// current ones. Seats and movie never change.
func (s *FunctionService) Edit(id string, room string, hora string) (model.Function, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	functions, err := s.functions.Load()
	if err != nil {
		return model.Function{}, fmt.Errorf("load functions: %w", err)
	}
	id = strings.TrimSpace(id)
	idx, ok := model.FindFunction(functions, id)
	if !ok {
		return model.Function{}, fmt.Errorf("%w: %s", ErrUnknownFunction, id)
	}

	fn := functions[idx]
	if strings.TrimSpace(room) != "" {
		if fn.Room, err = validate.Text(room, "Room"); err != nil {
			return model.Function{}, err
		}
	}
	if strings.TrimSpace(hora) != "" {
		if fn.Time, err = validate.Time(hora); err != nil {
			return model.Function{}, err
		}
	}
	if err := scheduleConflict(functions, fn.ID, fn.Room, fn.Time); err != nil {
		return model.Function{}, err
	}

	next := make([]model.Function, len(functions))
	copy(next, functions)
	next[idx] = fn
	if err := s.functions.Save(next); err != nil {
		return model.Function{}, fmt.Errorf("save functions: %w", err)
	}
	s.log.Info("function edited", "id", fn.ID, "room", fn.Room, "time", fn.Time)
	return fn, nil
}

func (s *FunctionService) checkMovie(movieID string) error {
	if s.movies == nil {
		return nil
	}
	movies, err := s.movies.Load()
	if err != nil {
		return fmt.Errorf("load movies: %w", err)
	}
	if len(movies) == 0 {
		return nil
	}
	_, ok, err := s.movies.Lookup(movieID)
	if err != nil {
		return fmt.Errorf("load movies: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMovie, movieID)
	}
	return nil
}

func (s *FunctionService) reservedIDs() []string {
	if skipped, ok := s.functions.(skippedIDs); ok {
		return skipped.SkippedIDs()
	}
	return nil
}

func scheduleConflict(functions []model.Function, skipID string, room string, hora string) error {
	for _, fn := range functions {
		if fn.ID == skipID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(fn.Room), room) && fn.Time == hora {
			return fmt.Errorf("%w: room %s at %s is function %s", ErrScheduleConflict, room, hora, fn.ID)
		}
	}
	return nil
}

func nextFunctionID(functions []model.Function, reserved []string) string {
	taken := make(map[string]bool, len(functions)+len(reserved))
	for _, fn := range functions {
		taken[fn.ID] = true
	}
	for _, id := range reserved {
		taken[id] = true
	}
	n := len(functions) + 1
	for taken[strconv.Itoa(n)] {
		n++
	}
	return strconv.Itoa(n)
}
