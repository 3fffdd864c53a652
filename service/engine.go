package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"cine-reservas-cli/logger"
	"cine-reservas-cli/model"
	"cine-reservas-cli/store"
	"cine-reservas-cli/validate"
)

var (
	ErrUnknownFunction = errors.New("unknown function")
	ErrSoldOut         = errors.New("function is sold out")
	ErrNoValidSeats    = errors.New("no valid seats selected")
)

// FunctionRepository loads and replaces the whole set of functions.
type FunctionRepository interface {
	Load() ([]model.Function, error)
	Save(functions []model.Function) error
}

// ReservationLedger records confirmed reservations.
type ReservationLedger interface {
	Append(customer string, functionID string, seats []string) (model.Reservation, error)
}

// SeatSelector produces the labels a customer wants for fn. The result may
// contain unknown, occupied or repeated labels; the engine filters them.
type SeatSelector interface {
	SelectSeats(ctx context.Context, fn model.Function) ([]string, error)
}

// SeatList is a fixed selection, used by scripted bookings and tests.
type SeatList []string

func (s SeatList) SelectSeats(ctx context.Context, _ model.Function) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), s...), nil
}

type RejectReason string

const (
	RejectUnknown   RejectReason = "does not exist"
	RejectOccupied  RejectReason = "already occupied"
	RejectDuplicate RejectReason = "repeated in request"
)

type SeatRejection struct {
	Label  string
	Reason RejectReason
}

func (r SeatRejection) String() string {
	return fmt.Sprintf("%s %s", r.Label, r.Reason)
}

// Result describes a booking attempt. Booked keeps the caller's order.
type Result struct {
	Reservation model.Reservation
	Booked      []string
	Rejected    []SeatRejection
	Requested   int
}

// Partial reports whether some requested seats were not booked.
func (r Result) Partial() bool {
	return len(r.Booked) < r.Requested
}

// PartialCommitError means the seats were marked occupied in the functions
// file but neither the reservation nor the rollback could be written.
type PartialCommitError struct {
	FunctionID  string
	Seats       []string
	LedgerErr   error
	RollbackErr error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("function %s: seats %s occupied without a reservation: record reservation: %v; rollback: %v",
		e.FunctionID, strings.Join(e.Seats, ", "), e.LedgerErr, e.RollbackErr)
}

func (e *PartialCommitError) Unwrap() []error {
	return []error{e.LedgerErr, e.RollbackErr}
}

// Engine turns free seats into reservations. Commits are serialised; the
// selection step runs outside the lock and is re-validated against a fresh
// load of the functions file.
type Engine struct {
	functions FunctionRepository
	ledger    ReservationLedger
	log       *logger.Logger
	mu        sync.Mutex
}

func NewEngine(functions FunctionRepository, ledger ReservationLedger, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{functions: functions, ledger: ledger, log: log.With("component", "engine")}
}

// Reserve books an explicit list of seats.
func (e *Engine) Reserve(customer string, functionID string, seats []string) (Result, error) {
	return e.Book(context.Background(), customer, functionID, SeatList(seats))
}

// Book runs one booking attempt. On ErrNoValidSeats the returned Result still
// carries the rejections.
func (e *Engine) Book(ctx context.Context, customer string, functionID string, selector SeatSelector) (Result, error) {
	log := e.log.With("attempt", uuid.NewString(), "function", functionID)

	name, err := validate.CustomerName(customer)
	if err != nil {
		return Result{}, err
	}

	fn, err := e.available(functionID)
	if err != nil {
		return Result{}, err
	}

	view := fn
	view.Seats = fn.Seats.Clone()
	candidates, err := selector.SelectSeats(ctx, view)
	if err != nil {
		return Result{}, fmt.Errorf("select seats: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	functions, err := e.functions.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load functions: %w", err)
	}
	idx, ok := model.FindFunction(functions, functionID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownFunction, functionID)
	}
	current := functions[idx]
	if current.SoldOut() {
		return Result{}, fmt.Errorf("%w: %s", ErrSoldOut, functionID)
	}

	var result Result
	result.Booked, result.Rejected, result.Requested = pickSeats(current.Seats, candidates)
	for _, r := range result.Rejected {
		log.Warn("seat rejected", "seat", r.Label, "reason", string(r.Reason))
	}
	if len(result.Booked) == 0 {
		return result, fmt.Errorf("%w: function %s", ErrNoValidSeats, functionID)
	}

	var before []model.Function
	if err := copier.CopyWithOption(&before, &functions, copier.Option{DeepCopy: true}); err != nil {
		return Result{}, fmt.Errorf("snapshot functions: %w", err)
	}

	next := make([]model.Function, len(functions))
	copy(next, functions)
	updated := current
	updated.Seats = current.Seats.Clone()
	for _, label := range result.Booked {
		updated.Seats[label] = model.SeatOccupied
	}
	next[idx] = updated

	if err := e.functions.Save(next); err != nil {
		return Result{}, fmt.Errorf("save functions: %w", err)
	}

	reservation, err := e.ledger.Append(name, functionID, result.Booked)
	if err != nil {
		log.Error("reservation not recorded, rolling back seats", "error", err)
		if rollbackErr := e.functions.Save(before); rollbackErr != nil {
			log.Error("rollback failed", "error", rollbackErr)
			return Result{}, &PartialCommitError{
				FunctionID:  functionID,
				Seats:       result.Booked,
				LedgerErr:   err,
				RollbackErr: rollbackErr,
			}
		}
		return Result{}, fmt.Errorf("%w: record reservation, seats released: %w", store.ErrStorageWrite, err)
	}

	result.Reservation = reservation
	log.Info("booking committed", "reservation", reservation.ID, "seats", len(result.Booked), "requested", result.Requested)
	return result, nil
}

// available returns the function if it exists and still has a free seat.
func (e *Engine) available(functionID string) (model.Function, error) {
	functions, err := e.functions.Load()
	if err != nil {
		return model.Function{}, fmt.Errorf("load functions: %w", err)
	}
	idx, ok := model.FindFunction(functions, functionID)
	if !ok {
		return model.Function{}, fmt.Errorf("%w: %s", ErrUnknownFunction, functionID)
	}
	fn := functions[idx]
	if fn.SoldOut() {
		return model.Function{}, fmt.Errorf("%w: %s", ErrSoldOut, functionID)
	}
	return fn, nil
}

// pickSeats splits candidates into bookable and rejected labels and counts
// the distinct labels asked for.
func pickSeats(seats model.SeatMap, candidates []string) ([]string, []SeatRejection, int) {
	var (
		booked   []string
		rejected []SeatRejection
		seen     = make(map[string]bool, len(candidates))
	)
	for _, raw := range candidates {
		label := strings.ToUpper(strings.TrimSpace(raw))
		switch state, exists := seats[label]; {
		case seen[label]:
			rejected = append(rejected, SeatRejection{Label: label, Reason: RejectDuplicate})
		case !exists:
			rejected = append(rejected, SeatRejection{Label: label, Reason: RejectUnknown})
		case state != model.SeatFree:
			rejected = append(rejected, SeatRejection{Label: label, Reason: RejectOccupied})
		default:
			booked = append(booked, label)
		}
		seen[label] = true
	}
	return booked, rejected, len(seen)
}
