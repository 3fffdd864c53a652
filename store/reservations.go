package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"cine-reservas-cli/logger"
	"cine-reservas-cli/model"
	"cine-reservas-cli/validate"
)

var ErrCorruptLedger = errors.New("reservations file is not a valid reservation list")

// Ledger is the append-only reservations file.
type Ledger struct {
	path string
	log  *logger.Logger
}

func NewLedger(path string, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.Discard()
	}
	return &Ledger{path: path, log: log.With("store", "reservations")}
}

func (l *Ledger) Path() string { return l.path }

// Load returns every reservation in file order. A missing or blank file is an
// empty ledger.
func (l *Ledger) Load() ([]model.Reservation, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reservations: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var reservations []model.Reservation
	if err := json.Unmarshal(data, &reservations); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLedger, l.path, err)
	}
	return reservations, nil
}

// Append stores a new reservation with the next sequential id and rewrites
// the whole file.
func (l *Ledger) Append(customer string, functionID string, seats []string) (model.Reservation, error) {
	reservations, err := l.Load()
	if err != nil {
		return model.Reservation{}, err
	}

	reservation := model.Reservation{
		ID:           len(reservations) + 1,
		CustomerName: customer,
		FunctionID:   functionID,
		Seats:        append([]string(nil), seats...),
		TicketCount:  len(seats),
	}
	if err := validate.Reservation(reservation); err != nil {
		return model.Reservation{}, err
	}

	reservations = append(reservations, reservation)
	payload, err := encodeReservations(reservations)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if err := writeFileAtomic(l.path, payload); err != nil {
		return model.Reservation{}, err
	}

	l.log.Info("reservation stored", "id", reservation.ID, "function", functionID, "seats", len(seats))
	return reservation, nil
}

// OccupiedSeatsFor returns the union of seats held by the function's reservations.
func (l *Ledger) OccupiedSeatsFor(functionID string) (map[string]struct{}, error) {
	reservations, err := l.Load()
	if err != nil {
		return nil, err
	}
	occupied := map[string]struct{}{}
	for _, r := range reservations {
		if r.FunctionID != functionID {
			continue
		}
		for _, seat := range r.Seats {
			occupied[seat] = struct{}{}
		}
	}
	return occupied, nil
}

// ByFunction groups reservations by function id, keeping file order inside each group.
func (l *Ledger) ByFunction() (map[string][]model.Reservation, error) {
	reservations, err := l.Load()
	if err != nil {
		return nil, err
	}
	grouped := map[string][]model.Reservation{}
	for _, r := range reservations {
		grouped[r.FunctionID] = append(grouped[r.FunctionID], r)
	}
	return grouped, nil
}

func encodeReservations(reservations []model.Reservation) ([]byte, error) {
	if reservations == nil {
		reservations = []model.Reservation{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(reservations); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
