package model

type SeatState string

const (
	SeatFree     SeatState = "libre"
	SeatOccupied SeatState = "ocupado"
)

// SeatMap maps a seat label (e.g. "B3") to its state.
type SeatMap map[string]SeatState

func (m SeatMap) IsFree(label string) bool {
	state, ok := m[label]
	return ok && state == SeatFree
}

func (m SeatMap) Count(state SeatState) int {
	count := 0
	for _, s := range m {
		if s == state {
			count++
		}
	}
	return count
}

func (m SeatMap) Clone() SeatMap {
	if m == nil {
		return nil
	}
	out := make(SeatMap, len(m))
	for label, state := range m {
		out[label] = state
	}
	return out
}
