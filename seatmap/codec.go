package seatmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"cine-reservas-cli/model"
)

// Encode renders m as a single-line JSON object, seats in row-major order,
// e.g. {"A1": "libre", "B1": "ocupado"}.
func Encode(m model.SeatMap) (string, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, label := range Ordered(m) {
		if i > 0 {
			b.WriteString(", ")
		}
		key, err := marshalString(label)
		if err != nil {
			return "", err
		}
		value, err := marshalString(string(m[label]))
		if err != nil {
			return "", err
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
	}
	b.WriteByte('}')
	return b.String(), nil
}

// Decode parses the output of Encode. An empty string is an empty map. States
// other than free are read as occupied so an unknown value never frees a seat.
func Decode(s string) (model.SeatMap, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.SeatMap{}, nil
	}
	var raw map[string]string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("decode seat map: %w", err)
	}
	seats := make(model.SeatMap, len(raw))
	for label, state := range raw {
		if model.SeatState(state) == model.SeatFree {
			seats[label] = model.SeatFree
			continue
		}
		seats[label] = model.SeatOccupied
	}
	return seats, nil
}

func marshalString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
