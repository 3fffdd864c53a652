package model

// Function is a scheduled show of a movie in a room.
type Function struct {
	ID       string  `json:"id_funcion" validate:"required,max=32"`
	MovieID  string  `json:"id_pelicula" validate:"required,max=64"`
	Room     string  `json:"sala" validate:"required,label_text"`
	Time     string  `json:"hora" validate:"required,hhmm"`
	Capacity int     `json:"asientos_disponibles" validate:"min=1"`
	Seats    SeatMap `json:"asientos"`
}

func (f Function) FreeCount() int {
	return f.Seats.Count(SeatFree)
}

func (f Function) OccupiedCount() int {
	return f.Seats.Count(SeatOccupied)
}

func (f Function) SoldOut() bool {
	return f.FreeCount() == 0
}

func FindFunction(functions []Function, id string) (int, bool) {
	for i, fn := range functions {
		if fn.ID == id {
			return i, true
		}
	}
	return -1, false
}
