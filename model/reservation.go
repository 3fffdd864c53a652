package model

type Reservation struct {
	ID           int      `json:"id_reserva" validate:"min=1"`
	CustomerName string   `json:"nombre_cliente" validate:"required"`
	FunctionID   string   `json:"id_funcion" validate:"required"`
	Seats        []string `json:"asientos" validate:"required,min=1,dive,required"`
	TicketCount  int      `json:"cantidad_boletos"`
}
