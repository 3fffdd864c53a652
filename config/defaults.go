package config

const (
	DefaultDataDir          = "."
	DefaultFunctionsFile    = "funciones.csv"
	DefaultReservationsFile = "reservas.json"
	DefaultMoviesFile       = "peliculas.csv"
	DefaultMaxSeats         = 1000

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)
