package config

const (
	EnvDataDir          = "CINE_DATA_DIR"
	EnvFunctionsFile    = "CINE_FUNCTIONS_FILE"
	EnvReservationsFile = "CINE_RESERVATIONS_FILE"
	EnvMoviesFile       = "CINE_MOVIES_FILE"
	EnvMaxSeats         = "CINE_MAX_SEATS"

	EnvLogLevel  = "CINE_LOG_LEVEL"
	EnvLogFormat = "CINE_LOG_FORMAT"
)
