package casino_api_client

const (
	// Auth endpoints
	LoginEndpoint    = "/login"
	RegisterEndpoint = "/register"
	MeEndpoint       = "/api/me"

	// Admin endpoints, privileged identities only
	UsersEndpoint       = "/api/users"
	FundsEndpoint       = "/api/admin/funds"
	SpinHistoryEndpoint = "/api/admin/history"
	DefaultHistoryLimit = 100

	// Game stream
	GameWebSocketPath = "/ws/game"
)

// Fund operations accepted by FundsEndpoint.
const (
	FundsAdd    = "add"
	FundsRemove = "remove"
	FundsSet    = "set"
)
