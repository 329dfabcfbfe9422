package main

// Session configuration constants
const (
	PlayerCookieName = "player_id"
	playerKeyPrefix  = "player/"
)

// Route constants
const (
	RouteHome      = "/"
	RouteGameState = "/game-state"
	RouteGuess     = "/guess"
	RouteSuggest   = "/suggest"
	RouteAuthor    = "/author"
	RouteTimeHint  = "/hint/time"
	RouteHealth    = "/healthz"
)

// Error message constants
const (
	ErrorBadGuess        = "Both a title and an author are required."
	ErrorBadAuthor       = "An author is required."
	ErrorBadField        = "Suggestions are available for title or author."
	ErrorHintUsed        = "You already used the time hint for this quote."
	ErrorRoundOver       = "This round is over, hints are no longer available."
	ErrorInternal        = "Something went wrong, please try again."
	ErrorTooManyRequests = "Too many requests. Please slow down."
)

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)

// engineKey holds the loaded game engine in the gin context.
const engineKey = "engine"
