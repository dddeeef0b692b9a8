package session

type State string

const (
	StateFresh           State = "fresh"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateActionAttempted State = "action_attempted"
	StateReported        State = "reported"
	StateFailed          State = "failed"
)
