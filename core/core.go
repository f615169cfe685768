package core

// Origin information of an operation.
type Origin struct {
	SessionID string
	UserID    uint64
}

// IsAnonymous indicates if the operation carries no authenticated user.
func (o Origin) IsAnonymous() bool {
	return o.UserID == 0
}

var (
	defaultDeleted = false
	defaultEnabled = true
)
