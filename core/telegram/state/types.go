package state

// Store holds at most one session per user.
type Store[S any] interface {
	// GetOrCreate returns the existing session or stores and returns fresh().
	GetOrCreate(userID int64, fresh func() S) S
	// Get returns the session if one exists.
	Get(userID int64) (S, bool)
	// Save replaces the stored session.
	Save(userID int64, s S)
	// Delete removes the session; deleting a missing session is a no-op.
	Delete(userID int64)
	// Len reports the number of active sessions.
	Len() int
	// Lock serializes a turn for one user and returns the matching unlock.
	// Turns for different users do not wait on each other unless they share a stripe.
	Lock(userID int64) (unlock func())
}
