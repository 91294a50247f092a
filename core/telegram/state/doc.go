// Package state keeps per-user conversation sessions in memory.
// It knows nothing about the session contents so bots can plug in their own
// session types; callers serialize work for one user with Store.Lock.
package state
