package domain

import "time"

// UserRecord is the per-user document persisted between commands. Commands
// load it, mutate it, and save it back as a whole; concurrent commands from
// the same user may race on this read-modify-write (accepted limitation).
type UserRecord struct {
	UserID          string    `json:"userId"`
	CardsGenerated  int       `json:"cardsGenerated"`
	BinLookups      int       `json:"binLookups"`
	RegistryLookups int       `json:"registryLookups"`
	LastCommandAt   time.Time `json:"lastCommandAt"`
}
