package domain

import "time"

// Entity is a legal entity (person or business unit) owned by a principal.
// Entities own accounts and participate in inter-entity transfers.
type Entity struct {
	ID          string
	PrincipalID string
	Name        string
	Treasury    bool
	CreatedAt   time.Time
}

// SamePrincipal reports whether both entities belong to the same principal.
func SamePrincipal(a, b *Entity) bool {
	return a != nil && b != nil && a.PrincipalID == b.PrincipalID
}
