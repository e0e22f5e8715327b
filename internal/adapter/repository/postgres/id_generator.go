package postgres

import "github.com/oklog/ulid/v2"

// ULIDGenerator issues lexically sortable IDs for accounts, journals,
// settlements, and entities. Sortability keeps index pages warm on the
// append-heavy entries table.
type ULIDGenerator struct{}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
