package source

import (
	"slices"
)

// StringID identifies an interned string; NoStringID is the empty string.
type StringID uint32

const NoStringID StringID = 0

// Interner deduplicates strings such as entity type names. Large exchange
// files repeat a few hundred type names across millions of records.
// Not safe for concurrent use.
type Interner struct {
	byID  []string            // индекс -> строка (byID[0] = "")
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern вставляет строку и возвращает её ID.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	// собственная копия, чтобы не держать исходный буфер файла
	cpy := string([]byte(s))
	id := StringID(mustOffset(len(i.byID)))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Canonical returns the shared copy of s, interning it first if needed.
func (i *Interner) Canonical(s string) string {
	return i.byID[i.Intern(s)]
}

// Lookup возвращает строку по ID.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// Len returns the number of interned strings including NoStringID.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot возвращает копию всех строк.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
