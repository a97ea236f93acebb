package db

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

type AddressDesc struct {
	Address string
	Desc    string
}

type FuzzySource []AddressDesc

func (self FuzzySource) Len() int {
	return len(self)
}

func (self FuzzySource) String(i int) string {
	return self[i].Desc
}

// Search fuzzy matches input against the book's names, best match first.
func (b *AddressBook) Search(input string, limit int) []AddressDesc {
	source := FuzzySource(b.Entries())
	matches := fuzzy.FindFrom(strings.ToLower(strings.TrimSpace(input)), source)
	result := []AddressDesc{}
	for i := 0; i < len(matches) && (limit <= 0 || i < limit); i++ {
		result = append(result, source[matches[i].Index])
	}
	return result
}
