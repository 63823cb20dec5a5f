package domain

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrEmptyAddress   = errors.New("address is empty")
	ErrUnknownAddress = errors.New("address is not in the book")
)

// Book is the ordered list of pickup addresses known to the session.
// Index 0 holds the registered address; entries never repeat once
// trimmed. Comparison is case-sensitive.
type Book struct {
	entries  []string
	selected string
}

func NewBook() *Book {
	return &Book{entries: []string{}}
}

// SetRegistered puts addr first, moving it there if it is already known.
func (b *Book) SetRegistered(addr string) error {
	key := strings.TrimSpace(addr)
	if key == "" {
		return ErrEmptyAddress
	}

	rest := slices.DeleteFunc(b.entries, func(e string) bool {
		return strings.TrimSpace(e) == key
	})
	b.entries = append([]string{addr}, rest...)
	return nil
}

// AddAddress appends addr unless an equal entry exists. Into an empty
// book it becomes the registered entry.
func (b *Book) AddAddress(addr string) error {
	key := strings.TrimSpace(addr)
	if key == "" {
		return ErrEmptyAddress
	}
	if b.indexOf(key) >= 0 {
		return nil
	}
	b.entries = append(b.entries, addr)
	return nil
}

// Select makes the matching entry the active pickup address and returns
// it as stored.
func (b *Book) Select(addr string) (string, error) {
	i := b.indexOf(strings.TrimSpace(addr))
	if i < 0 {
		return "", ErrUnknownAddress
	}
	b.selected = b.entries[i]
	return b.selected, nil
}

func (b *Book) Selected() string {
	return b.selected
}

func (b *Book) Registered() string {
	if len(b.entries) == 0 {
		return ""
	}
	return b.entries[0]
}

func (b *Book) Entries() []string {
	return slices.Clone(b.entries)
}

func (b *Book) indexOf(key string) int {
	return slices.IndexFunc(b.entries, func(e string) bool {
		return strings.TrimSpace(e) == key
	})
}
