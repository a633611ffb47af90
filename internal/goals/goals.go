// Package goals keeps per-category budget goals in an insertion-ordered map.
//
// Iteration order matters: the interactive shell selects goals by their
// 1-based position and the report lists them in that order.
package goals

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"budget/internal/core"
)

var (
	ErrIndexOutOfRange = errors.New("invalid goal number")
	ErrEmptyCategory   = errors.New("empty category")
	ErrNotFound        = errors.New("goal not found")
)

type Goal struct {
	Category string
	Amount   core.Amount
}

// Entry is a goal paired with its 1-based display number.
type Entry struct {
	Number int
	Goal
}

// Store maps category to goal amount. Keys are unique; Add and Rename on an
// existing key overwrite it (last write wins).
type Store struct {
	keys    []string
	amounts map[string]core.Amount
}

func New() *Store {
	return &Store{amounts: make(map[string]core.Amount)}
}

// NormalizeCategory trims and title-cases a category name.
func NormalizeCategory(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

func (s *Store) Len() int {
	return len(s.keys)
}

func (s *Store) IsEmpty() bool {
	return len(s.keys) == 0
}

// Add normalizes the category and sets its goal. An existing goal for the
// same category is overwritten in place.
func (s *Store) Add(category, amount string) (Goal, error) {
	key := NormalizeCategory(category)
	if key == "" {
		return Goal{}, ErrEmptyCategory
	}
	a, err := core.ParseAmount(amount)
	if err != nil {
		return Goal{}, err
	}
	s.Set(key, a)
	return Goal{Category: key, Amount: a}, nil
}

// Set stores the goal under category as given, without normalization.
func (s *Store) Set(category string, amount core.Amount) {
	s.init()
	if _, ok := s.amounts[category]; !ok {
		s.keys = append(s.keys, category)
	}
	s.amounts[category] = amount
}

// Lookup returns the goal amount for category.
func (s *Store) Lookup(category string) (core.Amount, bool) {
	a, ok := s.amounts[category]
	return a, ok
}

// Get returns the goal at the 1-based position.
func (s *Store) Get(index int) (Goal, error) {
	if err := s.checkIndex(index); err != nil {
		return Goal{}, err
	}
	k := s.keys[index-1]
	return Goal{Category: k, Amount: s.amounts[k]}, nil
}

// Rename moves the goal stored under oldKey to newKey with the given amount.
//
// A blank newKey keeps oldKey and only updates the amount in place. When the
// key changes, the entry moves to the end of the iteration order, and if
// newKey already names a different goal that goal is replaced.
func (s *Store) Rename(oldKey, newKey string, amount core.Amount) error {
	if _, ok := s.amounts[oldKey]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, oldKey)
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if newKey == "" || newKey == oldKey {
		s.amounts[oldKey] = amount
		return nil
	}
	s.remove(oldKey)
	s.remove(newKey)
	s.Set(newKey, amount)
	return nil
}

// Edit updates the goal at the 1-based position. A blank newCategory keeps the
// current name and a blank newAmount keeps the current amount.
func (s *Store) Edit(index int, newCategory, newAmount string) (Goal, error) {
	current, err := s.Get(index)
	if err != nil {
		return Goal{}, err
	}
	key := NormalizeCategory(newCategory)
	if key == "" {
		key = current.Category
	}
	amount := current.Amount
	if strings.TrimSpace(newAmount) != "" {
		amount, err = core.ParseAmount(newAmount)
		if err != nil {
			return Goal{}, err
		}
	}
	if err := s.Rename(current.Category, key, amount); err != nil {
		return Goal{}, err
	}
	return Goal{Category: key, Amount: amount}, nil
}

// Collides reports whether renaming the goal at index to newCategory would
// overwrite a different existing goal.
func (s *Store) Collides(index int, newCategory string) bool {
	current, err := s.Get(index)
	if err != nil {
		return false
	}
	key := NormalizeCategory(newCategory)
	if key == "" || key == current.Category {
		return false
	}
	_, ok := s.amounts[key]
	return ok
}

// Delete removes the goal at the 1-based position.
func (s *Store) Delete(index int) (Goal, error) {
	g, err := s.Get(index)
	if err != nil {
		return Goal{}, err
	}
	s.remove(g.Category)
	return g, nil
}

// List returns the goals in iteration order with 1-based numbering.
func (s *Store) List() []Entry {
	out := make([]Entry, len(s.keys))
	for i, k := range s.keys {
		out[i] = Entry{Number: i + 1, Goal: Goal{Category: k, Amount: s.amounts[k]}}
	}
	return out
}

func (s *Store) remove(key string) {
	if _, ok := s.amounts[key]; !ok {
		return
	}
	delete(s.amounts, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			return
		}
	}
}

func (s *Store) checkIndex(index int) error {
	if index < 1 || index > len(s.keys) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return nil
}

func (s *Store) init() {
	if s.amounts == nil {
		s.amounts = make(map[string]core.Amount)
	}
}
