// Package cart implements the in-memory shopping cart aggregate.
//
// A Store holds an ordered collection of lines, one per product. It is the
// only stateful component in the service: every mutation goes through one of
// the four mutators below, and the two aggregates (total price, total items)
// are recomputed on every read so they can never go stale.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/xenking/shopfront/internal/domain/catalog"
)

// Line is one aggregated cart entry, keyed by product identifier. Title,
// price, and image are snapshots taken when the product was first added;
// they are not re-fetched on later increments.
type Line struct {
	ID       int64
	Title    string
	Price    decimal.Decimal
	Image    string
	Quantity int
}

// Subtotal returns price multiplied by quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Store is a session-local shopping cart. The zero value is not usable;
// construct with New. All methods are safe for concurrent use: each mutator
// is atomic with respect to the others, so N concurrent AddItem calls for
// the same product always end at quantity N.
type Store struct {
	mu       sync.Mutex
	lines    []Line
	onChange func()
}

// Option configures a Store.
type Option func(*Store)

// WithOnChange registers a callback invoked synchronously (with the store
// lock held) after every mutation that changed cart contents.
func WithOnChange(fn func()) Option {
	return func(s *Store) { s.onChange = fn }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItem puts one unit of p into the cart. If a line for p.ID already
// exists its quantity is incremented and the original snapshot wins;
// otherwise a new line with quantity 1 is appended. AddItem cannot fail.
func (s *Store) AddItem(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(p.ID); i >= 0 {
		s.lines[i].Quantity++
		s.notify()
		return
	}

	s.lines = append(s.lines, Line{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: 1,
	})
	s.notify()
}

// RemoveItem deletes the line with the given identifier. Removing an absent
// identifier is a silent no-op, not an error.
func (s *Store) RemoveItem(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// UpdateQuantity sets the line's quantity to exactly qty. A quantity of zero
// or less removes the line, matching RemoveItem. Unknown identifiers are a
// silent no-op.
func (s *Store) UpdateQuantity(id int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		s.remove(id)
		return
	}

	i := s.index(id)
	if i < 0 {
		return
	}
	if s.lines[i].Quantity == qty {
		return
	}
	s.lines[i].Quantity = qty
	s.notify()
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return
	}
	s.lines = nil
	s.notify()
}

// Take atomically snapshots the cart and empties it. It returns the lines in
// insertion order together with the aggregates computed from that snapshot,
// so an add racing the call lands either in the snapshot or in the emptied
// cart, never nowhere.
func (s *Store) Take() ([]Line, decimal.Decimal, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.lines
	s.lines = nil

	total := decimal.Zero
	var count int
	for _, l := range lines {
		total = total.Add(l.Subtotal())
		count += l.Quantity
	}
	if len(lines) > 0 {
		s.notify()
	}
	return lines, total, count
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// TotalPrice returns the sum of price times quantity over all lines.
// It is derived on every call, never cached.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// TotalItems returns the sum of quantities over all lines, not the number
// of distinct lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// index returns the position of the line with the given id, or -1.
// Caller must hold s.mu.
func (s *Store) index(id int64) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// remove deletes the line with the given id if present. Caller must hold s.mu.
func (s *Store) remove(id int64) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.notify()
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
