package application

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/domain/catalog"
	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
	"github.com/shareit/service-booking/pkg/domain"
	"github.com/shareit/service-booking/pkg/kafka"
	"github.com/shareit/service-booking/pkg/tracing"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func hoursFromNow(h int) *time.Time {
	t := testNow.Add(time.Duration(h) * time.Hour)
	return &t
}

// memStore is an in-memory bookingDomain.Store.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*bookingDomain.Booking
	owners   func(itemID int64) int64
	fetches  []bookingDomain.PageRequest
}

func newMemStore(owners func(itemID int64) int64) *memStore {
	return &memStore{bookings: map[int64]*bookingDomain.Booking{}, owners: owners}
}

func (s *memStore) Save(_ context.Context, b *bookingDomain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID() == 0 {
		s.nextID++
		b.AssignID(s.nextID)
		s.bookings[b.ID()] = copyBooking(b)
		return nil
	}
	stored, ok := s.bookings[b.ID()]
	if !ok || stored.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	s.bookings[b.ID()] = copyBooking(b)
	return nil
}

func (s *memStore) FindByID(_ context.Context, id int64) (*bookingDomain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		return copyBooking(b), nil
	}
	return nil, nil
}

func (s *memStore) FindByIDForUpdate(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	return s.FindByID(ctx, id)
}

func (s *memStore) FindByBooker(_ context.Context, bookerID int64, f bookingDomain.Filter, page bookingDomain.PageRequest) (bookingDomain.Page, error) {
	return s.page(func(b *bookingDomain.Booking) bool { return b.BookerID() == bookerID && f.Matches(b) }, page), nil
}

func (s *memStore) FindByOwner(_ context.Context, ownerID int64, f bookingDomain.Filter, page bookingDomain.PageRequest) (bookingDomain.Page, error) {
	return s.page(func(b *bookingDomain.Booking) bool { return s.owners(b.ItemID()) == ownerID && f.Matches(b) }, page), nil
}

func (s *memStore) page(match func(*bookingDomain.Booking) bool, page bookingDomain.PageRequest) bookingDomain.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches = append(s.fetches, page)

	var all []*bookingDomain.Booking
	for _, b := range s.bookings {
		if match(b) {
			all = append(all, copyBooking(b))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Start().Equal(all[j].Start()) {
			return all[i].Start().After(all[j].Start())
		}
		return all[i].ID() > all[j].ID()
	})

	var items []*bookingDomain.Booking
	if page.Offset < len(all) {
		end := min(page.Offset+page.Limit, len(all))
		items = all[page.Offset:end]
	}
	return bookingDomain.NewPage(items, int64(len(all)), page)
}

func (s *memStore) FindLastEndedBefore(_ context.Context, itemID int64, at time.Time) (*bookingDomain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *bookingDomain.Booking
	for _, b := range s.bookings {
		if b.ItemID() != itemID || !b.End().Before(at) {
			continue
		}
		if best == nil || b.End().After(best.End()) || (b.End().Equal(best.End()) && b.ID() > best.ID()) {
			best = b
		}
	}
	if best == nil {
		return nil, nil
	}
	return copyBooking(best), nil
}

func (s *memStore) FindFirstStartedAfter(_ context.Context, itemID int64, at time.Time) (*bookingDomain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *bookingDomain.Booking
	for _, b := range s.bookings {
		if b.ItemID() != itemID || !b.Start().After(at) {
			continue
		}
		if best == nil || b.Start().Before(best.Start()) || (b.Start().Equal(best.Start()) && b.ID() < best.ID()) {
			best = b
		}
	}
	if best == nil {
		return nil, nil
	}
	return copyBooking(best), nil
}

func (s *memStore) HasApprovedStartedBefore(_ context.Context, bookerID, itemID int64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.BookerID() == bookerID && b.ItemID() == itemID &&
			b.Status() == bookingDomain.StatusApproved && b.Start().Before(at) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CountByStatus(_ context.Context) (map[bookingDomain.BookingStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[bookingDomain.BookingStatus]int64{}
	for _, b := range s.bookings {
		counts[b.Status()]++
	}
	return counts, nil
}

// put stores a booking directly, bypassing lifecycle rules.
func (s *memStore) put(itemID, bookerID int64, start, end *time.Time, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b := bookingDomain.ReconstructBooking(s.nextID, itemID, bookerID, *start, *end, status, 1, testNow, testNow)
	s.bookings[b.ID()] = b
	return copyBooking(b)
}

func copyBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(b.ID(), b.ItemID(), b.BookerID(), b.Start(), b.End(),
		b.Status(), b.Version(), b.CreatedAt(), b.UpdatedAt())
}

type passthroughTx struct{ calls int }

func (t *passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

// memCatalog serves both directories from maps.
type memCatalog struct {
	users map[int64]*catalog.User
	items map[int64]*catalog.Item
}

func newMemCatalog() *memCatalog {
	return &memCatalog{users: map[int64]*catalog.User{}, items: map[int64]*catalog.Item{}}
}

func (c *memCatalog) addUser(id int64, name string) {
	c.users[id] = &catalog.User{ID: id, Name: name, Email: name + "@example.com"}
}

func (c *memCatalog) addItem(id, ownerID int64, available bool) {
	c.items[id] = &catalog.Item{ID: id, OwnerID: ownerID, Name: "item", Description: "desc", Available: available}
}

func (c *memCatalog) ownerOf(itemID int64) int64 {
	if it, ok := c.items[itemID]; ok {
		return it.OwnerID
	}
	return 0
}

func (c *memCatalog) Get(_ context.Context, id int64) (*catalog.User, error) {
	if u, ok := c.users[id]; ok {
		return u, nil
	}
	return nil, domain.NewNotFoundError("User", id)
}

func (c *memCatalog) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := c.users[id]
	return ok, nil
}

type memItems struct{ c *memCatalog }

func (i memItems) Get(_ context.Context, id int64) (*catalog.Item, error) {
	if it, ok := i.c.items[id]; ok {
		return it, nil
	}
	return nil, domain.NewNotFoundError("Item", id)
}

func (i memItems) GetForUpdate(ctx context.Context, id int64) (*catalog.Item, error) {
	return i.Get(ctx, id)
}

func (i memItems) ListByOwner(_ context.Context, ownerID int64, offset, limit int) ([]*catalog.Item, int64, error) {
	var all []*catalog.Item
	for _, it := range i.c.items {
		if it.OwnerID == ownerID {
			all = append(all, it)
		}
	}
	sort.Slice(all, func(a, b int) bool { return all[a].ID < all[b].ID })
	if offset >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], int64(len(all)), nil
}

type memComments struct {
	nextID int64
	saved  []*commentDomain.Comment
	names  func(id int64) string
}

func (m *memComments) Save(_ context.Context, c *commentDomain.Comment) error {
	m.nextID++
	c.AssignID(m.nextID)
	m.saved = append(m.saved, c)
	return nil
}

func (m *memComments) ListViewsByItem(_ context.Context, itemID int64) ([]commentDomain.View, error) {
	var views []commentDomain.View
	for i := len(m.saved) - 1; i >= 0; i-- {
		c := m.saved[i]
		if c.ItemID() == itemID {
			views = append(views, commentDomain.View{ID: c.ID(), Text: c.Text(), AuthorName: m.names(c.AuthorID()), Created: c.CreatedAt()})
		}
	}
	return views, nil
}

type publishedEvent struct {
	topic string
	key   string
	event kafka.CloudEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, ce kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: ce})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.event.Type
	}
	return out
}

// fixture wires every service over the in-memory fakes.
type fixture struct {
	catalog      *memCatalog
	store        *memStore
	tx           *passthroughTx
	publisher    *recordingPublisher
	comments     *memComments
	bookings     *BookingService
	availability *AvailabilityService
	items        *ItemService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := newMemCatalog()
	store := newMemStore(cat.ownerOf)
	tx := &passthroughTx{}
	pub := &recordingPublisher{}
	comments := &memComments{names: func(id int64) string {
		if u, ok := cat.users[id]; ok {
			return u.Name
		}
		return ""
	}}
	ot := tracing.Noop()
	log := zap.NewNop()
	clock := func() time.Time { return testNow }

	bookings := NewBookingService(store, tx, cat, memItems{cat}, pub, "booking.events", ot, log)
	bookings.now = clock
	availability := NewAvailabilityService(store, cat, memItems{cat}, ot, log)
	availability.now = clock
	items := NewItemService(availability, store, cat, memItems{cat}, comments, ot, log)
	items.now = clock

	return &fixture{
		catalog:      cat,
		store:        store,
		tx:           tx,
		publisher:    pub,
		comments:     comments,
		bookings:     bookings,
		availability: availability,
		items:        items,
	}
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }
