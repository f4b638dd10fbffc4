package booking

import "time"

// Summary is the read-only projection of a booking embedded in listings and
// item views.
type Summary struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	BookerID int64         `json:"bookerId"`
	Status   BookingStatus `json:"status"`
}

// Summaries maps bookings to summaries preserving order.
func Summaries(bookings []*Booking) []Summary {
	out := make([]Summary, len(bookings))
	for i, b := range bookings {
		out[i] = b.Summary()
	}
	return out
}
