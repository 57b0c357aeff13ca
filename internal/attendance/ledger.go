package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Ledger applies check-in and check-out transitions to an attendance log kept
// most-recent-first. Open sessions are indexed by user ID.
type Ledger struct {
	records []*Record
	open    map[string]*Record
	now     func() time.Time
}

// NewLedger builds a ledger over records, which must be most-recent-first. When a log holds
// several open records for one user the most recent one is the open session.
func NewLedger(records []Record, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	l := &Ledger{
		records: make([]*Record, len(records)),
		open:    make(map[string]*Record),
		now:     now,
	}
	for i := range records {
		rec := records[i]
		l.records[i] = &rec
		if !rec.Open() {
			continue
		}
		key := NormalizeID(rec.User.ID)
		if _, seen := l.open[key]; !seen {
			l.open[key] = l.records[i]
		}
	}
	return l
}

// CheckIn opens a session for u and prepends it to the log.
func (l *Ledger) CheckIn(u User) (Record, error) {
	key := NormalizeID(u.ID)
	if _, ok := l.open[key]; ok {
		return Record{}, ErrAlreadyCheckedIn
	}
	rec := &Record{
		ID:      uuid.NewString(),
		User:    u,
		CheckIn: l.now(),
		Status:  StatusCheckedIn,
	}
	l.records = append([]*Record{rec}, l.records...)
	l.open[key] = rec
	return *rec, nil
}

// CheckOut closes the open session of u in place.
func (l *Ledger) CheckOut(u User) (Record, error) {
	key := NormalizeID(u.ID)
	rec, ok := l.open[key]
	if !ok {
		return Record{}, ErrNotCheckedIn
	}
	now := l.now()
	rec.CheckOut = &now
	rec.Status = StatusCompleted
	delete(l.open, key)
	return *rec, nil
}

// OpenSession returns the open record of the user with the given ID.
func (l *Ledger) OpenSession(userID string) (Record, bool) {
	rec, ok := l.open[NormalizeID(userID)]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// OpenCount returns the number of open sessions.
func (l *Ledger) OpenCount() int {
	return len(l.open)
}

// Records returns the log, most-recent-first.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	for i, rec := range l.records {
		out[i] = *rec
	}
	return out
}
