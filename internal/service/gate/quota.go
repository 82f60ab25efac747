package gate

import (
	"fmt"
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

// DailyQuota caps generation calls per local calendar day.
type DailyQuota struct {
	mu    sync.Mutex
	limit int
	count int
	day   string
	now   Clock
}

func NewDailyQuota(limit int, opts ...Option) *DailyQuota {
	o := buildOptions(opts)
	return &DailyQuota{
		limit: limit,
		day:   o.now().Format(dayLayout),
		now:   o.now,
	}
}

// resetIfNewDay must be called with mu held.
func (q *DailyQuota) resetIfNewDay() {
	today := q.now().Format(dayLayout)
	if today != q.day {
		q.count = 0
		q.day = today
	}
}

// Allow reports whether another call fits today's budget.
// A non-positive limit means unlimited.
func (q *DailyQuota) Allow() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit <= 0 {
		return true
	}
	q.resetIfNewDay()
	return q.count < q.limit
}

// Consume counts one successful call and returns today's usage.
func (q *DailyQuota) Consume() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.resetIfNewDay()
	q.count++
	return q.count
}

// Exhaust marks today's budget as used up, e.g. after the backend
// reports a rate limit.
func (q *DailyQuota) Exhaust() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.resetIfNewDay()
	if q.limit > 0 {
		q.count = q.limit
	}
}

func (q *DailyQuota) Usage() (used, limit int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.resetIfNewDay()
	return q.count, q.limit
}

// UntilReset is the time left until local midnight.
func (q *DailyQuota) UntilReset() time.Duration {
	now := q.now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return midnight.Sub(now)
}

// FormatUntilReset renders d as "H hours M minutes".
func FormatUntilReset(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%d hours %d minutes", hours, minutes)
}
