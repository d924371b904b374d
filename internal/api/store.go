package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/ggufscope/internal/inspect"
)

// DefaultStoreCapacity bounds how many reports the server keeps.
const DefaultStoreCapacity = 256

type reportRecord struct {
	Report    *inspect.Report
	CreatedAt time.Time
}

// ReportStore keeps recent inspection reports by id, evicting the oldest
// once full.
type ReportStore struct {
	mu       sync.Mutex
	capacity int
	order    []string
	reports  map[string]reportRecord
}

func NewReportStore(capacity int) *ReportStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &ReportStore{
		capacity: capacity,
		reports:  make(map[string]reportRecord),
	}
}

// Put assigns r a new id and stores it.
func (s *ReportStore) Put(r *inspect.Report, now time.Time) string {
	id := newReportID()
	r.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.reports, oldest)
	}
	s.reports[id] = reportRecord{Report: r, CreatedAt: now}
	s.order = append(s.order, id)
	return id
}

func (s *ReportStore) Get(id string) (*inspect.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.reports[id]
	return rec.Report, ok
}

func (s *ReportStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return false
	}
	delete(s.reports, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ReportStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func newReportID() string {
	return "rpt_" + uuid.NewString()
}
