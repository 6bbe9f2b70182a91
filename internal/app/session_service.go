package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-session-service/internal/auth"
	"quiz-session-service/internal/domain"
)

// CatalogRepository loads quiz content (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// ResultStore persists completed-session records. The core only appends;
// it never reads records back.
type ResultStore interface {
	Append(ctx context.Context, record domain.ResultRecord) error
}

// SessionService owns the single quiz session and its state machine:
// Unauthenticated -> Active -> Finished, with logout returning to
// Unauthenticated from anywhere. All mutation goes through one mutex, so a
// timer tick and a user intent can never interleave mid-transition.
type SessionService struct {
	credentials        auth.CredentialSource
	catalogs           CatalogRepository
	results            ResultStore
	catalogID          string
	secondsPerQuestion int
	tickEvery          time.Duration
	now                func() time.Time
	newID              func() string

	mu          sync.Mutex
	sess        *session
	result      *domain.ResultRecord
	timerGen    uint64
	timerStop   chan struct{}
	subscribers map[chan domain.SessionView]struct{}
}

// session is the Active-state payload. Position indices are always valid
// while the session holds questions.
type session struct {
	username      string
	catalog       domain.Catalog
	sectionIndex  int
	questionIndex int
	answers       map[string]int
	remaining     int
}

func NewSessionService(credentials auth.CredentialSource, catalogs CatalogRepository, results ResultStore, catalogID string, secondsPerQuestion int) *SessionService {
	return newSessionService(credentials, catalogs, results, catalogID, secondsPerQuestion, time.Now, time.Second)
}

// NewSessionServiceWithClock is test-only for deterministic timestamps and
// fast countdowns.
func NewSessionServiceWithClock(credentials auth.CredentialSource, catalogs CatalogRepository, results ResultStore, catalogID string, secondsPerQuestion int, now func() time.Time, tickEvery time.Duration) *SessionService {
	return newSessionService(credentials, catalogs, results, catalogID, secondsPerQuestion, now, tickEvery)
}

func newSessionService(credentials auth.CredentialSource, catalogs CatalogRepository, results ResultStore, catalogID string, secondsPerQuestion int, now func() time.Time, tickEvery time.Duration) *SessionService {
	if secondsPerQuestion <= 0 {
		secondsPerQuestion = 60
	}
	return &SessionService{
		credentials:        credentials,
		catalogs:           catalogs,
		results:            results,
		catalogID:          catalogID,
		secondsPerQuestion: secondsPerQuestion,
		tickEvery:          tickEvery,
		now:                now,
		newID:              uuid.NewString,
		subscribers:        make(map[chan domain.SessionView]struct{}),
	}
}

// Login authenticates the user and starts a fresh Active session: position
// (0,0), empty answers, budget = secondsPerQuestion x total questions. Any
// prior session (and its timer) is discarded first.
func (s *SessionService) Login(ctx context.Context, username, password string) (domain.SessionView, error) {
	user, err := auth.Authenticate(ctx, s.credentials, username, password)
	if err != nil {
		return s.Snapshot(), err
	}
	catalog, err := s.catalogs.GetCatalog(ctx, s.catalogID)
	if err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.result = nil
	s.sess = &session{
		username:  user,
		catalog:   catalog,
		answers:   make(map[string]int),
		remaining: s.secondsPerQuestion * catalog.TotalQuestions(),
	}
	if s.sess.remaining > 0 {
		s.startTimerLocked()
	}
	return s.broadcastLocked(), nil
}

// SelectOption records an answer for the question at the current position.
// A question ID away from the current position or an out-of-range option
// index is rejected with ErrInvalidIndex and leaves state untouched.
// Re-selecting overwrites the previous choice.
func (s *SessionService) SelectOption(_ context.Context, questionID string, optionIndex int) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		return s.viewLocked(), domain.ErrNoActiveSession
	}
	q := s.sess.currentQuestion()
	if q == nil || q.ID != questionID {
		return s.viewLocked(), domain.ErrInvalidIndex
	}
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return s.viewLocked(), domain.ErrInvalidIndex
	}
	s.sess.answers[questionID] = optionIndex
	return s.broadcastLocked(), nil
}

// Next advances to the following question, rolling over into the next
// section unconditionally. Advancing past the last question of the last
// section finishes the session.
func (s *SessionService) Next(ctx context.Context) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		return s.viewLocked(), domain.ErrNoActiveSession
	}
	if s.sess.atLastQuestion() {
		return s.finishLocked(ctx), nil
	}
	sec := s.sess.catalog.Sections[s.sess.sectionIndex]
	if s.sess.questionIndex < len(sec.Questions)-1 {
		s.sess.questionIndex++
	} else {
		s.sess.sectionIndex++
		s.sess.questionIndex = 0
	}
	return s.broadcastLocked(), nil
}

// Previous steps back one question, crossing into the previous section's
// last question at a section boundary. At the very first question it is a
// no-op; retreating never finishes a session.
func (s *SessionService) Previous(_ context.Context) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		return s.viewLocked(), domain.ErrNoActiveSession
	}
	switch {
	case s.sess.questionIndex > 0:
		s.sess.questionIndex--
	case s.sess.sectionIndex > 0:
		s.sess.sectionIndex--
		s.sess.questionIndex = len(s.sess.catalog.Sections[s.sess.sectionIndex].Questions) - 1
		if s.sess.questionIndex < 0 {
			// empty section
			s.sess.questionIndex = 0
		}
	default:
		return s.viewLocked(), nil
	}
	return s.broadcastLocked(), nil
}

// Finish ends the Active session on user intent, compiling and persisting
// the result record. Timer expiry funnels into the same transition.
func (s *SessionService) Finish(ctx context.Context) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		return s.viewLocked(), domain.ErrNoActiveSession
	}
	return s.finishLocked(ctx), nil
}

// Logout discards the session without producing a record and stops any
// pending timer. Valid in every state.
func (s *SessionService) Logout(_ context.Context) domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.sess = nil
	s.result = nil
	return s.broadcastLocked()
}

// Snapshot returns the current read-only view of the session.
func (s *SessionService) Snapshot() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe returns a channel that receives a view after every state change,
// timer ticks included. The caller must invoke the returned cancel function
// to avoid leaks.
func (s *SessionService) Subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.viewLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// finishLocked performs the Active -> Finished transition: stop the timer,
// compile the record, persist it. Persistence failures are logged, not
// surfaced; the session still finishes with a complete record in hand.
func (s *SessionService) finishLocked(ctx context.Context) domain.SessionView {
	s.stopTimerLocked()

	record := CompileResult(s.sess.catalog, s.sess.answers, s.sess.remaining, s.sess.username, s.now())
	record.ID = s.newID()
	if s.results != nil {
		if err := s.results.Append(ctx, record); err != nil {
			log.Printf("append result record: %v", err)
		}
	}
	s.result = &record
	s.sess = nil
	return s.broadcastLocked()
}

func (s *SessionService) broadcastLocked() domain.SessionView {
	view := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// A slow consumer must not block the state machine; drop its
			// stalest view and retry.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	return view
}

func (s *SessionService) viewLocked() domain.SessionView {
	if s.result != nil {
		return domain.SessionView{
			State:            domain.StateFinished,
			Username:         s.result.Username,
			TotalQuestions:   s.result.Total,
			RemainingSeconds: s.result.RemainingSeconds,
			Result:           s.result,
		}
	}
	if s.sess == nil {
		return domain.SessionView{State: domain.StateUnauthenticated}
	}

	view := domain.SessionView{
		State:            domain.StateActive,
		Username:         s.sess.username,
		CatalogTitle:     s.sess.catalog.Title,
		SectionIndex:     s.sess.sectionIndex,
		QuestionIndex:    s.sess.questionIndex,
		TotalQuestions:   s.sess.catalog.TotalQuestions(),
		AnsweredCount:    len(s.sess.answers),
		RemainingSeconds: s.sess.remaining,
	}
	if s.sess.sectionIndex < len(s.sess.catalog.Sections) {
		sec := s.sess.catalog.Sections[s.sess.sectionIndex]
		view.SectionTitle = sec.Title
		view.SectionSize = len(sec.Questions)
	}
	if q := s.sess.currentQuestion(); q != nil {
		qv := &domain.QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
		}
		if selected, ok := s.sess.answers[q.ID]; ok {
			idx := selected
			qv.Selected = &idx
		}
		view.Question = qv
	}
	return view
}

// currentQuestion returns the question at the session position, or nil for
// an empty catalog or an empty section.
func (sess *session) currentQuestion() *domain.Question {
	if sess.sectionIndex >= len(sess.catalog.Sections) {
		return nil
	}
	sec := sess.catalog.Sections[sess.sectionIndex]
	if sess.questionIndex >= len(sec.Questions) {
		return nil
	}
	return &sec.Questions[sess.questionIndex]
}

// atLastQuestion reports whether advancing would run past the catalog. An
// empty catalog counts as the end, so the first Next finishes immediately.
func (sess *session) atLastQuestion() bool {
	if len(sess.catalog.Sections) == 0 {
		return true
	}
	last := len(sess.catalog.Sections) - 1
	if sess.sectionIndex < last {
		return false
	}
	return sess.questionIndex >= len(sess.catalog.Sections[last].Questions)-1
}
