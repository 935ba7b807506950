package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"prizewheel/internal/metrics"
	"prizewheel/internal/models"
	"prizewheel/internal/wheel"

	"github.com/google/logger"
	"go.uber.org/atomic"
)

// ErrSpinInProgress is returned when a participant spins a wheel that has not
// settled yet.
var ErrSpinInProgress = errors.New("spin already in progress")

// Wheel describes how one wheel spins.
type Wheel struct {
	Key          string // "demo" or a campaign slug
	MinimumTurns int
	Duration     time.Duration
}

// SpinSession holds the wheel state of one participant on one wheel.
type SpinSession struct {
	Key      string
	Wheel    Wheel
	Campaign *models.Campaign
	Lead     *models.Lead
	// Prizes is the list the current spin was drawn from.
	Prizes []models.Prize
	// CumulativeRotation only grows; it becomes TargetRotation at reveal.
	CumulativeRotation float64
	TargetRotation     float64
	Spinning           bool
	ChosenIndex        int
	Revealed           *models.Prize
	// Generation identifies the spin a pending reveal belongs to.
	Generation   uint64
	LastActivity time.Time
}

// SessionView is a read-only snapshot of a SpinSession. The chosen prize is
// only present once revealed.
type SessionView struct {
	Spinning           bool          `json:"spinning"`
	CumulativeRotation float64       `json:"cumulativeRotation"`
	TargetRotation     float64       `json:"targetRotation"`
	Generation         uint64        `json:"generation"`
	Revealed           *models.Prize `json:"revealed,omitempty"`
}

// SpinRequest asks for a new spin.
type SpinRequest struct {
	Participant string
	Wheel       Wheel
	Campaign    *models.Campaign
	Lead        *models.Lead
	Prizes      []models.Prize
}

// SpinPlan tells the caller how to animate an accepted spin.
type SpinPlan struct {
	PreviousRotation float64 `json:"previousRotation"`
	TargetRotation   float64 `json:"targetRotation"`
	DurationMs       int64   `json:"durationMs"`
	PrizeCount       int     `json:"prizeCount"`
	Generation       uint64  `json:"generation"`
}

// Reveal is handed to every RevealHook once a spin settles.
type Reveal struct {
	Key      string
	Wheel    string
	Campaign *models.Campaign
	Lead     *models.Lead
	Prize    models.Prize
	Index    int
	Rotation float64
}

// RevealHook runs after a prize is revealed, outside the service lock.
type RevealHook func(Reveal)

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func())

// Option configures a SpinService.
type Option func(*SpinService)

// WithAfterFunc replaces the timer used to schedule reveals.
func WithAfterFunc(after AfterFunc) Option {
	return func(s *SpinService) { s.after = after }
}

// WithRevealHook adds a hook run after each reveal.
func WithRevealHook(h RevealHook) Option {
	return func(s *SpinService) { s.hooks = append(s.hooks, h) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *SpinService) { s.now = now }
}

// SpinService manages spin sessions for every participant and wheel.
type SpinService struct {
	mu       sync.RWMutex
	sessions map[string]*SpinSession // Key: participant/wheel

	selector *wheel.Selector
	after    AfterFunc
	hooks    []RevealHook
	epoch    *atomic.Uint64
	now      func() time.Time
}

// NewSpinService creates and initializes a new SpinService.
func NewSpinService(selector *wheel.Selector, opts ...Option) *SpinService {
	if selector == nil {
		selector = wheel.NewSelector(nil)
	}
	s := &SpinService{
		sessions: make(map[string]*SpinSession),
		selector: selector,
		after:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		epoch:    atomic.NewUint64(0),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sessionKey(participant, wheelKey string) string {
	return participant + "/" + strings.ToLower(wheelKey)
}

// StartSpin draws a prize and plans the rotation that lands on it. Nothing
// changes when the draw fails or the wheel is still spinning.
func (s *SpinService) StartSpin(req SpinRequest) (*SpinPlan, error) {
	key := sessionKey(req.Participant, req.Wheel.Key)

	s.mu.Lock()
	session := s.sessions[key]
	if session != nil && session.Spinning {
		s.mu.Unlock()
		metrics.SpinsRejected.WithLabelValues(req.Wheel.Key, "in_progress").Inc()
		return nil, ErrSpinInProgress
	}

	index, err := s.selector.Draw(req.Prizes)
	if err != nil {
		s.mu.Unlock()
		metrics.SpinsRejected.WithLabelValues(req.Wheel.Key, "invalid_weights").Inc()
		return nil, fmt.Errorf("start spin: %w", err)
	}

	if session == nil {
		session = &SpinSession{Key: key}
		s.sessions[key] = session
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
	}

	prizes := append([]models.Prize(nil), req.Prizes...)
	previous := session.CumulativeRotation
	target := wheel.PlanSpin(previous, index, len(prizes), req.Wheel.MinimumTurns)
	generation := s.epoch.Inc()

	session.Wheel = req.Wheel
	session.Campaign = req.Campaign
	session.Lead = req.Lead
	session.Prizes = prizes
	session.TargetRotation = target
	session.Spinning = true
	session.ChosenIndex = index
	session.Revealed = nil
	session.Generation = generation
	session.LastActivity = s.now()
	s.mu.Unlock()

	metrics.SpinsStarted.WithLabelValues(req.Wheel.Key).Inc()
	s.after(req.Wheel.Duration, func() { s.reveal(key, session, generation) })

	return &SpinPlan{
		PreviousRotation: previous,
		TargetRotation:   target,
		DurationMs:       req.Wheel.Duration.Milliseconds(),
		PrizeCount:       len(prizes),
		Generation:       generation,
	}, nil
}

// reveal settles a spin. It does nothing if the session was cleared or has
// moved on to another spin since the timer was armed.
func (s *SpinService) reveal(key string, session *SpinSession, generation uint64) {
	s.mu.Lock()
	if s.sessions[key] != session || session.Generation != generation || !session.Spinning {
		s.mu.Unlock()
		metrics.StaleReveals.Inc()
		logger.Infof("Dropped stale reveal for session %s (generation %d)", key, generation)
		return
	}

	index := wheel.IndexForAngle(wheel.Normalize(session.TargetRotation), len(session.Prizes))
	if index != session.ChosenIndex {
		logger.Errorf("Wheel for %s settled on %d but drew %d", key, index, session.ChosenIndex)
		index = session.ChosenIndex
	}
	prize := session.Prizes[index]

	session.Spinning = false
	session.Revealed = &prize
	session.CumulativeRotation = session.TargetRotation
	session.LastActivity = s.now()

	ev := Reveal{
		Key:      key,
		Wheel:    session.Wheel.Key,
		Campaign: session.Campaign,
		Lead:     session.Lead,
		Prize:    prize,
		Index:    index,
		Rotation: session.TargetRotation,
	}
	hooks := s.hooks
	s.mu.Unlock()

	metrics.SpinsRevealed.WithLabelValues(ev.Wheel).Inc()
	for _, h := range hooks {
		h(ev)
	}
}

// Session returns a snapshot of a participant's session on a wheel.
func (s *SpinService) Session(participant, wheelKey string) (SessionView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionKey(participant, wheelKey)]
	if !ok {
		return SessionView{}, false
	}
	session.LastActivity = s.now()

	view := SessionView{
		Spinning:           session.Spinning,
		CumulativeRotation: session.CumulativeRotation,
		TargetRotation:     session.TargetRotation,
		Generation:         session.Generation,
	}
	if session.Revealed != nil {
		p := *session.Revealed
		view.Revealed = &p
	}
	return view, true
}

// ClearSession removes a participant's session on one wheel. A pending
// reveal for it becomes a no-op.
func (s *SpinService) ClearSession(participant, wheelKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(participant, wheelKey))
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	logger.Infof("Cleared spin session for participant: %s", participant)
}

// CleanUpInactiveSessions removes sessions idle for longer than ttl and
// reports how many were removed.
func (s *SpinService) CleanUpInactiveSessions(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for key, session := range s.sessions {
		if now.Sub(session.LastActivity) > ttl {
			delete(s.sessions, key)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return removed
}

// SessionCount reports how many sessions are held.
func (s *SpinService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
