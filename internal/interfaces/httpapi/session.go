package httpapi

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"txdash/internal/application"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

const (
	sessionCookie  = "txdash_session"
	sessionIdleTTL = 24 * time.Hour
)

// session is one browser's dashboard state. Every completed fetch overwrites it.
type session struct {
	inFlight atomic.Bool
	lastSeen atomic.Int64

	mu     sync.Mutex
	input  string
	report *application.Report
	errMsg string
	alerts []string
}

type sessionState struct {
	Input   string
	Report  *application.Report
	Error   string
	Loading bool
	Alerts  []string
}

func newSession() *session {
	s := &session{}
	s.touch()
	return s
}

func (s *session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

func (s *session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// begin claims the in-flight slot; false means another fetch is running.
func (s *session) begin() bool {
	return s.inFlight.CompareAndSwap(false, true)
}

func (s *session) end() {
	s.inFlight.Store(false)
}

func (s *session) Alert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, message)
}

func (s *session) setInput(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = address
}

func (s *session) succeed(report application.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = &report
	s.errMsg = ""
}

// fail records a fetch failure and drops any previous results.
func (s *session) fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = nil
	s.errMsg = message
}

// reject records an input error without touching previous results.
func (s *session) reject(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = message
}

// state returns a copy of the session and drains pending alerts.
func (s *session) state() sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := sessionState{
		Input:   s.input,
		Report:  s.report,
		Error:   s.errMsg,
		Loading: s.inFlight.Load(),
		Alerts:  s.alerts,
	}
	s.alerts = nil
	return state
}

type sessions struct {
	byID *xsync.Map[string, *session]
}

func newSessions() *sessions {
	return &sessions{byID: xsync.NewMap[string, *session]()}
}

// get returns the caller's session, issuing a cookie when the request has none.
func (ss *sessions) get(w http.ResponseWriter, r *http.Request) *session {
	// Only ids this process issued are honoured; anything else gets a fresh cookie.
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := ss.byID.Load(cookie.Value); ok {
			sess.touch()
			return sess
		}
	}

	ss.prune(time.Now())
	id := uuid.NewString()
	sess := newSession()
	ss.byID.Store(id, sess)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (ss *sessions) prune(now time.Time) {
	ss.byID.Range(func(id string, sess *session) bool {
		if !sess.inFlight.Load() && sess.idleSince(now) > sessionIdleTTL {
			ss.byID.Delete(id)
		}
		return true
	})
}

func (ss *sessions) len() int {
	return ss.byID.Size()
}
