package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/spin-wheel-promo/internal/catalog"
	"github.com/fairyhunter13/spin-wheel-promo/internal/metrics"
	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
	"github.com/fairyhunter13/spin-wheel-promo/internal/wheel"
)

// Step is a screen of the promo wizard.
type Step string

const (
	StepGreeting   Step = "greeting"
	StepName       Step = "name"
	StepUpload     Step = "upload"
	StepValidating Step = "validating"
	StepSpin       Step = "spin"
)

const awardWriteTimeout = 5 * time.Second

// AwardRecorder persists revealed prizes.
type AwardRecorder interface {
	Insert(ctx context.Context, award *model.Award) error
}

// Options configures a SessionService.
type Options struct {
	Catalog         []model.PrizeEntry
	Timings         wheel.Timings
	Rotations       wheel.RotationRange
	Seed            uint64 // 0 = unseeded
	ValidationDelay time.Duration
	MaxUploadBytes  int64
	Scheduler       wheel.Scheduler // nil = wall clock
}

// Screenshot describes an accepted upload. The bytes are not kept.
type Screenshot struct {
	Filename string `json:"filename"`
	MIME     string `json:"mime"`
	Size     int    `json:"size"`
}

// SessionView is the API snapshot of a wizard session.
type SessionView struct {
	ID         string           `json:"id"`
	Step       Step             `json:"step"`
	UserName   string           `json:"user_name,omitempty"`
	Screenshot *Screenshot      `json:"screenshot,omitempty"`
	Message    string           `json:"message"`
	Wheel      *wheel.SpinState `json:"wheel,omitempty"`
}

type session struct {
	mu           sync.Mutex
	id           string
	step         Step
	userName     string
	screenshot   *Screenshot
	wheel        *wheel.Wheel
	validation   wheel.Timer
	lastActivity time.Time
	closed       bool
}

// SessionService runs one wizard, and at most one prize wheel, per session.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*session

	opts     Options
	sched    wheel.Scheduler
	recorder AwardRecorder
	seeds    atomic.Uint64
	now      func() time.Time
}

// NewSessionService creates a SessionService. The catalog is validated up front.
func NewSessionService(recorder AwardRecorder, opts Options) (*SessionService, error) {
	if err := catalog.Validate(opts.Catalog); err != nil {
		return nil, fmt.Errorf("session service: %w", err)
	}
	if opts.Rotations.Min < 0 || opts.Rotations.Max < opts.Rotations.Min {
		return nil, fmt.Errorf("session service: %w", wheel.ErrInvalidRotationRange)
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = wheel.RealScheduler{}
	}
	return &SessionService{
		sessions: make(map[string]*session),
		opts:     opts,
		sched:    sched,
		recorder: recorder,
		now:      time.Now,
	}, nil
}

// Catalog returns the prize catalog in wedge order.
func (s *SessionService) Catalog() []model.PrizeEntry {
	return append([]model.PrizeEntry(nil), s.opts.Catalog...)
}

// Timings returns the wheel's phase delays.
func (s *SessionService) Timings() wheel.Timings {
	return s.opts.Timings
}

// Create opens a session at the greeting step.
func (s *SessionService) Create(ctx context.Context) (*SessionView, error) {
	sess := &session{
		id:           uuid.NewString(),
		step:         StepGreeting,
		lastActivity: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	metrics.SessionOpened()
	metrics.StepReached(string(StepGreeting))
	log.Info().Str("session_id", sess.id).Msg("session created")

	return s.view(sess), nil
}

// Get returns a session snapshot.
func (s *SessionService) Get(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// Advance moves a session from the greeting to the name step.
func (s *SessionService) Advance(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.step != StepGreeting {
		sess.mu.Unlock()
		return nil, ErrInvalidStep
	}
	sess.step = StepName
	sess.lastActivity = s.now()
	sess.mu.Unlock()

	metrics.StepReached(string(StepName))
	return s.view(sess), nil
}

// SubmitName stores the trimmed display name and moves on to the upload step.
func (s *SessionService) SubmitName(ctx context.Context, id, name string) (*SessionView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidRequest
	}
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.step != StepName {
		sess.mu.Unlock()
		return nil, ErrInvalidStep
	}
	sess.userName = name
	sess.step = StepUpload
	sess.lastActivity = s.now()
	sess.mu.Unlock()

	metrics.StepReached(string(StepUpload))
	log.Info().Str("session_id", id).Str("user_name", name).Msg("name submitted")
	return s.view(sess), nil
}

// UploadScreenshot accepts any image and starts the validation delay, after
// which the session reaches the wheel.
func (s *SessionService) UploadScreenshot(ctx context.Context, id, filename string, data []byte) (*SessionView, error) {
	if len(data) == 0 {
		return nil, ErrInvalidRequest
	}
	if s.opts.MaxUploadBytes > 0 && int64(len(data)) > s.opts.MaxUploadBytes {
		return nil, ErrUploadTooLarge
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrNotAnImage
	}

	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.step != StepUpload {
		sess.mu.Unlock()
		return nil, ErrInvalidStep
	}
	sess.screenshot = &Screenshot{Filename: filename, MIME: mtype.String(), Size: len(data)}
	sess.step = StepValidating
	sess.lastActivity = s.now()
	sess.validation = s.sched.AfterFunc(s.opts.ValidationDelay, func() { s.finishValidation(sess) })
	sess.mu.Unlock()

	metrics.StepReached(string(StepValidating))
	log.Info().
		Str("session_id", id).
		Str("mime", mtype.String()).
		Int("size", len(data)).
		Msg("screenshot accepted")
	return s.view(sess), nil
}

func (s *SessionService) finishValidation(sess *session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed || sess.step != StepValidating {
		return
	}
	w, err := s.newWheel(sess)
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.id).Msg("failed to build wheel")
		sess.screenshot = nil
		sess.step = StepUpload
		return
	}
	sess.validation = nil
	sess.wheel = w
	sess.step = StepSpin
	metrics.StepReached(string(StepSpin))
	log.Info().Str("session_id", sess.id).Msg("screenshot validated")
}

func (s *SessionService) newWheel(sess *session) (*wheel.Wheel, error) {
	seed := uint64(0)
	if s.opts.Seed != 0 {
		seed = s.opts.Seed + s.seeds.Add(1)
	}
	return wheel.New(s.opts.Catalog,
		wheel.WithScheduler(s.sched),
		wheel.WithRand(wheel.NewRand(seed)),
		wheel.WithTimings(s.opts.Timings),
		wheel.WithRotationRange(s.opts.Rotations),
		wheel.OnTransition(func(from, to wheel.Phase) {
			metrics.ObserveTransition(string(from), string(to))
			log.Debug().
				Str("session_id", sess.id).
				Str("from", string(from)).
				Str("phase", string(to)).
				Msg("wheel transition")
		}),
		wheel.OnSettle(func(entry model.PrizeEntry, st wheel.SpinState) {
			s.recordAward(sess, entry, st)
		}),
		wheel.OnRestart(func() {
			s.backToStart(sess)
		}),
	)
}

// recordAward is best-effort: a ledger failure never affects the wheel.
func (s *SessionService) recordAward(sess *session, entry model.PrizeEntry, st wheel.SpinState) {
	sess.mu.Lock()
	award := &model.Award{
		SessionID:       sess.id,
		UserName:        sess.userName,
		Code:            entry.Code,
		DiscountLabel:   entry.DiscountLabel,
		RotationDegrees: st.RotationDegrees,
	}
	sess.mu.Unlock()

	metrics.ObserveAward(entry.Code)

	ctx, cancel := context.WithTimeout(context.Background(), awardWriteTimeout)
	defer cancel()
	if err := s.recorder.Insert(ctx, award); err != nil {
		metrics.AwardRecordFailed()
		log.Error().
			Err(err).
			Str("session_id", award.SessionID).
			Str("code", award.Code).
			Msg("failed to record award")
		return
	}
	log.Info().
		Str("session_id", award.SessionID).
		Str("user_name", award.UserName).
		Str("code", award.Code).
		Float64("rotation", award.RotationDegrees).
		Msg("prize revealed")
}

// backToStart is the wheel's play-again callback: the wizard starts over.
func (s *SessionService) backToStart(sess *session) {
	sess.mu.Lock()
	w := sess.wheel
	sess.wheel = nil
	sess.userName = ""
	sess.screenshot = nil
	sess.step = StepGreeting
	sess.lastActivity = s.now()
	sess.mu.Unlock()

	if w != nil {
		w.Close()
	}
	metrics.StepReached(string(StepGreeting))
	log.Info().Str("session_id", sess.id).Msg("session restarted")
}

// Spin starts the wheel.
func (s *SessionService) Spin(ctx context.Context, id string) (*SessionView, error) {
	w, sess, err := s.wheelOf(id)
	if err != nil {
		return nil, err
	}
	if !w.Spin() {
		if w.State().Phase == wheel.PhaseSettled {
			return nil, ErrAlreadySettled
		}
		return nil, ErrSpinInProgress
	}
	return s.view(sess), nil
}

// Restart plays again from a settled wheel. It is a no-op while the wheel is
// idle or the session is already back at the greeting.
func (s *SessionService) Restart(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	w := sess.wheel
	step := sess.step
	sess.lastActivity = s.now()
	sess.mu.Unlock()

	if w == nil {
		if step == StepGreeting {
			return s.view(sess), nil
		}
		return nil, ErrInvalidStep
	}
	if !w.Restart() {
		switch w.State().Phase {
		case wheel.PhaseAnticipating, wheel.PhaseSpinning:
			return nil, ErrSpinInProgress
		}
	}
	return s.view(sess), nil
}

// Delete drops a session and stops its timers.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.closeSession(sess)
	log.Info().Str("session_id", id).Msg("session deleted")
	return nil
}

// CleanUpInactive drops sessions idle for longer than ttl and returns how many were dropped.
func (s *SessionService) CleanUpInactive(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	var expired []*session
	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastActivity.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.closeSession(sess)
	}
	return len(expired)
}

// RunJanitor calls CleanUpInactive every interval until ctx is done.
func (s *SessionService) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.CleanUpInactive(ttl); n > 0 {
				log.Info().Int("removed", n).Msg("cleaned up inactive sessions")
			}
		}
	}
}

// Close stops every session.
func (s *SessionService) Close() {
	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		s.closeSession(sess)
	}
}

// Len reports the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionService) closeSession(sess *session) {
	sess.mu.Lock()
	sess.closed = true
	if sess.validation != nil {
		sess.validation.Stop()
		sess.validation = nil
	}
	w := sess.wheel
	sess.wheel = nil
	sess.mu.Unlock()

	if w != nil {
		w.Close()
	}
	metrics.SessionClosed()
}

func (s *SessionService) get(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionService) wheelOf(id string) (*wheel.Wheel, *session, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.step != StepSpin || sess.wheel == nil {
		return nil, nil, ErrInvalidStep
	}
	sess.lastActivity = s.now()
	return sess.wheel, sess, nil
}

func (s *SessionService) view(sess *session) *SessionView {
	sess.mu.Lock()
	v := &SessionView{
		ID:       sess.id,
		Step:     sess.step,
		UserName: sess.userName,
	}
	if sess.screenshot != nil {
		shot := *sess.screenshot
		v.Screenshot = &shot
	}
	w := sess.wheel
	sess.mu.Unlock()

	if w != nil {
		st := w.State()
		v.Wheel = &st
	}
	v.Message = message(v)
	return v
}

func message(v *SessionView) string {
	switch v.Step {
	case StepGreeting:
		return "Welcome! Ready to win an exclusive discount code?"
	case StepName:
		return "What should we call you?"
	case StepUpload:
		return fmt.Sprintf("Hey %s! Upload a screenshot to continue.", v.UserName)
	case StepValidating:
		return "Validating your screenshot..."
	}
	if v.Wheel == nil {
		return ""
	}
	switch v.Wheel.Phase {
	case wheel.PhaseAnticipating:
		return fmt.Sprintf("Ready %s?", v.UserName)
	case wheel.PhaseSpinning:
		return fmt.Sprintf("Good luck, %s!", v.UserName)
	case wheel.PhaseSettled:
		if v.Wheel.Winner != nil {
			return fmt.Sprintf("Congratulations %s! You won %s: %s", v.UserName, v.Wheel.Winner.Code, v.Wheel.Winner.DiscountLabel)
		}
	}
	return fmt.Sprintf("Spin the wheel to get your discount code, %s!", v.UserName)
}
