package usecase

import (
	"context"
	"fmt"
	"time"

	"GoldDesk/internal/domain/models"
	drepo "GoldDesk/internal/domain/repository"
	"GoldDesk/internal/services/killzone"
	"GoldDesk/pkg/logger"
)

// Broadcaster fans a fresh signal out to live subscribers. The websocket
// hub implements it; a nil broadcaster disables fan-out.
type Broadcaster interface {
	BroadcastSignal(s *models.Signal)
}

// KillzoneStatus is the live session state returned by the status endpoint.
type KillzoneStatus struct {
	At        time.Time        `json:"at"`
	DayKey    string           `json:"day_key"`
	InSession bool             `json:"in_session"`
	Window    string           `json:"window,omitempty"`
	Direction models.Direction `json:"direction"`
	Issued    int              `json:"issued"`
	Quota     int              `json:"quota"`
	Windows   []WindowStatus   `json:"windows"`
	Policy    PolicyStatus     `json:"policy"`
}

// WindowStatus is one configured window with its issuance count for the day.
type WindowStatus struct {
	Window    string           `json:"window"`
	Direction models.Direction `json:"direction"`
	Issued    int              `json:"issued"`
}

// PolicyStatus echoes the engine's configured stop bands.
type PolicyStatus struct {
	StopMin        float64 `json:"stop_min"`
	StopMax        float64 `json:"stop_max"`
	TightStopLimit float64 `json:"tight_stop_limit"`
	MinRejection   float64 `json:"min_rejection"`
}

// SignalUsecase drives the kill-zone engine: live ticks from the collector
// and explicit analyze requests share the same engine and quota state.
type SignalUsecase struct {
	engine    *killzone.Engine
	metrics   drepo.Metrics
	log       *logger.Logger
	broadcast Broadcaster

	// rolling intraday extremes for structural stop placement
	recent *recentRange
}

func NewSignalUsecase(engine *killzone.Engine, metrics drepo.Metrics, log *logger.Logger, broadcast Broadcaster) *SignalUsecase {
	return &SignalUsecase{
		engine:    engine,
		metrics:   metrics,
		log:       log,
		broadcast: broadcast,
		recent:    newRecentRange(h3Candles),
	}
}

// Analyze evaluates one explicit tick. Nil signal means no setup.
func (u *SignalUsecase) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.Signal, error) {
	at := time.Now()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			return nil, fmt.Errorf("parse at: %w", err)
		}
		at = parsed
	}

	force := models.DirectionNone
	if req.Force != "" {
		parsed, err := models.ParseDirection(req.Force)
		if err != nil {
			return nil, err
		}
		force = parsed
	}

	tick := killzone.Tick{
		Price:      req.Price,
		Candle:     req.Candle,
		RecentHigh: req.RecentHigh,
		RecentLow:  req.RecentLow,
		At:         at,
		DayKey:     req.DayKey,
		Force:      force,
		Step:       req.Step,
	}
	return u.analyze(tick)
}

// OnCandle feeds a live candle from the collector into the engine.
func (u *SignalUsecase) OnCandle(ctx context.Context, c models.Candle) {
	u.recent.push(c)
	high, low, ok := u.recent.extremes()
	if !ok {
		return
	}
	tick := killzone.Tick{
		Price:      c.Close,
		Candle:     c,
		RecentHigh: high,
		RecentLow:  low,
		At:         c.Time,
	}
	if _, err := u.analyze(tick); err != nil {
		u.log.Warn("live tick rejected", logger.Error(err))
	}
}

func (u *SignalUsecase) analyze(tick killzone.Tick) (*models.Signal, error) {
	sig, err := u.engine.Analyze(tick)
	if err != nil {
		u.metrics.RecordError("analyze")
		return nil, err
	}
	if sig == nil {
		return nil, nil
	}
	u.metrics.RecordSignalIssued(sig.Window, sig.Direction.String())
	u.log.Info("signal issued",
		logger.String("window", sig.Window),
		logger.String("direction", sig.Direction.String()),
		logger.Float64("entry", sig.Entry),
		logger.Float64("stop", sig.Stop))
	if u.broadcast != nil {
		u.broadcast.BroadcastSignal(sig)
	}
	return sig, nil
}

// Status reports the session state at t.
func (u *SignalUsecase) Status(t time.Time) KillzoneStatus {
	state := u.engine.State()
	ecfg := u.engine.Config()
	st := KillzoneStatus{
		At:        t,
		DayKey:    state.DayKey(t),
		Direction: models.DirectionNone,
		Quota:     state.Config().Quota,
		Policy: PolicyStatus{
			StopMin:        ecfg.StopMin,
			StopMax:        ecfg.StopMax,
			TightStopLimit: ecfg.TightStopLimit,
			MinRejection:   ecfg.MinRejection,
		},
	}
	for _, w := range state.Config().Windows {
		st.Windows = append(st.Windows, WindowStatus{
			Window:    w.Label(),
			Direction: w.Direction,
			Issued:    state.Issued(st.DayKey, w.Label()),
		})
	}
	label, dir, ok := state.ActiveWindow(t)
	if !ok {
		return st
	}
	st.InSession = true
	st.Window = label
	st.Direction = dir
	st.Issued = state.Issued(st.DayKey, label)
	return st
}

// recentRange keeps the last n candles for high/low extraction.
type recentRange struct {
	buf  []models.Candle
	next int
	full bool
}

func newRecentRange(n int) *recentRange {
	return &recentRange{buf: make([]models.Candle, n)}
}

func (r *recentRange) push(c models.Candle) {
	r.buf[r.next] = c
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

func (r *recentRange) extremes() (high, low float64, ok bool) {
	n := r.next
	if r.full {
		n = len(r.buf)
	}
	if n == 0 {
		return 0, 0, false
	}
	high, low = r.buf[0].High, r.buf[0].Low
	for _, c := range r.buf[1:n] {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	return high, low, true
}
