package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/api"
	"github.com/Hufamily/ThirdEye-sub000/internal/metrics"
	"github.com/Hufamily/ThirdEye-sub000/track"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// TrackHandler owns the tracking WebSocket surface. Each connection is
// one session: inbound frames carry samples and control signals, outbound
// frames carry fired attention events and resolved search pushes.
type TrackHandler struct {
	sessions  *track.Manager
	collector *metrics.Collector
	logger    *zap.Logger

	mu    sync.RWMutex
	conns map[string]*trackConn
}

// trackConn serializes writes; the websocket does not allow concurrent
// writers.
type trackConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (tc *trackConn) writeFrame(ctx context.Context, frame *api.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.conn.Write(ctx, websocket.MessageText, data)
}

func NewTrackHandler(sessions *track.Manager, collector *metrics.Collector, logger *zap.Logger) *TrackHandler {
	return &TrackHandler{
		sessions:  sessions,
		collector: collector,
		logger:    logger,
		conns:     make(map[string]*trackConn),
	}
}

// HandleTrack serves GET /v1/track, upgrading to a WebSocket. The
// session ID comes from the session_id query parameter; a missing one
// gets a fresh UUID.
func (h *TrackHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}

	logger := h.logger.With(zap.String("session_id", sessionID))
	logger.Info("tracking session opened")

	tc := &trackConn{conn: conn}
	h.register(sessionID, tc)
	defer h.unregister(sessionID)

	ctx := r.Context()
	tracker := h.sessions.GetOrCreate(ctx, sessionID)
	if tracker == nil {
		// Raced shutdown: the manager is closed and issues no trackers.
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		logger.Info("tracking session rejected, manager closed")
		return
	}
	defer func() {
		h.sessions.CloseSession(sessionID)
		conn.Close(websocket.StatusNormalClosure, "session closed")
		logger.Info("tracking session closed")
		if h.collector != nil {
			h.collector.SetActiveSessions(h.sessions.Len())
		}
	}()
	if h.collector != nil {
		h.collector.SetActiveSessions(h.sessions.Len())
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var frame api.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.writeError(ctx, tc, types.ErrInvalidRequest, "malformed frame")
			continue
		}

		h.dispatch(ctx, tc, tracker, &frame, logger)
	}
}

func (h *TrackHandler) dispatch(ctx context.Context, tc *trackConn, tracker *track.Tracker, frame *api.Frame, logger *zap.Logger) {
	switch frame.Type {
	case api.FrameSample:
		if frame.Sample == nil {
			h.writeError(ctx, tc, types.ErrInvalidRequest, "sample frame without payload")
			return
		}
		s := frame.Sample
		source := s.Source
		if source == "" {
			source = types.SourcePointer
		}
		ts := s.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		tracker.OfferSample(types.AttentionPoint{
			X:         s.X,
			Y:         s.Y,
			Timestamp: ts,
			Source:    source,
		})
		if h.collector != nil {
			h.collector.RecordSample(string(source))
		}

	case api.FrameControl:
		if frame.Control == nil {
			h.writeError(ctx, tc, types.ErrInvalidRequest, "control frame without payload")
			return
		}
		h.applyControl(tracker, frame.Control, logger)

	default:
		h.writeError(ctx, tc, types.ErrInvalidRequest, "unknown frame type")
	}
}

func (h *TrackHandler) applyControl(tracker *track.Tracker, ctl *api.ControlFrame, logger *zap.Logger) {
	switch ctl.Action {
	case api.ControlScroll:
		tracker.NotifyScroll()
	case api.ControlOverlay:
		if ctl.Active {
			tracker.NotifyOverlayEnter()
		} else {
			tracker.NotifyOverlayLeave()
		}
	case api.ControlInputFocus:
		if ctl.Active {
			tracker.NotifyInputFocus()
		} else {
			tracker.NotifyInputBlur()
		}
	case api.ControlReset:
		tracker.Reset()
	default:
		logger.Debug("unknown control action", zap.String("action", ctl.Action))
	}
}

// PushEvent sends a fired attention event to the session's connection.
// It is safe to call from the tracker's dispatch goroutine; sessions
// without a live connection drop the event.
func (h *TrackHandler) PushEvent(ev types.AttentionEvent) {
	tc := h.lookup(ev.SessionID)
	if tc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frame := &api.Frame{
		Type: api.FrameEvent,
		Event: &api.EventFrame{
			X:           ev.X,
			Y:           ev.Y,
			TriggeredAt: ev.TriggeredAt,
			Epoch:       ev.Epoch,
		},
	}
	if err := tc.writeFrame(ctx, frame); err != nil {
		h.logger.Debug("event push failed",
			zap.String("session_id", ev.SessionID),
			zap.Error(err))
		return
	}
	if h.collector != nil {
		h.collector.RecordAttentionEvent()
	}
}

// PushSearch sends a resolved capture to the session's connection.
func (h *TrackHandler) PushSearch(sessionID string, frame *api.SearchFrame) {
	tc := h.lookup(sessionID)
	if tc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tc.writeFrame(ctx, &api.Frame{Type: api.FrameSearch, Search: frame}); err != nil {
		h.logger.Debug("search push failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

func (h *TrackHandler) writeError(ctx context.Context, tc *trackConn, code types.ErrorCode, message string) {
	frame := &api.Frame{
		Type: api.FrameError,
		Error: &api.ErrorFrame{
			Code:    string(code),
			Message: message,
		},
	}
	if err := tc.writeFrame(ctx, frame); err != nil {
		h.logger.Debug("error frame write failed", zap.Error(err))
	}
}

func (h *TrackHandler) register(sessionID string, tc *trackConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[sessionID] = tc
}

func (h *TrackHandler) unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, sessionID)
}

func (h *TrackHandler) lookup(sessionID string) *trackConn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[sessionID]
}
