package handlers

import (
	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/api"
)

// SearchSink receives the "search this text" events produced by resolved
// captures. The tracking handler implements it by pushing a search frame
// over the session's WebSocket; deployments without the tracking surface
// fall back to a log-only sink.
type SearchSink interface {
	PushSearch(sessionID string, frame *api.SearchFrame)
}

// LogSearchSink logs search events instead of delivering them.
type LogSearchSink struct {
	logger *zap.Logger
}

func NewLogSearchSink(logger *zap.Logger) *LogSearchSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSearchSink{logger: logger}
}

// PushSearch implements SearchSink.
func (s *LogSearchSink) PushSearch(sessionID string, frame *api.SearchFrame) {
	s.logger.Info("search event",
		zap.String("session_id", sessionID),
		zap.String("source", string(frame.TextSource)),
		zap.String("source_url", frame.SourceURL),
		zap.Int("query_length", len(frame.Query)),
	)
}
