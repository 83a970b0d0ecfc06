package ingest

import "github.com/robinjoseph08/golib/logger"

// Sink receives the advisory progress stream of an ingest. Messages must
// not be parsed for control flow.
type Sink interface {
	Info(msg string, data logger.Data)
	Warn(msg string, data logger.Data)
	Error(msg string, err error, data logger.Data)
	Success(msg string, data logger.Data)
	Progress(msg string, data logger.Data)
}

// LoggerSink adapts a process logger into a Sink for one-shot CLI ingests,
// where there is no job to persist the stream to.
type LoggerSink struct {
	Log logger.Logger
}

func (s LoggerSink) Info(msg string, data logger.Data)    { s.Log.Info(msg, data) }
func (s LoggerSink) Warn(msg string, data logger.Data)    { s.Log.Warn(msg, data) }
func (s LoggerSink) Success(msg string, data logger.Data) { s.Log.Info(msg, data) }
func (s LoggerSink) Progress(msg string, data logger.Data) {
	s.Log.Info(msg, data)
}

func (s LoggerSink) Error(msg string, err error, data logger.Data) {
	s.Log.Err(err).Error(msg, data)
}
