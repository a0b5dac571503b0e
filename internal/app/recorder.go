package app

import (
	"context"
	"log/slog"

	"go.aimuz.me/camrec/catalog"
	"go.aimuz.me/camrec/recorder"
)

// tickSource is the produced stream of a recorder.
type tickSource interface {
	Frames() <-chan recorder.Tick
	Errors() <-chan error
}

// forwardEvents turns recorder output into control-surface events until ctx
// is done. volume reports the level after a command was applied.
func forwardEvents(ctx context.Context, src tickSource, emit func(name string, data any), volume func() float64) {
	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-src.Frames():
			if tick.Control == nil {
				continue
			}
			emit(EventControl, ControlEvent{
				Label:  string(tick.Control.Label),
				Value:  tick.Control.Value,
				Volume: volume(),
			})
		case err := <-src.Errors():
			slog.Error("recording error", "error", err)
			emit(EventRecordingError, errorEvent(err))
		}
	}
}

func errorEvent(err error) ErrorEvent {
	code := recorder.CodeOf(err)
	return ErrorEvent{
		Code:    int(code),
		Kind:    code.String(),
		Message: err.Error(),
	}
}

// recordFromResult converts a finished session into a catalog record.
func recordFromResult(res recorder.Result) catalog.Record {
	r := catalog.Record{
		ID:             res.SessionID,
		StartedAt:      res.StartedAt,
		StoppedAt:      res.StoppedAt,
		Output:         res.Output,
		Frames:         res.Frames,
		AudioChunks:    res.AudioChunks,
		RepeatedFrames: res.RepeatedFrames,
		Status:         catalog.StatusOK,
	}
	if res.Err != nil {
		r.ErrorCode = int(recorder.CodeOf(res.Err))
		r.Error = res.Err.Error()
		r.Status = catalog.StatusIOError
	}
	if res.Output == "" {
		r.Status = catalog.StatusMuxFailed
	}
	return r
}
