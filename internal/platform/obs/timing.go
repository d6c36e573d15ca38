package obs

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Recorder receives every timed operation, e.g. to feed a latency histogram.
type Recorder func(op string, d time.Duration, err error)

var recorder atomic.Pointer[Recorder]

// SetRecorder installs r for all subsequent Time calls. nil removes it.
func SetRecorder(r Recorder) {
	if r == nil {
		recorder.Store(nil)
		return
	}
	recorder.Store(&r)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Time logs the duration of an operation. Use as
//
//	defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		var err error
		if errp != nil {
			err = *errp
		}
		if r := recorder.Load(); r != nil {
			(*r)(name, dur, err)
		}

		if err != nil {
			log.Printf("req_id=%s op=%s dur=%dms err=%v", reqID, name, dur.Milliseconds(), err)
			return
		}
		log.Printf("req_id=%s op=%s dur=%dms", reqID, name, dur.Milliseconds())
	}
}
