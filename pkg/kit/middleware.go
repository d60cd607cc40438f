package kit

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type logFieldsKey struct{}

// LogFields is a mutable bag handlers can fill with fields for the access log line.
type LogFields struct {
	fields []zap.Field
}

func (f *LogFields) Add(fields ...zap.Field) {
	if f == nil {
		return
	}
	f.fields = append(f.fields, fields...)
}

// AccessLogFields returns the bag attached by Logging, or nil outside of it.
func AccessLogFields(ctx context.Context) *LogFields {
	f, _ := ctx.Value(logFieldsKey{}).(*LogFields)
	return f
}

func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}

func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			extra := &LogFields{}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), logFieldsKey{}, extra)))

			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			}
			log.Info("request", append(fields, extra.fields...)...)
		})
	}
}
