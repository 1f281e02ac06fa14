package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/prasetyowira/qrlink/constant"
	appLogger "github.com/prasetyowira/qrlink/infrastructure/logger"
)

// maxRequestIDLength caps caller supplied request IDs
const maxRequestIDLength = 64

// RequestLogger is middleware that adds request ID to the context and logs request/response info.
// A well-formed X-Request-ID from the caller is reused, otherwise a new UUID is issued.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constant.HeaderRequestID)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.New().String()
			}

			ctx := appLogger.WithRequestID(r.Context(), requestID)
			w.Header().Set(constant.HeaderRequestID, requestID)

			appLogger.CtxInfo(ctx, constant.MsgRequestReceived, appLogger.LoggerInfo{
				ContextFunction: constant.CtxAPI,
				Data: map[string]interface{}{
					constant.DataMethod:     r.Method,
					constant.DataPath:       r.URL.Path,
					constant.DataRemoteAddr: r.RemoteAddr,
					constant.DataUserAgent:  r.UserAgent(),
				},
			})

			ww := newStatusResponseWriter(w)

			startTime := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))
			latency := time.Since(startTime)

			statusCode := ww.status
			logFunc := appLogger.CtxInfo

			if statusCode >= 400 && statusCode < 500 {
				logFunc = appLogger.CtxWarn
			} else if statusCode >= 500 {
				logFunc = appLogger.CtxError
			}

			logFunc(ctx, constant.MsgRequestCompleted, appLogger.LoggerInfo{
				ContextFunction: constant.CtxAPI,
				Data: map[string]interface{}{
					constant.DataStatus:  statusCode,
					constant.DataLatency: latency.String(),
					constant.DataMethod:  r.Method,
					constant.DataPath:    r.URL.Path,
					constant.DataSize:    ww.size,
				},
			})
		})
	}
}

// statusResponseWriter is a custom response writer that captures the status code and response size
type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

// newStatusResponseWriter creates a new statusResponseWriter
func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

// WriteHeader captures the first status code written
func (w *statusResponseWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Write captures the response size
func (w *statusResponseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	size, err := w.ResponseWriter.Write(b)
	w.size += size
	return size, err
}

// Unwrap exposes the underlying writer to http.ResponseController
func (w *statusResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
