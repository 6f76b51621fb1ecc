package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/gouvernance-ai/gouvernance/internal/view"
)

// FaultObserver counts recovered render faults.
type FaultObserver interface {
	ObserveRenderFault()
}

// Supervise recovers panics raised inside a route subtree and renders the
// error page with a link reloading the current URL. Responses that were
// already started are left as they are.
func Supervise(pages *view.Pages, observer FaultObserver, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracked := &trackingWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("render fault",
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("panic", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())))
				if observer != nil {
					observer.ObserveRenderFault()
				}
				if tracked.wroteHeader {
					return
				}
				pages.Render(w, r, view.Page{
					Status: http.StatusInternalServerError,
					Name:   "pages/error.html",
					Title:  "Erreur",
				})
			}()
			next.ServeHTTP(tracked, r)
		})
	}
}

type trackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *trackingWriter) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
