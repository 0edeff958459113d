package httputil

import (
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	gojson "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// HTTPStatusCodeTag is the name of the HTTP status code tag.
const HTTPStatusCodeTag = "http.response.status_code"

// SetHTTPStatusCodeTag tags a transaction with the status code of the
// response it served.
func SetHTTPStatusCodeTag(e *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint == nil || hint.Response == nil {
		return e
	}
	if e.Tags == nil {
		e.Tags = make(map[string]string)
	}
	if _, exists := e.Tags[HTTPStatusCodeTag]; !exists {
		e.Tags[HTTPStatusCodeTag] = strconv.Itoa(hint.Response.StatusCode)
	}
	return e
}

// WriteJSON encodes v as the response body. Encoding errors are reported to
// the request's hub and turn into a 500.
func WriteJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	b, err := gojson.Marshal(v)
	if err != nil {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
		log.Err(err).Str("path", r.URL.Path).Msg("can't encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// WriteText writes s as a plain text body.
func WriteText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s))
}
