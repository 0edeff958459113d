package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getsentry/sentry-go"
)

func TestSetHTTPStatusCodeTag(t *testing.T) {
	e := SetHTTPStatusCodeTag(&sentry.Event{}, &sentry.EventHint{Response: &http.Response{StatusCode: 404}})
	if e.Tags[HTTPStatusCodeTag] != "404" {
		t.Fatalf("expected the status code tag, got %v", e.Tags)
	}

	e = SetHTTPStatusCodeTag(&sentry.Event{Tags: map[string]string{HTTPStatusCodeTag: "200"}}, &sentry.EventHint{Response: &http.Response{StatusCode: 500}})
	if e.Tags[HTTPStatusCodeTag] != "200" {
		t.Fatalf("expected an existing tag to be kept, got %v", e.Tags)
	}

	if e := SetHTTPStatusCodeTag(&sentry.Event{}, &sentry.EventHint{}); e.Tags != nil {
		t.Fatalf("expected no tags without a response, got %v", e.Tags)
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	WriteJSON(w, r, map[string]int{"frames": 3})
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected response %d %v", w.Code, w.Header())
	}
	if w.Body.String() != `{"frames":3}` {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	WriteJSON(w, r, make(chan int))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected a 500 for an unencodable value, got %d", w.Code)
	}
}
