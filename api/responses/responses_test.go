package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &logs})

	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), logg, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Message != "bad input" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
	if body.Error.Details == nil {
		t.Fatalf("expected details in public payload")
	}
	if !strings.Contains(logs.String(), "request.rejected: VALIDATION_ERROR") {
		t.Fatalf("expected a warning log line, got %s", logs.String())
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), logger.Nop(), w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Message == "boom" {
		t.Fatalf("internal error message leaked to client")
	}
	if body.Error.Details != nil {
		t.Fatalf("internal errors must not expose details")
	}
}

func TestWriteMutationRedirectsFormPosts(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", strings.NewReader("item=flour"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	WriteMutation(w, r, http.StatusCreated, "/api/v1/inventory", map[string]int{"id": 1})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 but got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/inventory" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestWriteMutationAnswersJSONCallers(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", strings.NewReader("item=flour"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "text/html, application/json;q=0.9")
	w := httptest.NewRecorder()

	WriteMutation(w, r, http.StatusCreated, "/api/v1/inventory", map[string]int{"id": 1})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 but got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodDelete, "/api/v1/orders/REQ-1", nil)
	WriteMutation(w, r, http.StatusNoContent, "/api/v1/orders", nil)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", w.Code, w.Body.String())
	}
}

func TestWriteAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	WriteAttachment(w, "order-REQ 1.xlsx", "application/octet-stream", []byte("data"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="order-REQ 1.xlsx"` {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if w.Header().Get("Content-Length") != "4" || w.Body.String() != "data" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}
