package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriter_DefaultStatus(t *testing.T) {
	t.Parallel()

	rw := newResponseWriter(httptest.NewRecorder())

	if rw.statusCode != http.StatusOK {
		t.Errorf("default statusCode = %d, want %d", rw.statusCode, http.StatusOK)
	}
}

func TestResponseWriter_RecordsStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusUnprocessableEntity)

	if rw.statusCode != http.StatusUnprocessableEntity {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusUnprocessableEntity)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("recorder Code = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestResponseWriter_SecondWriteHeaderIgnored(t *testing.T) {
	t.Parallel()

	rw := newResponseWriter(httptest.NewRecorder())

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusConflict)

	if rw.statusCode != http.StatusCreated {
		t.Errorf("statusCode = %d, want %d (first call wins)", rw.statusCode, http.StatusCreated)
	}
}

func TestResponseWriter_CountsBytes(t *testing.T) {
	t.Parallel()

	rw := newResponseWriter(httptest.NewRecorder())

	if _, err := rw.Write([]byte(`{"id":`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := rw.Write([]byte(`"task-1"}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if rw.bytes != 15 {
		t.Errorf("bytes = %d, want 15", rw.bytes)
	}
	if !rw.wroteHeader {
		t.Error("wroteHeader = false after Write, want true")
	}
}

func TestResponseWriter_Unwrap(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	if rw.Unwrap() != rec {
		t.Error("Unwrap() did not return the underlying writer")
	}
}
