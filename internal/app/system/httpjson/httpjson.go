// internal/app/system/httpjson/httpjson.go
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/taskhive/internal/app/system/apierror"
)

// MaxBodyBytes caps request bodies; every endpoint here takes small JSON
// documents.
const MaxBodyBytes = 1 << 20 // 1 MiB

// Decode reads the request body into dst, rejecting unknown fields and
// oversized bodies. Returns a validation error suitable for Respond.
func Decode(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierror.Validation("request body is required")
		}
		return apierror.Validation("invalid request body")
	}
	// A second value means trailing garbage after the JSON document.
	if dec.More() {
		return apierror.Validation("invalid request body")
	}
	return nil
}

// envelope is the success wrapper: {"success":true,"data":...}.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// Write renders data inside the success envelope with the given status.
func Write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// OK renders data with 200.
func OK(w http.ResponseWriter, data any) {
	Write(w, http.StatusOK, data)
}

// Created renders data with 201.
func Created(w http.ResponseWriter, data any) {
	Write(w, http.StatusCreated, data)
}

// NoData renders a bare success envelope with 200. Used by operations
// whose only result is the status (logout, mark-read, deletes).
func NoData(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{Success: true})
}
