package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
)

// maxBodyBytes caps decoded request bodies.
const maxBodyBytes = 64 * 1024

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	// Request is the underlying http.Request.
	*http.Request
}

// GetParam reads a path parameter from the request context (as stored by httprouter).
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// GetQueryBool parses a boolean query value. A missing value is false.
func (r *Request) GetQueryBool(key string) (bool, error) {
	queryValue := r.GetQuery(key)
	if queryValue == "" {
		return false, nil
	}

	value, err := strconv.ParseBool(queryValue)
	if err != nil {
		return false, goerror.NewInvalidFormat("Invalid query " + key)
	}

	return value, nil
}

// DecodeBody decodes a single JSON object from the body into dst.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}
