package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/Dosada05/pokernow/lock"
	"github.com/Dosada05/pokernow/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type jsonResponse map[string]interface{}

const maxBodyBytes = 1_048_576

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBodyBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// readValidJSON decodes the body into dst and runs its validate tags.
// Failures are already rendered when it returns false.
func readValidJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := readJSON(w, r, dst); err != nil {
		badRequestResponse(w, r, err)
		return false
	}
	if err := validateStruct(dst); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return false
	}
	return true
}

// fieldErrors is a failed struct validation keyed by JSON field path.
type fieldErrors struct {
	err    error
	fields map[string]string
}

func (e *fieldErrors) Error() string {
	parts := make([]string, 0, len(e.fields))
	for field, msg := range e.fields {
		parts = append(parts, field+" "+msg)
	}
	return fmt.Sprintf("%s: %s", e.err, strings.Join(parts, "; "))
}

func (e *fieldErrors) Unwrap() error { return e.err }

func validateStruct(dst interface{}) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := &fieldErrors{err: services.ErrValidationFailed, fields: make(map[string]string, len(verrs))}
	for _, v := range verrs {
		// Drop the top-level struct name from the namespace.
		field := v.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if strings.HasPrefix(field, "structure") {
			fe.err = services.ErrInvalidStructure
		}
		if v.Param() != "" {
			fe.fields[field] = fmt.Sprintf("failed %s=%s", v.Tag(), v.Param())
		} else {
			fe.fields[field] = "failed " + v.Tag()
		}
	}
	return fe
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, body jsonResponse) {
	if err := writeJSON(w, status, body, nil); err != nil {
		slog.Error("failed to write error response", slog.String("path", r.URL.Path), slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	errorResponse(w, r, http.StatusInternalServerError, jsonResponse{
		"error": "the server encountered a problem and could not process your request",
		"kind":  "Internal",
	})
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, jsonResponse{"error": err.Error(), "kind": "ValidationFailed"})
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, jsonResponse{"error": message, "kind": "Unauthorized"})
}

func urlParam(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		return "", fmt.Errorf("missing %s in URL", name)
	}
	return v, nil
}

// mapServiceErrorToHTTP renders a service error as {error, kind, entity, id}.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrAlreadySeated),
		errors.Is(err, services.ErrTableUnavailable),
		errors.Is(err, services.ErrTableFull),
		errors.Is(err, services.ErrSeatTaken),
		errors.Is(err, services.ErrTableNameTaken):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidStructure),
		errors.Is(err, services.ErrValidationFailed):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrAuthenticationFailed):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbiddenOperation):
		status = http.StatusForbidden
	case errors.Is(err, lock.ErrLockTimeout):
		w.Header().Set("Retry-After", "1")
		errorResponse(w, r, http.StatusServiceUnavailable, jsonResponse{"error": "resource is busy, retry shortly", "kind": "Busy"})
		return
	default:
		serverErrorResponse(w, r, err)
		return
	}

	body := jsonResponse{"error": err.Error(), "kind": services.Kind(err)}
	var entityErr *services.EntityError
	if errors.As(err, &entityErr) {
		body["entity"] = entityErr.Entity
		body["id"] = entityErr.ID
	}
	var fe *fieldErrors
	if errors.As(err, &fe) {
		body["fields"] = fe.fields
	}
	errorResponse(w, r, status, body)
}
