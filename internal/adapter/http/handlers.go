package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/couchcryptid/impact-sim-service/internal/simulator"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxBodyBytes = 1 << 20

// apiFunc handles one API call and returns the payload for the data field.
type apiFunc func(r *http.Request) (any, error)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handle mounts fn under pattern, wrapping it with a server span, the JSON
// envelope, error mapping, and request metrics.
func (s *Server) handle(mux *http.ServeMux, pattern string, fn apiFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		ctx, span := observability.StartServerSpan(r.Context(), r.Header, pattern,
			attribute.String("http.method", r.Method),
			attribute.String("http.route", pattern),
		)
		defer span.End()

		data, err := fn(r.WithContext(ctx))
		status := http.StatusOK
		body := envelope{Success: true, Data: data}
		if err != nil {
			status = statusFor(err)
			body = envelope{Error: publicMessage(status, err)}
			span.RecordError(err)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, err.Error())
				s.logger.Error("request failed", "route", pattern, "status", status, "error", err)
			}
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		s.metrics.HTTPRequests.WithLabelValues(pattern, strconv.Itoa(status)).Inc()
		sharedobs.WriteJSON(w, status, body)
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch simulator.ErrorKind(err) {
	case "invalid", "missing_data":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "upstream":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(status int, err error) string {
	switch status {
	case http.StatusBadGateway:
		return "upstream service unavailable"
	case http.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.ParameterError{Field: "body", Reason: "request body is required"}
		}
		return &domain.ParameterError{Field: "body", Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, &domain.ParameterError{Field: key, Reason: "is required"}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &domain.ParameterError{Field: key, Reason: fmt.Sprintf("must be a number, got %q", v)}
	}
	return f, nil
}

func (s *Server) handleSimulate(r *http.Request) (any, error) {
	var req simulator.Request
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return s.svc.Simulate(r.Context(), req)
}

func (s *Server) handleSimulateAsteroid(r *http.Request) (any, error) {
	var req simulator.Request
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return s.svc.SimulateAsteroid(r.Context(), r.PathValue("id"), req)
}

func (s *Server) handleEnvironment(r *http.Request) (any, error) {
	var req simulator.EnvironmentRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return s.svc.Environment(r.Context(), req)
}

func (s *Server) handleZones(r *http.Request) (any, error) {
	var req simulator.Request
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return s.svc.Zones(r.Context(), req)
}

func (s *Server) handleAffectedPlaces(r *http.Request) (any, error) {
	var req simulator.Request
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return s.svc.AffectedPlaces(r.Context(), req)
}

func (s *Server) handleNearEarth(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.svc.NearEarth(r.Context(), q.Get("start_date"), q.Get("end_date"))
}

func (s *Server) handleAsteroid(r *http.Request) (any, error) {
	return s.svc.Asteroid(r.Context(), r.PathValue("id"))
}

func (s *Server) handleApproach(r *http.Request) (any, error) {
	return s.svc.Approach(r.Context(), r.PathValue("id"))
}

func (s *Server) handleGeocode(r *http.Request) (any, error) {
	return s.svc.Geocode(r.Context(), r.URL.Query().Get("address"))
}

func (s *Server) handleReverseGeocode(r *http.Request) (any, error) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		return nil, err
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		return nil, err
	}
	return s.svc.Locate(r.Context(), lat, lon)
}
