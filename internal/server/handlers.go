package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tournevent/upsbridge/pkg/shipper"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Error codes produced by the bridge itself.
const (
	codeCarrierNotFound = "CARRIER_NOT_FOUND"
	codeInternal        = "INTERNAL_ERROR"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Errors []apiError `json:"errors"`
}

type ratesResponse struct {
	Quotes []*shipper.RateQuote `json:"quotes"`
	Errors []apiError           `json:"errors,omitempty"`
}

type estimatesResponse struct {
	Estimates []shipper.DeliveryEstimate `json:"estimates"`
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	var req shipper.RateRequest
	if !s.decode(w, r, &req) {
		return
	}

	start := time.Now()
	quotes, errs := s.registry.RetrieveRates(r.Context(), &req, r.URL.Query()["carrier"])
	for _, err := range errs {
		s.metrics.RecordError("all", errorCode(err))
	}

	if len(quotes) == 0 && len(errs) > 0 {
		s.metrics.RecordRequest("retrieve_rates", "all", "error", time.Since(start).Seconds())
		s.writeError(w, r, errs[0])
		return
	}
	s.metrics.RecordRequest("retrieve_rates", "all", "success", time.Since(start).Seconds())
	for _, quote := range quotes {
		s.metrics.RecordQuote(quote.Carrier, quote.ServiceCode, quote.AmountCents)
	}

	resp := ratesResponse{Quotes: quotes}
	for _, err := range errs {
		resp.Errors = append(resp.Errors, apiError{Code: errorCode(err), Message: err.Error()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}

	start := time.Now()
	session, err := carrier.Authenticate(r.Context())
	if s.observe(w, r, "authenticate", carrier.Name(), start, err) {
		writeJSON(w, http.StatusOK, session)
	}
}

func (s *Server) handleRetrieveRate(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}
	var req shipper.RateRequest
	if !s.decode(w, r, &req) {
		return
	}

	start := time.Now()
	quote, err := carrier.RetrieveRate(r.Context(), &req)
	if s.observe(w, r, "retrieve_rate", carrier.Name(), start, err) {
		s.metrics.RecordQuote(quote.Carrier, quote.ServiceCode, quote.AmountCents)
		writeJSON(w, http.StatusOK, quote)
	}
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}
	var req shipper.ShipmentRequest
	if !s.decode(w, r, &req) {
		return
	}

	start := time.Now()
	result, err := carrier.CreateShipment(r.Context(), &req)
	if s.observe(w, r, "create_shipment", carrier.Name(), start, err) {
		writeJSON(w, http.StatusCreated, result)
	}
}

func (s *Server) handleCreateReturn(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}
	var req shipper.ShipmentRequest
	if !s.decode(w, r, &req) {
		return
	}

	start := time.Now()
	result, err := carrier.CreateReturn(r.Context(), &req)
	if s.observe(w, r, "create_return", carrier.Name(), start, err) {
		writeJSON(w, http.StatusCreated, result)
	}
}

func (s *Server) handleValidateAddress(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}
	var req shipper.AddressValidationRequest
	if !s.decode(w, r, &req) {
		return
	}

	start := time.Now()
	raw, err := carrier.ValidateAddress(r.Context(), &req)
	if s.observe(w, r, "validate_address", carrier.Name(), start, err) {
		writeRaw(w, raw)
	}
}

func (s *Server) handleTrackPackage(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}

	start := time.Now()
	raw, err := carrier.TrackPackage(r.Context(), r.PathValue("trackingNumber"), r.Header.Get("X-Transaction-Id"))
	if s.observe(w, r, "track_package", carrier.Name(), start, err) {
		writeRaw(w, raw)
	}
}

func (s *Server) handleEstimateDeliveryDate(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}
	var req shipper.DeliveryEstimateRequest
	if !s.decode(w, r, &req) {
		return
	}

	start := time.Now()
	estimates, err := carrier.EstimateDeliveryDate(r.Context(), &req)
	if s.observe(w, r, "estimate_delivery_date", carrier.Name(), start, err) {
		if estimates == nil {
			estimates = []shipper.DeliveryEstimate{}
		}
		writeJSON(w, http.StatusOK, estimatesResponse{Estimates: estimates})
	}
}

// ============================================================================
// Helpers
// ============================================================================

func (s *Server) carrier(w http.ResponseWriter, r *http.Request) (shipper.Shipper, bool) {
	carrier, err := s.registry.Get(r.PathValue("carrier"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return carrier, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Ctx(r.Context()).Debug("Rejected request body", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Errors: []apiError{{Code: shipper.CodeInvalidRequest, Message: fmt.Sprintf("invalid JSON: %v", err)}},
		})
		return false
	}
	return true
}

// observe records metrics for a finished carrier call and writes the error
// response when err is set. It reports whether the caller should write a
// success response.
func (s *Server) observe(w http.ResponseWriter, r *http.Request, operation, carrier string, start time.Time, err error) bool {
	duration := time.Since(start).Seconds()
	if err != nil {
		s.metrics.RecordRequest(operation, carrier, "error", duration)
		s.metrics.RecordError(carrier, errorCode(err))
		s.writeError(w, r, err)
		return false
	}
	s.metrics.RecordRequest(operation, carrier, "success", duration)
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Ctx(r.Context()).Warn("Carrier request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{
		Errors: []apiError{{Code: errorCode(err), Message: err.Error()}},
	})
}

func errorCode(err error) string {
	var shipperErr *shipper.ShipperError
	switch {
	case errors.Is(err, shipper.ErrCarrierNotFound):
		return codeCarrierNotFound
	case errors.As(err, &shipperErr):
		return shipperErr.Code
	default:
		return codeInternal
	}
}

// statusFor maps an error to the HTTP status returned to the caller.
// Carrier 4xx statuses are passed through; other carrier failures are 502.
func statusFor(err error) int {
	var shipperErr *shipper.ShipperError
	switch {
	case errors.Is(err, shipper.ErrCarrierNotFound):
		return http.StatusNotFound
	case errors.As(err, &shipperErr):
		switch shipperErr.Code {
		case shipper.CodeInvalidRequest:
			return http.StatusBadRequest
		case shipper.CodeNoMatchingRate:
			return http.StatusUnprocessableEntity
		case shipper.CodeAuth:
			return http.StatusBadGateway
		case shipper.CodeTransport:
			return http.StatusBadGateway
		}
		if shipperErr.StatusCode >= 400 && shipperErr.StatusCode < 500 {
			return shipperErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
