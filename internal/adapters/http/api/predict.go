package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/medalcast/internal/domain/features"
	"github.com/okian/medalcast/internal/domain/prediction"
	"github.com/okian/medalcast/internal/domain/validate"
	"github.com/okian/medalcast/pkg/logger"
	"github.com/okian/medalcast/pkg/metrics"
)

// PredictHandler handles the prediction endpoints.
type PredictHandler struct {
	deps    Dependencies
	maxBody int64
	logger  logger.Logger
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps, maxBody: defaultMaxBodyBytes, logger: logger.Nop()}
}

// HandleAthlete handles POST /predict/athlete requests.
func (h *PredictHandler) HandleAthlete(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_athlete"
	in, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	resp, err := h.deps.PredictAthlete(r.Context(), in)
	if err != nil {
		h.writePredictionError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCountry handles POST /predict/country requests.
func (h *PredictHandler) HandleCountry(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_country"
	in, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	resp, err := h.deps.PredictCountry(r.Context(), in)
	if err != nil {
		h.writePredictionError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a single JSON object from the body. Numbers are kept as
// json.Number so integer checks see the literal the client sent.
func (h *PredictHandler) decode(w http.ResponseWriter, r *http.Request, op string) (map[string]any, bool) {
	if !h.deps.ModelsLoaded() {
		writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
		return nil, false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.UseNumber()
	var in map[string]any
	err := dec.Decode(&in)
	if err == nil && dec.Decode(&struct{}{}) != io.EOF {
		err = errors.New("unexpected data after JSON object")
	}
	if err == nil && in == nil {
		err = errors.New("request body must be a JSON object")
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrPayloadTooLarge, err))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return nil, false
	}
	return in, true
}

func (h *PredictHandler) writePredictionError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		metrics.RecordErrorByComponent("api", "validation_error")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:       "validation_error",
			Message:    verr.Error(),
			Violations: verr.Violations,
		})
		return
	case errors.Is(err, features.ErrMissingFeature):
		h.fail(ctx, w, op, http.StatusInternalServerError, "feature_mismatch", err)
	case errors.Is(err, prediction.ErrPrediction):
		h.fail(ctx, w, op, http.StatusInternalServerError, "prediction_failed", err)
	case errors.Is(err, context.DeadlineExceeded):
		h.fail(ctx, w, op, http.StatusGatewayTimeout, "timeout", err)
	case !h.deps.ModelsLoaded():
		h.fail(ctx, w, op, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
	default:
		h.fail(ctx, w, op, http.StatusInternalServerError, "internal_error", err)
	}
}

func (h *PredictHandler) fail(ctx context.Context, w http.ResponseWriter, op string, status int, code string, err error) {
	metrics.RecordErrorByComponent("api", code)
	h.logger.Error(ctx, "prediction request failed",
		logger.String("op", op),
		logger.String("code", code),
		logger.Error(err),
	)
	writeError(w, status, code, fmt.Errorf("%s: %w", op, err))
}
