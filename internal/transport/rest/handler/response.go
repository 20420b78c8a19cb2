package handler

import (
	"encoding/json"
	"net/http"

	"electromatrix/internal/apperr"
	"electromatrix/internal/transport/rest/middleware"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError renders app errors as {"error": message, ...details}. Anything
// else is logged and reported as an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	appErr, ok := apperr.As(err)
	if !ok || appErr.StatusCode >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestId", middleware.GetRequestID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
		return
	}

	body := make(map[string]interface{}, len(appErr.Details)+1)
	for k, v := range appErr.Details {
		body[k] = v
	}
	body["error"] = appErr.Message
	writeJSON(w, appErr.StatusCode, body)
}
