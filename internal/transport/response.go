package transport

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteSuccess writes fields with "success": true added.
func WriteSuccess(w http.ResponseWriter, status int, fields map[string]interface{}) {
	payload, err := EncodeSuccess(fields)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "encode error", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func WriteError(w http.ResponseWriter, status int, message string, details map[string]string) {
	WriteJSON(w, status, ErrorResponse{
		Success: false,
		Message: message,
		Details: details,
	})
}

// WriteCached writes a body previously produced by EncodeSuccess.
func WriteCached(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "hit")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// EncodeSuccess returns the body WriteSuccess would write.
func EncodeSuccess(fields map[string]interface{}) ([]byte, error) {
	body := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}
