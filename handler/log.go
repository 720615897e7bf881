package handler

import (
	"encoding/json"
	"net/http"
)

func logRequest(req *http.Request, status int) {
	log.Infof("%s -- %s -- %s -- %d", req.RemoteAddr, req.Method, req.URL.Path, status)
}

// logAndReturnError logs the failure and writes it to the client as JSON.
// consoleStr is optional and replaces the client-facing message in the log.
func logAndReturnError(w http.ResponseWriter, req *http.Request, code int, body ErrorResponse, consoleStr ...string) {
	msg := body.Error
	if len(consoleStr) > 0 {
		msg = consoleStr[0]
	}
	log.Errorf("%s -- %s -- %s -- %d: %s", req.RemoteAddr, req.Method, req.URL.Path, code, msg)
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("Failed to write response: %v", err)
	}
}
