package handler

import (
	"encoding/json"
	"net/http"
)

func logRequest(req *http.Request, code int) {
	log.Infof("%s -- %s -- %s -- %d", req.RemoteAddr, req.Method, req.URL.Path, code)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnf("Failed to write response body: %v", err)
	}
}

// logAndReturnError sends httpResponseStr to the client as a JSON error.
// cause, when set, is only logged.
func logAndReturnError(w http.ResponseWriter, req *http.Request, httpResponseStr string, code int, cause error) {
	if cause != nil {
		log.WithError(cause).Errorf("%s -- %s -- %s", req.RemoteAddr, req.Method, req.URL.Path)
	} else {
		log.Debugf("%s -- %s -- %s -- %s", req.RemoteAddr, req.Method, req.URL.Path, httpResponseStr)
	}
	writeJSON(w, code, ErrorResponse{Error: httpResponseStr})
}
