package loopback

import (
	"encoding/json"
	"net/http"

	"molard/pkg/logging"
)

const maxTokenBody = 64 << 10

type tokenRequest struct {
	Fragment string `json:"fragment"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHandler serves the capture page and the token endpoint for pending.
func NewHandler(pending *PendingAuth) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handlePage)
	mux.HandleFunc("GET /callback", handlePage)
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		handleToken(w, r, pending)
	})
	return mux
}

func handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(capturePage))
}

func handleToken(w http.ResponseWriter, r *http.Request, pending *PendingAuth) {
	var req tokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTokenBody)).Decode(&req); err != nil {
		writeTokenResponse(w, http.StatusBadRequest, tokenResponse{Message: "Invalid request body"})
		return
	}
	if req.Fragment == "" {
		writeTokenResponse(w, http.StatusBadRequest, tokenResponse{Message: "Missing fragment"})
		return
	}

	if err := pending.Deliver(req.Fragment); err != nil {
		logging.Debug("Auth", "Ignoring callback: %v", err)
		writeTokenResponse(w, http.StatusOK, tokenResponse{Message: "Token already received"})
		return
	}
	logging.Info("Auth", "Received callback for sign-in %s", pending.ID)
	writeTokenResponse(w, http.StatusOK, tokenResponse{Success: true, Message: "Token received"})
}

func writeTokenResponse(w http.ResponseWriter, status int, resp tokenResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
