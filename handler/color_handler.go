package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kunhe0330/macolor-claude/backend"
	"github.com/kunhe0330/macolor-claude/palette"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgImageRequired    = "Image data is required"
	msgBodyTooLarge     = "Request body too large"
	msgNoAPIKey         = "API key not configured"
	msgAnalyzeFailed    = "Failed to analyze image"
	msgInternal         = "Internal server error"

	defaultMaxBodyBytes = 10 << 20
)

// ColorAnalyzer returns the dominant colors of a base64 encoded image.
type ColorAnalyzer interface {
	DominantColors(ctx context.Context, imageBase64 string) ([]palette.Candidate, error)
}

// Options tunes an HTTPHandler. Zero values fall back to defaults.
type Options struct {
	APIKey       string
	MaxColors    int
	MaxBodyBytes int64
}

// HTTPHandler serves the color analysis endpoint.
type HTTPHandler struct {
	Analyzer     ColorAnalyzer
	APIKey       string
	MaxColors    int
	MaxBodyBytes int64
}

// NewHTTPHandler creates a new instance of HTTPHandler
func NewHTTPHandler(analyzer ColorAnalyzer, opts Options) *HTTPHandler {
	h := &HTTPHandler{
		Analyzer:     analyzer,
		APIKey:       opts.APIKey,
		MaxColors:    opts.MaxColors,
		MaxBodyBytes: opts.MaxBodyBytes,
	}
	if h.MaxColors <= 0 {
		h.MaxColors = palette.DefaultLimit
	}
	if h.MaxBodyBytes <= 0 {
		h.MaxBodyBytes = defaultMaxBodyBytes
	}
	return h
}

// ServeHTTP implements the http.Handler interface for HTTPHandler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())

	defer func() {
		if rec := recover(); rec != nil {
			msg := fmt.Sprint(rec)
			logAndReturnError(w, r, http.StatusInternalServerError,
				ErrorResponse{Error: msgInternal, Message: msg}, "Server error: "+msg)
		}
	}()

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		logAndReturnError(w, r, http.StatusMethodNotAllowed, ErrorResponse{Error: msgMethodNotAllowed})
		return
	}

	var payload RequestPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logAndReturnError(w, r, http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgBodyTooLarge})
			return
		}
		// An unreadable body carries no image.
		log.Debugf("Could not decode request body from %s: %v", r.RemoteAddr, err)
	}

	if payload.ImageBase64 == "" {
		logAndReturnError(w, r, http.StatusBadRequest, ErrorResponse{Error: msgImageRequired})
		return
	}

	if h.APIKey == "" {
		logAndReturnError(w, r, http.StatusInternalServerError, ErrorResponse{Error: msgNoAPIKey})
		return
	}

	candidates, err := h.Analyzer.DominantColors(r.Context(), payload.ImageBase64)
	if err != nil {
		var upstream *backend.UpstreamError
		if errors.As(err, &upstream) {
			status := upstream.StatusCode
			if status < 100 || status > 599 {
				status = http.StatusBadGateway
			}
			logAndReturnError(w, r, status,
				ErrorResponse{Error: msgAnalyzeFailed, Details: upstream.Message},
				"Google Vision API error: "+upstream.Error())
			return
		}
		logAndReturnError(w, r, http.StatusInternalServerError,
			ErrorResponse{Error: msgInternal, Message: err.Error()},
			"Server error: "+err.Error())
		return
	}

	colors := palette.Rank(candidates, h.MaxColors)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Colors: colors})
	logRequest(r, http.StatusOK)
}
