package http

import (
	"encoding/json"
	"net/http"
)

// envelope is the uniform response shape: success plus payload fields, or
// success:false with a message.
type envelope map[string]any

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondErr(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{"success": false, "message": message})
}
