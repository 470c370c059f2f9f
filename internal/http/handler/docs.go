package handler

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openAPISchema []byte

// Docs serves the OpenAPI 3 description of the public routes.
func Docs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISchema)
}
