package server

import (
	"fmt"
	"net/http"
)

type Handler struct {
	greeting string
}

func NewHandler(greeting string) *Handler {
	return &Handler{greeting: greeting}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fmt.Fprint(w, h.greeting)
}
