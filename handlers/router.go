package handlers

import (
	"github.com/gorilla/mux"
)

func (h *Handler) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/token", h.IssueToken).Methods("POST")
	r.HandleFunc("/api/rooms", h.ListRooms).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")

	r.HandleFunc("/ws", h.WsHandler)
	r.HandleFunc("/ws/{token}", h.WsHandler)

	return r
}
