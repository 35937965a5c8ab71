package utility

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// Upgrader is shared by the websocket chat endpoint.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser-facing UI is served from another origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}
