package main

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/CodedInternet/gobraille/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventsHandler streams device events to the client and takes its commands
// until the connection closes.
func EventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Named("ws").Warnw("upgrade failed", "error", err)
		return
	}

	ENV.Conductor.Serve(conn)
}
