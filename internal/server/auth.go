package server

import (
	"crypto/subtle"
	"net/http"
)

// authorize checks the feed token. Browsers cannot set headers on a
// websocket handshake, so the token travels in the query string.
func (s *Server) authorize(r *http.Request) error {
	if s.config.Token == "" {
		return nil
	}
	token := r.URL.Query().Get("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.config.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
