package api

import (
	"crypto/subtle"
	"strings"

	domainerrors "github.com/daleelapp/daleel-server/internal/errors"
)

// authorize checks the Authorization header against the configured admin
// token. The whole surface is admin-facing; there are no per-user roles.
func (s *Server) authorize(header string) error {
	if s.adminToken == "" {
		return domainerrors.Unauthorized("admin token is not configured")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return domainerrors.Unauthorized("missing bearer token")
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
		return domainerrors.Unauthorized("invalid admin token")
	}

	return nil
}
