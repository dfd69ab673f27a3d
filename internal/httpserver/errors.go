package httpserver

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	mw "github.com/BrandonAlanDev/Portfolio2025/internal/middleware"
	"github.com/BrandonAlanDev/Portfolio2025/internal/nav"
	"github.com/BrandonAlanDev/Portfolio2025/internal/observability"
	"github.com/BrandonAlanDev/Portfolio2025/internal/page"
	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
)

// errorCode maps a domain error onto a status and a stable error code.
func errorCode(err error) (int, string) {
	var unsupported *nav.UnsupportedEventError
	switch {
	case errors.Is(err, section.ErrUnknownSection):
		return http.StatusNotFound, "unknown_section"
	case errors.Is(err, section.ErrUnknownLocale):
		return http.StatusBadRequest, "unknown_locale"
	case errors.Is(err, page.ErrNotFound), errors.Is(err, nav.ErrClosed):
		return http.StatusNotFound, "page_not_found"
	case errors.Is(err, page.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.As(err, &unsupported):
		return http.StatusBadRequest, "unsupported_event"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorCode(err)
	msg := err.Error()
	logger := observability.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		msg = http.StatusText(status)
	} else {
		logger.Warn("request rejected", zap.String("code", code), zap.Error(err))
	}
	mw.WriteError(w, r, status, code, msg)
}
