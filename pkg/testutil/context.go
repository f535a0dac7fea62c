package testutil

import (
	"net/http"
	"time"

	"github.com/pejotadev/fidlink/pkg/requestcontext"
)

// WithRequestTime pins the request's logical clock to the given instant.
// This simulates what the request-time middleware does for live traffic
// and keeps time-sensitive handler tests deterministic.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), now)
	return req.WithContext(ctx)
}
