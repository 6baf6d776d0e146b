package middleware

import "net/http"

// Chain folds several middleware into one. Ordering follows how the call
// reads: the first middleware wraps everything after it, so
//
//	Chain(Recovery, Logging, Timeout)(h)
//
// runs Recovery outermost and Timeout closest to h.
func Chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := range mws {
			next = mws[len(mws)-1-i](next)
		}
		return next
	}
}
