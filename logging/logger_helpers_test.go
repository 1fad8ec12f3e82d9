package logging

import (
	"context"
	"net/http"
)

type httpHandlerFunc func(ctx context.Context)

func (f httpHandlerFunc) ServeHTTP(_ http.ResponseWriter, r *http.Request) {
	f(r.Context())
}
