package shop

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"RocketShoes/pkg/kit"
)

// NewReverseProxy forwards catalog reads so the page talks to a single origin.
func NewReverseProxy(target string, log *zap.Logger) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("proxy target must be an absolute url")
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("catalog proxy failed", zap.String("path", r.URL.Path), zap.Error(err))
		kit.WriteError(w, r, http.StatusBadGateway, "catalog unavailable", nil)
	}
	return p, nil
}
