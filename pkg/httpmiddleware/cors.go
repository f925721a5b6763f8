package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware behaviour.
type CORSConfig struct {
	// AllowOrigins is a list of origins that are allowed to make cross-origin
	// requests. An empty list or the single entry "*" means all origins are
	// allowed.
	AllowOrigins []string

	// AllowMethods lists the HTTP methods clients may use in actual requests.
	// Defaults to the methods this API serves: "GET, POST, OPTIONS".
	AllowMethods []string

	// AllowHeaders lists the request headers clients may use.
	// If empty, the middleware echoes back the Access-Control-Request-Headers
	// from the preflight request.
	AllowHeaders []string

	// ExposeHeaders lists response headers the browser is allowed to access.
	// If empty, the request-ID and rate-limit headers the API attaches to
	// every response are exposed.
	ExposeHeaders []string

	// AllowCredentials indicates whether the response to a request can be
	// exposed when the credentials flag is true. Credentials with a wildcard
	// origin are forbidden, so the middleware echoes the request origin
	// instead of "*".
	AllowCredentials bool

	// MaxAge indicates how long (in seconds) preflight results can be cached.
	// A zero value omits the header; a negative value sends "0".
	MaxAge int
}

// defaultExposeHeaders are the headers this API sets on every response.
var defaultExposeHeaders = strings.Join([]string{
	"X-Request-ID",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
}, ", ")

// corsPolicy is the immutable, precomputed form of a CORSConfig.
type corsPolicy struct {
	allowAll    bool
	origins     map[string]string // lowercase -> configured case
	methods     string
	headers     string
	expose      string
	credentials bool
	maxAge      string
}

func newCORSPolicy(cfg CORSConfig) *corsPolicy {
	p := &corsPolicy{
		allowAll:    len(cfg.AllowOrigins) == 0,
		origins:     make(map[string]string, len(cfg.AllowOrigins)),
		methods:     strings.Join(cfg.AllowMethods, ", "),
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
		credentials: cfg.AllowCredentials,
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			p.allowAll = true
			continue
		}
		p.origins[strings.ToLower(o)] = o
	}
	if p.methods == "" {
		p.methods = "GET, POST, OPTIONS"
	}
	if p.expose == "" {
		p.expose = defaultExposeHeaders
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	} else if cfg.MaxAge < 0 {
		p.maxAge = "0"
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for the request
// origin, or "" when the origin is not allowed. Lookup is case-insensitive;
// the configured casing is echoed back. With credentials enabled a wildcard
// would be rejected by browsers, so the request origin is echoed instead.
func (p *corsPolicy) allowOrigin(origin string) string {
	if p.allowAll {
		if p.credentials {
			return origin
		}
		return "*"
	}
	if configured, ok := p.origins[strings.ToLower(origin)]; ok {
		return configured
	}
	return ""
}

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// Preflight requests are answered directly with 204; actual requests get the
// allow/expose headers and pass through. Vary headers are set so shared
// caches never serve one origin's CORS response to another.
func CORS(cfg CORSConfig) Middleware {
	p := newCORSPolicy(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// No Origin header means the request is outside CORS scope.
			if origin == "" {
				if !p.allowAll {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, r)
				return
			}

			// Preflight: OPTIONS with Access-Control-Request-Method.
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				p.preflight(w, r, origin)
				return
			}

			p.actual(w, origin)
			next.ServeHTTP(w, r)
		})
	}
}

func (p *corsPolicy) preflight(w http.ResponseWriter, r *http.Request, origin string) {
	h := w.Header()
	h.Add("Vary", "Origin")
	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")

	allowOrigin := p.allowOrigin(origin)
	if allowOrigin == "" {
		// Disallowed origin: 204 with no CORS headers, the browser blocks it.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.Set("Access-Control-Allow-Origin", allowOrigin)
	h.Set("Access-Control-Allow-Methods", p.methods)

	if p.headers != "" {
		h.Set("Access-Control-Allow-Headers", p.headers)
	} else if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
		h.Set("Access-Control-Allow-Headers", requested)
	}

	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if p.maxAge != "" {
		h.Set("Access-Control-Max-Age", p.maxAge)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (p *corsPolicy) actual(w http.ResponseWriter, origin string) {
	h := w.Header()
	if !p.allowAll || p.credentials {
		h.Add("Vary", "Origin")
	}

	allowOrigin := p.allowOrigin(origin)
	if allowOrigin == "" {
		return
	}

	h.Set("Access-Control-Allow-Origin", allowOrigin)
	h.Set("Access-Control-Expose-Headers", p.expose)
	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
}
