package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/config"
	"github.com/heartmarshall/folio/internal/transport/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Platform    *PlatformHandler
	Minter      *MinterHandler
	Marketplace *MarketplaceHandler
}

type tokenValidator interface {
	ValidateAccessToken(token string) (address.Address, error)
}

// Options tunes the cross-cutting behaviour of the router.
type Options struct {
	CORS config.CORSConfig
	// Limiter throttles login and write endpoints; nil disables throttling.
	Limiter         *middleware.RateLimiter
	LoginPerMinute  int
	WritesPerMinute int
}

// NewRouter mounts all endpoints behind the middleware chain.
func NewRouter(h Handlers, tokens tokenValidator, opts Options, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	limit := func(scope string, perMinute int, fn http.HandlerFunc) http.Handler {
		if opts.Limiter == nil {
			return fn
		}
		return opts.Limiter.Limit(scope, perMinute)(fn)
	}
	login := func(fn http.HandlerFunc) http.Handler { return limit("login", opts.LoginPerMinute, fn) }
	write := func(fn http.HandlerFunc) http.Handler { return limit("writes", opts.WritesPerMinute, fn) }

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.Handle("POST /v1/auth/challenge", login(h.Auth.Challenge))
	mux.Handle("POST /v1/auth/session", login(h.Auth.Session))

	mux.Handle("POST /v1/platform", write(h.Platform.Initialize))
	mux.Handle("POST /v1/accounts", write(h.Platform.CreateAccount))
	mux.Handle("POST /v1/accounts/writer", write(h.Platform.CreateWriterAccount))
	mux.Handle("POST /v1/accounts/reader", write(h.Platform.CreateReaderAccount))
	mux.HandleFunc("GET /v1/accounts/{address}", h.Platform.Account)
	mux.Handle("POST /v1/books", write(h.Platform.CreateBook))
	mux.Handle("POST /v1/books/{collection}/chapters", write(h.Platform.AddChapter))
	mux.Handle("POST /v1/content", write(h.Platform.UploadContent))
	mux.Handle("POST /v1/exclusive", write(h.Platform.CreateExclusiveContent))
	mux.Handle("POST /v1/exclusive/{content}/access", write(h.Platform.VerifyAccess))
	mux.Handle("POST /v1/chapters/{mint}/access", write(h.Platform.ChapterContent))
	mux.Handle("POST /v1/chapters/{mint}/reviews", write(h.Platform.SubmitReview))
	mux.Handle("POST /v1/tips", write(h.Platform.TipWriter))

	mux.Handle("POST /v1/collections", write(h.Minter.CreateCollection))
	mux.HandleFunc("GET /v1/collections/{mint}", h.Minter.GetCollection)
	mux.Handle("POST /v1/collections/{mint}/nfts", write(h.Minter.MintNFT))
	mux.HandleFunc("GET /v1/nfts/{mint}", h.Minter.GetNFT)
	mux.Handle("POST /v1/nfts/{mint}/transfer", write(h.Minter.Transfer))
	mux.Handle("POST /v1/nfts/{mint}/verify-collection", write(h.Minter.VerifyCollection))

	mux.Handle("POST /v1/marketplaces", write(h.Marketplace.Initialize))
	mux.HandleFunc("GET /v1/marketplaces/{name}", h.Marketplace.Get)
	mux.HandleFunc("GET /v1/wallets/{wallet}/balance", h.Marketplace.Balance)

	var cors middleware.Middleware
	if opts.CORS.AllowedOrigins != "" {
		cors = middleware.CORS(opts.CORS)
	}

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		cors,
		middleware.Auth(tokens),
		middleware.Logger(logger),
	)(mux)
}
