package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/pkg/carttoken"
	"github.com/kinaskak/storefront-backend/pkg/config"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

type cartIDKey struct{}

// CartToken resolves the signed cart cookie into a cart id on the request
// context. A missing, expired, or tampered cookie reads as "no cart": the
// shopper simply starts fresh, so no error surfaces here.
func CartToken(cfg config.CartTokenConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			cartID, err := carttoken.Parse(cfg, cookie.Value)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "discarding invalid cart token")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), cartIDKey{}, cartID)
			if logg != nil {
				ctx = logg.WithCartID(ctx, cartID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithCartID stores a verified cart id on the context.
func WithCartID(ctx context.Context, cartID uuid.UUID) context.Context {
	return context.WithValue(ctx, cartIDKey{}, cartID)
}

// CartIDFromContext returns the verified cart id, or nil when the request
// carried no valid cart cookie.
func CartIDFromContext(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(cartIDKey{}).(uuid.UUID); ok {
		return &id
	}
	return nil
}

// SetCartCookie mints a fresh signed token for the cart and writes the cookie.
func SetCartCookie(w http.ResponseWriter, cfg config.CartTokenConfig, cartID uuid.UUID) error {
	token, err := carttoken.Mint(cfg, time.Now(), cartID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCartCookie expires the cart cookie so a new cart starts on next visit.
func ClearCartCookie(w http.ResponseWriter, cfg config.CartTokenConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
