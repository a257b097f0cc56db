package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/career-advisor/internal/types"
)

// AnonCookieName is the cookie carrying the anonymous visitor token.
const AnonCookieName = "advisor_anon"

// anonCookieMaxAge keeps the anonymous token for a year so quota usage
// survives browser restarts.
const anonCookieMaxAge = 365 * 24 * 60 * 60

// PurchaseChecker reports whether a user holds an entitling purchase.
// *db.DB satisfies it.
type PurchaseChecker interface {
	HasPurchase(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Resolver classifies a request into a quota identity. A valid Bearer
// token outranks any cookie; everything else is anonymous, with a fresh
// token minted on first contact.
type Resolver struct {
	tokens    *TokenService
	purchases PurchaseChecker
}

// NewResolver creates a resolver backed by the given token service. When a
// purchase checker is provided, a Bearer token only grants the entitled
// class while a purchase record backs it; nil skips the check.
func NewResolver(tokens *TokenService, purchases PurchaseChecker) *Resolver {
	return &Resolver{tokens: tokens, purchases: purchases}
}

// Resolve determines the caller's identity. When a new anonymous token is
// minted it is set on the response so subsequent requests share a counter.
// An invalid or expired Bearer token does not fail the request; the caller
// simply falls back to the anonymous tier, as does a token whose purchase
// record is missing.
func (r *Resolver) Resolve(w http.ResponseWriter, req *http.Request) types.Identity {
	if auth := req.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		tokenString := strings.TrimPrefix(auth, "Bearer ")
		if claims, err := r.tokens.ValidateToken(tokenString); err == nil && r.entitled(req.Context(), claims.UserID) {
			return types.Identity{
				Key:    "user:" + claims.UserID.String(),
				Class:  types.IdentityEntitled,
				UserID: claims.UserID,
			}
		}
	}

	if cookie, err := req.Cookie(AnonCookieName); err == nil && cookie.Value != "" {
		return types.Identity{
			Key:   "anon:" + cookie.Value,
			Class: types.IdentityAnonymous,
		}
	}

	token := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     AnonCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   anonCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return types.Identity{
		Key:   "anon:" + token,
		Class: types.IdentityAnonymous,
	}
}

// entitled cross-checks a validated token against the purchase records. A
// lookup failure counts as not entitled rather than failing the request.
func (r *Resolver) entitled(ctx context.Context, userID uuid.UUID) bool {
	if r.purchases == nil {
		return true
	}
	has, err := r.purchases.HasPurchase(ctx, userID)
	return err == nil && has
}
