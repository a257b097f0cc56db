package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/career-advisor/internal/types"
)

// WebhookSignatureHeader carries the hex HMAC-SHA256 of the webhook body,
// computed by the payment processor with the shared secret.
const WebhookSignatureHeader = "X-Checkout-Signature"

// assessmentResponse pairs a grounded assessment with the caller's
// remaining regeneration budget.
type assessmentResponse struct {
	Assessment *types.GroundedAssessment `json:"assessment"`
	Quota      *types.Allowance          `json:"quota,omitempty"`
}

// handleAssess produces the initial assessment for a profile. The first
// assessment is free; only regeneration spends quota turns.
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	id := s.resolver.Resolve(w, r)

	profile, ok := s.decodeProfile(w, r)
	if !ok {
		return
	}

	result, err := s.pipe.Run(r.Context(), profile, s.library)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	allowance, err := s.ledger.CheckAllowance(r.Context(), id)
	if err != nil {
		// The assessment succeeded; report it without the quota readout.
		s.jsonResponse(w, http.StatusOK, assessmentResponse{Assessment: result})
		return
	}

	s.jsonResponse(w, http.StatusOK, assessmentResponse{Assessment: result, Quota: &allowance})
}

// handleRegenerate re-runs the assessment for a profile, spending one
// quota turn. The turn is consumed before generation starts so a flood of
// concurrent requests cannot overdraw the budget; a failed generation
// still costs the turn.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	id := s.resolver.Resolve(w, r)

	profile, ok := s.decodeProfile(w, r)
	if !ok {
		return
	}

	allowance, err := s.ledger.ConsumeTurn(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result, err := s.pipe.Run(r.Context(), profile, s.library)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, assessmentResponse{Assessment: result, Quota: &allowance})
}

// handleQuota reports the caller's current budget without spending a turn.
func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	id := s.resolver.Resolve(w, r)

	allowance, err := s.ledger.CheckAllowance(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"class": id.Class,
		"quota": allowance,
	})
}

// checkoutWebhookRequest is the payload the payment processor delivers
// after a completed checkout.
type checkoutWebhookRequest struct {
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	SKU         string    `json:"sku" validate:"required"`
	CheckoutRef string    `json:"checkout_ref" validate:"required"`
}

// handleCheckoutWebhook records an entitling purchase and issues the JWT
// the buyer presents to reach the entitled quota tier. Deliveries must be
// signed with the shared webhook secret; anything else is rejected before
// it can mint a token.
func (s *Server) handleCheckoutWebhook(w http.ResponseWriter, r *http.Request) {
	if s.purchases == nil || s.tokens == nil {
		s.badRequest(w, "checkout is not configured")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.badRequest(w, "could not read request body")
		return
	}
	if !s.verifyWebhookSignature(body, r.Header.Get(WebhookSignatureHeader)) {
		s.log.Warn("rejected checkout webhook with bad signature")
		s.jsonResponse(w, http.StatusUnauthorized, errorBody{Error: errorDetail{
			Kind:    kindUnauthorized,
			Message: "missing or invalid webhook signature",
		}})
		return
	}

	var req checkoutWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.badRequest(w, "invalid JSON payload")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, err)
		return
	}

	if _, err := s.purchases.SavePurchase(r.Context(), req.UserID, req.SKU, req.CheckoutRef); err != nil {
		s.errorResponse(w, err)
		return
	}

	token, err := s.tokens.GenerateToken(req.UserID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]string{"token": token})
}

// verifyWebhookSignature checks the hex HMAC-SHA256 of the body against the
// presented signature in constant time.
func (s *Server) verifyWebhookSignature(body []byte, signature string) bool {
	if signature == "" || len(s.webhookSecret) == 0 {
		return false
	}
	presented, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.webhookSecret)
	mac.Write(body)
	return hmac.Equal(presented, mac.Sum(nil))
}

// handleListPurchases returns the caller's purchase history. Only entitled
// callers have one.
func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	if s.purchases == nil {
		s.badRequest(w, "checkout is not configured")
		return
	}

	id := s.resolver.Resolve(w, r)
	if id.Class != types.IdentityEntitled {
		s.jsonResponse(w, http.StatusUnauthorized, errorBody{Error: errorDetail{
			Kind:    kindUnauthorized,
			Message: "a valid entitlement token is required",
		}})
		return
	}

	purchases, err := s.purchases.ListPurchases(r.Context(), id.UserID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"purchases": purchases})
}

// decodeProfile parses and validates the profile payload, writing the
// error response itself on failure.
func (s *Server) decodeProfile(w http.ResponseWriter, r *http.Request) (*types.Profile, bool) {
	var profile types.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		s.badRequest(w, "invalid JSON payload")
		return nil, false
	}
	if err := s.validate.Struct(&profile); err != nil {
		s.errorResponse(w, err)
		return nil, false
	}
	return &profile, true
}
