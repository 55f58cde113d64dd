package handlers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"literacylead/internal/security"
	"literacylead/internal/service"
)

// AuthHandler implements the Google sign-in flow. The frontend opens the
// consent screen in a popup, so the callback answers with a tiny HTML page
// that notifies the opener and closes itself instead of redirecting.
type AuthHandler struct {
	authService *service.AuthService
	oauthConfig *oauth2.Config
	baseURL     string
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService, clientID, clientSecret, baseURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		baseURL:     strings.TrimRight(baseURL, "/"),
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// IsConfigured reports whether Google credentials are present.
func (h *AuthHandler) IsConfigured() bool {
	return h.oauthConfig.ClientID != "" && h.oauthConfig.ClientSecret != ""
}

// GetAuthURL handles GET /api/auth/url. It mints a state value, parks it in
// a short-lived cookie and hands the consent URL to the frontend.
func (h *AuthHandler) GetAuthURL(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		respondError(w, http.StatusServiceUnavailable, "Google sign-in is not configured", nil)
		return
	}

	state := security.GenerateSessionID()
	nonce := security.GenerateSessionID()
	http.SetCookie(w, security.TempCookie(r, "oauth_state", state, 10*time.Minute))
	http.SetCookie(w, security.TempCookie(r, "oauth_nonce", nonce, 10*time.Minute))

	config := h.configForRequest(r)
	authURL := config.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)

	respondJSON(w, http.StatusOK, map[string]string{"url": authURL})
}

// Callback handles GET /auth/callback: verifies state, exchanges the code,
// validates the id_token and opens a session.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		h.popupResult(w, false, "Missing authorization code")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		h.popupResult(w, false, "Invalid OAuth state")
		return
	}

	nonce := ""
	if cookie, err := r.Cookie("oauth_nonce"); err == nil {
		nonce = cookie.Value
	}
	http.SetCookie(w, security.DeleteCookie(r, "oauth_state"))
	http.SetCookie(w, security.DeleteCookie(r, "oauth_nonce"))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := h.configForRequest(r)
	token, err := config.Exchange(ctx, code)
	if err != nil {
		h.popupResult(w, false, "Failed to exchange authorization code")
		return
	}

	profile, err := h.resolveProfile(ctx, token, nonce)
	if err != nil {
		h.popupResult(w, false, "Could not verify Google identity")
		return
	}

	session, _, err := h.authService.OAuthLogin(profile.Subject, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		h.popupResult(w, false, "Failed to start session")
		return
	}

	http.SetCookie(w, security.SessionCookie(r, session.ID, session.ExpiresAt))
	h.popupResult(w, true, "")
}

// Me handles GET /api/me for an authenticated request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("session_id"); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to log out", err)
			return
		}
	}
	http.SetCookie(w, security.DeleteCookie(r, "session_id"))
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) configForRequest(r *http.Request) *oauth2.Config {
	baseURL := h.baseURL
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	config := *h.oauthConfig
	config.RedirectURL = baseURL + "/auth/callback"
	return &config
}

type googleProfile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// resolveProfile prefers the signed id_token; the userinfo endpoint is the
// fallback when the token response does not carry one.
func (h *AuthHandler) resolveProfile(ctx context.Context, token *oauth2.Token, nonce string) (googleProfile, error) {
	if idToken, _ := token.Extra("id_token").(string); idToken != "" {
		return parseGoogleIDToken(ctx, idToken, h.oauthConfig.ClientID, nonce)
	}
	return h.fetchUserInfo(ctx, token)
}

func (h *AuthHandler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return googleProfile{}, fmt.Errorf("failed to fetch Google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, errors.New("failed to fetch Google user info")
	}

	var payload struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return googleProfile{}, fmt.Errorf("failed to parse Google user info: %w", err)
	}

	return googleProfile{Subject: payload.ID, Email: payload.Email, Name: payload.Name, Picture: payload.Picture}, nil
}

// popupResult renders the page the OAuth popup lands on. It posts the
// outcome to the opener window and closes itself; with no opener it falls
// back to a plain redirect home.
func (h *AuthHandler) popupResult(w http.ResponseWriter, success bool, message string) {
	status := "success"
	if !success {
		status = "failure"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !success {
		w.WriteHeader(http.StatusBadRequest)
	}
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
<p>%s</p>
<script>
  if (window.opener) {
    window.opener.postMessage({ type: "oauth", status: %q }, window.location.origin);
    window.close();
  } else {
    window.location.replace("/");
  }
</script>
</body>
</html>
`, htmlMessage(success, message), status)
}

func htmlMessage(success bool, message string) string {
	if success {
		return "Signed in. You can close this window."
	}
	return "Sign-in failed: " + message
}

type googleTokenClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Nonce   string `json:"nonce"`
}

type googleJWKS struct {
	Keys []googleJWK `json:"keys"`
}

type googleJWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseGoogleIDToken(ctx context.Context, idToken, clientID, nonce string) (googleProfile, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	claims := &googleTokenClaims{}

	parsedToken, err := parser.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing key id")
		}
		return fetchGooglePublicKey(ctx, kid)
	})
	if err != nil || !parsedToken.Valid {
		return googleProfile{}, errors.New("invalid Google token")
	}

	if claims.Issuer != "https://accounts.google.com" && claims.Issuer != "accounts.google.com" {
		return googleProfile{}, errors.New("invalid Google issuer")
	}
	if !audienceContains(claims.Audience, clientID) {
		return googleProfile{}, errors.New("invalid Google audience")
	}
	if nonce != "" && claims.Nonce != "" && claims.Nonce != nonce {
		return googleProfile{}, errors.New("invalid Google nonce")
	}
	if claims.Email == "" {
		return googleProfile{}, errors.New("Google email not available")
	}

	return googleProfile{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

func audienceContains(audience jwt.ClaimStrings, value string) bool {
	for _, entry := range audience {
		if entry == value {
			return true
		}
	}
	return false
}

func fetchGooglePublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v3/certs", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("failed to fetch Google public keys")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var jwks googleJWKS
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, err
	}

	for _, key := range jwks.Keys {
		if key.Kid != kid {
			continue
		}
		if key.Kty != "RSA" {
			return nil, errors.New("unexpected key type")
		}
		modulusBytes, err := base64.RawURLEncoding.DecodeString(key.N)
		if err != nil {
			return nil, err
		}
		exponentBytes, err := base64.RawURLEncoding.DecodeString(key.E)
		if err != nil {
			return nil, err
		}
		exponent := 0
		for _, b := range exponentBytes {
			exponent = exponent*256 + int(b)
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(modulusBytes),
			E: exponent,
		}, nil
	}

	return nil, errors.New("Google public key not found")
}
