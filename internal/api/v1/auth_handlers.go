package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/madhava-poojari/jobs-admin-console/internal/auth"
	"github.com/madhava-poojari/jobs-admin-console/internal/config"
	"github.com/madhava-poojari/jobs-admin-console/internal/console"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/permission"
	"github.com/madhava-poojari/jobs-admin-console/internal/service"
	"github.com/madhava-poojari/jobs-admin-console/internal/store"
	"github.com/madhava-poojari/jobs-admin-console/internal/uistate"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

const refreshCookie = "refresh_token"

// GoogleVerifier turns an authorization code into a verified email.
type GoogleVerifier func(ctx context.Context, code string) (string, error)

type AuthHandler struct {
	cfg       *config.Config
	operators *service.OperatorService
	store     *store.Store
	console   *console.Console
	verify    GoogleVerifier
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string           `json:"access_token"`
	ExpiresIn   int64            `json:"expires_in"`
	Operator    *models.Operator `json:"operator,omitempty"`
}

func NewAuthHandler(cfg *config.Config, operators *service.OperatorService, s *store.Store, c *console.Console) *AuthHandler {
	h := &AuthHandler{cfg: cfg, operators: operators, store: s, console: c}
	h.verify = h.exchangeGoogleCode
	return h
}

func cookieDomain(r *http.Request) string {
	host := r.Host
	if strings.Contains(host, ":") {
		host = strings.Split(host, ":")[0]
	}
	return host
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, r *http.Request, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Domain:   cookieDomain(r),
		Expires:  expires,
	})
}

// issue signs an access token, stores a fresh refresh token and answers
// with both.
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, op *models.Operator, message string) {
	access, err := auth.GenerateAccessToken(h.cfg, op.ID, string(op.Role))
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "token error", nil, err)
		return
	}
	rt := utils.RandomToken()
	expires := time.Now().Add(h.cfg.RefreshTTL)
	if err := h.store.SaveRefreshToken(r.Context(), op.ID, rt, expires); err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "save refresh token error", nil, err)
		return
	}
	h.setRefreshCookie(w, r, rt, expires)

	resp := tokenResp{AccessToken: access, ExpiresIn: int64(h.cfg.AccessTokenTTL.Seconds()), Operator: op}
	utils.WriteJSONResponse(w, http.StatusOK, true, message, resp, nil)
}

func signInError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDisabled):
		utils.WriteJSONResponse(w, http.StatusForbidden, false, "account disabled", nil, nil)
	default:
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "invalid credentials", nil, nil)
	}
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "Invalid request", nil, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "email and password are required", nil, nil)
		return
	}
	op, err := h.operators.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		signInError(w, err)
		return
	}
	h.issue(w, r, op, "login successful")
}

// POST /auth/logout revokes the refresh token in the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "missing refresh token cookie", nil, err)
		return
	}
	if err := h.store.RevokeRefreshToken(r.Context(), cookie.Value); err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "revoke error", nil, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSONResponse(w, http.StatusOK, true, "logged out", nil, nil)
}

// POST /auth/refresh rotates the refresh token and returns a new access
// token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "missing refresh token cookie", nil, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	newPlain := utils.RandomToken()
	newExpiry := time.Now().Add(h.cfg.RefreshTTL)
	operatorID, err := h.store.RotateRefreshToken(ctx, cookie.Value, newPlain, newExpiry)
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "invalid refresh token", nil, nil)
		return
	}
	op, err := h.store.GetOperatorByID(ctx, operatorID)
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "operator not found", nil, nil)
		return
	}
	if !op.Active {
		_ = h.store.RevokeOperatorTokens(ctx, op.ID)
		utils.WriteJSONResponse(w, http.StatusForbidden, false, "account disabled", nil, nil)
		return
	}
	access, err := auth.GenerateAccessToken(h.cfg, op.ID, string(op.Role))
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "could not create access token", nil, nil)
		return
	}
	h.setRefreshCookie(w, r, newPlain, newExpiry)

	resp := tokenResp{AccessToken: access, ExpiresIn: int64(h.cfg.AccessTokenTTL.Seconds())}
	utils.WriteJSONResponse(w, http.StatusOK, true, "refresh successful", resp, nil)
}

func (h *AuthHandler) exchangeGoogleCode(ctx context.Context, code string) (string, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     h.cfg.GoogleClientID,
		ClientSecret: h.cfg.GoogleClientSecret,
		RedirectURL:  h.cfg.GoogleRedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return "", err
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("id_token not present in token response")
	}
	payload, err := idtoken.Validate(ctx, rawIDToken, h.cfg.GoogleClientID)
	if err != nil {
		return "", err
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return "", errors.New("email not verified")
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return "", errors.New("email not present in token")
	}
	return email, nil
}

// POST /auth/google {code}. Only operators that already exist may sign in;
// no account is created.
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	if h.cfg.GoogleClientID == "" {
		utils.WriteJSONResponse(w, http.StatusNotImplemented, false, "google sign-in is not configured", nil, nil)
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "bad request", nil, "missing code")
		return
	}

	email, err := h.verify(r.Context(), req.Code)
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "google sign-in failed", nil, err)
		return
	}
	op, err := h.operators.ByVerifiedEmail(r.Context(), email)
	if err != nil {
		signInError(w, err)
		return
	}
	h.issue(w, r, op, "login successful")
}

type meResp struct {
	Operator    *models.Operator        `json:"operator"`
	Permissions []permission.Permission `json:"permissions"`
	UIState     uistate.Snapshot        `json:"ui_state"`
	Resources   []console.ResourceInfo  `json:"resources"`
}

// GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	op := auth.GetOperatorFromCtx(r.Context())
	if op == nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "unauthorized", nil, nil)
		return
	}
	ui := uistate.NewManager(h.store.UIState(op.ID), nil)
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", meResp{
		Operator:    op,
		Permissions: auth.PermissionsFromCtx(r.Context()).List(),
		UIState:     ui.Snapshot(r.Context()),
		Resources:   h.console.Visible(actorFrom(r)),
	}, nil)
}
