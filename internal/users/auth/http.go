// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/constants"
	"github.com/taibuivan/laundrytrack/internal/platform/middleware"
	requestutil "github.com/taibuivan/laundrytrack/internal/platform/request"
	"github.com/taibuivan/laundrytrack/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService  *Service
	secureCookie bool
}

// NewHandler constructs a [Handler]. secureCookie marks the refresh cookie
// Secure; it is off only for plain-HTTP development.
func NewHandler(service *Service, secureCookie bool) *Handler {
	return &Handler{authService: service, secureCookie: secureCookie}
}

// Routes returns the /auth endpoints. Only /me needs an access token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	router.With(middleware.RequireAuth).Get("/me", handler.me)

	return router
}

// # Request Payloads

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user,omitempty"`
}

/*
POST /api/v1/auth/register.

Response:
  - 201: User
  - 400: invalid email or password
  - 409: email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input CredentialsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
POST /api/v1/auth/login.

Description: Returns an access token and sets the refresh token cookie.

Response:
  - 200: TokenResponse
  - 401: invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input CredentialsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:     input.Email,
		Password:  input.Password,
		UserAgent: request.UserAgent(),
		IPAddress: clientIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)
	respond.OK(writer, newTokenResponse(session))
}

/*
POST /api/v1/auth/refresh.

Description: Rotates the refresh token cookie and issues a new access token.

Response:
  - 200: TokenResponse
  - 401: missing, unknown or expired refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.authService.RefreshSession(request.Context(), cookie.Value, request.UserAgent(), clientIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)
	respond.OK(writer, newTokenResponse(session))
}

// logout revokes the session (if any) and clears the cookie. Always 204.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		if err := handler.authService.Logout(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   handler.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

/*
GET /api/v1/auth/me.

Response:
  - 200: User (the account behind the access token)
  - 401: missing or invalid access token
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.CurrentUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

// # Helpers

func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expiresAt,
		Secure:   handler.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func newTokenResponse(session *LoginSession) TokenResponse {
	return TokenResponse{
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(AccessTokenTTL / time.Second),
		User:        session.User,
	}
}

// clientIP prefers proxy headers over the socket address.
func clientIP(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}
	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(request.RemoteAddr); err == nil {
		return host
	}
	return request.RemoteAddr
}
