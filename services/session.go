package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/msribeiro2010/napje-pje-proxy/dto"
	"github.com/msribeiro2010/napje-pje-proxy/shared"
)

// SessionService exchanges a bearer token for a verified identity. Tokens are
// never cached: every request is validated independently.
//
// Two modes, selected by AUTH_MODE:
//   - "remote" (default): one call to the identity provider per request
//     (Supabase-style GET /auth/v1/user).
//   - "jwt": verify the provider-issued HS256 token locally with the
//     provider's signing secret. No network round-trip, same taxonomy.
type SessionService struct {
	context.DefaultService

	mode       string
	apiURL     string
	apiKey     string
	jwtSecret  string
	httpClient *http.Client
}

type providerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

const SESSION_SVC = "session_svc"

const (
	AuthModeRemote = "remote"
	AuthModeJWT    = "jwt"
)

func (svc SessionService) Id() string {
	return SESSION_SVC
}

func (svc *SessionService) Configure(ctx *context.Context) error {
	svc.mode = os.Getenv("AUTH_MODE")
	if svc.mode == "" {
		svc.mode = AuthModeRemote
	}

	svc.apiURL = os.Getenv("AUTH_API_URL")
	svc.apiKey = os.Getenv("AUTH_API_KEY")
	svc.jwtSecret = os.Getenv("AUTH_JWT_SECRET")

	timeout := 5 * time.Second
	if d, err := time.ParseDuration(os.Getenv("AUTH_TIMEOUT")); err == nil && d > 0 {
		timeout = d
	}
	svc.httpClient = &http.Client{Timeout: timeout}

	return svc.DefaultService.Configure(ctx)
}

func (svc *SessionService) Start() error {
	switch svc.mode {
	case AuthModeRemote:
		if svc.apiURL == "" {
			return errors.New("AUTH_API_URL is required in remote auth mode")
		}
	case AuthModeJWT:
		if svc.jwtSecret == "" {
			return errors.New("AUTH_JWT_SECRET is required in jwt auth mode")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE: %s", svc.mode)
	}
	return nil
}

// ExtractTokenFromHeader rejects a missing or malformed Authorization header
// before any external call is made.
func (svc *SessionService) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", shared.NewMissingCredentialsError()
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", shared.NewMissingCredentialsError()
	}

	return authHeader[7:], nil
}

// Validate resolves the token to a provider user, or an InvalidCredentials
// error. Provider-side failures are treated the same as rejections: the
// session validator fails closed.
func (svc *SessionService) Validate(token string) (*dto.ProviderUser, error) {
	if svc.mode == AuthModeJWT {
		return svc.validateLocal(token)
	}
	return svc.validateRemote(token)
}

func (svc *SessionService) validateRemote(token string) (*dto.ProviderUser, error) {
	req, err := http.NewRequest(http.MethodGet, svc.apiURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, shared.NewInvalidCredentialsError(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if svc.apiKey != "" {
		req.Header.Set("apikey", svc.apiKey)
	}

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("Identity provider call failed")
		return nil, shared.NewInvalidCredentialsError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, shared.NewInvalidCredentialsError(fmt.Errorf("identity provider returned status %d", resp.StatusCode))
	}

	var user dto.ProviderUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, shared.NewInvalidCredentialsError(err)
	}

	if user.ID == "" {
		return nil, shared.NewInvalidCredentialsError(errors.New("identity provider returned no user id"))
	}

	return &user, nil
}

func (svc *SessionService) validateLocal(token string) (*dto.ProviderUser, error) {
	parsed, err := jwt.ParseWithClaims(token, &providerClaims{}, svc.getJWTKey)
	if err != nil || !parsed.Valid {
		return nil, shared.NewInvalidCredentialsError(err)
	}

	claims, ok := parsed.Claims.(*providerClaims)
	if !ok || claims.Subject == "" {
		return nil, shared.NewInvalidCredentialsError(errors.New("token has no subject"))
	}

	return &dto.ProviderUser{ID: claims.Subject, Email: claims.Email}, nil
}

func (svc *SessionService) getJWTKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(svc.jwtSecret), nil
}
