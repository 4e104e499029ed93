package services

import (
	"errors"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/msribeiro2010/napje-pje-proxy/dto"
	"github.com/msribeiro2010/napje-pje-proxy/model"
	"github.com/msribeiro2010/napje-pje-proxy/shared"
)

// userFlagSource is where the authorization gate reads its grant flags from.
type userFlagSource interface {
	GetAppUser(userID string) (*model.AppUser, error)
}

// AuthMiddleware runs the first two pipeline stages: session validation and
// the authorization gate. Both fail closed; a flags-lookup outage is reported
// as a 500, never as a legitimate 403 denial.
type AuthMiddleware struct {
	context.DefaultService

	sessionSvc *SessionService
	users      userFlagSource
}

const AUTH_MIDDLEWARE_SVC = "auth"

func (svc AuthMiddleware) Id() string {
	return AUTH_MIDDLEWARE_SVC
}

func (svc *AuthMiddleware) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthMiddleware) Start() error {
	svc.sessionSvc = svc.Service(SESSION_SVC).(*SessionService)
	svc.users = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// RequiredAuth validates the bearer token and the caller's stored flags, then
// stashes the identity in request locals for the stages downstream.
func (svc *AuthMiddleware) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := svc.sessionSvc.ExtractTokenFromHeader(c.Get("Authorization"))
		if err != nil {
			return err
		}

		user, err := svc.sessionSvc.Validate(token)
		if err != nil {
			return err
		}

		identity, err := svc.authorize(user)
		if err != nil {
			return err
		}

		c.Locals(shared.UserID, identity.ID)
		c.Locals(shared.UserEmail, identity.Email)
		c.Locals(shared.IsAdmin, identity.IsAdmin)
		return c.Next()
	}
}

// RequireAdmin guards the admin surface. Must run after RequiredAuth.
func (svc *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isAdmin, ok := c.Locals(shared.IsAdmin).(bool); !ok || !isAdmin {
			return shared.NewPermissionDeniedError()
		}
		return c.Next()
	}
}

func (svc *AuthMiddleware) authorize(user *dto.ProviderUser) (*dto.Identity, error) {
	appUser, err := svc.users.GetAppUser(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Known identity, no grant row: a legitimate denial.
			return nil, shared.NewPermissionDeniedError()
		}
		log.WithError(err).WithField("user_id", user.ID).Error("Authorization flags lookup failed")
		return nil, shared.NewAuthorizationLookupError(err)
	}

	if !appUser.CanQueryPJe && !appUser.IsAdmin {
		return nil, shared.NewPermissionDeniedError()
	}

	return &dto.Identity{
		ID:          appUser.ID,
		Email:       user.Email,
		CanQueryPJe: appUser.CanQueryPJe,
		IsAdmin:     appUser.IsAdmin,
	}, nil
}
