package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/msribeiro2010/napje-pje-proxy/dto"
	"github.com/msribeiro2010/napje-pje-proxy/model"
)

type PJeServiceInterface interface {
	SearchOrgaosJulgadores(ctx context.Context, partition model.Partition, search string) ([]model.OrgaoJulgador, error)
	SearchProcessos(ctx context.Context, partition model.Partition, req dto.ProcessoSearchRequest) ([]model.Processo, error)
	SearchServidores(ctx context.Context, partition model.Partition, req dto.ServidorSearchRequest) ([]model.Servidor, error)
}

type AuditServiceInterface interface {
	Record(userID, endpoint, partition string, params map[string]string)
}

type RateLimitServiceInterface interface {
	Stats(c *fiber.Ctx) (*dto.RateLimitStats, error)
	ResetKey(c *fiber.Ctx, key string) error
}
