package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/msribeiro2010/napje-pje-proxy/model"
	"github.com/msribeiro2010/napje-pje-proxy/shared"
)

// auditWriter persists audit records; PostgresService in production.
type auditWriter interface {
	CreateAuditRecord(rec *model.AuditRecord) error
}

// AuditService records every permitted PJe access. Writes are fire-and-forget:
// a failed or slow audit write never changes the response of the request that
// triggered it. The trail is best-effort, not exactly-once.
type AuditService struct {
	context.DefaultService

	writer auditWriter
	wg     sync.WaitGroup
}

const AUDIT_SVC = "audit_svc"

// Parameter names whose values identify a person. Values are replaced, not
// dropped, so the trail still shows a search "by CPF" happened.
var sensitiveParams = map[string]bool{
	"cpf":  true,
	"nome": true,
	"name": true,
}

func (svc AuditService) Id() string {
	return AUDIT_SVC
}

func (svc *AuditService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuditService) Start() error {
	svc.writer = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

func (svc *AuditService) Shutdown() {
	svc.wg.Wait()
}

// Record dispatches one audit write and returns immediately.
func (svc *AuditService) Record(userID, endpoint, partition string, params map[string]string) {
	sanitized := SanitizeParams(params)

	raw, err := json.Marshal(sanitized)
	if err != nil {
		log.WithError(err).WithField("endpoint", endpoint).Error("Failed to encode audit params")
		raw = []byte("{}")
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	rec := &model.AuditRecord{
		ID:        id.String(),
		UserID:    userID,
		Endpoint:  endpoint,
		Partition: partition,
		Params:    raw,
		CreatedAt: time.Now(),
	}

	svc.wg.Add(1)
	go func() {
		defer svc.wg.Done()

		if err := svc.writer.CreateAuditRecord(rec); err != nil {
			auditFailedTotal.Inc()
			log.WithError(err).WithFields(log.Fields{
				"user_id":  userID,
				"endpoint": endpoint,
			}).Error("Failed to write audit record")
		}
	}()
}

// SanitizeParams drops empty values and redacts sensitive ones.
func SanitizeParams(params map[string]string) map[string]string {
	sanitized := make(map[string]string, len(params))
	for key, value := range params {
		if value == "" {
			continue
		}
		if sensitiveParams[key] {
			sanitized[key] = shared.RedactionPlaceholder
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
