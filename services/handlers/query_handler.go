package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/msribeiro2010/napje-pje-proxy/dto"
	"github.com/msribeiro2010/napje-pje-proxy/model"
	"github.com/msribeiro2010/napje-pje-proxy/shared"
)

// QueryHandler serves the PJe data endpoints. By the time a request reaches
// these methods it has already passed session validation, the authorization
// gate and the rate limiter; the handler audits the access and routes the
// query.
type QueryHandler struct {
	pjeSvc   PJeServiceInterface
	auditSvc AuditServiceInterface
}

func NewQueryHandler(pjeSvc PJeServiceInterface, auditSvc AuditServiceInterface) *QueryHandler {
	return &QueryHandler{
		pjeSvc:   pjeSvc,
		auditSvc: auditSvc,
	}
}

func (h *QueryHandler) userID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(shared.UserID).(string); ok {
		return userID
	}
	return ""
}

// validationError folds the field messages into the standard error body.
func validationError(err error) error {
	fieldErrors := dto.FormatValidationErrors(err)
	messages := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		messages = append(messages, fieldError.Message)
	}
	return shared.NewBadRequestError(err, "Validation failed: "+strings.Join(messages, "; "))
}

// @Summary Search Adjudicating Bodies
// @Description Search PJe adjudicating bodies by name or abbreviation
// @Tags pje
// @Accept json
// @Produce json
// @Security Bearer
// @Param grau query string true "PJe degree (1 or 2)"
// @Param search query string false "Substring of name or abbreviation"
// @Success 200 {array} model.OrgaoJulgador
// @Router /api/data/orgaos-julgadores [get]
func (h *QueryHandler) GetOrgaosJulgadores(c *fiber.Ctx) error {
	var req dto.OrgaoJulgadorSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid query parameters")
	}

	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	partition, err := model.ParsePartition(req.Grau)
	if err != nil {
		return err
	}

	h.auditSvc.Record(h.userID(c), "orgaos_julgadores", req.Grau, map[string]string{
		"search": req.Search,
	})

	rows, err := h.pjeSvc.SearchOrgaosJulgadores(c.Context(), partition, req.Search)
	if err != nil {
		return err
	}

	return shared.ResponseData(c, fiber.StatusOK, rows)
}

// @Summary Search Cases
// @Description Search PJe cases by number, year and adjudicating body
// @Tags pje
// @Accept json
// @Produce json
// @Security Bearer
// @Param grau query string true "PJe degree (1 or 2)"
// @Param numero query string false "Exact case number"
// @Param ano query string false "Filing year"
// @Param orgao_julgador_id query string false "Adjudicating body id"
// @Success 200 {array} model.Processo
// @Router /api/data/processos [get]
func (h *QueryHandler) GetProcessos(c *fiber.Ctx) error {
	var req dto.ProcessoSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid query parameters")
	}

	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	partition, err := model.ParsePartition(req.Grau)
	if err != nil {
		return err
	}

	h.auditSvc.Record(h.userID(c), "processos", req.Grau, map[string]string{
		"numero":            req.Numero,
		"ano":               req.Ano,
		"orgao_julgador_id": req.OrgaoJulgadorID,
	})

	rows, err := h.pjeSvc.SearchProcessos(c.Context(), partition, req)
	if err != nil {
		return err
	}

	return shared.ResponseData(c, fiber.StatusOK, rows)
}

// @Summary Search Personnel
// @Description Search PJe personnel by name, CPF or login
// @Tags pje
// @Accept json
// @Produce json
// @Security Bearer
// @Param grau query string true "PJe degree (1 or 2)"
// @Param nome query string false "Name substring"
// @Param cpf query string false "CPF, punctuation tolerated"
// @Param login query string false "Login substring"
// @Success 200 {array} model.Servidor
// @Router /api/data/servidores [get]
func (h *QueryHandler) GetServidores(c *fiber.Ctx) error {
	var req dto.ServidorSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid query parameters")
	}

	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	partition, err := model.ParsePartition(req.Grau)
	if err != nil {
		return err
	}

	h.auditSvc.Record(h.userID(c), "servidores", req.Grau, map[string]string{
		"nome":  req.Nome,
		"cpf":   req.CPF,
		"login": req.Login,
	})

	rows, err := h.pjeSvc.SearchServidores(c.Context(), partition, req)
	if err != nil {
		return err
	}

	return shared.ResponseData(c, fiber.StatusOK, rows)
}
