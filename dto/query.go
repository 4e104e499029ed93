package dto

// ==================== PJE QUERY REQUEST DTOs ====================

type OrgaoJulgadorSearchRequest struct {
	Grau   string `query:"grau" validate:"required,oneof=1 2" example:"1"`
	Search string `query:"search" validate:"omitempty,min=2,max=100" example:"vara do trabalho"`
}

func (r OrgaoJulgadorSearchRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ProcessoSearchRequest struct {
	Grau            string `query:"grau" validate:"required,oneof=1 2" example:"2"`
	Numero          string `query:"numero" validate:"omitempty,max=25" example:"0000123-45.2024.5.01.0001"`
	Ano             string `query:"ano" validate:"omitempty,len=4,numeric" example:"2024"`
	OrgaoJulgadorID string `query:"orgao_julgador_id" validate:"omitempty,numeric" example:"42"`
}

func (r ProcessoSearchRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ServidorSearchRequest struct {
	Grau  string `query:"grau" validate:"required,oneof=1 2" example:"1"`
	Nome  string `query:"nome" validate:"omitempty,min=2,max=100" example:"maria"`
	CPF   string `query:"cpf" validate:"omitempty,cpf" example:"123.456.789-00"`
	Login string `query:"login" validate:"omitempty,min=2,max=60" example:"maria.silva"`
}

func (r ServidorSearchRequest) Validate() error {
	return GetValidator().Struct(r)
}

// ==================== HEALTH ====================

type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp int64  `json:"timestamp" example:"1735689600"`
}

// ==================== VALIDATION ====================

type ValidationError struct {
	Field   string `json:"field" example:"grau"`
	Message string `json:"message" example:"grau must be one of: 1 2"`
}
