package model

import (
	"time"

	"github.com/msribeiro2010/napje-pje-proxy/shared"
)

// Partition selects which PJe replica serves a request.
type Partition string

const (
	PartitionDegree1 Partition = "1"
	PartitionDegree2 Partition = "2"
)

// ParsePartition maps the caller-supplied grau to a typed partition. Unknown
// values are an error, never a silent fallback to a default pool.
func ParsePartition(value string) (Partition, error) {
	switch Partition(value) {
	case PartitionDegree1:
		return PartitionDegree1, nil
	case PartitionDegree2:
		return PartitionDegree2, nil
	default:
		return "", shared.NewInvalidPartitionError(value)
	}
}

// Read-only projections of the PJe replica schema. The proxy never writes to
// these tables.

type OrgaoJulgador struct {
	ID    int64  `json:"id" gorm:"column:id_orgao_julgador"`
	Nome  string `json:"nome" gorm:"column:ds_orgao_julgador"`
	Sigla string `json:"sigla" gorm:"column:ds_sigla"`
}

type Processo struct {
	ID              int64      `json:"id" gorm:"column:id_processo_trf"`
	Numero          string     `json:"numero" gorm:"column:nr_processo"`
	Ano             int        `json:"ano" gorm:"column:nr_ano"`
	OrgaoJulgadorID int64      `json:"orgao_julgador_id" gorm:"column:id_orgao_julgador"`
	OrgaoJulgador   string     `json:"orgao_julgador" gorm:"column:ds_orgao_julgador"`
	DataAutuacao    *time.Time `json:"data_autuacao" gorm:"column:dt_autuacao"`
	ClasseJudicial  string     `json:"classe_judicial" gorm:"column:ds_classe_judicial"`
}

type Servidor struct {
	ID    int64  `json:"id" gorm:"column:id_usuario"`
	Nome  string `json:"nome" gorm:"column:ds_nome"`
	CPF   string `json:"cpf" gorm:"column:nr_cpf"`
	Login string `json:"login" gorm:"column:ds_login"`
	Email string `json:"email" gorm:"column:ds_email"`
}
