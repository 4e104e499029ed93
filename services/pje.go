package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/msribeiro2010/napje-pje-proxy/dto"
	"github.com/msribeiro2010/napje-pje-proxy/model"
	"github.com/msribeiro2010/napje-pje-proxy/shared"
)

// queryTarget is one configured replica pool.
type queryTarget struct {
	partition model.Partition
	dsnEnv    string
	db        *gorm.DB
}

// PJeService routes read-only queries to the PJe replicas. All filter values
// are bound as query parameters and every statement carries a fixed LIMIT.
type PJeService struct {
	appContext.DefaultService

	targets      map[model.Partition]*queryTarget
	poolSize     int
	queryTimeout time.Duration
}

const PJE_SVC = "pje_svc"

const queryLimit = 50

// Adding a replica is a new entry here plus its env var, not new code.
var partitionSources = map[model.Partition]string{
	model.PartitionDegree1: "PJE1_DATABASE_URL",
	model.PartitionDegree2: "PJE2_DATABASE_URL",
}

func (svc PJeService) Id() string {
	return PJE_SVC
}

func (svc *PJeService) Configure(ctx *appContext.Context) error {
	svc.poolSize = 10
	if v, err := strconv.Atoi(os.Getenv("PJE_POOL_SIZE")); err == nil && v > 0 {
		svc.poolSize = v
	}

	svc.queryTimeout = 8 * time.Second
	if d, err := time.ParseDuration(os.Getenv("PJE_QUERY_TIMEOUT")); err == nil && d > 0 {
		svc.queryTimeout = d
	}

	svc.targets = make(map[model.Partition]*queryTarget, len(partitionSources))
	for partition, dsnEnv := range partitionSources {
		svc.targets[partition] = &queryTarget{partition: partition, dsnEnv: dsnEnv}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *PJeService) Start() error {
	for _, target := range svc.targets {
		dsn := os.Getenv(target.dsnEnv)
		if dsn == "" {
			return fmt.Errorf("%s is required", target.dsnEnv)
		}

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return fmt.Errorf("failed to open PJe replica %s: %w", target.partition, err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(svc.poolSize)
		sqlDB.SetMaxIdleConns(svc.poolSize / 2)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)

		target.db = db
		log.WithFields(log.Fields{
			"partition": target.partition,
			"pool_size": svc.poolSize,
		}).Info("PJe replica pool ready")
	}
	return nil
}

func (svc *PJeService) target(partition model.Partition) (*queryTarget, error) {
	target, ok := svc.targets[partition]
	if !ok || target.db == nil {
		return nil, shared.NewInvalidPartitionError(string(partition))
	}
	return target, nil
}

// NormalizeCPF strips everything that is not a digit, so "123.456.789-00"
// and "12345678900" compare equal.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	b.Grow(len(cpf))
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ==================== QUERIES ====================

func (svc *PJeService) SearchOrgaosJulgadores(ctx context.Context, partition model.Partition, search string) ([]model.OrgaoJulgador, error) {
	target, err := svc.target(partition)
	if err != nil {
		return nil, err
	}

	query := `SELECT id_orgao_julgador, ds_orgao_julgador, ds_sigla
		FROM pje.tb_orgao_julgador
		WHERE in_ativo = 'S'`
	args := []interface{}{}

	if search != "" {
		query += ` AND (ds_orgao_julgador ILIKE '%' || ? || '%' OR ds_sigla ILIKE '%' || ? || '%')`
		args = append(args, search, search)
	}

	query += ` ORDER BY ds_orgao_julgador LIMIT ` + strconv.Itoa(queryLimit)

	rows := []model.OrgaoJulgador{}
	if err := svc.run(ctx, target, "orgaos_julgadores", query, args, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (svc *PJeService) SearchProcessos(ctx context.Context, partition model.Partition, req dto.ProcessoSearchRequest) ([]model.Processo, error) {
	target, err := svc.target(partition)
	if err != nil {
		return nil, err
	}

	query := `SELECT p.id_processo_trf, p.nr_processo, p.nr_ano, p.id_orgao_julgador,
			oj.ds_orgao_julgador, p.dt_autuacao, cj.ds_classe_judicial
		FROM pje.tb_processo_trf p
		JOIN pje.tb_orgao_julgador oj ON oj.id_orgao_julgador = p.id_orgao_julgador
		LEFT JOIN pje.tb_classe_judicial cj ON cj.id_classe_judicial = p.id_classe_judicial
		WHERE 1 = 1`
	args := []interface{}{}

	if req.Numero != "" {
		query += ` AND p.nr_processo = ?`
		args = append(args, req.Numero)
	}
	if req.Ano != "" {
		query += ` AND p.nr_ano = ?`
		args = append(args, req.Ano)
	}
	if req.OrgaoJulgadorID != "" {
		query += ` AND p.id_orgao_julgador = ?`
		args = append(args, req.OrgaoJulgadorID)
	}

	query += ` ORDER BY p.dt_autuacao DESC LIMIT ` + strconv.Itoa(queryLimit)

	rows := []model.Processo{}
	if err := svc.run(ctx, target, "processos", query, args, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (svc *PJeService) SearchServidores(ctx context.Context, partition model.Partition, req dto.ServidorSearchRequest) ([]model.Servidor, error) {
	target, err := svc.target(partition)
	if err != nil {
		return nil, err
	}

	query := `SELECT id_usuario, ds_nome, nr_cpf, ds_login, ds_email
		FROM pje.tb_usuario_login
		WHERE in_ativo = 'S'`
	args := []interface{}{}

	if req.Nome != "" {
		query += ` AND ds_nome ILIKE '%' || ? || '%'`
		args = append(args, req.Nome)
	}
	if req.CPF != "" {
		query += ` AND regexp_replace(nr_cpf, '[^0-9]', '', 'g') = ?`
		args = append(args, NormalizeCPF(req.CPF))
	}
	if req.Login != "" {
		query += ` AND ds_login ILIKE '%' || ? || '%'`
		args = append(args, req.Login)
	}

	query += ` ORDER BY ds_nome LIMIT ` + strconv.Itoa(queryLimit)

	rows := []model.Servidor{}
	if err := svc.run(ctx, target, "servidores", query, args, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// run executes one bounded read. The raw driver error stays in the server log;
// the caller gets the generic upstream failure.
func (svc *PJeService) run(ctx context.Context, target *queryTarget, endpoint, query string, args []interface{}, dest interface{}) error {
	queryCtx, cancel := context.WithTimeout(ctx, svc.queryTimeout)
	defer cancel()

	start := time.Now()
	err := target.db.WithContext(queryCtx).Raw(query, args...).Scan(dest).Error
	upstreamQueryDuration.WithLabelValues(endpoint, string(target.partition)).Observe(time.Since(start).Seconds())

	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"endpoint":  endpoint,
			"partition": target.partition,
		}).Error("PJe query failed")
		return shared.NewUpstreamQueryError(err)
	}
	return nil
}
