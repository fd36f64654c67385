package driverrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
)

// DriverRepository é o acesso a dados da coleção de motoristas.
type DriverRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewDriverRepository cria e retorna uma nova instância do Repositório de Motoristas.
func NewDriverRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *DriverRepository {
	return &DriverRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

// Save persiste um novo motorista. O código é atribuído pela sequência do
// banco (atômico sob concorrência) e devolvido na entidade retornada.
func (r *DriverRepository) Save(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO drivers (name, cnh, sector, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING code, created_at, updated_at`

	now := time.Now()
	err := r.DB.QueryRowContext(ctxTimeout, query,
		driver.Name, driver.CNH, driver.Sector, now, now,
	).Scan(&driver.Code, &driver.CreatedAt, &driver.UpdatedAt)

	if err != nil {
		r.logger.Error("Falha ao inserir motorista no DB.", err)
		return domain.Driver{}, apperror.NewDBError("Falha ao inserir motorista", err)
	}

	return driver, nil
}

// FindByCode busca um motorista pelo código.
func (r *DriverRepository) FindByCode(ctx context.Context, code int) (domain.Driver, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT code, name, cnh, sector, created_at, updated_at
        FROM drivers
        WHERE code = $1`

	var d domain.Driver
	err := r.DB.QueryRowContext(ctxTimeout, query, code).Scan(
		&d.Code, &d.Name, &d.CNH, &d.Sector, &d.CreatedAt, &d.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Driver{}, apperror.NewNotFoundError(fmt.Sprintf("Motorista com código %d não existe na base de dados.", code))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar motorista no DB.", err)
		return domain.Driver{}, apperror.NewDBError("Falha ao buscar motorista", err)
	}

	return d, nil
}

// FindByCNH busca um motorista pela CNH (chave natural, única).
func (r *DriverRepository) FindByCNH(ctx context.Context, cnh string) (domain.Driver, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT code, name, cnh, sector, created_at, updated_at
        FROM drivers
        WHERE cnh = $1`

	var d domain.Driver
	err := r.DB.QueryRowContext(ctxTimeout, query, cnh).Scan(
		&d.Code, &d.Name, &d.CNH, &d.Sector, &d.CreatedAt, &d.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Driver{}, apperror.NewNotFoundError(fmt.Sprintf("Motorista com CNH %s não existe na base de dados.", cnh))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar motorista por CNH no DB.", err)
		return domain.Driver{}, apperror.NewDBError("Falha ao buscar motorista por CNH", err)
	}

	return d, nil
}

// FindAll lista todos os motoristas.
func (r *DriverRepository) FindAll(ctx context.Context) ([]domain.Driver, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT code, name, cnh, sector, created_at, updated_at FROM drivers ORDER BY code`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar motoristas no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar motoristas", err)
	}
	defer rows.Close()

	return scanDrivers(rows)
}

// FindBySector lista os motoristas de um setor específico.
func (r *DriverRepository) FindBySector(ctx context.Context, sector string) ([]domain.Driver, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT code, name, cnh, sector, created_at, updated_at
        FROM drivers
        WHERE sector = $1
        ORDER BY code`

	rows, err := r.DB.QueryContext(ctxTimeout, query, sector)
	if err != nil {
		r.logger.Error("Falha ao filtrar motoristas por setor no DB.", err)
		return nil, apperror.NewDBError("Falha ao filtrar motoristas por setor", err)
	}
	defer rows.Close()

	return scanDrivers(rows)
}

// Update sobrescreve os dados de um motorista existente, localizado pelo código.
func (r *DriverRepository) Update(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE drivers
        SET name = $1, cnh = $2, sector = $3, updated_at = $4
        WHERE code = $5`

	now := time.Now()
	result, err := r.DB.ExecContext(ctxTimeout, query, driver.Name, driver.CNH, driver.Sector, now, driver.Code)
	if err != nil {
		r.logger.Error("Falha ao atualizar motorista no DB.", err)
		return domain.Driver{}, apperror.NewDBError("Falha ao atualizar motorista", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Driver{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return domain.Driver{}, apperror.NewNotFoundError(fmt.Sprintf("Motorista com código %d não existe na base de dados.", driver.Code))
	}

	driver.UpdatedAt = now
	return driver, nil
}

// Delete remove um motorista pelo código. Retorna true se algum registro foi removido.
func (r *DriverRepository) Delete(ctx context.Context, code int) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM drivers WHERE code = $1`, code)
	if err != nil {
		r.logger.Error("Falha ao excluir motorista no DB.", err)
		return false, apperror.NewDBError("Falha ao excluir motorista", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	return rowsAffected > 0, nil
}

// Count retorna o total de motoristas cadastrados.
func (r *DriverRepository) Count(ctx context.Context) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var total int64
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM drivers`).Scan(&total)
	if err != nil {
		return 0, apperror.NewDBError("Falha ao contar motoristas", err)
	}
	return total, nil
}

// scanDrivers mapeia as linhas do resultado para a lista de entidades.
func scanDrivers(rows *sql.Rows) ([]domain.Driver, error) {
	drivers := []domain.Driver{}
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.Code, &d.Name, &d.CNH, &d.Sector, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear motorista", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao percorrer motoristas", err)
	}
	return drivers, nil
}
