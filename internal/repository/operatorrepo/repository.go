package operatorrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
)

// OperatorRepository é o acesso a dados da coleção de operadores do sistema.
type OperatorRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewOperatorRepository cria e retorna uma nova instância do Repositório de Operadores.
func NewOperatorRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *OperatorRepository {
	return &OperatorRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

// Save persiste um novo operador. O código é atribuído pela sequência do banco.
func (r *OperatorRepository) Save(ctx context.Context, operator domain.Operator) (domain.Operator, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO operators (name, login, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING code, created_at, updated_at`

	now := time.Now()
	err := r.DB.QueryRowContext(ctxTimeout, query,
		operator.Name, operator.Login, operator.PasswordHash, now, now,
	).Scan(&operator.Code, &operator.CreatedAt, &operator.UpdatedAt)

	if err != nil {
		r.logger.Error("Falha ao inserir operador no DB.", err)
		return domain.Operator{}, apperror.NewDBError("Falha ao inserir operador", err)
	}

	return operator, nil
}

// FindByCode busca um operador pelo código.
func (r *OperatorRepository) FindByCode(ctx context.Context, code int) (domain.Operator, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT code, name, login, password_hash, created_at, updated_at
        FROM operators
        WHERE code = $1`

	var o domain.Operator
	err := r.DB.QueryRowContext(ctxTimeout, query, code).Scan(
		&o.Code, &o.Name, &o.Login, &o.PasswordHash, &o.CreatedAt, &o.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Operator{}, apperror.NewNotFoundError(fmt.Sprintf("Operador com código %d não existe na base de dados.", code))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar operador no DB.", err)
		return domain.Operator{}, apperror.NewDBError("Falha ao buscar operador", err)
	}

	return o, nil
}

// FindByLogin busca um operador pelo login (chave natural, única).
func (r *OperatorRepository) FindByLogin(ctx context.Context, login string) (domain.Operator, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT code, name, login, password_hash, created_at, updated_at
        FROM operators
        WHERE login = $1`

	var o domain.Operator
	err := r.DB.QueryRowContext(ctxTimeout, query, login).Scan(
		&o.Code, &o.Name, &o.Login, &o.PasswordHash, &o.CreatedAt, &o.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Operator{}, apperror.NewNotFoundError(fmt.Sprintf("Operador com login %s não existe na base de dados.", login))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar operador por login no DB.", err)
		return domain.Operator{}, apperror.NewDBError("Falha ao buscar operador por login", err)
	}

	return o, nil
}

// FindAll lista todos os operadores.
func (r *OperatorRepository) FindAll(ctx context.Context) ([]domain.Operator, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT code, name, login, password_hash, created_at, updated_at FROM operators ORDER BY code`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar operadores no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar operadores", err)
	}
	defer rows.Close()

	operators := []domain.Operator{}
	for rows.Next() {
		var o domain.Operator
		if err := rows.Scan(&o.Code, &o.Name, &o.Login, &o.PasswordHash, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear operador", err)
		}
		operators = append(operators, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao percorrer operadores", err)
	}

	return operators, nil
}

// Update sobrescreve os dados de um operador existente, localizado pelo código.
func (r *OperatorRepository) Update(ctx context.Context, operator domain.Operator) (domain.Operator, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE operators
        SET name = $1, login = $2, password_hash = $3, updated_at = $4
        WHERE code = $5`

	now := time.Now()
	result, err := r.DB.ExecContext(ctxTimeout, query,
		operator.Name, operator.Login, operator.PasswordHash, now, operator.Code,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar operador no DB.", err)
		return domain.Operator{}, apperror.NewDBError("Falha ao atualizar operador", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Operator{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return domain.Operator{}, apperror.NewNotFoundError(fmt.Sprintf("Operador com código %d não existe na base de dados.", operator.Code))
	}

	operator.UpdatedAt = now
	return operator, nil
}

// Delete remove um operador pelo código. Retorna true se algum registro foi removido.
func (r *OperatorRepository) Delete(ctx context.Context, code int) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM operators WHERE code = $1`, code)
	if err != nil {
		r.logger.Error("Falha ao excluir operador no DB.", err)
		return false, apperror.NewDBError("Falha ao excluir operador", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	return rowsAffected > 0, nil
}

// Count retorna o total de operadores cadastrados.
func (r *OperatorRepository) Count(ctx context.Context) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var total int64
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM operators`).Scan(&total)
	if err != nil {
		return 0, apperror.NewDBError("Falha ao contar operadores", err)
	}
	return total, nil
}
