package utilizationrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
)

// Nome do índice único parcial que garante no máximo uma utilização em
// aberto por veículo (ver migração 00001).
const openVehicleConstraint = "uq_utilizations_open_vehicle"

const utilizationColumns = `code, vehicle_plate, driver_code, checked_out_at, returned_at, checked_out_by, returned_by`

// UtilizationRepository é o acesso a dados da coleção de utilizações.
// As transições de estado (retirada e devolução) são atômicas: a retirada
// se apoia no índice único parcial e a devolução trava a linha em transação.
type UtilizationRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUtilizationRepository cria e retorna uma nova instância do Repositório de Utilizações.
func NewUtilizationRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *UtilizationRepository {
	return &UtilizationRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

// Create persiste uma nova utilização em aberto (retirada).
//
// O insert é a própria verificação "veículo em uso": duas retiradas
// concorrentes do mesmo veículo disputam o índice único parcial e apenas
// uma vence. A perdedora recebe UtilizationError, sem registro criado.
func (r *UtilizationRepository) Create(ctx context.Context, u domain.Utilization) (domain.Utilization, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO utilizations (vehicle_plate, driver_code, checked_out_at, checked_out_by)
        VALUES ($1, $2, $3, $4)
        RETURNING code`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		u.VehiclePlate, u.DriverCode, u.CheckedOutAt, u.CheckedOutBy,
	).Scan(&u.Code)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == openVehicleConstraint {
			return domain.Utilization{}, apperror.NewUtilizationError(fmt.Sprintf("Veículo já está em uso: %s", u.VehiclePlate))
		}
		r.logger.Error("Falha ao inserir utilização no DB.", err)
		return domain.Utilization{}, apperror.NewDBError("Falha ao inserir utilização", err)
	}

	return u, nil
}

// CloseOpen fecha a utilização em aberto de um veículo (devolução),
// registrando o instante e o operador da devolução.
//
// A linha é selecionada com FOR UPDATE dentro de uma transação, então duas
// devoluções concorrentes não fecham o mesmo registro duas vezes. Se o
// invariante de unicidade tiver sido violado por dados legados, o desempate
// é determinístico: fecha-se a retirada mais antiga (menor código em caso
// de empate no horário).
func (r *UtilizationRepository) CloseOpen(ctx context.Context, plate string, returnedBy int, returnedAt time.Time) (domain.Utilization, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de devolução.", err)
		return domain.Utilization{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro

	const querySelect = `
        SELECT code FROM utilizations
        WHERE vehicle_plate = $1 AND returned_at IS NULL
        ORDER BY checked_out_at ASC, code ASC
        LIMIT 1
        FOR UPDATE`

	var code int
	err = tx.QueryRowContext(ctxTimeout, querySelect, plate).Scan(&code)
	if err == sql.ErrNoRows {
		return domain.Utilization{}, apperror.NewNotFoundError(fmt.Sprintf("Não há utilização em aberto para o veículo %s.", plate))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar utilização em aberto para devolução.", err)
		return domain.Utilization{}, apperror.NewDBError("Falha ao buscar utilização em aberto", err)
	}

	const queryUpdate = `
        UPDATE utilizations
        SET returned_at = $1, returned_by = $2
        WHERE code = $3
        RETURNING ` + utilizationColumns

	var u domain.Utilization
	err = tx.QueryRowContext(ctxTimeout, queryUpdate, returnedAt, returnedBy, code).Scan(
		&u.Code, &u.VehiclePlate, &u.DriverCode, &u.CheckedOutAt, &u.ReturnedAt, &u.CheckedOutBy, &u.ReturnedBy,
	)
	if err != nil {
		r.logger.Error("Falha ao fechar utilização no DB.", err)
		return domain.Utilization{}, apperror.NewDBError("Falha ao fechar utilização", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de devolução.", err)
		return domain.Utilization{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	return u, nil
}

// FindByCode busca uma utilização pelo código.
func (r *UtilizationRepository) FindByCode(ctx context.Context, code int) (domain.Utilization, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + utilizationColumns + ` FROM utilizations WHERE code = $1`

	var u domain.Utilization
	err := r.DB.QueryRowContext(ctxTimeout, query, code).Scan(
		&u.Code, &u.VehiclePlate, &u.DriverCode, &u.CheckedOutAt, &u.ReturnedAt, &u.CheckedOutBy, &u.ReturnedBy,
	)

	if err == sql.ErrNoRows {
		return domain.Utilization{}, apperror.NewNotFoundError(fmt.Sprintf("Utilização com código %d não existe na base de dados.", code))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar utilização no DB.", err)
		return domain.Utilization{}, apperror.NewDBError("Falha ao buscar utilização", err)
	}

	return u, nil
}

// FindOpen lista as utilizações em aberto (veículos ainda em uso).
func (r *UtilizationRepository) FindOpen(ctx context.Context) ([]domain.Utilization, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + utilizationColumns + `
        FROM utilizations
        WHERE returned_at IS NULL
        ORDER BY checked_out_at ASC`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar utilizações em aberto no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar utilizações em aberto", err)
	}
	defer rows.Close()

	return scanUtilizations(rows)
}

// FindByPlate lista todas as utilizações de um veículo, em ordem crescente
// de data de retirada.
func (r *UtilizationRepository) FindByPlate(ctx context.Context, plate string) ([]domain.Utilization, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + utilizationColumns + `
        FROM utilizations
        WHERE vehicle_plate = $1
        ORDER BY checked_out_at ASC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, plate)
	if err != nil {
		r.logger.Error("Falha ao listar utilizações por placa no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar utilizações por placa", err)
	}
	defer rows.Close()

	return scanUtilizations(rows)
}

// FindByPlateAndPeriod lista as utilizações de um veículo cuja retirada caiu
// no intervalo fechado [start, end].
func (r *UtilizationRepository) FindByPlateAndPeriod(ctx context.Context, plate string, start, end time.Time) ([]domain.Utilization, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + utilizationColumns + `
        FROM utilizations
        WHERE vehicle_plate = $1 AND checked_out_at >= $2 AND checked_out_at <= $3
        ORDER BY checked_out_at ASC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, plate, start, end)
	if err != nil {
		r.logger.Error("Falha ao buscar utilizações por placa e período no DB.", err)
		return nil, apperror.NewDBError("Falha ao buscar utilizações por placa e período", err)
	}
	defer rows.Close()

	return scanUtilizations(rows)
}

// FindByPeriod lista as utilizações cuja retirada caiu no intervalo fechado [start, end].
func (r *UtilizationRepository) FindByPeriod(ctx context.Context, start, end time.Time) ([]domain.Utilization, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + utilizationColumns + `
        FROM utilizations
        WHERE checked_out_at >= $1 AND checked_out_at <= $2
        ORDER BY checked_out_at ASC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, start, end)
	if err != nil {
		r.logger.Error("Falha ao buscar utilizações por período no DB.", err)
		return nil, apperror.NewDBError("Falha ao buscar utilizações por período", err)
	}
	defer rows.Close()

	return scanUtilizations(rows)
}

// FindAll lista todas as utilizações. Com sorted, a lista vem ordenada pela
// data de retirada (ascending define a direção).
func (r *UtilizationRepository) FindAll(ctx context.Context, sorted, ascending bool) ([]domain.Utilization, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + utilizationColumns + ` FROM utilizations`
	if sorted {
		if ascending {
			query += ` ORDER BY checked_out_at ASC`
		} else {
			query += ` ORDER BY checked_out_at DESC`
		}
	}

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar utilizações no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar utilizações", err)
	}
	defer rows.Close()

	return scanUtilizations(rows)
}

// CountOpenByPlate conta as utilizações em aberto de um veículo.
// Pelo invariante de unicidade o resultado é 0 ou 1.
func (r *UtilizationRepository) CountOpenByPlate(ctx context.Context, plate string) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var total int64
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT COUNT(*) FROM utilizations WHERE vehicle_plate = $1 AND returned_at IS NULL`,
		plate,
	).Scan(&total)
	if err != nil {
		return 0, apperror.NewDBError("Falha ao contar utilizações em aberto", err)
	}
	return total, nil
}

// Count retorna o total de utilizações registradas.
func (r *UtilizationRepository) Count(ctx context.Context) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var total int64
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM utilizations`).Scan(&total)
	if err != nil {
		return 0, apperror.NewDBError("Falha ao contar utilizações", err)
	}
	return total, nil
}

// Delete remove uma utilização pelo código. Retorna true se algum registro foi removido.
func (r *UtilizationRepository) Delete(ctx context.Context, code int) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM utilizations WHERE code = $1`, code)
	if err != nil {
		r.logger.Error("Falha ao excluir utilização no DB.", err)
		return false, apperror.NewDBError("Falha ao excluir utilização", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	return rowsAffected > 0, nil
}

// scanUtilizations mapeia as linhas do resultado para a lista de entidades.
func scanUtilizations(rows *sql.Rows) ([]domain.Utilization, error) {
	utilizations := []domain.Utilization{}
	for rows.Next() {
		var u domain.Utilization
		if err := rows.Scan(&u.Code, &u.VehiclePlate, &u.DriverCode, &u.CheckedOutAt, &u.ReturnedAt, &u.CheckedOutBy, &u.ReturnedBy); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear utilização", err)
		}
		utilizations = append(utilizations, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao percorrer utilizações", err)
	}
	return utilizations, nil
}
