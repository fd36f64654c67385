package vehiclerepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/cache"
	"gofrota/internal/pkg/logger"
)

// Chave de cache para veículos, por placa.
const vehicleCacheKey = "vehicle:%s"

// VehicleRepository é o acesso a dados da coleção de veículos.
// A busca por placa usa a estratégia Cache-Aside (Redis), pois é o caminho
// quente da retirada e da devolução.
type VehicleRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewVehicleRepository cria e retorna uma nova instância do Repositório de Veículos.
func NewVehicleRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *VehicleRepository {
	return &VehicleRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

// Save persiste um novo veículo.
func (r *VehicleRepository) Save(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO vehicles (plate, make, model, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`

	now := time.Now()
	err := r.DB.QueryRowContext(ctxTimeout, query,
		vehicle.Plate, vehicle.Make, vehicle.Model, now, now,
	).Scan(&vehicle.CreatedAt, &vehicle.UpdatedAt)

	if err != nil {
		r.logger.Error("Falha ao inserir veículo no DB.", err)
		return domain.Vehicle{}, apperror.NewDBError("Falha ao inserir veículo", err)
	}

	return vehicle, nil
}

// FindByPlate busca um veículo pela placa, utilizando a estratégia Cache-Aside.
func (r *VehicleRepository) FindByPlate(ctx context.Context, plate string) (domain.Vehicle, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(vehicleCacheKey, plate)
	var vehicle domain.Vehicle

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &vehicle) == nil {
			return vehicle, nil
		}
		// Se a desserialização falhar, segue para o DB
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	const query = `
        SELECT plate, make, model, created_at, updated_at
        FROM vehicles
        WHERE plate = $1`

	err = r.DB.QueryRowContext(ctxTimeout, query, plate).Scan(
		&vehicle.Plate, &vehicle.Make, &vehicle.Model, &vehicle.CreatedAt, &vehicle.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Vehicle{}, apperror.NewNotFoundError(fmt.Sprintf("Veículo com placa %s não existe na base de dados.", plate))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar veículo no DB.", err)
		return domain.Vehicle{}, apperror.NewDBError("Falha ao buscar veículo", err)
	}

	// 3. Popular o cache para futuras requisições
	if vehicleJSON, marshalErr := json.Marshal(vehicle); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, vehicleJSON, r.CacheTTL)
	}

	return vehicle, nil
}

// FindAll lista todos os veículos. Com sortByPlate, a lista vem ordenada
// pela placa (ascending define a direção).
func (r *VehicleRepository) FindAll(ctx context.Context, sortByPlate, ascending bool) ([]domain.Vehicle, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT plate, make, model, created_at, updated_at FROM vehicles`
	if sortByPlate {
		if ascending {
			query += ` ORDER BY plate ASC`
		} else {
			query += ` ORDER BY plate DESC`
		}
	}

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar veículos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar veículos", err)
	}
	defer rows.Close()

	return scanVehicles(rows)
}

// FindByMake lista os veículos de uma marca específica.
func (r *VehicleRepository) FindByMake(ctx context.Context, make string) ([]domain.Vehicle, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT plate, make, model, created_at, updated_at
        FROM vehicles
        WHERE make = $1`

	rows, err := r.DB.QueryContext(ctxTimeout, query, make)
	if err != nil {
		r.logger.Error("Falha ao filtrar veículos por marca no DB.", err)
		return nil, apperror.NewDBError("Falha ao filtrar veículos por marca", err)
	}
	defer rows.Close()

	return scanVehicles(rows)
}

// Update sobrescreve os dados de um veículo existente (a placa é imutável).
// Retorna NotFoundError quando nenhuma linha foi afetada: o chamador precisa
// saber que a atualização não surtiu efeito.
func (r *VehicleRepository) Update(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE vehicles
        SET make = $1, model = $2, updated_at = $3
        WHERE plate = $4`

	now := time.Now()
	result, err := r.DB.ExecContext(ctxTimeout, query, vehicle.Make, vehicle.Model, now, vehicle.Plate)
	if err != nil {
		r.logger.Error("Falha ao atualizar veículo no DB.", err)
		return domain.Vehicle{}, apperror.NewDBError("Falha ao atualizar veículo", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Vehicle{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return domain.Vehicle{}, apperror.NewNotFoundError(fmt.Sprintf("Veículo com placa %s não existe na base de dados.", vehicle.Plate))
	}

	// Invalida o cache: a próxima leitura busca o registro atualizado no DB.
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(vehicleCacheKey, vehicle.Plate))

	vehicle.UpdatedAt = now
	return vehicle, nil
}

// Delete remove um veículo pela placa. Retorna true se algum registro foi removido.
func (r *VehicleRepository) Delete(ctx context.Context, plate string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM vehicles WHERE plate = $1`, plate)
	if err != nil {
		r.logger.Error("Falha ao excluir veículo no DB.", err)
		return false, apperror.NewDBError("Falha ao excluir veículo", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(vehicleCacheKey, plate))

	return rowsAffected > 0, nil
}

// Count retorna o total de veículos cadastrados.
func (r *VehicleRepository) Count(ctx context.Context) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var total int64
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM vehicles`).Scan(&total)
	if err != nil {
		return 0, apperror.NewDBError("Falha ao contar veículos", err)
	}
	return total, nil
}

// scanVehicles mapeia as linhas do resultado para a lista de entidades.
func scanVehicles(rows *sql.Rows) ([]domain.Vehicle, error) {
	vehicles := []domain.Vehicle{}
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.Plate, &v.Make, &v.Model, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear veículo", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao percorrer veículos", err)
	}
	return vehicles, nil
}
