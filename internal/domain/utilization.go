package domain

import "time"

// Utilization representa um ciclo de uso de um veículo: criada na retirada
// com devolução nula, fechada uma única vez na devolução. Uma utilização
// está "em aberto" enquanto ReturnedAt for nulo, e nunca reabre.
//
// Invariante central do sistema: para qualquer veículo existe no máximo uma
// utilização em aberto por vez (garantido por índice único parcial no banco).
type Utilization struct {
	Code         int        `json:"code"`
	VehiclePlate string     `json:"vehicle_plate"`
	DriverCode   int        `json:"driver_code"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	CheckedOutBy int        `json:"checked_out_by"`         // Código do operador da retirada
	ReturnedBy   *int       `json:"returned_by,omitempty"` // Código do operador da devolução
}

// Open informa se a utilização está em aberto (veículo ainda em uso).
func (u Utilization) Open() bool {
	return u.ReturnedAt == nil
}
