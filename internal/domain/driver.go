package domain

import "time"

// Driver representa um motorista autorizado a utilizar os veículos da frota.
// O código é gerado pela camada de persistência (sequência, começando em 1).
type Driver struct {
	Code      int       `json:"code"`
	Name      string    `json:"name"`
	CNH       string    `json:"cnh"` // Carteira Nacional de Habilitação (11 dígitos, única)
	Sector    string    `json:"sector"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CNHValid verifica se a CNH do motorista é composta por exatamente 11 dígitos numéricos.
func (d Driver) CNHValid() bool {
	return ValidCNH(d.CNH)
}

// ValidCNH verifica se uma CNH tem exatamente 11 dígitos numéricos.
func ValidCNH(cnh string) bool {
	if len(cnh) != 11 {
		return false
	}
	for _, r := range cnh {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
