package domain

import (
	"regexp"
	"strings"
	"time"
)

// Vehicle representa um veículo da frota (a Entidade).
// A placa é a identidade natural: única e imutável após o cadastro.
type Vehicle struct {
	Plate     string    `json:"plate"` // Placa normalizada (maiúscula, sem espaços)
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Padrões de placa aceitos (hífen removido antes da checagem):
// formato antigo AAA9999 e formato Mercosul AAA9A99.
var (
	oldPlatePattern      = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
	mercosulPlatePattern = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$`)
)

// NormalizePlate padroniza a placa para comparação e persistência:
// remove espaços nas pontas e converte para maiúsculas. O hífen é mantido
// como informado (ele só é descartado na validação).
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// PlateValid verifica se a placa do veículo está em um dos formatos nacionais.
func (v Vehicle) PlateValid() bool {
	return ValidPlate(v.Plate)
}

// ValidPlate verifica se uma placa está no formato antigo (ABC-1234 ou ABC1234)
// ou no formato Mercosul (ABC1D23 ou ABC-1D23).
func ValidPlate(plate string) bool {
	if plate == "" {
		return false
	}

	bare := strings.ReplaceAll(plate, "-", "")
	if len(bare) != 7 {
		return false
	}

	return oldPlatePattern.MatchString(bare) || mercosulPlatePattern.MatchString(bare)
}
