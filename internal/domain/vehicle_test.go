package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gofrota/internal/domain"
)

func TestValidPlate(t *testing.T) {
	testCases := []struct {
		name  string
		plate string
		want  bool
	}{
		{"formato antigo sem hífen", "ABC1234", true},
		{"formato antigo com hífen", "ABC-1234", true},
		{"formato Mercosul sem hífen", "ABC1D23", true},
		{"formato Mercosul com hífen", "ABC-1D23", true},
		{"letras demais", "ABCD123", false},
		{"letras de menos", "AB1234", false},
		{"vazia", "", false},
		{"curta demais", "ABC123", false},
		{"longa demais", "ABC12345", false},
		{"minúsculas não passam sem normalizar", "abc1234", false},
		{"dígito no lugar da letra Mercosul", "ABC1123", true}, // ABC1123 também é formato antigo válido
		{"caractere especial", "ABC@234", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ValidPlate(tc.plate))
		})
	}
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "ABC1234", domain.NormalizePlate("  abc1234 "))
	assert.Equal(t, "ABC-1D23", domain.NormalizePlate("abc-1d23"))
	assert.Equal(t, "", domain.NormalizePlate("   "))
}

func TestNormalizePlate_ThenValid(t *testing.T) {
	// Entrada em minúsculas só é válida depois de normalizada
	plate := domain.NormalizePlate("abc-1d23")
	assert.True(t, domain.ValidPlate(plate))
}

func TestVehicle_PlateValid(t *testing.T) {
	assert.True(t, domain.Vehicle{Plate: "XYZ9876"}.PlateValid())
	assert.False(t, domain.Vehicle{Plate: "XYZ98"}.PlateValid())
}
