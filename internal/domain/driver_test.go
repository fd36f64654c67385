package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gofrota/internal/domain"
)

func TestValidCNH(t *testing.T) {
	testCases := []struct {
		name string
		cnh  string
		want bool
	}{
		{"11 dígitos", "12345678901", true},
		{"10 dígitos", "1234567890", false},
		{"12 dígitos", "123456789012", false},
		{"letra no meio", "1234567890a", false},
		{"vazia", "", false},
		{"com espaços", "12345 78901", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ValidCNH(tc.cnh))
		})
	}
}

func TestDriver_CNHValid(t *testing.T) {
	assert.True(t, domain.Driver{CNH: "98765432100"}.CNHValid())
	assert.False(t, domain.Driver{CNH: "987"}.CNHValid())
}
