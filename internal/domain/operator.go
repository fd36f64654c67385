package domain

import "time"

// Operator representa um operador do sistema: o usuário autenticado que
// registra retiradas e devoluções de veículos.
type Operator struct {
	Code         int       `json:"code"`
	Name         string    `json:"name"`
	Login        string    `json:"login"` // Único entre operadores
	PasswordHash string    `json:"-"`     // Oculta o hash da senha no JSON de resposta
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MinPasswordLen é o tamanho mínimo da senha exigido no cadastro.
const MinPasswordLen = 4

// OperatorRegistration representa o payload de entrada para o cadastro de operador.
type OperatorRegistration struct {
	Name     string `json:"name"`
	Login    string `json:"login"`
	Password string `json:"password"`
}
