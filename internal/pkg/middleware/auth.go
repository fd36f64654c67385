package middleware

import (
	"context"
	"net/http"

	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/token"
)

// ContextKey é o tipo das chaves usadas para armazenar dados no contexto.
// Usamos um tipo próprio para garantir que a chave seja única e não haja
// conflito com chaves string de outros pacotes.
type ContextKey int

const (
	OperatorClaimsKey ContextKey = iota
)

// OperatorClaims representa os dados do operador extraídos do token JWT,
// que serão anexados ao contexto da requisição.
type OperatorClaims struct {
	OperatorCode int
	Login        string
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware cria uma função de middleware que valida um JWT e anexa as
// claims (código e login do operador) ao contexto da requisição.
// Toda rota que muda estado de utilização passa por aqui: a autenticação é
// pré-condição obrigatória da retirada e da devolução.
func NewAuthMiddleware(tokenSvc TokenService) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			// 1. Extrair o Token do Header Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || len(authHeader) < 7 || authHeader[:7] != "Bearer " {
				http.Error(w, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado.").Error(), http.StatusUnauthorized)
				return
			}

			tokenString := authHeader[7:]

			// 2. Validar o Token
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, apperror.NewUnauthorizedError("Token inválido ou expirado.").Error(), http.StatusUnauthorized)
				return
			}

			// 3. Anexar Claims ao Contexto
			operatorClaims := OperatorClaims{
				OperatorCode: claims.OperatorCode,
				Login:        claims.Login,
			}

			ctx := context.WithValue(r.Context(), OperatorClaimsKey, operatorClaims)

			// Chama o próximo handler com o novo contexto
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// GetOperatorClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetOperatorClaimsFromContext(ctx context.Context) (OperatorClaims, bool) {
	claims, ok := ctx.Value(OperatorClaimsKey).(OperatorClaims)
	return claims, ok
}
