package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/domain/role"
)

// claimVerifier es el contrato mínimo que necesita el middleware para revalidar el rol.
// Lo implementa role.Resolver.
type claimVerifier interface {
	VerifyClaim(email, claimedRole string) error
}

// RequireFeature devuelve un middleware Fiber que verifica que el rol del token pueda usar
// la funcionalidad y que ese rol siga correspondiendo al dominio del email. Debe usarse
// DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 403 FORBIDDEN → el rol no tiene la funcionalidad.
//   - 403 ROLE_MISMATCH → el rol declarado no coincide con el dominio del correo.
func RequireFeature(feature role.Feature, verifier claimVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, current := GetEmail(c), GetRole(c)
		if email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "email no encontrado en el token",
			})
		}
		if !role.IsFeatureAllowed(current, feature) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "la funcionalidad '" + string(feature) + "' no está disponible para el rol " + current,
			})
		}
		if err := verifier.VerifyClaim(email, current); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "ROLE_MISMATCH",
				Message: "el rol no corresponde al dominio del correo",
			})
		}
		return c.Next()
	}
}
