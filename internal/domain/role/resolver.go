// Package role deriva el rol de una cuenta a partir del sufijo de dominio de su correo
// y define qué funcionalidades puede usar cada rol.
package role

import (
	"strings"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// Dominios institucionales por defecto.
const (
	DefaultClientDomain   = "unisabana.edu.co"
	DefaultOperatorDomain = "sabanapos.edu.co"
)

// Feature funcionalidad protegida por rol.
type Feature string

const (
	FeatureCards               Feature = "cards"
	FeatureBalance             Feature = "balance"
	FeatureFavoritesWrite      Feature = "favorites-write"
	FeatureFavoritesRead       Feature = "favorites-read"
	FeatureInventoryManagement Feature = "inventory-management"
	FeatureOrderValidation     Feature = "order-validation"
	FeatureOrderStatusRead     Feature = "order-status-read"
	FeatureOrderCreate         Feature = "order-create"
	FeatureOrderManagement     Feature = "order-management"
	FeatureCartSession         Feature = "cart-session"
)

var featureTable = map[Feature][]string{
	FeatureCards:               {entity.RoleClient},
	FeatureBalance:             {entity.RoleClient},
	FeatureFavoritesWrite:      {entity.RoleClient},
	FeatureInventoryManagement: {entity.RoleOperator},
	FeatureOrderValidation:     {entity.RoleOperator},
	FeatureFavoritesRead:       {entity.RoleClient, entity.RoleOperator},
	FeatureOrderStatusRead:     {entity.RoleClient, entity.RoleOperator},
	FeatureOrderCreate:         {entity.RoleClient, entity.RoleOperator},
	FeatureOrderManagement:     {entity.RoleOperator},
	FeatureCartSession:         {entity.RoleClient},
}

// Resolver aplica la política de dominios. Es un valor inmutable; no guarda estado por usuario.
type Resolver struct {
	clientSuffix   string
	operatorSuffix string
}

// NewResolver construye un resolver con los dominios institucionales indicados.
func NewResolver(clientDomain, operatorDomain string) Resolver {
	return Resolver{
		clientSuffix:   "@" + normalizeDomain(clientDomain),
		operatorSuffix: "@" + normalizeDomain(operatorDomain),
	}
}

// Default resolver con los dominios de la universidad y de los puntos de venta.
func Default() Resolver {
	return NewResolver(DefaultClientDomain, DefaultOperatorDomain)
}

// ResolveRole devuelve el rol que corresponde al correo o domain.ErrInvalidDomain.
func (r Resolver) ResolveRole(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(e, "@")
	if at <= 0 || at == len(e)-1 {
		return "", domain.ErrInvalidDomain
	}
	switch {
	case strings.HasSuffix(e, r.clientSuffix):
		return entity.RoleClient, nil
	case strings.HasSuffix(e, r.operatorSuffix):
		return entity.RoleOperator, nil
	}
	return "", domain.ErrInvalidDomain
}

// VerifyClaim rederiva el rol desde el correo y lo compara con el rol declarado (token o registro guardado).
// Un desacuerdo devuelve domain.ErrForbidden: la acción se bloquea, el rol no se corrige.
func (r Resolver) VerifyClaim(email, claimedRole string) error {
	derived, err := r.ResolveRole(email)
	if err != nil {
		return domain.ErrForbidden
	}
	if derived != claimedRole {
		return domain.ErrForbidden
	}
	return nil
}

// IsFeatureAllowed tabla estática rol → funcionalidad.
func IsFeatureAllowed(role string, feature Feature) bool {
	for _, allowed := range featureTable[feature] {
		if allowed == role {
			return true
		}
	}
	return false
}

func normalizeDomain(d string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "@")
}
