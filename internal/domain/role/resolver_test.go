package role_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/role"
)

func TestResolveRole_PorDominio(t *testing.T) {
	r := role.Default()
	cases := []struct {
		email string
		want  string
	}{
		{"stu@unisabana.edu.co", entity.RoleClient},
		{"  Profe.Perez@UniSabana.edu.co ", entity.RoleClient},
		{"ops@sabanapos.edu.co", entity.RoleOperator},
		{"cafeteria-central@SABANAPOS.EDU.CO", entity.RoleOperator},
	}
	for _, tc := range cases {
		got, err := r.ResolveRole(tc.email)
		require.NoError(t, err, tc.email)
		assert.Equal(t, tc.want, got, tc.email)
	}
}

func TestResolveRole_DominioInvalido(t *testing.T) {
	r := role.Default()
	for _, email := range []string{
		"alguien@gmail.com",
		"stu@unisabana.edu.co.evil.com",
		"stu@fake-unisabana.edu.co",
		"@unisabana.edu.co",
		"sin-arroba",
		"",
	} {
		_, err := r.ResolveRole(email)
		assert.ErrorIs(t, err, domain.ErrInvalidDomain, email)
	}
}

func TestResolveRole_DominiosConfigurables(t *testing.T) {
	r := role.NewResolver("@estudiantes.test", "pos.test")
	got, err := r.ResolveRole("a@estudiantes.test")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleClient, got)

	got, err = r.ResolveRole("b@pos.test")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOperator, got)

	_, err = r.ResolveRole("c@unisabana.edu.co")
	assert.ErrorIs(t, err, domain.ErrInvalidDomain)
}

func TestResolveRole_EsDeterminista(t *testing.T) {
	r := role.Default()
	first, _ := r.ResolveRole("ops@sabanapos.edu.co")
	for i := 0; i < 10; i++ {
		again, _ := r.ResolveRole("ops@sabanapos.edu.co")
		assert.Equal(t, first, again)
	}
}

func TestVerifyClaim(t *testing.T) {
	r := role.Default()
	assert.NoError(t, r.VerifyClaim("ops@sabanapos.edu.co", entity.RoleOperator))
	assert.ErrorIs(t, r.VerifyClaim("stu@unisabana.edu.co", entity.RoleOperator), domain.ErrForbidden,
		"un token de operador con correo de cliente debe bloquearse")
	assert.ErrorIs(t, r.VerifyClaim("x@gmail.com", entity.RoleClient), domain.ErrForbidden)
}

func TestIsFeatureAllowed_Tabla(t *testing.T) {
	client, operator := entity.RoleClient, entity.RoleOperator

	for _, f := range []role.Feature{role.FeatureCards, role.FeatureBalance, role.FeatureFavoritesWrite, role.FeatureCartSession} {
		assert.True(t, role.IsFeatureAllowed(client, f), f)
		assert.False(t, role.IsFeatureAllowed(operator, f), f)
	}
	for _, f := range []role.Feature{role.FeatureInventoryManagement, role.FeatureOrderValidation, role.FeatureOrderManagement} {
		assert.False(t, role.IsFeatureAllowed(client, f), f)
		assert.True(t, role.IsFeatureAllowed(operator, f), f)
	}
	for _, f := range []role.Feature{role.FeatureFavoritesRead, role.FeatureOrderStatusRead, role.FeatureOrderCreate} {
		assert.True(t, role.IsFeatureAllowed(client, f), f)
		assert.True(t, role.IsFeatureAllowed(operator, f), f)
	}
	assert.False(t, role.IsFeatureAllowed("admin", role.FeatureCards))
}
