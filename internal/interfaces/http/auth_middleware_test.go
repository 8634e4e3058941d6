package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/role"
	apphttp "github.com/sabanapos/pedidos-api/internal/interfaces/http"
	pkgjwt "github.com/sabanapos/pedidos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret     = "test-secret-key-for-unit-tests"
	testUserID        = "00000000-0000-0000-0000-000000000001"
	testClientEmail   = "ana@unisabana.edu.co"
	testOperatorEmail = "caja@sabanapos.edu.co"
	testIssuer        = "pedidos-api-test"
	testExpMin        = 60
)

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireFeature para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(f role.Feature) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireFeature(f, role.Default()),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// bearer genera un JWT con el email y rol indicados.
func bearer(t *testing.T, email, r string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, email, r, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET a path y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de acceso por rol
// ──────────────────────────────────────────────────────────────────────────────

func TestAcceso_OperadorGestionaPedidos(t *testing.T) {
	app := buildTestApp(role.FeatureOrderManagement)
	resp := doRequest(t, app, "/protected", bearer(t, testOperatorEmail, entity.RoleOperator))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, entity.RoleOperator, body["role"])
}

func TestAcceso_FuncionalidadDeAmbosRoles(t *testing.T) {
	app := buildTestApp(role.FeatureOrderCreate)
	resp := doRequest(t, app, "/protected", bearer(t, testClientEmail, entity.RoleClient))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAcceso_ClienteBloqueadoEnGestionDePedidos(t *testing.T) {
	app := buildTestApp(role.FeatureOrderManagement)
	resp := doRequest(t, app, "/protected", bearer(t, testClientEmail, entity.RoleClient))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestAcceso_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(role.FeatureOrderManagement)
	resp := doRequest(t, app, "/protected", bearer(t, testOperatorEmail, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

func TestAcceso_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(role.FeatureOrderManagement)
	resp := doRequest(t, app, "/protected", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAcceso_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(role.FeatureOrderManagement)
	resp := doRequest(t, app, "/protected", "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"email":   apphttp.GetEmail(c),
			"role":    apphttp.GetRole(c),
		})
	})

	resp := doRequest(t, app, "/me", bearer(t, testClientEmail, entity.RoleClient))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testClientEmail, body["email"])
	assert.Equal(t, entity.RoleClient, body["role"])
}

func TestAuthMiddleware_TokenEnQuery(t *testing.T) {
	app := fiber.New()
	app.Get("/stream", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.SendString(apphttp.GetEmail(c))
	})

	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testClientEmail, entity.RoleClient, testIssuer, testExpMin)
	require.NoError(t, err)
	resp := doRequest(t, app, "/stream?access_token="+tok, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, testClientEmail, string(body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireFeature
// ──────────────────────────────────────────────────────────────────────────────

func buildFeatureApp(f role.Feature) *fiber.App {
	app := fiber.New()
	app.Post("/feature",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireFeature(f, role.Default()),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	return app
}

func doFeature(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/feature", nil)
	req.Header.Set("Authorization", authHeader)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireFeature_OperadorValida(t *testing.T) {
	app := buildFeatureApp(role.FeatureOrderValidation)
	resp := doFeature(t, app, bearer(t, testOperatorEmail, entity.RoleOperator))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireFeature_ClienteSinFuncionalidad(t *testing.T) {
	app := buildFeatureApp(role.FeatureOrderValidation)
	resp := doFeature(t, app, bearer(t, testClientEmail, entity.RoleClient))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

// Un token que declara operador con un correo de cliente no pasa la revalidación de dominio.
func TestRequireFeature_RolNoCoincideConDominio(t *testing.T) {
	app := buildFeatureApp(role.FeatureOrderValidation)
	resp := doFeature(t, app, bearer(t, testClientEmail, entity.RoleOperator))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "ROLE_MISMATCH")
}

func TestRequireFeature_CorreoExterno(t *testing.T) {
	app := buildFeatureApp(role.FeatureCards)
	resp := doFeature(t, app, bearer(t, "ana@gmail.com", entity.RoleClient))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "ROLE_MISMATCH")
}
