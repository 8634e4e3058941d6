package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestParseCatalog(t *testing.T) {
	in := "punto_de_venta;tipo;producto;categoria;precio;stock;operador\n" +
		"Punto Café;cafe;Latte;bebidas;6500;20;caja@sabanapos.edu.co\n" +
		"Punto Café;cafe;Pandebono;panadería;2500;40\n"

	rows, err := parseCatalog(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Punto Café", rows[0].location)
	assert.Equal(t, int64(6500), rows[0].price)
	assert.Equal(t, 20, rows[0].stock)
	assert.Equal(t, "caja@sabanapos.edu.co", rows[0].operator)
	assert.Empty(t, rows[1].operator)
}

func TestParseCatalog_PrecioInvalido(t *testing.T) {
	in := "h;h;h;h;h;h\nMesón;restaurant;Ajiaco;almuerzos;doce;5\n"
	_, err := parseCatalog(strings.NewReader(in))
	assert.Error(t, err)
}

func TestParseCatalog_Latin1(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("h;h;h;h;h;h\nMesón;restaurant;Ajiaco;almuerzos;12000;5\n")
	require.NoError(t, err)

	rows, err := parseCatalog(transform.NewReader(strings.NewReader(latin1), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Mesón", rows[0].location)
}
