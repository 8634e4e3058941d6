// seed aplica las migraciones y carga el catálogo inicial de puntos de venta, productos y operadores
// desde un CSV (UTF-8 o ISO-8859-1, como lo exporta Excel en español).
//
// Uso: go run ./cmd/seed [-migrations migrations] [-down] [catalogo.csv]
//
// Columnas: punto_de_venta;tipo;producto;categoria;precio;stock;operador
// El operador es opcional y se asigna al punto de venta de la fila.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/application/inventory"
	"github.com/sabanapos/pedidos-api/internal/application/usecase"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
	"github.com/sabanapos/pedidos-api/internal/infrastructure/postgres"
	"github.com/sabanapos/pedidos-api/pkg/config"
	"github.com/sabanapos/pedidos-api/pkg/logger"
	"github.com/sabanapos/pedidos-api/pkg/retry"
)

const seedActor = "seed"

type row struct {
	location string
	kind     string
	product  string
	category string
	price    int64
	stock    int
	operator string
}

func main() {
	migrationsDir := flag.String("migrations", "migrations", "directorio con los *.sql")
	down := flag.Bool("down", false, "revertir las migraciones en lugar de aplicarlas")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	direction := "up"
	if *down {
		direction = "down"
	}
	n, err := postgres.RunMigrations(ctx, pool, *migrationsDir, direction)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Int("archivos", n).Str("direccion", direction).Msg("migraciones aplicadas")

	if *down || flag.NArg() == 0 {
		return
	}

	rows, err := readCatalog(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

	locations := postgres.NewLocationRepository(pool)
	products := postgres.NewProductRepository(pool)
	ledger := inventory.NewLedger(postgres.NewTxRunner(pool), products, nil, inventory.Config{
		LowStockThreshold: cfg.Ledger.LowStockThreshold,
		Retry:             retry.DefaultPolicy(),
	}, log.Component("ledger"))

	s := &seeder{locationUC: usecase.NewLocationUseCase(locations), locations: locations, products: products, ledger: ledger, byName: map[string]string{}}
	if err := s.loadExisting(ctx); err != nil {
		log.Fatal().Err(err).Msg("puntos de venta existentes")
	}
	for i, r := range rows {
		if err := s.apply(ctx, r); err != nil {
			log.Fatal().Err(err).Int("fila", i+2).Str("producto", r.product).Msg("cargar fila")
		}
	}
	log.Info().
		Int("filas", len(rows)).
		Int("puntos_de_venta", len(s.byName)).
		Msg("catálogo cargado")
}

type seeder struct {
	locationUC *usecase.LocationUseCase
	locations  repository.LocationRepository
	products   repository.ProductRepository
	ledger     *inventory.Ledger
	byName     map[string]string // nombre en minúsculas → id
}

func (s *seeder) loadExisting(ctx context.Context) error {
	list, err := s.locations.List(ctx)
	if err != nil {
		return err
	}
	for _, l := range list {
		s.byName[strings.ToLower(l.Name)] = l.ID
	}
	return nil
}

func (s *seeder) apply(ctx context.Context, r row) error {
	now := time.Now()
	key := strings.ToLower(r.location)
	locID, ok := s.byName[key]
	if !ok {
		loc, err := s.locationUC.Create(ctx, dto.CreateLocationRequest{Name: r.location, Kind: r.kind})
		if err != nil {
			return fmt.Errorf("punto de venta %q: %w", r.location, err)
		}
		locID = loc.ID
		s.byName[key] = locID
	}
	if r.operator != "" {
		if err := s.locations.AssignOperator(ctx, &entity.OperatorAssignment{
			LocationID:    locID,
			OperatorEmail: strings.ToLower(r.operator),
			CreatedAt:     now,
		}); err != nil {
			return err
		}
	}
	if r.product == "" {
		return nil
	}
	p := &entity.Product{
		ID:         uuid.New().String(),
		LocationID: locID,
		Name:       r.product,
		Category:   r.category,
		Price:      r.price,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	if r.stock > 0 {
		if _, err := s.ledger.Restock(ctx, locID, p.ID, seedActor, r.stock); err != nil {
			return err
		}
	}
	return nil
}

func readCatalog(path string) ([]row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in io.Reader = strings.NewReader(string(raw))
	if !utf8.Valid(raw) {
		in = transform.NewReader(strings.NewReader(string(raw)), charmap.ISO8859_1.NewDecoder())
	}
	return parseCatalog(in)
}

func parseCatalog(in io.Reader) ([]row, error) {
	r := csv.NewReader(in)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out []row
	header := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 6 {
			return nil, fmt.Errorf("fila %d: se esperaban al menos 6 columnas", len(out)+2)
		}
		price, err := strconv.ParseInt(strings.TrimSpace(rec[4]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fila %d: precio: %w", len(out)+2, err)
		}
		stock, err := strconv.Atoi(strings.TrimSpace(rec[5]))
		if err != nil {
			return nil, fmt.Errorf("fila %d: stock: %w", len(out)+2, err)
		}
		rw := row{
			location: strings.TrimSpace(rec[0]),
			kind:     strings.ToLower(strings.TrimSpace(rec[1])),
			product:  strings.TrimSpace(rec[2]),
			category: strings.TrimSpace(rec[3]),
			price:    price,
			stock:    stock,
		}
		if len(rec) > 6 {
			rw.operator = strings.TrimSpace(rec[6])
		}
		out = append(out, rw)
	}
	return out, nil
}
