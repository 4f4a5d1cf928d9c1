package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	ID          int64
	Category    string
	Name        string
	Price       string
	Stock       int
	Description []string
	Badge       string
}

// Apply inserts the legacy catalog and a back-office account for manual
// testing. It is idempotent via ON CONFLICT. Legacy products keep their
// numeric ids, which is what the delete fallback lookup exists for.
func Apply(ctx context.Context, pool *pgxpool.Pool, adminEmail, adminPassword string) error {
	products := []productSeed{
		{
			ID:          1,
			Category:    "Cascos y fundas",
			Name:        "AGV Pista GP RR",
			Price:       "4500.00",
			Stock:       5,
			Description: []string{"Fibra de carbono 100%", "Sistema de hidratación", "Ventilación extrema", "Visor óptico clase 1", "Homologación FIM"},
			Badge:       "PREMIUM",
		},
		{
			ID:          2,
			Category:    "Cascos y fundas",
			Name:        "Shoei NXR 2 Mate",
			Price:       "2100.00",
			Stock:       12,
			Description: []string{"Aerodinámica avanzada", "Reducción de ruido", "Visor CWR-F2", "Pinlock incluido", "E.Q.R.S. seguridad"},
		},
		{
			ID:          3,
			Category:    "Protección personal",
			Name:        "Chaqueta Alpinestars",
			Price:       "1200.00",
			Stock:       3,
			Description: []string{"Cuero bovino premium", "Protecciones Nucleon Flex", "Forro térmico desmontable", "Ajuste deportivo", "Cremallera de conexión"},
		},
		{
			ID:          4,
			Category:    "Protección personal",
			Name:        "Guantes Dainese Full Metal",
			Price:       "950.00",
			Stock:       8,
			Description: []string{"Titanio y Fibra de Carbono", "Cuero de cabra", "Costuras de aramida", "Protección de meñique", "Agarre mejorado"},
			Badge:       "PRO",
		},
		{
			ID:          5,
			Category:    "Accesorios de lujo",
			Name:        "Intercomunicador Cardo",
			Price:       "100.00",
			Stock:       15,
			Description: []string{"Tecnología Mesh 2.0", "Sonido JBL", "Comandos de voz", "Impermeable IP67", "Alcance 1.6km"},
		},
		{
			ID:          6,
			Category:    "Parrillas y sliders",
			Name:        "Slider de Motor Universal",
			Price:       "350.00",
			Stock:       0,
			Description: []string{"Aluminio CNC", "Protección de impacto", "Fácil instalación", "Diseño aerodinámico", "Universal"},
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %d: %w", p.ID, err)
		}
	}

	if err := ensureAdmin(ctx, pool, adminEmail, adminPassword); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (id, category, name, price, stock, description, badge)
VALUES (to_jsonb($1::bigint), $2, $3, $4::numeric, $5, $6, NULLIF($7, ''))
ON CONFLICT (id) DO UPDATE SET
    category = EXCLUDED.category,
    name = EXCLUDED.name,
    price = EXCLUDED.price,
    description = EXCLUDED.description,
    badge = EXCLUDED.badge
`
	_, err := pool.Exec(ctx, q, p.ID, p.Category, p.Name, p.Price, p.Stock, p.Description, p.Badge)
	return err
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO admin_users (email, password_hash)
VALUES ($1, $2)
ON CONFLICT (email) DO NOTHING
`
	_, err = pool.Exec(ctx, q, email, string(hashed))
	return err
}
