package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/mr1hm/go-travel-brief/internal/models"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store is the SQL-backed CountryRepository shared by the sqlite and postgres backends.
type Store struct {
	db      *sql.DB
	dialect dialect
}

const countryColumns = `country, iso3, population, global_rank, peace_rank, electricity_access,
	inform_index, risk_class, earthquake, river_flood, tsunami, tropical_storm, coastal_flood,
	drought, epidemic, projected_conflict, current_conflict, life_expectancy, gdp_per_capita,
	hdi, fun_fact`

// Exact name first, then shortest, then alphabetical. country_key is the
// Unicode-lowercased name written by Import; SQL LOWER only folds ASCII in SQLite.
const ambiguityOrder = `ORDER BY CASE WHEN country_key = ? THEN 0 ELSE 1 END, LENGTH(country), country`

const schema = `
	CREATE TABLE IF NOT EXISTS country_risk (
		country TEXT PRIMARY KEY,
		iso3 TEXT NOT NULL,
		population REAL,
		global_rank INTEGER,
		peace_rank INTEGER,
		electricity_access REAL,
		inform_index REAL,
		risk_class TEXT,
		earthquake REAL,
		river_flood REAL,
		tsunami REAL,
		tropical_storm REAL,
		coastal_flood REAL,
		drought REAL,
		epidemic REAL,
		projected_conflict REAL,
		current_conflict REAL,
		life_expectancy REAL,
		gdp_per_capita REAL,
		hdi REAL,
		fun_fact TEXT,
		country_key TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_country_risk_iso3 ON country_risk(iso3);
	CREATE INDEX IF NOT EXISTS idx_country_risk_global_rank ON country_risk(global_rank);
`

const keyIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_country_risk_key ON country_risk(country_key)`

func newStore(db *sql.DB, d dialect) *Store {
	return &Store{db: db, dialect: d}
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	if err := s.addKeyColumn(); err != nil {
		return fmt.Errorf("error adding country_key: %w", err)
	}
	if err := s.backfillKeys(); err != nil {
		return fmt.Errorf("error backfilling country_key: %w", err)
	}
	_, err := s.db.Exec(keyIndex)
	return err
}

// addKeyColumn upgrades tables created before country_key existed.
func (s *Store) addKeyColumn() error {
	if s.dialect == dialectPostgres {
		_, err := s.db.Exec(`ALTER TABLE country_risk ADD COLUMN IF NOT EXISTS country_key TEXT`)
		return err
	}

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('country_risk') WHERE name = 'country_key'`).Scan(&n)
	if err != nil || n > 0 {
		return err
	}
	_, err = s.db.Exec(`ALTER TABLE country_risk ADD COLUMN country_key TEXT`)
	return err
}

func (s *Store) backfillKeys() error {
	rows, err := s.db.Query(`SELECT country FROM country_risk WHERE country_key IS NULL`)
	if err != nil {
		return err
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range names {
		if _, err := s.db.Exec(s.rebind(`UPDATE country_risk SET country_key = ? WHERE country = ?`), countryKey(name), name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetByName(ctx context.Context, name string) (*models.CountryRiskRecord, error) {
	name = countryKey(name)
	if name == "" {
		return nil, nil
	}
	q := `SELECT ` + countryColumns + ` FROM country_risk
		WHERE country_key LIKE ? ESCAPE '\' ` + ambiguityOrder + ` LIMIT 1`
	return s.queryOne(ctx, q, likePattern(name), name)
}

func (s *Store) GetExact(ctx context.Context, name string) (*models.CountryRiskRecord, error) {
	name = countryKey(name)
	if name == "" {
		return nil, nil
	}
	q := `SELECT ` + countryColumns + ` FROM country_risk WHERE country_key = ? LIMIT 1`
	return s.queryOne(ctx, q, name)
}

func (s *Store) GetByISO3(ctx context.Context, code string) (*models.CountryRiskRecord, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return nil, nil
	}
	q := `SELECT ` + countryColumns + ` FROM country_risk WHERE iso3 = ? LIMIT 1`
	return s.queryOne(ctx, q, code)
}

func (s *Store) Search(ctx context.Context, query string, limit int) ([]models.CountryRiskRecord, error) {
	query = countryKey(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}
	q := `SELECT ` + countryColumns + ` FROM country_risk
		WHERE country_key LIKE ? ESCAPE '\' OR LOWER(iso3) LIKE ? ESCAPE '\'
		` + ambiguityOrder + ` LIMIT ?`
	pattern := likePattern(query)
	return s.queryMany(ctx, q, pattern, pattern, query, limit)
}

func (s *Store) List(ctx context.Context, limit int) ([]models.CountryRiskRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	q := `SELECT ` + countryColumns + ` FROM country_risk ORDER BY country LIMIT ?`
	return s.queryMany(ctx, q, limit)
}

func (s *Store) ListRanked(ctx context.Context) ([]models.CountryRiskRecord, error) {
	q := `SELECT ` + countryColumns + ` FROM country_risk ORDER BY country`
	return s.queryMany(ctx, q)
}

// Import upserts records keyed by country name. Only the dataset import tool writes.
func (s *Store) Import(ctx context.Context, records []models.CountryRiskRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO country_risk (`+countryColumns+`, country_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (country_key) DO UPDATE SET
			country = excluded.country,
			iso3 = excluded.iso3,
			population = excluded.population,
			global_rank = excluded.global_rank,
			peace_rank = excluded.peace_rank,
			electricity_access = excluded.electricity_access,
			inform_index = excluded.inform_index,
			risk_class = excluded.risk_class,
			earthquake = excluded.earthquake,
			river_flood = excluded.river_flood,
			tsunami = excluded.tsunami,
			tropical_storm = excluded.tropical_storm,
			coastal_flood = excluded.coastal_flood,
			drought = excluded.drought,
			epidemic = excluded.epidemic,
			projected_conflict = excluded.projected_conflict,
			current_conflict = excluded.current_conflict,
			life_expectancy = excluded.life_expectancy,
			gdp_per_capita = excluded.gdp_per_capita,
			hdi = excluded.hdi,
			fun_fact = excluded.fun_fact`))
	if err != nil {
		return 0, fmt.Errorf("error preparing import statement: %w", err)
	}
	defer stmt.Close()

	var count int64
	for _, r := range records {
		if strings.TrimSpace(r.Country) == "" || len(strings.TrimSpace(r.ISO3)) != 3 {
			continue
		}
		h := r.Hazards
		_, err := stmt.ExecContext(ctx,
			strings.TrimSpace(r.Country), strings.ToUpper(strings.TrimSpace(r.ISO3)),
			r.PopulationMillions, nullRank(r.GlobalRank), nullRank(r.PeaceRank), r.ElectricityAccessPct,
			r.InformIndex, r.RiskClass, h.Earthquake, h.RiverFlood, h.Tsunami, h.TropicalStorm,
			h.CoastalFlood, h.Drought, h.Epidemic, h.ProjectedConflict, h.CurrentConflict,
			r.LifeExpectancy, r.GDPPerCapita, r.HDI, r.FunFact, countryKey(r.Country),
		)
		if err != nil {
			return 0, fmt.Errorf("error importing %s: %w", r.Country, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing import: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCountry(row rowScanner) (*models.CountryRiskRecord, error) {
	var r models.CountryRiskRecord
	var population, electricity, inform, lifeExp, gdp, hdi sql.NullFloat64
	var eq, river, tsunami, storm, coastal, drought, epidemic, projected, current sql.NullFloat64
	var globalRank, peaceRank sql.NullInt64
	var riskClass, funFact sql.NullString

	err := row.Scan(
		&r.Country, &r.ISO3, &population, &globalRank, &peaceRank, &electricity,
		&inform, &riskClass, &eq, &river, &tsunami, &storm, &coastal,
		&drought, &epidemic, &projected, &current, &lifeExp, &gdp,
		&hdi, &funFact,
	)
	if err != nil {
		return nil, err
	}

	r.PopulationMillions = population.Float64
	r.GlobalRank = int(globalRank.Int64)
	r.PeaceRank = int(peaceRank.Int64)
	r.ElectricityAccessPct = electricity.Float64
	r.InformIndex = inform.Float64
	r.RiskClass = riskClass.String
	r.Hazards = models.HazardScores{
		Earthquake:        eq.Float64,
		RiverFlood:        river.Float64,
		Tsunami:           tsunami.Float64,
		TropicalStorm:     storm.Float64,
		CoastalFlood:      coastal.Float64,
		Drought:           drought.Float64,
		Epidemic:          epidemic.Float64,
		ProjectedConflict: projected.Float64,
		CurrentConflict:   current.Float64,
	}
	r.LifeExpectancy = lifeExp.Float64
	r.GDPPerCapita = gdp.Float64
	r.HDI = hdi.Float64
	r.FunFact = funFact.String

	return &r, nil
}

func (s *Store) queryOne(ctx context.Context, q string, args ...any) (*models.CountryRiskRecord, error) {
	rec, err := scanCountry(s.db.QueryRowContext(ctx, s.rebind(q), args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying country_risk: %w", err)
	}
	return rec, nil
}

func (s *Store) queryMany(ctx context.Context, q string, args ...any) ([]models.CountryRiskRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("error querying country_risk: %w", err)
	}
	defer rows.Close()

	var out []models.CountryRiskRecord
	for rows.Next() {
		rec, err := scanCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning country_risk row: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country_risk rows: %w", err)
	}
	return out, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.dialect != dialectPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// countryKey is the case-folded form every name comparison runs against.
func countryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func nullRank(rank int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(rank), Valid: rank > 0}
}
