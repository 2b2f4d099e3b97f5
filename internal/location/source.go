package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5"
)

// Source loads the static city dataset.
type Source interface {
	Load(ctx context.Context) ([]Location, error)
}

// LoadJSON decodes a JSON array of {name, country, lat, lng} objects.
// Coordinates may be numbers or numeric strings.
func LoadJSON(r io.Reader) ([]Location, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding city list: %w", err)
	}

	locations := make([]Location, 0, len(raw))
	for i, msg := range raw {
		var loc Location
		if err := json.Unmarshal(msg, &loc); err != nil {
			return nil, fmt.Errorf("city %d: %w", i, err)
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// FileSource reads the dataset from a JSON file.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(_ context.Context) ([]Location, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening city file: %w", err)
	}
	defer f.Close()

	return LoadJSON(f)
}

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads the dataset from the cities table.
type PostgresSource struct {
	db Querier
}

// NewPostgresSource creates a PostgresSource over a pool or connection.
func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// Load implements Source.
func (s *PostgresSource) Load(ctx context.Context) ([]Location, error) {
	query := `
		SELECT name, country, lat, lng
		FROM cities
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying cities: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var (
			loc      Location
			lat, lng float64
		)
		if err := rows.Scan(&loc.Name, &loc.Country, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scanning city: %w", err)
		}
		if loc.Lat, err = toCoordinate(lat); err != nil {
			return nil, fmt.Errorf("city %q: %w", loc.Name, err)
		}
		if loc.Lon, err = toCoordinate(lng); err != nil {
			return nil, fmt.Errorf("city %q: %w", loc.Name, err)
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cities: %w", err)
	}

	return locations, nil
}

// LoadIndex loads locations from src and builds an Index over them.
func LoadIndex(ctx context.Context, src Source, opts ...IndexOption) (*Index, error) {
	locations, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(locations, opts...), nil
}
