package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS photos (
			cid INTEGER PRIMARY KEY,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			year INTEGER NOT NULL,
			year2 INTEGER NOT NULL,
			title TEXT NOT NULL,
			direction TEXT,
			file TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_photos_position ON photos(latitude, longitude);
		CREATE INDEX IF NOT EXISTS idx_photos_years ON photos(year, year2);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

const insertPhoto = `
	INSERT INTO photos (cid, latitude, longitude, year, year2, title, direction, file)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (s *SQLiteDB) Add(ctx context.Context, img models.Image) error {
	_, err := s.db.ExecContext(ctx, insertPhoto,
		img.ID, img.Coordinate.Latitude, img.Coordinate.Longitude,
		img.Year, img.Year2, img.Title, string(img.Direction), img.File,
	)
	if err != nil {
		return fmt.Errorf("error inserting photo %d: %w", img.ID, err)
	}
	return nil
}

// AddBatch inserts images in one transaction, skipping ids already present.
func (s *SQLiteDB) AddBatch(ctx context.Context, images []models.Image) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, strings.Replace(insertPhoto, "INSERT", "INSERT OR IGNORE", 1))
	if err != nil {
		return 0, fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, img := range images {
		res, err := stmt.ExecContext(ctx,
			img.ID, img.Coordinate.Latitude, img.Coordinate.Longitude,
			img.Year, img.Year2, img.Title, string(img.Direction), img.File,
		)
		if err != nil {
			return 0, fmt.Errorf("error inserting photo %d: %w", img.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing photos: %w", err)
	}
	return added, nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id int) (*models.Image, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT cid, latitude, longitude, year, year2, title, direction, file
		FROM photos WHERE cid = ?`, id)

	img, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading photo %d: %w", id, err)
	}
	return &img, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, id int) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM photos WHERE cid = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("error checking photo %d: %w", id, err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) ListPhotos(ctx context.Context, opts Filter) ([]models.Image, error) {
	var (
		where []string
		args  []any
	)

	if opts.Bound != nil {
		where = append(where, "latitude BETWEEN ? AND ?")
		args = append(args, opts.Bound.Min.Lat(), opts.Bound.Max.Lat())

		var lonClauses []string
		for _, r := range longitudeRanges(*opts.Bound) {
			lonClauses = append(lonClauses, "longitude BETWEEN ? AND ?")
			args = append(args, r[0], r[1])
		}
		where = append(where, "("+strings.Join(lonClauses, " OR ")+")")
	}
	if opts.Years != nil {
		where = append(where, "year <= ? AND year2 >= ?")
		args = append(args, opts.Years.Upper, opts.Years.Lower)
	}

	query := `SELECT cid, latitude, longitude, year, year2, title, direction, file FROM photos`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY cid"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying photos: %w", err)
	}
	defer rows.Close()

	var out []models.Image
	for rows.Next() {
		img, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning photo: %w", err)
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row scanner) (models.Image, error) {
	var (
		img       models.Image
		direction sql.NullString
	)
	err := row.Scan(&img.ID, &img.Coordinate.Latitude, &img.Coordinate.Longitude,
		&img.Year, &img.Year2, &img.Title, &direction, &img.File)
	if err != nil {
		return models.Image{}, err
	}
	img.Direction = models.ParseDirection(direction.String)
	return img, nil
}

// longitudeRanges splits a bound that crosses the antimeridian into canonical ranges.
func longitudeRanges(b orb.Bound) [][2]float64 {
	if b.Max.Lon()-b.Min.Lon() >= 360 {
		return [][2]float64{{-180, 180}}
	}
	lo := geo.Coordinate{Longitude: b.Min.Lon()}.Wrapped().Longitude
	hi := geo.Coordinate{Longitude: b.Max.Lon()}.Wrapped().Longitude
	if lo <= hi {
		return [][2]float64{{lo, hi}}
	}
	return [][2]float64{{lo, 180}, {-180, hi}}
}
