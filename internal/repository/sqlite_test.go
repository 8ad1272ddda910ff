package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func photo(id int, lat, lon float64, year, year2 int) models.Image {
	return models.Image{
		ID:         id,
		Coordinate: geo.Coordinate{Latitude: lat, Longitude: lon},
		Year:       year,
		Year2:      year2,
		Title:      "Test photo",
		Direction:  models.DirectionNorth,
		File:       "a/b/c.jpg",
	}
}

func TestSQLiteDB_AddAndGetPhoto(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, photo(123, 55.75, 37.61, 1900, 1910)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := db.GetByID(ctx, 123)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Test photo" || got.Direction != models.DirectionNorth || got.Year2 != 1910 {
		t.Errorf("unexpected photo %+v", got)
	}

	_, err = db.GetByID(ctx, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_Exists(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	exists, err := db.Exists(ctx, 1)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected false for nonexistent ID")
	}

	db.Add(ctx, photo(1, 0, 0, 1900, 1900))

	exists, err = db.Exists(ctx, 1)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected true for existing ID")
	}
}

func TestSQLiteDB_DuplicateAdd(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, photo(1, 0, 0, 1900, 1900)); err != nil {
		t.Fatalf("First Add failed: %v", err)
	}
	if err := db.Add(ctx, photo(1, 0, 0, 1900, 1900)); err == nil {
		t.Error("expected error for duplicate ID, got nil")
	}
}

func TestSQLiteDB_AddBatchSkipsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.Add(ctx, photo(1, 0, 0, 1900, 1900))

	added, err := db.AddBatch(ctx, []models.Image{
		photo(1, 0, 0, 1900, 1900),
		photo(2, 0, 0, 1900, 1900),
		photo(3, 0, 0, 1900, 1900),
	})
	if err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}
	if added != 2 {
		t.Errorf("expected 2 new photos, got %d", added)
	}
}

func TestSQLiteDB_ListPhotos_WithFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.AddBatch(ctx, []models.Image{
		photo(1, 10, 10, 1890, 1895),
		photo(2, 10.5, 10.5, 1930, 1935),
		photo(3, 11, 11, 1960, 1960),
		photo(4, 40, 40, 1930, 1930),
		photo(5, 10, 179.5, 1930, 1930),
		photo(6, 10, -179.5, 1930, 1930),
	})

	bound := orb.Bound{Min: orb.Point{9, 9}, Max: orb.Point{12, 12}}
	results, err := db.ListPhotos(ctx, Filter{Bound: &bound})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 photos in bound, got %d", len(results))
	}

	years := models.YearRange{Lower: 1900, Upper: 1950}
	results, err = db.ListPhotos(ctx, Filter{Bound: &bound, Years: &years})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != 2 {
		t.Errorf("expected only photo 2, got %+v", results)
	}

	across := orb.Bound{Min: orb.Point{179, 9}, Max: orb.Point{181, 11}}
	results, err = db.ListPhotos(ctx, Filter{Bound: &across})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 photos across the antimeridian, got %d", len(results))
	}

	results, err = db.ListPhotos(ctx, Filter{Limit: 2})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 photos with limit, got %d", len(results))
	}
}
