// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/wisata/internal/logging"
	"github.com/tomtom215/wisata/internal/models"
	"github.com/tomtom215/wisata/internal/recommend"
)

// csvSource returns a read_csv table expression for path. Every column is
// read as VARCHAR so parsing errors surface here with row context instead of
// as DuckDB sniffer errors.
func csvSource(path string) string {
	return fmt.Sprintf("read_csv(%s, header=true, all_varchar=true)", quoteLiteral(path))
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// csvColumns returns the header of the CSV file at path.
func (db *DB) csvColumns(ctx context.Context, path string) (map[string]bool, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT * FROM "+csvSource(path)+" LIMIT 0")
	if err != nil {
		return nil, malformed(path, 0, "cannot read csv: %v", err)
	}
	defer closeWithLog(rows, "rows")

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", path, err)
	}
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set, nil
}

// requireColumns fails with ErrMalformedInput naming the first missing column.
func requireColumns(path string, have map[string]bool, want ...string) error {
	for _, c := range want {
		if !have[c] {
			return malformed(path, 0, "missing column %q", c)
		}
	}
	return nil
}

// GetRatings reads every rating from the ratings CSV.
//
// Blank lines are skipped. A row with a missing or non-numeric field fails
// the whole read with ErrMalformedInput naming the file and row.
func (db *DB) GetRatings(ctx context.Context) ([]recommend.Rating, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	path := db.cfg.RatingsPath
	cols := db.cfg.RatingColumns

	have, err := db.csvColumns(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(path, have, cols.UserID, cols.PlaceID, cols.Rating); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s, %s, %s FROM %s",
		quoteIdent(cols.UserID), quoteIdent(cols.PlaceID), quoteIdent(cols.Rating), csvSource(path))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var ratings []recommend.Rating
	row := 0
	for rows.Next() {
		row++
		var user, place, score sql.NullString
		if err := rows.Scan(&user, &place, &score); err != nil {
			return nil, fmt.Errorf("failed to scan rating row %d: %w", row, err)
		}
		if blank(user, place, score) {
			continue
		}

		r, err := parseRating(user, place, score, cols.UserID, cols.PlaceID, cols.Rating)
		if err != nil {
			return nil, malformed(path, row, "%v", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}

	logging.Debug().Str("path", path).Int("ratings", len(ratings)).Msg("Loaded ratings")
	return ratings, nil
}

func parseRating(user, place, score sql.NullString, userCol, placeCol, ratingCol string) (recommend.Rating, error) {
	uid, err := parseID(user, userCol)
	if err != nil {
		return recommend.Rating{}, err
	}
	pid, err := parseID(place, placeCol)
	if err != nil {
		return recommend.Rating{}, err
	}
	s := strings.TrimSpace(score.String)
	if !score.Valid || s == "" {
		return recommend.Rating{}, fmt.Errorf("%s is empty", ratingCol)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return recommend.Rating{}, fmt.Errorf("%s %q is not a number", ratingCol, s)
	}
	return recommend.Rating{UserID: uid, ItemID: pid, Score: v}, nil
}

func parseID(v sql.NullString, col string) (int, error) {
	s := strings.TrimSpace(v.String)
	if !v.Valid || s == "" {
		return 0, fmt.Errorf("%s is empty", col)
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", col, s)
	}
	return id, nil
}

func blank(fields ...sql.NullString) bool {
	for _, f := range fields {
		if f.Valid && strings.TrimSpace(f.String) != "" {
			return false
		}
	}
	return true
}

// GetPlaces reads the place catalog. With no places file configured the
// catalog is empty and places are known by id only.
//
// The optional description, category and city columns are read when the
// file has them.
func (db *DB) GetPlaces(ctx context.Context) ([]recommend.Place, error) {
	path := db.cfg.PlacesPath
	if path == "" {
		return []recommend.Place{}, nil
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	cols := db.cfg.PlaceColumns
	have, err := db.csvColumns(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(path, have, cols.ID, cols.Name); err != nil {
		return nil, err
	}

	// Absent optional columns select NULL so the scan shape stays fixed.
	optional := func(name string) string {
		if name != "" && have[name] {
			return quoteIdent(name)
		}
		return "NULL"
	}
	query := fmt.Sprintf("SELECT %s, %s, %s, %s, %s FROM %s",
		quoteIdent(cols.ID), quoteIdent(cols.Name),
		optional(cols.Description), optional(cols.Category), optional(cols.City),
		csvSource(path))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer closeWithLog(rows, "rows")

	places := []recommend.Place{}
	seen := make(map[int]int)
	row := 0
	for rows.Next() {
		row++
		var id, name, desc, category, city sql.NullString
		if err := rows.Scan(&id, &name, &desc, &category, &city); err != nil {
			return nil, fmt.Errorf("failed to scan place row %d: %w", row, err)
		}
		if blank(id, name, desc, category, city) {
			continue
		}

		pid, err := parseID(id, cols.ID)
		if err != nil {
			return nil, malformed(path, row, "%v", err)
		}
		if prev, dup := seen[pid]; dup {
			return nil, malformed(path, row, "duplicate place id %d (first seen at row %d)", pid, prev)
		}
		seen[pid] = row

		n := strings.TrimSpace(name.String)
		if n == "" {
			return nil, malformed(path, row, "%s is empty", cols.Name)
		}
		places = append(places, recommend.Place{
			ID:          pid,
			Name:        n,
			Description: strings.TrimSpace(desc.String),
			Category:    strings.TrimSpace(category.String),
			City:        strings.TrimSpace(city.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating places: %w", err)
	}

	logging.Debug().Str("path", path).Int("places", len(places)).Msg("Loaded places")
	return places, nil
}

// PlaceStats aggregates the ratings of one place directly from the ratings
// file. A place nobody rated yields a zero RatingCount and no error.
func (db *DB) PlaceStats(ctx context.Context, placeID int) (*models.PlaceStats, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	cols := db.cfg.RatingColumns
	place := quoteIdent(cols.PlaceID)
	score := "TRY_CAST(" + quoteIdent(cols.Rating) + " AS DOUBLE)"

	query := fmt.Sprintf(`
		SELECT
			COUNT(%[1]s),
			COALESCE(AVG(%[1]s), 0),
			COALESCE(MIN(%[1]s), 0),
			COALESCE(MAX(%[1]s), 0)
		FROM %[2]s
		WHERE TRY_CAST(TRIM(%[3]s) AS BIGINT) = ?`,
		score, csvSource(db.cfg.RatingsPath), place)

	stats := &models.PlaceStats{PlaceID: placeID}
	err := db.conn.QueryRowContext(ctx, query, placeID).Scan(
		&stats.RatingCount, &stats.AvgRating, &stats.MinRating, &stats.MaxRating)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate place %d: %w", placeID, err)
	}
	return stats, nil
}
