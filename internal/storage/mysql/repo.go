package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hoteldir/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}
func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateListing(ctx context.Context, l domain.Listing) error {
	surr, err := json.Marshal(nonNil(l.Surroundings))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertListingSQL,
		l.ID, l.Name, l.Region, l.City, l.Description, l.Location, l.Address,
		string(surr),
		nullableText(l.RecreationAreas),
		l.Type,
		string(l.Status),
		l.Paid,
		valF64(l.Price),
		valStr(l.ImageURL),
		valStr(l.ImageKey),
		l.ContactName, l.Email, l.Phone, l.Website,
		l.CreatedAt.UTC(),
		valTime(l.ApprovedAt),
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *Repo) UpdateListing(ctx context.Context, id string, p domain.ListingPatch) (domain.Listing, error) {
	set, args := []string{}, []any{}
	str := func(col string, v *string) {
		if v != nil {
			set, args = append(set, col+" = ?"), append(args, *v)
		}
	}
	str("name", p.Name)
	str("region", p.Region)
	str("city", p.City)
	str("description", p.Description)
	str("location", p.Location)
	str("address", p.Address)
	str("type", p.Type)
	if v := p.RecreationAreas; v != nil {
		set, args = append(set, "recreation_areas = ?"), append(args, nullableText(*v))
	}
	if v := p.Surroundings; v != nil {
		b, err := json.Marshal(nonNil(*v))
		if err != nil {
			return domain.Listing{}, err
		}
		set, args = append(set, "surroundings = ?"), append(args, string(b))
	}
	if v := p.Status; v != nil {
		set, args = append(set, "status = ?"), append(args, string(*v))
	}
	if v := p.Paid; v != nil {
		set, args = append(set, "paid = ?"), append(args, *v)
	}
	if v := p.Price; v != nil {
		set, args = append(set, "price = ?"), append(args, *v)
	}
	if v := p.ApprovedAt; v != nil {
		set, args = append(set, "approved_at = ?"), append(args, v.UTC())
	}
	if len(set) == 0 {
		return r.GetListing(ctx, id)
	}

	args = append(args, id)
	stmt := fmt.Sprintf("UPDATE listings SET %s WHERE id = ?", strings.Join(set, ", "))
	if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
		return domain.Listing{}, fmt.Errorf("update listing: %w", err)
	}
	// RowsAffected is 0 for a no-op update too, so existence comes from the read.
	return r.GetListing(ctx, id)
}

// DeleteListing removes the row and returns what was deleted, so the caller
// can clean up the stored image.
func (r *Repo) DeleteListing(ctx context.Context, id string) (domain.Listing, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Listing{}, err
	}
	defer tx.Rollback()

	l, err := scanListing(tx.QueryRowContext(ctx, lockListingSQL, id))
	if err != nil {
		return domain.Listing{}, err
	}
	if _, err := tx.ExecContext(ctx, deleteListingSQL, id); err != nil {
		return domain.Listing{}, fmt.Errorf("delete listing: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

func (r *Repo) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	return scanListing(r.db.QueryRowContext(ctx, getListingSQL, id))
}

func (r *Repo) ListListings(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := f.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, string(*v))
	}
	if v := strings.TrimSpace(f.Region); v != "" {
		where, args = append(where, "region = ?"), append(args, v)
	}
	if v := strings.TrimSpace(f.City); v != "" {
		where, args = append(where, "city = ?"), append(args, v)
	}
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE %s ORDER BY created_at DESC, id DESC`,
		listingColumns, strings.Join(where, " AND "))
	return r.queryListings(ctx, query, args...)
}

func (r *Repo) ListEligible(ctx context.Context) ([]domain.Listing, error) {
	return r.queryListings(ctx, listEligibleSQL)
}

func (r *Repo) queryListings(ctx context.Context, query string, args ...any) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanListing(s scanner) (domain.Listing, error) {
	var (
		l          domain.Listing
		surr       []byte
		recreation sql.NullString
		status     string
		price      sql.NullFloat64
		imageURL   sql.NullString
		imageKey   sql.NullString
		approvedAt sql.NullTime
	)
	if err := s.Scan(
		&l.ID, &l.Name, &l.Region, &l.City, &l.Description, &l.Location, &l.Address,
		&surr,
		&recreation,
		&l.Type,
		&status,
		&l.Paid,
		&price,
		&imageURL, &imageKey,
		&l.ContactName, &l.Email, &l.Phone, &l.Website,
		&l.CreatedAt,
		&approvedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, err
	}

	l.Status = domain.Status(status)
	l.RecreationAreas = recreation.String
	if len(surr) > 0 {
		if err := json.Unmarshal(surr, &l.Surroundings); err != nil {
			return domain.Listing{}, fmt.Errorf("listing %s surroundings: %w", l.ID, err)
		}
	}
	l.Surroundings = nonNil(l.Surroundings)
	if price.Valid {
		p := price.Float64
		l.Price = &p
	}
	if imageURL.Valid {
		u := imageURL.String
		l.ImageURL = &u
	}
	if imageKey.Valid {
		k := imageKey.String
		l.ImageKey = &k
	}
	if approvedAt.Valid {
		t := approvedAt.Time.UTC()
		l.ApprovedAt = &t
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return l, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
