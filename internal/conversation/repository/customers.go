package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"skm_agent_backend/platform/apperr"
)

// GetOrCreateCustomer looks a customer up by WhatsApp number, creating the row
// on first contact. The profile name is only filled in when the stored one is
// empty, so a customer-chosen name never clobbers later corrections.
func (r *Repo) GetOrCreateCustomer(ctx context.Context, waNumber, name string) (Customer, error) {
	query := `
		INSERT INTO customers (wa_number, name)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (wa_number) DO UPDATE
		SET name = COALESCE(customers.name, NULLIF($2, '')),
			updated_at = now()
		RETURNING id, wa_number, name, email, city, folder_key, folder_url, created_at, updated_at`

	var c Customer
	if err := r.pool.QueryRow(ctx, query, waNumber, name).Scan(
		&c.ID, &c.WaNumber, &c.Name, &c.Email, &c.City,
		&c.FolderKey, &c.FolderURL, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return Customer{}, fmt.Errorf("get or create customer: %w", err)
	}
	return c, nil
}

// GetCustomer retrieves a customer by ID.
func (r *Repo) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	query := `
		SELECT id, wa_number, name, email, city, folder_key, folder_url, created_at, updated_at
		FROM customers
		WHERE id = $1`

	var c Customer
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.WaNumber, &c.Name, &c.Email, &c.City,
		&c.FolderKey, &c.FolderURL, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound("customer not found")
		}
		return Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// UpdateCustomerProfile fills in profile fields learned during the flow. Empty
// arguments leave the stored value untouched.
func (r *Repo) UpdateCustomerProfile(ctx context.Context, id uuid.UUID, name, email, city string) error {
	query := `
		UPDATE customers
		SET name = COALESCE(NULLIF($2, ''), name),
			email = COALESCE(NULLIF($3, ''), email),
			city = COALESCE(NULLIF($4, ''), city),
			updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, name, email, city); err != nil {
		return fmt.Errorf("update customer profile: %w", err)
	}
	return nil
}

// SetCustomerFolder records the provisioned document folder. Only the first
// write sticks; the folder is provisioned once per customer.
func (r *Repo) SetCustomerFolder(ctx context.Context, id uuid.UUID, key, url string) error {
	query := `
		UPDATE customers
		SET folder_key = COALESCE(folder_key, $2),
			folder_url = COALESCE(folder_url, $3),
			updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, key, url); err != nil {
		return fmt.Errorf("set customer folder: %w", err)
	}
	return nil
}
