package store

import (
	"context"
	"database/sql"
)

type CredentialRepo struct{ DB *sql.DB }

func NewCredentialRepo(db *sql.DB) *CredentialRepo { return &CredentialRepo{DB: db} }

// Get returns the stored secret or ErrNotFound.
func (r *CredentialRepo) Get(ctx context.Context, name string) (string, error) {
	const q = `select value from credentials where name=$1`
	var v string
	if err := r.DB.QueryRowContext(ctx, q, name).Scan(&v); err != nil {
		return "", err
	}
	return v, nil
}

// Put inserts or replaces the secret under name.
func (r *CredentialRepo) Put(ctx context.Context, name, value string) error {
	const q = `
insert into credentials(name, value)
values ($1,$2)
on conflict (name)
do update set value=excluded.value, updated_at=CURRENT_TIMESTAMP`
	_, err := r.DB.ExecContext(ctx, q, name, value)
	return err
}

func (r *CredentialRepo) Delete(ctx context.Context, name string) error {
	_, err := r.DB.ExecContext(ctx, `delete from credentials where name=$1`, name)
	return err
}
