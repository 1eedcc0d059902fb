package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/launchhub-app/apiserver/internal/policy"
	"github.com/launchhub-app/apiserver/types"
)

// ProductRepository handles persistence for products. Vote, report and
// moderation mutations run in a row-locking transaction so the voter and
// reporter sets move together with their derived fields.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, product_name, description, product_image, tags, external_links,
		owner_email, status, featured, up_vote, voted_emails, reported_by, created_at, updated_at`

// ListModerationQueue returns every product ordered Pending first for
// moderator triage, newest submissions first within each state.
func (r *ProductRepository) ListModerationQueue(ctx context.Context) ([]types.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY CASE status WHEN 'Pending' THEN 0 WHEN 'Accepted' THEN 1 ELSE 2 END, created_at DESC`
	return r.queryProducts(ctx, query)
}

// ListAccepted returns the public paginated listing, optionally filtered
// by a search term matched against the name and tags.
func (r *ProductRepository) ListAccepted(ctx context.Context, search string, offset, limit int) ([]types.Product, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	pattern := "%" + search + "%"

	const countQuery = `
		SELECT COUNT(1)
		FROM products
		WHERE status = 'Accepted' AND ($1 = '%%' OR product_name ILIKE $1 OR tags::text ILIKE $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE status = 'Accepted' AND ($1 = '%%' OR product_name ILIKE $1 OR tags::text ILIKE $1)
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`
	products, err := r.queryProducts(ctx, listQuery, pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListFeatured returns spotlighted products, newest first.
func (r *ProductRepository) ListFeatured(ctx context.Context, limit int) ([]types.Product, error) {
	if limit < 1 {
		limit = 4
	}
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE featured = TRUE AND status = 'Accepted'
		ORDER BY created_at DESC
		LIMIT $1`
	return r.queryProducts(ctx, query, limit)
}

// ListTrending returns accepted products ordered by vote count.
func (r *ProductRepository) ListTrending(ctx context.Context, limit int) ([]types.Product, error) {
	if limit < 1 {
		limit = 6
	}
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE status = 'Accepted'
		ORDER BY up_vote DESC, created_at DESC
		LIMIT $1`
	return r.queryProducts(ctx, query, limit)
}

// ListByOwner returns the products submitted by the given account.
func (r *ProductRepository) ListByOwner(ctx context.Context, email string) ([]types.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE owner_email = $1
		ORDER BY created_at DESC`
	return r.queryProducts(ctx, query, email)
}

// ListReported returns products with at least one open report.
func (r *ProductRepository) ListReported(ctx context.Context) ([]types.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE jsonb_array_length(reported_by) > 0
		ORDER BY updated_at DESC`
	return r.queryProducts(ctx, query)
}

func (r *ProductRepository) Get(ctx context.Context, id int) (types.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product types.Product) (types.Product, error) {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.Status = types.StatusPending
	product.Featured = false
	product.UpVote = 0
	product.VotedEmails = nil
	product.ReportedBy = nil

	tagsJSON, err := json.Marshal(emptyIfNil(product.Tags))
	if err != nil {
		return types.Product{}, err
	}
	linksJSON, err := json.Marshal(emptyIfNil(product.ExternalLinks))
	if err != nil {
		return types.Product{}, err
	}

	const query = `
		INSERT INTO products (product_name, description, product_image, tags, external_links,
			owner_email, status, featured, up_vote, voted_emails, reported_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, 0, '[]', '[]', $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		product.ProductName,
		product.Description,
		product.ProductImage,
		tagsJSON,
		linksJSON,
		product.OwnerEmail,
		product.Status,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID); err != nil {
		return types.Product{}, err
	}

	return product, nil
}

// Update rewrites the owner-editable fields. Moderation fields and vote
// state are untouched; those move through Moderate and ToggleVote.
func (r *ProductRepository) Update(ctx context.Context, product types.Product) (types.Product, error) {
	product.UpdatedAt = time.Now()

	tagsJSON, err := json.Marshal(emptyIfNil(product.Tags))
	if err != nil {
		return types.Product{}, err
	}
	linksJSON, err := json.Marshal(emptyIfNil(product.ExternalLinks))
	if err != nil {
		return types.Product{}, err
	}

	const query = `
		UPDATE products
		SET product_name = $1,
			description = $2,
			product_image = $3,
			tags = $4,
			external_links = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ProductName,
		product.Description,
		product.ProductImage,
		tagsJSON,
		linksJSON,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return types.Product{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Product{}, err
	}
	if affected == 0 {
		return types.Product{}, ErrNotFound
	}

	return r.Get(ctx, product.ID)
}

// SetImage points the product at newly uploaded media.
func (r *ProductRepository) SetImage(ctx context.Context, id int, imageURL string) error {
	const query = `UPDATE products SET product_image = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, imageURL, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM products WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleVote resolves the toggle under a row lock so concurrent voters
// serialize and the count always matches the voter set.
func (r *ProductRepository) ToggleVote(ctx context.Context, id int, email string) (types.Product, policy.VoteAction, error) {
	var (
		product types.Product
		action  policy.VoteAction
	)
	err := r.withLockedProduct(ctx, id, func(tx *sql.Tx, locked *types.Product) error {
		var err error
		if action, err = policy.ToggleVote(locked, email); err != nil {
			return err
		}
		if err := updateVoteState(ctx, tx, locked); err != nil {
			return err
		}
		product = *locked
		return nil
	})
	if err != nil {
		return types.Product{}, "", err
	}
	return product, action, nil
}

// Report files a report under the same row lock as voting.
func (r *ProductRepository) Report(ctx context.Context, id int, email string) error {
	return r.withLockedProduct(ctx, id, func(tx *sql.Tx, locked *types.Product) error {
		if err := policy.Report(locked, email); err != nil {
			return err
		}
		return updateVoteState(ctx, tx, locked)
	})
}

// IgnoreReport clears the current report cycle. It returns false when the
// product had no open reports.
func (r *ProductRepository) IgnoreReport(ctx context.Context, id int) (bool, error) {
	var changed bool
	err := r.withLockedProduct(ctx, id, func(tx *sql.Tx, locked *types.Product) error {
		if changed = policy.ClearReports(locked); !changed {
			return nil
		}
		return updateVoteState(ctx, tx, locked)
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// Moderate applies a status/featured patch under the transition rules.
// Same-state patches return changed=false without a write.
func (r *ProductRepository) Moderate(ctx context.Context, id int, patch policy.ModerationPatch) (bool, error) {
	var changed bool
	err := r.withLockedProduct(ctx, id, func(tx *sql.Tx, locked *types.Product) error {
		var err error
		if changed, err = policy.ApplyModeration(locked, patch); err != nil {
			return err
		}
		if !changed {
			return nil
		}
		const query = `UPDATE products SET status = $1, featured = $2, updated_at = $3 WHERE id = $4`
		_, err = tx.ExecContext(ctx, query, locked.Status, locked.Featured, time.Now(), locked.ID)
		return err
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (r *ProductRepository) withLockedProduct(ctx context.Context, id int, fn func(*sql.Tx, *types.Product) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
		FOR UPDATE`
	row := tx.QueryRowContext(ctx, query, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := fn(tx, &product); err != nil {
		return err
	}
	return tx.Commit()
}

func updateVoteState(ctx context.Context, tx *sql.Tx, product *types.Product) error {
	votedJSON, err := json.Marshal(emptyIfNil(product.VotedEmails))
	if err != nil {
		return err
	}
	reportedJSON, err := json.Marshal(emptyIfNil(product.ReportedBy))
	if err != nil {
		return err
	}

	product.UpdatedAt = time.Now()
	const query = `
		UPDATE products
		SET up_vote = $1, voted_emails = $2, reported_by = $3, updated_at = $4
		WHERE id = $5`
	_, err = tx.ExecContext(ctx, query, product.UpVote, votedJSON, reportedJSON, product.UpdatedAt, product.ID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (types.Product, error) {
	var product types.Product
	var tagsJSON, linksJSON, votedJSON, reportedJSON []byte
	if err := row.Scan(
		&product.ID,
		&product.ProductName,
		&product.Description,
		&product.ProductImage,
		&tagsJSON,
		&linksJSON,
		&product.OwnerEmail,
		&product.Status,
		&product.Featured,
		&product.UpVote,
		&votedJSON,
		&reportedJSON,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return types.Product{}, err
	}

	_ = json.Unmarshal(tagsJSON, &product.Tags)
	_ = json.Unmarshal(linksJSON, &product.ExternalLinks)
	_ = json.Unmarshal(votedJSON, &product.VotedEmails)
	_ = json.Unmarshal(reportedJSON, &product.ReportedBy)
	return product, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]types.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]types.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
