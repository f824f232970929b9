// internal/site/repository.go
//
// sqlx queries for the `site` table.  Plain functions over *sqlx.DB, in
// dependency order of the panel: list/fetch first, then the mutations the
// publish pipeline performs on success.
package site

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when an ID is not present in the site table.
var ErrNotFound = errors.New("site not found")

const columns = `
        id, name, model_type, description,
        hero_title, hero_subtitle, hero_image, about_text, about_image,
        contact_email, contact_phone, contact_address, whatsapp_number,
        facebook_url, instagram_url, tiktok_url,
        logo_url, primary_color, secondary_color,
        products_json, gallery_json, supporters_json,
        custom_domain, github_repo, github_url, is_published,
        created_at, updated_at`

// All returns every site ordered by creation time.  Used by the dashboard
// and by vitrinactl batch operations.
func All(ctx context.Context, db *sqlx.DB) ([]Record, error) {
	const q = `SELECT ` + columns + ` FROM site ORDER BY id`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// ByID fetches a single site row.
func ByID(ctx context.Context, db *sqlx.DB, id uint64) (*Record, error) {
	const q = `SELECT ` + columns + ` FROM site WHERE id = ? LIMIT 1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Insert stores a new record and returns its assigned ID.
func Insert(ctx context.Context, db *sqlx.DB, r *Record) (uint64, error) {
	const q = `
        INSERT INTO site (
            name, model_type, description,
            hero_title, hero_subtitle, hero_image, about_text, about_image,
            contact_email, contact_phone, contact_address, whatsapp_number,
            facebook_url, instagram_url, tiktok_url,
            logo_url, primary_color, secondary_color,
            products_json, gallery_json, supporters_json, custom_domain
        ) VALUES (
            :name, :model_type, :description,
            :hero_title, :hero_subtitle, :hero_image, :about_text, :about_image,
            :contact_email, :contact_phone, :contact_address, :whatsapp_number,
            :facebook_url, :instagram_url, :tiktok_url,
            :logo_url, :primary_color, :secondary_color,
            :products_json, :gallery_json, :supporters_json, :custom_domain
        )`
	res, err := db.NamedExecContext(ctx, q, r)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites every editable column.  Publish-state columns are
// untouched; they change only through the dedicated mutations below.
func Update(ctx context.Context, db *sqlx.DB, r *Record) error {
	const q = `
        UPDATE site SET
            name = :name, model_type = :model_type, description = :description,
            hero_title = :hero_title, hero_subtitle = :hero_subtitle,
            hero_image = :hero_image, about_text = :about_text,
            about_image = :about_image,
            contact_email = :contact_email, contact_phone = :contact_phone,
            contact_address = :contact_address,
            whatsapp_number = :whatsapp_number,
            facebook_url = :facebook_url, instagram_url = :instagram_url,
            tiktok_url = :tiktok_url,
            logo_url = :logo_url, primary_color = :primary_color,
            secondary_color = :secondary_color,
            products_json = :products_json, gallery_json = :gallery_json,
            supporters_json = :supporters_json,
            custom_domain = :custom_domain,
            updated_at = NOW()
        WHERE id = :id`
	_, err := db.NamedExecContext(ctx, q, r)
	return err
}

// Delete removes the row.  The caller is responsible for the best-effort
// remote repository deletion; a remote failure must not block this.
func Delete(ctx context.Context, db *sqlx.DB, id uint64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM site WHERE id = ?`, id)
	return err
}

// SetRepoName records the repository assigned on first publish.  It never
// overwrites an existing name: reconciliation is idempotent and a repo,
// once named, is stable across republishes.
func SetRepoName(ctx context.Context, db *sqlx.DB, id uint64, repo string) error {
	const q = `
        UPDATE site SET github_repo = ?, updated_at = NOW()
        WHERE  id = ? AND github_repo IS NULL`
	_, err := db.ExecContext(ctx, q, repo, id)
	return err
}

// MarkPublished applies a successful PublishResult: URL and flag together,
// so the is_published invariant can never be half-true.
func MarkPublished(ctx context.Context, db *sqlx.DB, id uint64, url string) error {
	const q = `
        UPDATE site SET github_url = ?, is_published = TRUE, updated_at = NOW()
        WHERE  id = ?`
	_, err := db.ExecContext(ctx, q, url, id)
	return err
}

// UpdateAssetRefs persists image references that the localizer rewrote
// during a publish, so the next publish skips the downloads entirely.
func UpdateAssetRefs(ctx context.Context, db *sqlx.DB, r *Record) error {
	const q = `
        UPDATE site SET
            hero_image = :hero_image, about_image = :about_image,
            logo_url = :logo_url,
            products_json = :products_json, gallery_json = :gallery_json,
            supporters_json = :supporters_json,
            updated_at = NOW()
        WHERE id = :id`
	_, err := db.NamedExecContext(ctx, q, r)
	return err
}

// CountAll and CountPublished feed the dashboard.
func CountAll(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM site`)
	return n, err
}

func CountPublished(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM site WHERE is_published = TRUE`)
	return n, err
}
