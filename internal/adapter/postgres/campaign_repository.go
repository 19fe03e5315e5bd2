package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

// CampaignRepository implements port.CampaignRepository using pgxpool for
// PostgreSQL. The whole aggregate lives in the data JSONB column; the scalar
// columns mirror the fields used for filtering and sorting.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// Create inserts a campaign. A duplicate id is reported as a conflict.
func (r *CampaignRepository) Create(ctx context.Context, c domain.Campaign) error {
	c.Version = 1
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode campaign: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
        INSERT INTO campaigns
            (id, creator, status, category, goal_amount, raised_amount, contributors_count,
             deadline, created_at, updated_at, version, data)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        ON CONFLICT (id) DO NOTHING`,
		c.ID, c.Creator, c.Status, c.Category, c.GoalAmount, c.RaisedAmount, c.ContributorsCount,
		c.Deadline, c.CreatedAt, c.UpdatedAt, c.Version, data)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Conflictf("campaign %s already exists", c.ID)
	}
	return nil
}

// Get returns a campaign by id.
func (r *CampaignRepository) Get(ctx context.Context, id string) (domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `SELECT data, version FROM campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, domain.NotFoundf("campaign %s not found", id)
	}
	return c, err
}

// Update locks the campaign row, applies fn and writes the result back in the
// same transaction. The version check guards against writers that bypass the
// row lock.
func (r *CampaignRepository) Update(ctx context.Context, id string, fn port.UpdateFunc) (out domain.Campaign, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return out, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// lock campaign
	c, err := scanCampaign(tx.QueryRow(ctx, `SELECT data, version FROM campaigns WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return out, domain.NotFoundf("campaign %s not found", id)
	}
	if err != nil {
		return out, err
	}
	prev := c.Version
	if err = fn(&c); err != nil {
		return out, err
	}
	c.Version = prev + 1
	data, err := json.Marshal(c)
	if err != nil {
		return out, fmt.Errorf("encode campaign: %w", err)
	}
	tag, err := tx.Exec(ctx, `
        UPDATE campaigns
        SET status = $3, raised_amount = $4, contributors_count = $5, updated_at = $6,
            version = $7, data = $8
        WHERE id = $1 AND version = $2`,
		id, prev, c.Status, c.RaisedAmount, c.ContributorsCount, c.UpdatedAt, c.Version, data)
	if err != nil {
		return out, fmt.Errorf("update campaign: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return out, fmt.Errorf("update campaign %s: version %d is stale", id, prev)
	}
	return c, nil
}

// List returns one page of campaigns and the total match count.
func (r *CampaignRepository) List(ctx context.Context, filter domain.CampaignFilter) (domain.CampaignPage, error) {
	where, args := listWhere(filter)
	page := domain.CampaignPage{Campaigns: []domain.Campaign{}, Page: filter.Page, Limit: filter.Limit}

	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM campaigns`+where, args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count campaigns: %w", err)
	}
	query := fmt.Sprintf(`SELECT data, version FROM campaigns%s ORDER BY %s LIMIT %d OFFSET %d`,
		where, listOrder(filter), filter.Limit, filter.Offset())
	campaigns, err := r.query(ctx, query, args...)
	if err != nil {
		return page, err
	}
	page.Campaigns = campaigns
	return page, nil
}

// ListByCreator returns every campaign created by address, newest first.
func (r *CampaignRepository) ListByCreator(ctx context.Context, address string) ([]domain.Campaign, error) {
	return r.query(ctx, `
        SELECT data, version FROM campaigns
        WHERE lower(creator) = lower($1)
        ORDER BY created_at DESC, id ASC`, strings.TrimSpace(address))
}

// ListByContributor returns every campaign with at least one event from address.
func (r *CampaignRepository) ListByContributor(ctx context.Context, address string) ([]domain.Campaign, error) {
	return r.query(ctx, `
        SELECT data, version FROM campaigns
        WHERE EXISTS (
            SELECT 1 FROM jsonb_array_elements(data->'contributors') AS ev
            WHERE lower(ev->>'contributor') = lower($1)
        )
        ORDER BY created_at DESC, id ASC`, strings.TrimSpace(address))
}

// ListDue returns ids of active campaigns whose deadline has passed.
func (r *CampaignRepository) ListDue(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id FROM campaigns
        WHERE status = $1 AND deadline <= $2
        ORDER BY id`, domain.StatusActive, now)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Stats aggregates campaign totals grouped by status.
func (r *CampaignRepository) Stats(ctx context.Context) (domain.StatsOverview, error) {
	stats := domain.NewStatsOverview()
	rows, err := r.pool.Query(ctx, `
        SELECT status,
               count(*),
               COALESCE(sum(raised_amount), 0)::text,
               COALESCE(sum(jsonb_array_length(data->'contributors')), 0),
               COALESCE(sum(contributors_count), 0)
        FROM campaigns
        GROUP BY status`)
	if err != nil {
		return stats, err
	}
	type statusRow struct {
		Status        domain.Status
		Campaigns     int
		Raised        string
		Contributions int
		Contributors  int
	}
	grouped, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (statusRow, error) {
		var s statusRow
		err := row.Scan(&s.Status, &s.Campaigns, &s.Raised, &s.Contributions, &s.Contributors)
		return s, err
	})
	if err != nil {
		return stats, err
	}
	for _, g := range grouped {
		raised, err := decimal.NewFromString(g.Raised)
		if err != nil {
			return stats, err
		}
		stats.TotalCampaigns += g.Campaigns
		stats.ByStatus[g.Status] = g.Campaigns
		stats.TotalRaised = stats.TotalRaised.Add(raised)
		stats.TotalContributions += g.Contributions
		stats.TotalContributors += g.Contributors
	}
	return stats, nil
}

func (r *CampaignRepository) query(ctx context.Context, query string, args ...any) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	campaigns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		return scanCampaign(row)
	})
	if err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []domain.Campaign{}
	}
	return campaigns, nil
}

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var (
		c       domain.Campaign
		data    []byte
		version int64
	)
	if err := row.Scan(&data, &version); err != nil {
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode campaign: %w", err)
	}
	c.Version = version
	return c, nil
}

// listWhere renders the WHERE clause of a listing and its positional args.
func listWhere(f domain.CampaignFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Creator != "" {
		add("lower(creator) = lower($%d)", f.Creator)
	}
	if f.MinGoal != nil {
		add("goal_amount >= $%d", *f.MinGoal)
	}
	if f.MaxGoal != nil {
		add("goal_amount <= $%d", *f.MaxGoal)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// listOrder renders the ORDER BY expression. Ties always fall back to id
// ascending.
func listOrder(f domain.CampaignFilter) string {
	col := "created_at"
	switch f.Sort {
	case domain.SortDeadline:
		col = "deadline"
	case domain.SortRaised:
		col = "round(raised_amount / goal_amount, 12)"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	return col + " " + dir + ", id ASC"
}
