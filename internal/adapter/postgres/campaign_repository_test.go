package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"medfund/internal/core/domain"
)

func TestListWhere(t *testing.T) {
	where, args := listWhere(domain.CampaignFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	lo, hi := decimal.RequireFromString("1"), decimal.RequireFromString("9")
	where, args = listWhere(domain.CampaignFilter{
		Status:   domain.StatusActive,
		Category: domain.CategorySurgery,
		Creator:  "0xAbc",
		MinGoal:  &lo,
		MaxGoal:  &hi,
	})
	assert.Equal(t,
		" WHERE status = $1 AND category = $2 AND lower(creator) = lower($3) AND goal_amount >= $4 AND goal_amount <= $5",
		where)
	assert.Equal(t, []any{domain.StatusActive, domain.CategorySurgery, "0xAbc", lo, hi}, args)

	where, args = listWhere(domain.CampaignFilter{MaxGoal: &hi})
	assert.Equal(t, " WHERE goal_amount <= $1", where)
	assert.Len(t, args, 1)
}

func TestListOrder(t *testing.T) {
	assert.Equal(t, "created_at ASC, id ASC", listOrder(domain.CampaignFilter{Sort: domain.SortCreated}))
	assert.Equal(t, "deadline DESC, id ASC", listOrder(domain.CampaignFilter{Sort: domain.SortDeadline, Desc: true}))
	assert.Equal(t, "round(raised_amount / goal_amount, 12) ASC, id ASC", listOrder(domain.CampaignFilter{Sort: domain.SortRaised}))
}
