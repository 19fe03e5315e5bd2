package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

// Lifecycle owns the campaign state machine. Every other component asks it to
// evaluate transitions instead of changing Status directly.
type Lifecycle struct {
	deps
	identity port.IdentityService
	access   port.AccessControl
}

func NewLifecycle(d deps, identity port.IdentityService, access port.AccessControl) *Lifecycle {
	return &Lifecycle{deps: d, identity: identity, access: access}
}

// transition is a committed status change, logged after the update succeeds.
type transition struct {
	from, to domain.Status
}

// apply moves c to status to and records the change in t. Already being in to
// is not an error.
func (t *transition) apply(c *domain.Campaign, to domain.Status, at time.Time) error {
	from := c.Status
	changed, err := c.Transition(to, at)
	if err != nil {
		return err
	}
	if changed {
		t.from, t.to = from, to
	}
	return nil
}

func (l *Lifecycle) logTransition(c domain.Campaign, t transition) {
	if t.to == "" {
		return
	}
	l.logger.Info("campaign status changed",
		slog.String("campaign_id", c.ID),
		slog.String("from", string(t.from)),
		slog.String("to", string(t.to)),
		slog.String("raised", c.RaisedAmount.String()),
		slog.String("goal", c.GoalAmount.String()))
}

// applyGoalReached moves an ACTIVE campaign whose goal is covered to
// SUCCESSFUL. It runs inside the caller's atomic update.
func (l *Lifecycle) applyGoalReached(c *domain.Campaign, t *transition, now time.Time) error {
	if c.Status != domain.StatusActive || !c.GoalReached() {
		return nil
	}
	return t.apply(c, domain.StatusSuccessful, now)
}

// CreateCampaign validates input, checks KYC and stores the campaign.
func (l *Lifecycle) CreateCampaign(ctx context.Context, input domain.CreateCampaignInput) (domain.Campaign, error) {
	c, err := domain.NewCampaign(input, l.clock.Now())
	if err != nil {
		return domain.Campaign{}, err
	}
	verified, err := l.identity.IsKYCVerified(ctx, c.Creator)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("check kyc of %s: %w", c.Creator, err)
	}
	if !verified {
		return domain.Campaign{}, domain.Authorizationf("creator %s is not KYC verified", c.Creator)
	}
	if err = l.repo.Create(ctx, c); err != nil {
		return domain.Campaign{}, err
	}
	c.Version = 1
	l.logger.Info("campaign created",
		slog.String("campaign_id", c.ID),
		slog.String("creator", c.Creator),
		slog.String("goal", c.GoalAmount.String()),
		slog.Bool("all_or_nothing", c.AllOrNothing))
	return c, nil
}

// campaignPatch is the typed form of an UpdateCampaign field map.
type campaignPatch struct {
	title       *string
	description *string
	documents   []string
	setDocs     bool
	status      *domain.Status
	isApproved  *bool
}

func (p campaignPatch) privileged() bool {
	return p.status != nil || p.isApproved != nil
}

func parsePatch(fields map[string]any) (campaignPatch, error) {
	var p campaignPatch
	if len(fields) == 0 {
		return p, domain.Validationf("no fields to update")
	}
	for key, raw := range fields {
		switch key {
		case "title", "description":
			s, ok := raw.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return p, domain.Validationf("%s must be a non-empty string", key)
			}
			s = strings.TrimSpace(s)
			if key == "title" {
				p.title = &s
			} else {
				p.description = &s
			}
		case "documents":
			docs, err := stringList(raw)
			if err != nil {
				return p, err
			}
			p.documents, p.setDocs = docs, true
		case "status":
			s, ok := raw.(string)
			st := domain.Status(strings.ToUpper(strings.TrimSpace(s)))
			if !ok || !st.Valid() {
				return p, domain.Validationf("status %v is not a campaign status", raw)
			}
			p.status = &st
		case "isApproved":
			b, ok := raw.(bool)
			if !ok {
				return p, domain.Validationf("isApproved must be a boolean")
			}
			p.isApproved = &b
		default:
			return p, domain.Conflictf("field %q cannot be updated", key)
		}
	}
	return p, nil
}

func stringList(raw any) ([]string, error) {
	var items []any
	switch v := raw.(type) {
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case []any:
		items = v
	default:
		return nil, domain.Validationf("documents must be a list of references")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, domain.Validationf("document %d must be a non-empty reference", i)
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, nil
}

// UpdateCampaign edits a pending campaign without contributors. Text fields
// and documents may be changed by the creator; status and isApproved only by
// an administrator, and only along the state machine.
func (l *Lifecycle) UpdateCampaign(ctx context.Context, id, caller string, fields map[string]any) (domain.Campaign, error) {
	patch, err := parsePatch(fields)
	if err != nil {
		return domain.Campaign{}, err
	}
	admin := false
	if patch.privileged() {
		if admin, err = l.access.IsAdmin(ctx, caller); err != nil {
			return domain.Campaign{}, fmt.Errorf("check admin %s: %w", caller, err)
		}
		if !admin {
			return domain.Campaign{}, domain.Authorizationf("only administrators may change status or approval")
		}
	}

	var t transition
	c, err := l.repo.Update(ctx, id, func(c *domain.Campaign) error {
		if !admin && !domain.SameAddress(caller, c.Creator) {
			return domain.Authorizationf("only the creator may update campaign %s", c.ID)
		}
		if c.Status != domain.StatusPendingApproval {
			return domain.Conflictf("campaign %s is %s, only pending campaigns can be updated", c.ID, c.Status)
		}
		if c.ContributorsCount != 0 {
			return domain.Conflictf("campaign %s already has contributors", c.ID)
		}
		now := l.clock.Now().UTC()
		if patch.title != nil {
			c.Title = *patch.title
		}
		if patch.description != nil {
			c.Description = *patch.description
		}
		if patch.setDocs {
			c.Documents = patch.documents
		}
		if patch.isApproved != nil && *patch.isApproved {
			if err := t.apply(c, domain.StatusActive, now); err != nil {
				return err
			}
		}
		if patch.status != nil {
			if err := t.apply(c, *patch.status, now); err != nil {
				return err
			}
		}
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	l.logTransition(c, t)
	return c, nil
}

// CancelCampaign cancels a pending campaign on the creator's request.
func (l *Lifecycle) CancelCampaign(ctx context.Context, id, caller string) (domain.Campaign, error) {
	var t transition
	c, err := l.repo.Update(ctx, id, func(c *domain.Campaign) error {
		if !domain.SameAddress(caller, c.Creator) {
			return domain.Authorizationf("only the creator may cancel campaign %s", c.ID)
		}
		if c.ContributorsCount != 0 {
			return domain.Conflictf("campaign %s already has contributors", c.ID)
		}
		return t.apply(c, domain.StatusCancelled, l.clock.Now().UTC())
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	l.logTransition(c, t)
	return c, nil
}

// EvaluateGoalReached moves an ACTIVE campaign that reached its goal to
// SUCCESSFUL. Campaigns with nothing to do are returned without a write.
func (l *Lifecycle) EvaluateGoalReached(ctx context.Context, id string) (domain.Campaign, error) {
	c, err := l.repo.Get(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if c.Status != domain.StatusActive || !c.GoalReached() {
		return c, nil
	}
	var t transition
	c, err = l.repo.Update(ctx, id, func(c *domain.Campaign) error {
		return l.applyGoalReached(c, &t, l.clock.Now().UTC())
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	l.logTransition(c, t)
	return c, nil
}

// FinalizeCampaign resolves an ACTIVE campaign after its deadline.
func (l *Lifecycle) FinalizeCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	c, _, err := l.finalize(ctx, id)
	return c, err
}

func (l *Lifecycle) finalize(ctx context.Context, id string) (domain.Campaign, bool, error) {
	c, err := l.repo.Get(ctx, id)
	if err != nil {
		return domain.Campaign{}, false, err
	}
	switch {
	case c.Status.Terminal():
		return c, false, nil
	case c.Status != domain.StatusActive:
		return domain.Campaign{}, false, domain.Statef("campaign %s is %s, only active campaigns can be finalized", c.ID, c.Status)
	case l.clock.Now().Before(c.Deadline):
		return domain.Campaign{}, false, domain.Statef("campaign %s deadline %s has not passed", c.ID, c.Deadline.Format(time.RFC3339))
	}

	var t transition
	c, err = l.repo.Update(ctx, id, func(c *domain.Campaign) error {
		if c.Status != domain.StatusActive {
			return nil
		}
		to := domain.StatusFailed
		if c.GoalReached() {
			to = domain.StatusSuccessful
		}
		return t.apply(c, to, l.clock.Now().UTC())
	})
	if err != nil {
		return domain.Campaign{}, false, err
	}
	l.logTransition(c, t)
	return c, t.to != "", nil
}

// SweepDue finalizes every ACTIVE campaign whose deadline has passed. A
// failure on one campaign does not stop the sweep.
func (l *Lifecycle) SweepDue(ctx context.Context) (int, error) {
	ids, err := l.repo.ListDue(ctx, l.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("list due campaigns: %w", err)
	}
	var (
		changed int
		errs    []error
	)
	for _, id := range ids {
		_, ok, err := l.finalize(ctx, id)
		if err != nil {
			l.logger.Error("finalize campaign", slog.String("campaign_id", id), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("finalize %s: %w", id, err))
			continue
		}
		if ok {
			changed++
		}
	}
	return changed, errors.Join(errs...)
}

func (l *Lifecycle) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	return l.repo.Get(ctx, id)
}

func (l *Lifecycle) ListCampaigns(ctx context.Context, filter domain.CampaignFilter) (domain.CampaignPage, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return domain.CampaignPage{}, err
	}
	return l.repo.List(ctx, filter)
}

func (l *Lifecycle) GetUserCreatedCampaigns(ctx context.Context, address string) ([]domain.Campaign, error) {
	if strings.TrimSpace(address) == "" {
		return nil, domain.Validationf("address is required")
	}
	return l.repo.ListByCreator(ctx, address)
}

func (l *Lifecycle) GetStatsOverview(ctx context.Context) (domain.StatsOverview, error) {
	return l.repo.Stats(ctx)
}

func (l *Lifecycle) RecordView(ctx context.Context, id string) (domain.Analytics, error) {
	c, err := l.repo.Update(ctx, id, func(c *domain.Campaign) error {
		c.Analytics.ViewCount++
		return nil
	})
	return c.Analytics, err
}

func (l *Lifecycle) RecordShare(ctx context.Context, id string) (domain.Analytics, error) {
	c, err := l.repo.Update(ctx, id, func(c *domain.Campaign) error {
		c.Analytics.ShareCount++
		return nil
	})
	return c.Analytics, err
}
