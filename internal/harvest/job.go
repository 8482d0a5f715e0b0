package harvest

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tipstream/harvester/internal/models"
	"github.com/tipstream/harvester/internal/platforms"
	"github.com/tipstream/harvester/internal/wallet"
	"github.com/tipstream/harvester/pkg/logging"
	"github.com/tipstream/harvester/pkg/telemetry"
)

// Job harvests one platform on a fixed interval. A sweep walks every
// tracked keyword, then every tracked person, strictly sequentially; a
// failing source is logged and skipped so it never aborts the rest of the
// sweep.
type Job struct {
	source   platforms.Source
	posts    PostStore
	people   PeopleStore
	tags     TagStore
	metrics  MetricStore
	deriver  wallet.Deriver
	marks    WatermarkCache
	interval time.Duration
	logger   *zap.Logger
}

// NewJob creates an ingestion job for one platform source
func NewJob(
	source platforms.Source,
	posts PostStore,
	people PeopleStore,
	tags TagStore,
	metrics MetricStore,
	deriver wallet.Deriver,
	marks WatermarkCache,
	interval time.Duration,
) *Job {
	return &Job{
		source:   source,
		posts:    posts,
		people:   people,
		tags:     tags,
		metrics:  metrics,
		deriver:  deriver,
		marks:    marks,
		interval: interval,
		logger: logging.GetLogger().With(
			zap.String("component", "harvest-job"),
			zap.String("platform", source.Platform())),
	}
}

// Run starts the sweep loop. It returns only when the context is cancelled.
func (j *Job) Run(ctx context.Context) error {
	j.logger.Info("Starting harvest job", zap.Duration("interval", j.interval))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			j.Sweep(ctx)
			j.wait(ctx)
		}
	}
}

// Sweep performs one full tick: keywords first, then tracked accounts
func (j *Job) Sweep(ctx context.Context) {
	ctx, span := telemetry.StartSpan(ctx, "harvest.sweep")
	defer span.End()

	start := time.Now()
	j.sweepKeywords(ctx)
	j.sweepAccounts(ctx)
	j.logger.Debug("Sweep finished", zap.Duration("elapsed", time.Since(start)))
}

// sweepKeywords fetches the most recent items for every tracked keyword
func (j *Job) sweepKeywords(ctx context.Context) {
	tags, err := j.tags.List(ctx)
	if err != nil {
		j.logger.Error("Failed to list tracked keywords", zap.Error(err))
		return
	}

	for _, tag := range tags {
		candidates, err := j.source.SearchRecent(ctx, tag.ID)
		if err != nil {
			j.logger.Warn("Keyword fetch failed",
				zap.String("keyword", tag.ID),
				zap.Error(err))
			continue
		}

		for _, cand := range candidates {
			// The search keyword itself counts as a tag hint, with the
			// tracked keyword's casing.
			cand.Tags = EnsureTag(cand.Tags, tag.ID)

			if err := j.ingest(ctx, cand, true); err != nil {
				j.logger.Warn("Failed to ingest keyword candidate",
					zap.String("keyword", tag.ID),
					zap.String("text_id", cand.TextID),
					zap.Error(err))
			}
		}
	}
}

// sweepAccounts fetches the timeline of every tracked person, bounded by
// the person's watermark when one exists
func (j *Job) sweepAccounts(ctx context.Context) {
	people, err := j.people.List(ctx, j.source.Platform())
	if err != nil {
		j.logger.Error("Failed to list tracked people", zap.Error(err))
		return
	}

	for _, person := range people {
		mark, err := j.watermark(ctx, person)
		if err != nil {
			j.logger.Warn("Failed to compute watermark",
				zap.String("person_id", person.ID),
				zap.Error(err))
			continue
		}

		author := platforms.Identity{
			Username:  person.Username,
			AccountID: person.AccountID,
		}
		candidates, err := j.source.FetchTimeline(ctx, author, mark)
		if err != nil {
			j.logger.Warn("Timeline fetch failed",
				zap.String("person_id", person.ID),
				zap.String("username", person.Username),
				zap.Error(err))
			continue
		}

		newMark := mark
		for _, cand := range candidates {
			// Account-sourced items carry no merge path: a duplicate is
			// already fully known and is simply skipped.
			if err := j.ingest(ctx, cand, false); err != nil {
				j.logger.Warn("Failed to ingest timeline candidate",
					zap.String("person_id", person.ID),
					zap.String("text_id", cand.TextID),
					zap.Error(err))
				continue
			}
			if newMark == "" || greaterID(cand.TextID, newMark) {
				newMark = cand.TextID
			}
		}

		if newMark != mark && newMark != "" {
			if err := j.marks.SetWatermark(ctx, person.Platform, person.ID, newMark); err != nil {
				j.logger.Debug("Failed to cache watermark", zap.Error(err))
			}
		}
	}
}

// watermark returns the greatest stored external id for a person, consulting
// the cache first and recomputing from the store on a miss. An empty mark
// means no item has ever been stored for this person.
func (j *Job) watermark(ctx context.Context, person *models.Person) (string, error) {
	if mark, err := j.marks.GetWatermark(ctx, person.Platform, person.ID); err == nil && mark != "" {
		return mark, nil
	}

	ids, err := j.posts.ListExternalIDs(ctx, person.Platform, person.ID)
	if err != nil {
		return "", err
	}

	mark := maxExternalID(ids)
	if mark != "" {
		if err := j.marks.SetWatermark(ctx, person.Platform, person.ID, mark); err != nil {
			j.logger.Debug("Failed to cache watermark", zap.Error(err))
		}
	}
	return mark, nil
}

// ingest reconciles one candidate against the store and applies the decision
func (j *Job) ingest(ctx context.Context, cand platforms.Candidate, allowMerge bool) error {
	existing, err := j.posts.GetByExternalID(ctx, cand.Platform, cand.TextID)
	if err != nil {
		return err
	}

	decision := Reconcile(cand, existing)
	switch decision.Kind {
	case DecisionUnchanged:
		return nil
	case DecisionMergeTags:
		if !allowMerge {
			return nil
		}
		return j.posts.UpdateTags(ctx, decision.PostID, decision.Tags)
	default:
		return j.create(ctx, cand)
	}
}

// create persists a new post with zero-valued metrics and a wallet address.
// If the resolved author already has a bound wallet the post inherits it;
// otherwise a fresh wallet is derived from the post's own id. The address is
// decided once, here, and never re-derived.
func (j *Job) create(ctx context.Context, cand platforms.Candidate) error {
	post := &models.Post{
		ID:                uuid.NewString(),
		Platform:          cand.Platform,
		TextID:            cand.TextID,
		Username:          cand.Author.Username,
		AccountID:         cand.Author.AccountID,
		Tags:              cand.Tags,
		Title:             cand.Title,
		Text:              cand.Text,
		HasMedia:          cand.HasMedia,
		Link:              cand.Link,
		PlatformCreatedAt: cand.CreatedAt,
	}

	if cand.Author.AccountID != "" {
		person, err := j.people.GetByAccountID(ctx, cand.Platform, cand.Author.AccountID)
		if err != nil {
			return err
		}
		if person != nil {
			post.PersonID = sql.NullString{String: person.ID, Valid: true}
			post.WalletAddress = person.WalletAddress
		}
	}

	if post.WalletAddress == "" {
		post.WalletAddress = j.deriver.Derive(post.ID)
	}

	if err := j.posts.Create(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent sweep stored this id first; same outcome as
			// Unchanged.
			j.logger.Debug("Lost create race",
				zap.String("text_id", post.TextID))
			return nil
		}
		return err
	}

	if err := j.metrics.Create(ctx, &models.PublicMetric{PostID: post.ID}); err != nil {
		return err
	}

	j.logger.Debug("Created post",
		zap.String("text_id", post.TextID),
		zap.String("wallet", post.WalletAddress),
		zap.Strings("tags", post.Tags))

	return nil
}

// wait sleeps for the job interval or until the context is cancelled
func (j *Job) wait(ctx context.Context) {
	timer := time.NewTimer(j.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
