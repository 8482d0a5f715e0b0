// Package linking binds external platform identities to native users.
package linking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tipstream/harvester/internal/models"
	"github.com/tipstream/harvester/pkg/logging"
)

// ErrAlreadyLinked is returned when a user relinks an account they already
// hold. Linking is not idempotent for the same user.
var ErrAlreadyLinked = errors.New("account already linked")

// ExternalIdentity is the authenticated platform identity being claimed
type ExternalIdentity struct {
	AccountID string
	Username  string
	Name      string
	AvatarURL string
}

// PeopleStore resolves and creates tracked identities
type PeopleStore interface {
	GetByAccountID(ctx context.Context, platform, accountID string) (*models.Person, error)
	Create(ctx context.Context, person *models.Person) error
}

// LinkStore persists account links
type LinkStore interface {
	// GetVerified retrieves the verified link for (person, platform), or nil.
	GetVerified(ctx context.Context, personID, platform string) (*models.AccountLink, error)
	// CountByUser counts a user's links across all platforms.
	CountByUser(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, link *models.AccountLink) error
	Delete(ctx context.Context, id string) error
}

// Notifier delivers best-effort disconnect notifications
type Notifier interface {
	NotifyDisconnected(ctx context.Context, linkID, newOwnerID string) error
}

// Deriver provisions wallet addresses for newly discovered identities
type Deriver interface {
	Derive(seed string) string
}

// Service links external accounts to native users, holding the invariants:
// one verified link per (user, platform), one primary link per user, primary
// set only on the user's first link ever.
type Service struct {
	people   PeopleStore
	links    LinkStore
	notifier Notifier
	deriver  Deriver
	logger   *zap.Logger
}

// NewService creates a new linking service
func NewService(people PeopleStore, links LinkStore, notifier Notifier, deriver Deriver) *Service {
	return &Service{
		people:   people,
		links:    links,
		notifier: notifier,
		deriver:  deriver,
		logger:   logging.GetLogger().With(zap.String("component", "linking")),
	}
}

// Link claims an external identity for a user. A link held by a different
// user is taken over (the previous owner is notified best-effort); a link
// already held by the requesting user fails with ErrAlreadyLinked.
func (s *Service) Link(ctx context.Context, platform string, identity ExternalIdentity, userID string) (*models.AccountLink, error) {
	person, err := s.resolvePerson(ctx, platform, identity)
	if err != nil {
		return nil, err
	}

	existing, err := s.links.GetVerified(ctx, person.ID, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing link: %w", err)
	}

	if existing != nil {
		if existing.UserID == userID {
			return nil, fmt.Errorf("%w: %s account %s", ErrAlreadyLinked, platform, identity.Username)
		}

		// Takeover: the identity re-verified under a new user. Notify the
		// previous owner; delivery failure never blocks the relink.
		if err := s.notifier.NotifyDisconnected(ctx, existing.ID, userID); err != nil {
			s.logger.Warn("Failed to notify disconnected owner",
				zap.String("link_id", existing.ID),
				zap.Error(err))
		}
		if err := s.links.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to remove stale link: %w", err)
		}
	}

	count, err := s.links.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count user links: %w", err)
	}

	link := &models.AccountLink{
		ID:        uuid.NewString(),
		PersonID:  person.ID,
		UserID:    userID,
		Platform:  platform,
		Verified:  true,
		Primary:   count == 0,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.links.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	s.logger.Info("Linked account",
		zap.String("platform", platform),
		zap.String("username", identity.Username),
		zap.Bool("primary", link.Primary))

	return link, nil
}

// resolvePerson finds the person for an identity, creating it with a wallet
// derived from its own id when first observed
func (s *Service) resolvePerson(ctx context.Context, platform string, identity ExternalIdentity) (*models.Person, error) {
	person, err := s.people.GetByAccountID(ctx, platform, identity.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up person: %w", err)
	}
	if person != nil {
		return person, nil
	}

	person = &models.Person{
		ID:        uuid.NewString(),
		Platform:  platform,
		Username:  identity.Username,
		AccountID: identity.AccountID,
		Name:      identity.Name,
		AvatarURL: identity.AvatarURL,
		CreatedAt: time.Now().UTC(),
	}
	person.WalletAddress = s.deriver.Derive(person.ID)

	if err := s.people.Create(ctx, person); err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return person, nil
}
