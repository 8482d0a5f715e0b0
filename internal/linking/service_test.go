package linking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tipstream/harvester/internal/models"
)

type fakePeople struct {
	people []*models.Person
}

func (f *fakePeople) GetByAccountID(ctx context.Context, platform, accountID string) (*models.Person, error) {
	for _, p := range f.people {
		if p.Platform == platform && p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePeople) Create(ctx context.Context, person *models.Person) error {
	f.people = append(f.people, person)
	return nil
}

type fakeLinks struct {
	links []*models.AccountLink
}

func (f *fakeLinks) GetVerified(ctx context.Context, personID, platform string) (*models.AccountLink, error) {
	for _, l := range f.links {
		if l.PersonID == personID && l.Platform == platform && l.Verified {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeLinks) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, l := range f.links {
		if l.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeLinks) Create(ctx context.Context, link *models.AccountLink) error {
	f.links = append(f.links, link)
	return nil
}

func (f *fakeLinks) Delete(ctx context.Context, id string) error {
	for i, l := range f.links {
		if l.ID == id {
			f.links = append(f.links[:i], f.links[i+1:]...)
			return nil
		}
	}
	return errors.New("link not found")
}

type fakeNotifier struct {
	calls []string
	err   error
}

func (f *fakeNotifier) NotifyDisconnected(ctx context.Context, linkID, newOwnerID string) error {
	f.calls = append(f.calls, linkID+"->"+newOwnerID)
	return f.err
}

type fakeDeriver struct{}

func (fakeDeriver) Derive(seed string) string { return "derived:" + seed }

func newTestService() (*Service, *fakePeople, *fakeLinks, *fakeNotifier) {
	people := &fakePeople{}
	links := &fakeLinks{}
	notifier := &fakeNotifier{}
	return NewService(people, links, notifier, fakeDeriver{}), people, links, notifier
}

func TestLinkCreatesPersonWithWallet(t *testing.T) {
	svc, people, _, _ := newTestService()

	identity := ExternalIdentity{AccountID: "42", Username: "alice", Name: "Alice"}
	link, err := svc.Link(context.Background(), "twitter", identity, "user-1")
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	if len(people.people) != 1 {
		t.Fatalf("expected person created, got %d", len(people.people))
	}
	person := people.people[0]
	if person.WalletAddress != "derived:"+person.ID {
		t.Errorf("person wallet = %q, want address derived from its own id", person.WalletAddress)
	}
	if link.PersonID != person.ID {
		t.Errorf("link person = %q, want %q", link.PersonID, person.ID)
	}
	if !link.Verified {
		t.Error("new link should be verified")
	}
}

func TestLinkFirstIsPrimary(t *testing.T) {
	svc, _, links, _ := newTestService()

	platforms := []string{"twitter", "reddit"}
	for i, platform := range platforms {
		identity := ExternalIdentity{AccountID: fmt.Sprintf("acct-%d", i), Username: "alice"}
		if _, err := svc.Link(context.Background(), platform, identity, "user-1"); err != nil {
			t.Fatalf("Link on %s failed: %v", platform, err)
		}
	}

	var primaries int
	for _, l := range links.links {
		if l.Primary {
			primaries++
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary link, got %d", primaries)
	}
	if !links.links[0].Primary {
		t.Error("primary must be the chronologically first link")
	}
	if links.links[1].Primary {
		t.Error("second link must not be primary")
	}
}

func TestLinkSameUserConflicts(t *testing.T) {
	svc, _, _, _ := newTestService()

	identity := ExternalIdentity{AccountID: "42", Username: "alice"}
	if _, err := svc.Link(context.Background(), "twitter", identity, "user-1"); err != nil {
		t.Fatalf("first link failed: %v", err)
	}

	_, err := svc.Link(context.Background(), "twitter", identity, "user-1")
	if !errors.Is(err, ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}
}

func TestLinkTakeoverRemovesStaleLink(t *testing.T) {
	svc, _, links, notifier := newTestService()

	identity := ExternalIdentity{AccountID: "42", Username: "alice"}
	first, err := svc.Link(context.Background(), "twitter", identity, "user-1")
	if err != nil {
		t.Fatalf("first link failed: %v", err)
	}

	second, err := svc.Link(context.Background(), "twitter", identity, "user-2")
	if err != nil {
		t.Fatalf("takeover failed: %v", err)
	}

	if len(links.links) != 1 {
		t.Fatalf("stale link should be removed, have %d links", len(links.links))
	}
	if links.links[0].ID != second.ID || links.links[0].UserID != "user-2" {
		t.Errorf("surviving link = %+v, want user-2's", links.links[0])
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != first.ID+"->user-2" {
		t.Errorf("previous owner not notified: %v", notifier.calls)
	}
}

func TestLinkTakeoverSurvivesNotifyFailure(t *testing.T) {
	svc, _, links, notifier := newTestService()
	notifier.err = errors.New("notification service down")

	identity := ExternalIdentity{AccountID: "42", Username: "alice"}
	if _, err := svc.Link(context.Background(), "twitter", identity, "user-1"); err != nil {
		t.Fatalf("first link failed: %v", err)
	}

	if _, err := svc.Link(context.Background(), "twitter", identity, "user-2"); err != nil {
		t.Fatalf("takeover must not fail on notification error: %v", err)
	}
	if len(links.links) != 1 || links.links[0].UserID != "user-2" {
		t.Errorf("takeover did not complete: %+v", links.links)
	}
}

func TestLinkExistingPersonKeepsWallet(t *testing.T) {
	svc, people, _, _ := newTestService()
	people.people = append(people.people, &models.Person{
		ID:            "person-1",
		Platform:      "twitter",
		Username:      "alice",
		AccountID:     "42",
		WalletAddress: "0xoriginal",
	})

	identity := ExternalIdentity{AccountID: "42", Username: "alice"}
	if _, err := svc.Link(context.Background(), "twitter", identity, "user-1"); err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	if len(people.people) != 1 {
		t.Fatalf("existing person must be reused, have %d", len(people.people))
	}
	if people.people[0].WalletAddress != "0xoriginal" {
		t.Errorf("wallet re-derived for existing person: %q", people.people[0].WalletAddress)
	}
}
