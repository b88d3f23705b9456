package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

var errUpstream = errors.New("upstream unavailable")

// --- PTALStore ---

type fakePTALStore struct {
	mu        sync.Mutex
	records   []model.PTALRecord
	findErr   error
	insertErr error
}

func (f *fakePTALStore) FindByKey(_ context.Context, key model.PRKey) ([]model.PTALRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := []model.PTALRecord{}
	for _, r := range f.records {
		if r.Key() == key {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePTALStore) Insert(_ context.Context, rec model.PTALRecord) (model.PTALRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return model.PTALRecord{}, f.insertErr
	}
	rec.ID = int64(len(f.records) + 1)
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakePTALStore) ListAll(_ context.Context) ([]model.PTALRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.PTALRecord{}, f.records...), nil
}

func (f *fakePTALStore) DeleteByKey(_ context.Context, key model.PRKey) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, r := range f.records {
		if r.Key() != key {
			kept = append(kept, r)
		}
	}
	n := len(f.records) - len(kept)
	f.records = kept
	return n, nil
}

func (f *fakePTALStore) all() []model.PTALRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.PTALRecord{}, f.records...)
}

// --- GuildStore ---

type fakeGuildStore struct {
	mu     sync.Mutex
	guilds map[string]model.Guild
	err    error
}

func newFakeGuildStore(ids ...string) *fakeGuildStore {
	f := &fakeGuildStore{guilds: map[string]model.Guild{}}
	for _, id := range ids {
		f.guilds[id] = model.Guild{ID: id}
	}
	return f
}

func (f *fakeGuildStore) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.guilds[id]
	return ok, nil
}

func (f *fakeGuildStore) Upsert(_ context.Context, g model.Guild) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.guilds[g.ID] = g
	return nil
}

func (f *fakeGuildStore) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.guilds, id)
	return nil
}

func (f *fakeGuildStore) ListAll(_ context.Context) ([]model.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Guild{}
	for _, g := range f.guilds {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeGuildStore) has(id string) bool {
	ok, _ := f.Exists(context.Background(), id)
	return ok
}

// --- RegistrationStore ---

type fakeRegistrationStore struct {
	regs []model.Registration
}

func (f *fakeRegistrationStore) FindByRepo(_ context.Context, owner, repo string) ([]model.Registration, error) {
	out := []model.Registration{}
	for _, r := range f.regs {
		if r.Owner == owner && r.Repository == repo {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistrationStore) Add(_ context.Context, reg model.Registration) (model.Registration, error) {
	f.regs = append(f.regs, reg)
	return reg, nil
}

func (f *fakeRegistrationStore) Remove(_ context.Context, _, _, _ string) error { return nil }

func (f *fakeRegistrationStore) ListAll(_ context.Context) ([]model.Registration, error) {
	return f.regs, nil
}

// --- GitHubClient ---

type fakeGitHub struct {
	mu         sync.Mutex
	prs        map[model.PRKey]model.PullRequest
	reviews    map[model.PRKey][]model.Review
	prErr      error
	prFetches  int
	revFetches int

	// fetchDelays are slept by successive FetchPullRequest calls, in order.
	fetchDelays []time.Duration
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{prs: map[model.PRKey]model.PullRequest{}, reviews: map[model.PRKey][]model.Review{}}
}

func (f *fakeGitHub) set(pr model.PullRequest, reviews ...model.Review) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prs[pr.Key()] = pr
	f.reviews[pr.Key()] = reviews
}

func (f *fakeGitHub) FetchPullRequest(_ context.Context, key model.PRKey) (model.PullRequest, error) {
	f.mu.Lock()
	var delay time.Duration
	if len(f.fetchDelays) > 0 {
		delay, f.fetchDelays = f.fetchDelays[0], f.fetchDelays[1:]
	}
	f.mu.Unlock()
	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.prFetches++
	if f.prErr != nil {
		return model.PullRequest{}, f.prErr
	}
	pr, ok := f.prs[key]
	if !ok {
		return model.PullRequest{}, fmt.Errorf("pull request %s: not found", key)
	}
	return pr, nil
}

func (f *fakeGitHub) FetchReviews(_ context.Context, key model.PRKey) ([]model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revFetches++
	return append([]model.Review{}, f.reviews[key]...), nil
}

// --- ChatClient ---

type chatCall struct {
	ChannelID string
	MessageID string
	Embed     model.StatusEmbed
}

type fakeChat struct {
	mu        sync.Mutex
	creates   []chatCall
	edits     []chatCall
	editedAt  []time.Time
	failOn    map[string]bool // channel IDs whose calls fail
	guilds    []model.Guild
	listErr   error
	nextMsgID int
}

func (f *fakeChat) CreateMessage(_ context.Context, channelID string, embed model.StatusEmbed) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[channelID] {
		return "", errUpstream
	}
	f.nextMsgID++
	id := fmt.Sprintf("M%d", f.nextMsgID)
	f.creates = append(f.creates, chatCall{ChannelID: channelID, MessageID: id, Embed: embed})
	return id, nil
}

func (f *fakeChat) EditMessage(_ context.Context, channelID, messageID string, embed model.StatusEmbed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[channelID] {
		return errUpstream
	}
	f.edits = append(f.edits, chatCall{ChannelID: channelID, MessageID: messageID, Embed: embed})
	f.editedAt = append(f.editedAt, time.Now())
	return nil
}

func (f *fakeChat) ListGuilds(_ context.Context) ([]model.Guild, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.guilds, nil
}

func (f *fakeChat) editCalls() []chatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chatCall{}, f.edits...)
}

func (f *fakeChat) editTimes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time{}, f.editedAt...)
}

func (f *fakeChat) createCalls() []chatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chatCall{}, f.creates...)
}

// --- fixtures ---

var widgets42 = model.PRKey{Owner: "acme", Repository: "widgets", Number: 42}

func widgetsPR() model.PullRequest {
	return model.PullRequest{
		Owner:      "acme",
		Repository: "widgets",
		Number:     42,
		Title:      "Add sprockets",
		URL:        "https://github.com/acme/widgets/pull/42",
		Author:     "alice",
		Status:     model.PRStatusOpen,
	}
}

func record(channel, message string) model.PTALRecord {
	return model.PTALRecord{
		ChannelID:   channel,
		MessageID:   message,
		Owner:       "acme",
		Repository:  "widgets",
		PR:          42,
		GuildID:     "G1",
		Description: "please review",
	}
}
