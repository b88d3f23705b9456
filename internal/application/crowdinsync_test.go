package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ptalbot/internal/application"
	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

type syncFixture struct {
	regs   *fakeRegistrationStore
	ptals  *fakePTALStore
	guilds *fakeGuildStore
	gh     *fakeGitHub
	chat   *fakeChat
	svc    *application.CrowdinSyncService
}

func newSyncFixture(channels ...string) *syncFixture {
	f := &syncFixture{
		regs:   &fakeRegistrationStore{},
		ptals:  &fakePTALStore{},
		guilds: newFakeGuildStore("G1"),
		gh:     newFakeGitHub(),
		chat:   &fakeChat{},
	}
	for _, ch := range channels {
		f.regs.regs = append(f.regs.regs, model.Registration{Owner: "acme", Repository: "widgets", GuildID: "G1", ChannelID: ch})
	}
	f.gh.set(widgetsPR())
	ptal := application.NewPTALService(f.ptals, f.guilds, f.gh, f.chat)
	f.svc = application.NewCrowdinSyncService(f.regs, f.gh, ptal, "crowdin-ptal")
	return f
}

func syncEvent(prURL string) model.RepositoryDispatchEvent {
	return model.RepositoryDispatchEvent{
		Action:        "crowdin-ptal",
		Owner:         "acme",
		Repository:    "widgets",
		ClientPayload: map[string]any{"pull_request_url": prURL},
	}
}

func TestCrowdinSync_FansOutToEveryRegistration(t *testing.T) {
	f := newSyncFixture("C1", "C2", "C3")

	result, err := f.svc.Sync(context.Background(), syncEvent("https://github.com/acme/widgets/pull/42"))

	require.NoError(t, err)
	assert.Equal(t, application.SyncResult{Registrations: 3, Created: 3}, result)

	creates := f.chat.createCalls()
	require.Len(t, creates, 3)
	for i, ch := range []string{"C1", "C2", "C3"} {
		assert.Equal(t, ch, creates[i].ChannelID)
		assert.Equal(t, application.CrowdinSyncDescription, creates[i].Embed.Description)
	}

	records := f.ptals.all()
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, widgets42, rec.Key())
		assert.Equal(t, creates[i].MessageID, rec.MessageID)
		assert.Equal(t, "G1", rec.GuildID)
		assert.Equal(t, application.CrowdinSyncDescription, rec.Description)
	}

	assert.Equal(t, 1, f.gh.prFetches, "pull request fetched once for all registrations")
}

func TestCrowdinSync_OneFailureDoesNotStopOthers(t *testing.T) {
	f := newSyncFixture("C1", "BROKEN", "C3")
	f.chat.failOn = map[string]bool{"BROKEN": true}

	result, err := f.svc.Sync(context.Background(), syncEvent("https://github.com/acme/widgets/pull/42"))

	require.NoError(t, err)
	assert.Equal(t, application.SyncResult{Registrations: 3, Created: 2, Failed: 1}, result)
	assert.Len(t, f.chat.createCalls(), 2)
	assert.Len(t, f.ptals.all(), 2)
}

func TestCrowdinSync_NoRegistrations(t *testing.T) {
	f := newSyncFixture()

	err := f.svc.HandleEvent(context.Background(), syncEvent("https://github.com/acme/widgets/pull/42"))

	require.NoError(t, err)
	assert.Empty(t, f.chat.createCalls())
	assert.Zero(t, f.gh.prFetches)

	_, err = f.svc.Sync(context.Background(), syncEvent("https://github.com/acme/widgets/pull/42"))
	assert.ErrorIs(t, err, application.ErrUnregisteredRepository)
}

func TestCrowdinSync_IgnoresOtherActions(t *testing.T) {
	f := newSyncFixture("C1")
	ev := syncEvent("https://github.com/acme/widgets/pull/42")
	ev.Action = "deploy"

	require.NoError(t, f.svc.HandleEvent(context.Background(), ev))
	require.NoError(t, f.svc.HandleEvent(context.Background(), model.PushEvent{}))

	assert.Empty(t, f.chat.createCalls())
}

func TestCrowdinSync_InvalidURL(t *testing.T) {
	f := newSyncFixture("C1")

	err := f.svc.HandleEvent(context.Background(), syncEvent("https://github.com/acme/widgets/issues/abc"))

	require.ErrorIs(t, err, application.ErrInvalidPullRequestURL)
	assert.Empty(t, f.chat.createCalls())

	ev := syncEvent("")
	ev.ClientPayload = map[string]any{}
	_, err = f.svc.Sync(context.Background(), ev)
	assert.ErrorIs(t, err, application.ErrInvalidPullRequestURL)
}

func TestCrowdinSync_SkipsLeftGuild(t *testing.T) {
	f := newSyncFixture("C1")
	f.regs.regs = append(f.regs.regs, model.Registration{Owner: "acme", Repository: "widgets", GuildID: "G-gone", ChannelID: "C2"})

	result, err := f.svc.Sync(context.Background(), syncEvent("https://github.com/acme/widgets/pull/42"))

	require.NoError(t, err)
	assert.Equal(t, application.SyncResult{Registrations: 2, Created: 1, Skipped: 1}, result)
}

func TestCrowdinSync_UpstreamFailure(t *testing.T) {
	f := newSyncFixture("C1")
	f.gh.prErr = errUpstream

	_, err := f.svc.Sync(context.Background(), syncEvent("https://github.com/acme/widgets/pull/42"))

	require.ErrorIs(t, err, errUpstream)
	assert.Empty(t, f.chat.createCalls())
}

func TestParsePullRequestNumber(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "https://github.com/acme/widgets/pull/42", want: 42},
		{raw: "https://github.com/acme/widgets/pull/42/", want: 42},
		{raw: "https://api.github.com/repos/acme/widgets/pulls/7", want: 7},
		{raw: "", wantErr: true},
		{raw: "https://github.com/acme/widgets/issues/42", wantErr: true},
		{raw: "https://github.com/acme/widgets/pull/abc", wantErr: true},
		{raw: "https://github.com/acme/widgets/pull/0", wantErr: true},
		{raw: "42", wantErr: true},
		{raw: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := application.ParsePullRequestNumber(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, application.ErrInvalidPullRequestURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
