package service

import (
	"testing"
	"time"

	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixtures(now time.Time) []model.ApprovalRequest {
	return []model.ApprovalRequest{
		{
			ID:            "r1",
			Type:          model.ApprovalTypeMembership,
			RequesterName: "Alice Johnson",
			Description:   "join the gardening group",
			Status:        model.StatusPending,
			CreatedAt:     now.AddDate(0, 0, -2),
		},
		{
			ID:            "r2",
			Type:          model.ApprovalTypeEvent,
			RequesterName: "Bob Smith",
			Description:   "host a spring fair",
			Status:        model.StatusApproved,
			CreatedAt:     now.AddDate(0, 0, -10),
		},
		{
			ID:            "r3",
			Type:          model.ApprovalTypeMarketplace,
			RequesterName: "alice cooper",
			Description:   "sell handmade pottery",
			Status:        model.StatusPending,
			CreatedAt:     now.AddDate(0, 0, -40),
		},
	}
}

func ids(requests []model.ApprovalRequest) []string {
	out := make([]string, 0, len(requests))
	for _, r := range requests {
		out = append(out, r.ID)
	}
	return out
}

func TestFilterByType(t *testing.T) {
	got := Apply(filterFixtures(time.Now()), ByType(model.ApprovalTypeEvent))
	assert.Equal(t, []string{"r2"}, ids(got))
}

func TestFilterByRequesterIsCaseInsensitive(t *testing.T) {
	got := Apply(filterFixtures(time.Now()), ByRequester("ALICE"))
	assert.Equal(t, []string{"r1", "r3"}, ids(got))
}

func TestFilterWindow(t *testing.T) {
	now := time.Now().UTC()
	fixtures := filterFixtures(now)

	assert.Equal(t, []string{"r1"}, ids(Apply(fixtures, Window("7d", now))))
	assert.Equal(t, []string{"r1", "r2"}, ids(Apply(fixtures, Window("30d", now))))
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(Apply(fixtures, Window("all", now))))
}

func TestFilterSearchSpansFields(t *testing.T) {
	fixtures := filterFixtures(time.Now())

	assert.Equal(t, []string{"r3"}, ids(Apply(fixtures, Search("pottery"))), "matches description")
	assert.Equal(t, []string{"r2"}, ids(Apply(fixtures, Search("Event"))), "matches type")
	assert.Equal(t, []string{"r2"}, ids(Apply(fixtures, Search("smith"))), "matches requester name")
	assert.Empty(t, ids(Apply(fixtures, Search("nothing matches this"))))
}

func TestFiltersComposeByAND(t *testing.T) {
	now := time.Now().UTC()
	fixtures := filterFixtures(now)

	a := Apply(fixtures, ByRequester("alice"), ByStatus(model.StatusPending), Window("7d", now))
	b := Apply(fixtures, Window("7d", now), ByStatus(model.StatusPending), ByRequester("alice"))

	// Order of application never changes the result set.
	require.Equal(t, ids(a), ids(b))
	assert.Equal(t, []string{"r1"}, ids(a))
}

func TestApplyWithoutFiltersKeepsEverything(t *testing.T) {
	fixtures := filterFixtures(time.Now())
	got := Apply(fixtures)
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	fixtures := filterFixtures(time.Now())
	_ = Apply(fixtures, ByType(model.ApprovalTypeEvent))
	assert.Len(t, fixtures, 3)
	assert.Equal(t, "r1", fixtures[0].ID)
}
