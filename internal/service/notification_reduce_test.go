package service

import (
	"testing"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_FiltersReadAndSortsNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candidates := []Candidate{
		{Kind: domain.KindFriendRequestReceived, SourceID: 1, OccurredAt: base},
		{Kind: domain.KindParticipationRequest, SourceID: 1, OccurredAt: base.Add(2 * time.Hour)},
		{Kind: domain.KindNewMessage, SourceID: 7, OccurredAt: base.Add(time.Hour)},
		{Kind: domain.KindFriendRequestAccepted, SourceID: 3, OccurredAt: base.Add(3 * time.Hour)},
	}
	read := ReadSet{}
	read.Add(domain.KindFriendRequestAccepted, 3)
	// Same id under another kind must not hide anything.
	read.Add(domain.KindNewMessage, 1)

	out := Reduce(candidates, read)
	require.Len(t, out, 3)
	assert.Equal(t, domain.KindParticipationRequest, out[0].Kind)
	assert.Equal(t, domain.KindNewMessage, out[1].Kind)
	assert.Equal(t, domain.KindFriendRequestReceived, out[2].Kind)
}

func TestReduce_EqualTimestampsKeepCollectionOrder(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candidates := []Candidate{
		{Kind: domain.KindFriendRequestReceived, SourceID: 1, OccurredAt: at},
		{Kind: domain.KindParticipationRequest, SourceID: 2, OccurredAt: at},
		{Kind: domain.KindNewMessage, SourceID: 3, OccurredAt: at},
	}
	out := Reduce(candidates, ReadSet{})
	assert.Equal(t, candidates, out)
}

func TestReduce_EmptyInput(t *testing.T) {
	out := Reduce(nil, ReadSet{})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestLatestPerSender_TieBrokenByHighestID(t *testing.T) {
	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	since := at.Add(-time.Hour)
	rows := []repository.MessageRow{
		{ID: 5, ActivityID: 1, SenderID: 2, OccurredAt: at},
		{ID: 9, ActivityID: 1, SenderID: 2, OccurredAt: at},
		{ID: 7, ActivityID: 1, SenderID: 2, OccurredAt: at},
		{ID: 8, ActivityID: 1, SenderID: 3, OccurredAt: at.Add(-2 * time.Hour)},
		{ID: 10, ActivityID: 1, SenderID: 1, OccurredAt: at},
	}
	out := latestPerSender(rows, 1, since)
	require.Len(t, out, 1)
	assert.Equal(t, uint(9), out[0].ID)
}

func TestUnion_DedupesInOrder(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, union([]uint{3, 1}, []uint{1, 2, 3}))
	assert.Empty(t, union(nil, nil))
}
