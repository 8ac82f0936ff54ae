package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-planner/internal/model"
)

func TestStudyMembership(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")

	study, err := env.studies.CreateStudy(ctx, ann.ID, "algorithms")
	require.NoError(t, err)
	require.Len(t, study.Members, 1)
	assert.Equal(t, model.RankLeader, study.Members[0].MemberStatus)
	assert.Equal(t, int64(1), study.MemberCount)

	joined, err := env.studies.JoinStudy(ctx, bob.ID, study.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RankMember, joined.MemberStatus)

	_, err = env.studies.JoinStudy(ctx, bob.ID, study.ID)
	assert.ErrorIs(t, err, ErrRedundant)
	_, err = env.studies.JoinStudy(ctx, bob.ID, study.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.studies.SetMemberStatus(ctx, bob.ID, study.ID, ann.ID, model.RankMember)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = env.studies.SetMemberStatus(ctx, ann.ID, study.ID, bob.ID, model.RankLeader)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	promoted, err := env.studies.SetMemberStatus(ctx, ann.ID, study.ID, bob.ID, model.RankManager)
	require.NoError(t, err)
	assert.Equal(t, model.RankManager, promoted.MemberStatus)

	got, err := env.studies.GetStudy(ctx, study.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.MemberCount)
	assert.Len(t, got.Members, 2)
}

func TestPostRights(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	leader := env.user(t, "leader")
	member := env.user(t, "member")
	stranger := env.user(t, "stranger")

	study, err := env.studies.CreateStudy(ctx, leader.ID, "go")
	require.NoError(t, err)
	_, err = env.studies.JoinStudy(ctx, member.ID, study.ID)
	require.NoError(t, err)

	_, err = env.posts.CreatePost(ctx, stranger.ID, study.ID, PostInput{Title: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.posts.CreatePost(ctx, member.ID, study.ID, PostInput{Title: "hi"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	notice, err := env.posts.CreatePost(ctx, leader.ID, study.ID, PostInput{Title: "Rules", Contents: "be on time", IsNotice: true})
	require.NoError(t, err)
	promo, err := env.posts.CreatePost(ctx, leader.ID, study.ID, PostInput{Title: "Join the Go study", Contents: "weekly"})
	require.NoError(t, err)

	title := "Join the GO study"
	_, err = env.posts.UpdatePost(ctx, member.ID, promo.ID, PostUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrUnauthorized)
	updated, err := env.posts.UpdatePost(ctx, leader.ID, promo.ID, PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "weekly", updated.Contents)

	notices, err := env.posts.ListNotices(ctx, study.ID)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, notice.ID, notices[0].ID)

	promotions, err := env.posts.ListPromotions(ctx)
	require.NoError(t, err)
	require.Len(t, promotions, 1)

	found, err := env.posts.SearchPromotions(ctx, "go")
	require.NoError(t, err)
	assert.Len(t, found, 1)
	_, err = env.posts.SearchPromotions(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.posts.DeletePost(ctx, member.ID, promo.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = env.posts.DeletePost(ctx, leader.ID, promo.ID)
	require.NoError(t, err)
	_, err = env.posts.GetPost(ctx, promo.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
