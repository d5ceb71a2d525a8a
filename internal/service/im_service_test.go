package service

import (
	"Lazo/internal/api/dto"
	"Lazo/internal/pkg/consts"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type imFixture struct {
	convs    *fakeConvRepo
	messages *fakeMessageRepo
	profiles *fakeProfileRepo
	broker   *fakePublisher
	svc      IMService
}

func newIMFixture(t *testing.T) *imFixture {
	t.Helper()
	f := &imFixture{
		convs:    newFakeConvRepo(),
		messages: newFakeMessageRepo(),
		profiles: newFakeProfileRepo(),
		broker:   &fakePublisher{},
	}
	f.profiles.addProfile(1, "ana")
	f.profiles.addProfile(2, "luis")
	f.svc = NewIMService(f.convs, f.messages, f.profiles, f.broker)
	return f
}

func (f *imFixture) privateConv(t *testing.T) uint64 {
	t.Helper()
	conv, err := f.convs.FindOrCreatePrivate(context.Background(), "1_2", 1, 2)
	require.NoError(t, err)
	return conv.ID
}

func TestSendMessageOrdersBySeq(t *testing.T) {
	f := newIMFixture(t)
	convID := f.privateConv(t)

	for i := 1; i <= 3; i++ {
		msg, err := f.svc.SendMessage(context.Background(), 1, &dto.SendMessageReq{
			ConversationID: convID,
			Content:        fmt.Sprintf("msg %d", i),
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), msg.Seq)
	}

	// 每条消息都推到会话频道
	require.Len(t, f.broker.msgs, 3)
	wantChannel := fmt.Sprintf("%s%d", consts.ChatConvChannel, convID)
	assert.Equal(t, wantChannel, f.broker.msgs[0].channel)
}

func TestSendMessageByNonMember(t *testing.T) {
	f := newIMFixture(t)
	f.profiles.addProfile(3, "eva")
	convID := f.privateConv(t)

	_, err := f.svc.SendMessage(context.Background(), 3, &dto.SendMessageReq{
		ConversationID: convID,
		Content:        "hola",
	})
	assert.ErrorIs(t, err, ErrConversationNotMember)
	assert.Empty(t, f.broker.msgs)
}

func TestGetHistoryPagesBackwards(t *testing.T) {
	f := newIMFixture(t)
	convID := f.privateConv(t)

	for i := 1; i <= 5; i++ {
		_, err := f.svc.SendMessage(context.Background(), 1, &dto.SendMessageReq{
			ConversationID: convID,
			Content:        fmt.Sprintf("msg %d", i),
		})
		require.NoError(t, err)
	}

	// lastSeq 之前的最近两条
	page, err := f.svc.GetHistory(context.Background(), 2, convID, 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(3), page[0].Seq)
	assert.Equal(t, uint64(2), page[1].Seq)

	_, err = f.svc.GetHistory(context.Background(), 99, convID, 0, 10)
	assert.ErrorIs(t, err, ErrConversationNotMember)
}

func TestCreateGroupDeduplicatesOwner(t *testing.T) {
	f := newIMFixture(t)

	conv, err := f.svc.CreateGroup(context.Background(), 1, &dto.CreateGroupReq{
		Name:      "grupo",
		MemberIDs: []uint64{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, consts.ConversationGroup, conv.Type)

	// 创建者自动入会且不重复
	members, err := f.convs.MemberIDs(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, members)

	ok, err := f.svc.IsMember(context.Background(), conv.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
