package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"designdesk/internal/domain"
)

func newManageTest(requests *mockRequests) (*ManageHandler, *mockRequests) {
	if requests == nil {
		requests = &mockRequests{}
	}
	return NewManageHandler(requests, testLogger()), requests
}

func TestManageRequiresRequestID(t *testing.T) {
	h, r := newManageTest(nil)
	reply := h.Handle(context.Background(), "zh", "取消我的需求")
	require.Equal(t, manageUsageZH, reply)
	require.Zero(t, r.writes)
}

func TestManageCancel(t *testing.T) {
	h, r := newManageTest(&mockRequests{
		cancelled: &domain.Request{ID: 5, Title: "春季海报", Status: domain.StatusCompleted},
	})
	reply := h.Handle(context.Background(), "zh", "取消需求5")
	require.Equal(t, int64(5), r.cancelID)
	require.Equal(t, "用户取消", r.cancelReason)
	require.Contains(t, reply, "已成功取消需求 [5] 春季海报")
}

func TestManageCancelCompletedRejected(t *testing.T) {
	h, _ := newManageTest(&mockRequests{cancelErr: domain.ErrAlreadyCompleted})
	reply := h.Handle(context.Background(), "zh", "取消需求5")
	require.Equal(t, "错误：需求 [5] 已完成，无法取消。", reply)
}

func TestManageCancelNotFound(t *testing.T) {
	h, _ := newManageTest(&mockRequests{cancelErr: domain.ErrNotFound})
	reply := h.Handle(context.Background(), "en", "cancel request 42")
	require.Equal(t, "Error: no request found with id 42.", reply)
}

func TestManageUpdateTitle(t *testing.T) {
	h, r := newManageTest(&mockRequests{
		updated: &domain.Request{ID: 3, Title: "夏季clearance"},
	})
	reply := h.Handle(context.Background(), "zh", "把需求3的标题改成夏季clearance")
	require.Equal(t, int64(3), r.updateID)
	require.Equal(t, [2]string{"title", "夏季clearance"}, r.updateArgs)
	require.Contains(t, reply, "标题更新为：夏季clearance")
}

func TestManageUpdateTitleQuoted(t *testing.T) {
	h, r := newManageTest(&mockRequests{updated: &domain.Request{ID: 3, Title: "New Title"}})
	h.Handle(context.Background(), "en", `update the title of request 3 to "New Title"`)
	require.Equal(t, [2]string{"title", "New Title"}, r.updateArgs)
}

func TestManageUpdateDimensionsNormalizesTimes(t *testing.T) {
	h, r := newManageTest(&mockRequests{updated: &domain.Request{ID: 7, Title: "首页Banner"}})
	reply := h.Handle(context.Background(), "zh", "把需求7的尺寸改成1920×600")
	require.Equal(t, [2]string{"dimensions", "1920x600"}, r.updateArgs)
	require.Contains(t, reply, "1920x600")
}

func TestManageCancelPrecedesUpdate(t *testing.T) {
	// A message mentioning both cancellation and a title change cancels.
	h, r := newManageTest(&mockRequests{cancelled: &domain.Request{ID: 2, Title: "旧图"}})
	h.Handle(context.Background(), "zh", "取消需求2，标题也不用改成新的了")
	require.Equal(t, int64(2), r.cancelID)
	require.Zero(t, r.updateID)
}

func TestManageUpdateUnknownField(t *testing.T) {
	h, r := newManageTest(nil)
	reply := h.Handle(context.Background(), "zh", "把需求4的颜色改成红色")
	require.Equal(t, manageFieldsZH, reply)
	require.Zero(t, r.writes)
}

func TestManageMenuForUnrecognizedAction(t *testing.T) {
	h, r := newManageTest(nil)
	reply := h.Handle(context.Background(), "zh", "需求6加急")
	require.Equal(t, manageMenuZH, reply)
	require.Zero(t, r.writes)
}
