package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"designdesk/internal/domain"
)

func newQueryTest(requests *mockRequests, guidance *mockGuidance) *QueryHandler {
	if requests == nil {
		requests = &mockRequests{}
	}
	if guidance == nil {
		guidance = &mockGuidance{}
	}
	return NewQueryHandler(requests, guidance, testLogger())
}

func TestQueryGuidanceKeywords(t *testing.T) {
	g := &mockGuidance{snippets: []string{"Banner宽高比 8:3", "文案不超过12字"}}
	h := newQueryTest(nil, g)

	reply := h.Handle(context.Background(), "zh", 1, "Banner设计规范有哪些？")
	require.Contains(t, reply, "【规范 1】")
	require.Contains(t, reply, "Banner宽高比 8:3")
	require.Contains(t, reply, "文案不超过12字")
	require.Equal(t, "Banner设计规范有哪些？", g.lastQ)
	require.Equal(t, "", g.lastCat, "freeform guidance search is uncategorized")
}

func TestQueryGuidanceNoMatches(t *testing.T) {
	h := newQueryTest(nil, &mockGuidance{})
	reply := h.Handle(context.Background(), "zh", 1, "有什么建议吗")
	require.Equal(t, "未找到相关设计规范。", reply)
}

func TestQueryListRequests(t *testing.T) {
	created := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)
	r := &mockRequests{list: []domain.Request{
		{ID: 3, Title: "春季大促Banner", Category: "banner", Status: domain.StatusInProgress, CreatedAt: created},
		{ID: 5, Title: "新品海报", Category: "poster", Status: domain.StatusPending, CreatedAt: created},
	}}
	h := newQueryTest(r, nil)

	reply := h.Handle(context.Background(), "zh", 1, "我的需求列表")
	require.Contains(t, reply, "找到 2 条需求")
	require.Contains(t, reply, "[3] 春季大促Banner")
	require.Contains(t, reply, "进行中")
	require.Contains(t, reply, "[5] 新品海报")
	require.Contains(t, reply, "待接单")
	require.Contains(t, reply, "2026-08-30 14:05")
}

func TestQueryListEmpty(t *testing.T) {
	h := newQueryTest(&mockRequests{}, nil)
	reply := h.Handle(context.Background(), "zh", 1, "查看任务")
	require.Equal(t, "您还没有提交过需求。", reply)
}

func TestQueryStatusByID(t *testing.T) {
	assignee := int64(9)
	r := &mockRequests{byID: &domain.Request{
		ID:         12,
		Title:      "详情页改版",
		Category:   "detail_page",
		Status:     domain.StatusUnderReview,
		Dimensions: "750x1334",
		AssigneeID: &assignee,
		Deadline:   "2026-09-10",
		CreatedAt:  time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	}}
	h := newQueryTest(r, nil)

	reply := h.Handle(context.Background(), "zh", 1, "查一下12的进度")
	require.Contains(t, reply, "需求 [12] 详情页改版")
	require.Contains(t, reply, "待验收")
	require.Contains(t, reply, "750x1334")
	require.Contains(t, reply, "设计师ID：9")
	require.Contains(t, reply, "2026-09-10")
}

func TestQueryStatusWithoutID(t *testing.T) {
	h := newQueryTest(nil, nil)
	reply := h.Handle(context.Background(), "zh", 1, "看下进度")
	require.Equal(t, statusNeedIDZH, reply)
}

func TestQueryMenuFallback(t *testing.T) {
	h := newQueryTest(nil, nil)
	require.Equal(t, queryMenuZH, h.Handle(context.Background(), "zh", 1, "你好"))
	require.Equal(t, queryMenuEN, h.Handle(context.Background(), "en", 1, "hello there"))
}

func TestQueryGuidancePrecedesList(t *testing.T) {
	// "怎么" matches guidance, "需求" matches list; guidance rule wins.
	g := &mockGuidance{snippets: []string{"snippet"}}
	r := &mockRequests{list: []domain.Request{{ID: 1, Title: "x"}}}
	h := newQueryTest(r, g)

	reply := h.Handle(context.Background(), "zh", 1, "需求的尺寸怎么填")
	require.Equal(t, 1, g.calls)
	require.Contains(t, reply, "snippet")
}

func TestQueryRepositoryFailureIsBounded(t *testing.T) {
	long := strings.Repeat("数", 300)
	r := &mockRequests{listErr: errors.New(long)}
	h := newQueryTest(r, nil)

	reply := h.Handle(context.Background(), "zh", 1, "我的需求")
	require.True(t, strings.HasPrefix(reply, "抱歉，操作时出现问题："))
	detail := strings.TrimPrefix(reply, "抱歉，操作时出现问题：")
	require.Len(t, []rune(detail), safeErrorMaxChars)
}
