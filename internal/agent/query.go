package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"designdesk/internal/domain"
	"designdesk/internal/infra"
)

var requestIDPattern = regexp.MustCompile(`\d+`)

const (
	queryListLimit    = 10
	queryGuidanceK    = 3
	safeErrorMaxChars = 200
)

// QueryHandler answers read-only questions about requests and design
// guidance. It is stateless and heuristic: an ordered list of keyword
// predicates is evaluated in fixed precedence, and the first match performs
// exactly one repository or knowledge-base read.
type QueryHandler struct {
	requests domain.RequestRepository
	guidance domain.GuidanceStore
	logger   *infra.Logger
	rules    []queryRule
}

type queryRule struct {
	matches func(string) bool
	run     func(ctx context.Context, locale string, requesterID int64, message string) (string, error)
}

// NewQueryHandler constructs the handler with its precedence-ordered rules.
func NewQueryHandler(requests domain.RequestRepository, guidance domain.GuidanceStore, logger *infra.Logger) *QueryHandler {
	h := &QueryHandler{requests: requests, guidance: guidance, logger: logger}
	h.rules = []queryRule{
		{matches: containsAny("规范", "建议", "怎么", "如何", "guideline", "spec", "how"), run: h.searchGuidance},
		{matches: containsAny("需求", "任务", "列表", "list", "request"), run: h.listRequests},
		{matches: containsAny("状态", "进度", "status", "progress"), run: h.requestStatus},
	}
	return h
}

// Handle answers a single query message. Repository failures never escape:
// they are converted to a truncated, user-safe reply.
func (h *QueryHandler) Handle(ctx context.Context, locale string, requesterID int64, message string) string {
	lowered := strings.ToLower(message)
	for _, rule := range h.rules {
		if !rule.matches(lowered) {
			continue
		}
		reply, err := rule.run(ctx, locale, requesterID, message)
		if err != nil {
			h.logger.Error().Err(err).Msg("query: lookup failed")
			return safeError(locale, err)
		}
		return reply
	}
	return pick(locale, queryMenuZH, queryMenuEN)
}

func (h *QueryHandler) searchGuidance(ctx context.Context, locale string, _ int64, message string) (string, error) {
	snippets, err := h.guidance.Search(ctx, message, "", queryGuidanceK)
	if err != nil {
		return "", err
	}
	if len(snippets) == 0 {
		return pick(locale, "未找到相关设计规范。", "No matching design guidelines found."), nil
	}
	sb := &strings.Builder{}
	sb.WriteString(pick(locale, "查询到以下设计规范：\n\n", "Found the following design guidelines:\n\n"))
	for i, snippet := range snippets {
		fmt.Fprintf(sb, pick(locale, "【规范 %d】\n%s\n\n", "[Guideline %d]\n%s\n\n"), i+1, snippet)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (h *QueryHandler) listRequests(ctx context.Context, locale string, requesterID int64, _ string) (string, error) {
	requests, err := h.requests.ListByRequester(ctx, requesterID, "", queryListLimit)
	if err != nil {
		return "", err
	}
	if len(requests) == 0 {
		return pick(locale, "您还没有提交过需求。", "You have not submitted any requests yet."), nil
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, pick(locale, "找到 %d 条需求：\n\n", "Found %d requests:\n\n"), len(requests))
	for _, req := range requests {
		fmt.Fprintf(sb, "- [%d] %s\n", req.ID, req.Title)
		fmt.Fprintf(sb, pick(locale, "  类型：%s，状态：%s\n", "  category: %s, status: %s\n"),
			req.Category, statusLabel(locale, string(req.Status)))
		fmt.Fprintf(sb, pick(locale, "  创建时间：%s\n\n", "  created: %s\n\n"),
			req.CreatedAt.Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (h *QueryHandler) requestStatus(ctx context.Context, locale string, _ int64, message string) (string, error) {
	match := requestIDPattern.FindString(message)
	if match == "" {
		return pick(locale, statusNeedIDZH, statusNeedIDEN), nil
	}
	id, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return pick(locale, statusNeedIDZH, statusNeedIDEN), nil
	}
	req, err := h.requests.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, pick(locale, "需求 [%d] %s\n\n", "Request [%d] %s\n\n"), req.ID, req.Title)
	fmt.Fprintf(sb, pick(locale, "当前状态：%s\n", "status: %s\n"), statusLabel(locale, string(req.Status)))
	fmt.Fprintf(sb, pick(locale, "类型：%s\n", "category: %s\n"), req.Category)
	dims := req.Dimensions
	if dims == "" {
		dims = pick(locale, "未指定", "unspecified")
	}
	fmt.Fprintf(sb, pick(locale, "尺寸：%s\n", "dimensions: %s\n"), dims)
	if req.AssigneeID != nil {
		fmt.Fprintf(sb, pick(locale, "设计师ID：%d\n", "designer id: %d\n"), *req.AssigneeID)
	}
	if req.Deadline != "" {
		fmt.Fprintf(sb, pick(locale, "截止时间：%s\n", "deadline: %s\n"), req.Deadline)
	}
	fmt.Fprintf(sb, pick(locale, "创建时间：%s\n", "created: %s\n"), req.CreatedAt.Format("2006-01-02 15:04"))
	return strings.TrimRight(sb.String(), "\n"), nil
}

func containsAny(keywords ...string) func(string) bool {
	return func(lowered string) bool {
		for _, keyword := range keywords {
			if strings.Contains(lowered, keyword) {
				return true
			}
		}
		return false
	}
}

// safeError converts a repository failure into a bounded, user-safe string.
func safeError(locale string, err error) string {
	detail := err.Error()
	if runes := []rune(detail); len(runes) > safeErrorMaxChars {
		detail = string(runes[:safeErrorMaxChars])
	}
	return pick(locale, "抱歉，操作时出现问题：", "Sorry, something went wrong: ") + detail
}
