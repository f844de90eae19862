package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"designdesk/internal/domain"
	"designdesk/internal/infra"
)

var dimensionsPattern = regexp.MustCompile(`\d+[x×]\d+`)

// ManageHandler mutates existing requests from terse instructions. Single
// turn, stateless, at most one repository write per call. When a message
// carries several intents, the first recognized action wins: cancel, then
// title update, then dimensions update.
type ManageHandler struct {
	requests domain.RequestRepository
	logger   *infra.Logger
}

// NewManageHandler constructs the handler.
func NewManageHandler(requests domain.RequestRepository, logger *infra.Logger) *ManageHandler {
	return &ManageHandler{requests: requests, logger: logger}
}

// Handle executes one manage instruction and returns a confirmation or a
// bounded error reply. Repository failures never escape this boundary.
func (h *ManageHandler) Handle(ctx context.Context, locale, message string) string {
	match := requestIDPattern.FindString(message)
	if match == "" {
		return pick(locale, manageUsageZH, manageUsageEN)
	}
	id, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return pick(locale, manageUsageZH, manageUsageEN)
	}

	lowered := strings.ToLower(message)
	switch {
	case containsAny("取消", "cancel")(lowered):
		return h.cancel(ctx, locale, id)
	case containsAny("改", "更新", "修改", "update", "change")(lowered):
		if containsAny("标题", "title")(lowered) {
			return h.updateTitle(ctx, locale, id, message)
		}
		if containsAny("尺寸", "size", "dimension")(lowered) {
			return h.updateDimensions(ctx, locale, id, message)
		}
		return pick(locale, manageFieldsZH, manageFieldsEN)
	default:
		return pick(locale, manageMenuZH, manageMenuEN)
	}
}

func (h *ManageHandler) cancel(ctx context.Context, locale string, id int64) string {
	req, err := h.requests.Cancel(ctx, id, pick(locale, "用户取消", "cancelled by user"))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyCompleted) {
			return fmt.Sprintf(pick(locale,
				"错误：需求 [%d] 已完成，无法取消。",
				"Error: request [%d] is already completed and cannot be cancelled."), id)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf(pick(locale,
				"错误：未找到ID为 %d 的需求。",
				"Error: no request found with id %d."), id)
		}
		h.logger.Error().Err(err).Int64("request_id", id).Msg("manage: cancel failed")
		return safeError(locale, err)
	}
	return fmt.Sprintf(pick(locale,
		"已成功取消需求 [%d] %s",
		"Request [%d] %s has been cancelled."), req.ID, req.Title)
}

func (h *ManageHandler) updateTitle(ctx context.Context, locale string, id int64, message string) string {
	value := valueAfterDelimiter(message, "改成", "为", " to ", " as ")
	if value == "" {
		return pick(locale, manageFieldsZH, manageFieldsEN)
	}
	return h.update(ctx, locale, id, "title", value,
		pick(locale, "标题", "title"))
}

func (h *ManageHandler) updateDimensions(ctx context.Context, locale string, id int64, message string) string {
	value := dimensionsPattern.FindString(message)
	if value == "" {
		return pick(locale, manageFieldsZH, manageFieldsEN)
	}
	return h.update(ctx, locale, id, "dimensions", strings.ReplaceAll(value, "×", "x"),
		pick(locale, "尺寸", "dimensions"))
}

func (h *ManageHandler) update(ctx context.Context, locale string, id int64, field, value, fieldLabel string) string {
	req, err := h.requests.UpdateField(ctx, id, field, value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf(pick(locale,
				"错误：未找到ID为 %d 的需求。",
				"Error: no request found with id %d."), id)
		}
		h.logger.Error().Err(err).Int64("request_id", id).Str("field", field).Msg("manage: update failed")
		return safeError(locale, err)
	}
	return fmt.Sprintf(pick(locale,
		"已成功将需求 [%d] %s 的%s更新为：%s",
		"Request [%d] %s: %s updated to %s."), req.ID, req.Title, fieldLabel, value)
}

// valueAfterDelimiter returns the trimmed text following the first matching
// delimiter, with surrounding quotes stripped.
func valueAfterDelimiter(message string, delimiters ...string) string {
	for _, delim := range delimiters {
		idx := strings.Index(message, delim)
		if idx < 0 {
			continue
		}
		value := strings.TrimSpace(message[idx+len(delim):])
		value = strings.Trim(value, `"“”'`)
		if value != "" {
			return value
		}
	}
	return ""
}
