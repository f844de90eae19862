package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"designdesk/internal/domain"
)

const classifySystemPrompt = `你是一个意图识别专家。分析用户消息，判断用户的意图。

意图类型：
- create: 用户想创建新的设计需求（如"我需要一个Banner"、"帮我做个海报"）
- query: 用户想查询需求列表、设计规范、任务进度（如"我有哪些需求"、"Banner设计规范是什么"）
- manage: 用户想更新或取消已有需求（如"把标题改成xxx"、"取消这个需求"）
- chat: 闲聊、问候、感谢等（如"你好"、"谢谢"）

请基于用户消息和对话历史上下文判断意图。
只返回 JSON：{"intent": "...", "confidence": 0.0, "reasoning": "..."}`

func buildExtractionPrompt(draft domain.RequestDraft) string {
	serialized, err := json.Marshal(draft)
	if err != nil {
		serialized = []byte("{}")
	}
	sb := &strings.Builder{}
	sb.WriteString("你是一个需求提取助手。分析用户消息，提取设计需求的结构化字段。\n\n")
	fmt.Fprintf(sb, "当前需求单状态：\n%s\n\n", serialized)
	sb.WriteString(`请从用户消息中提取以下字段（如果有）：
- title: 需求标题
- category: 设计类型 (banner/poster/detail_page/icon/other)
- dimensions: 尺寸 (如 1080x640)
- deadline: 交付时间
- copy_text: 文案内容
- reference_assets: 参考素材链接（逗号分隔）
- notes: 补充说明
- assignee_id: 指定设计师编号
- estimated_hours: 预估工时

只返回 JSON 格式，只包含需要更新的字段：
{"title": "...", "category": "..."}

如果消息中没有可提取的字段，返回空对象 {}`)
	return sb.String()
}

func buildReplyPrompt(draft domain.RequestDraft, guidance []string, missing []string) string {
	serialized, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		serialized = []byte("{}")
	}
	specs := "暂无"
	if len(guidance) > 0 {
		specs = strings.Join(guidance, "\n")
	}
	missingText := "无"
	if len(missing) > 0 {
		missingText = strings.Join(missing, ", ")
	}
	sb := &strings.Builder{}
	sb.WriteString("你是一个专业的设计需求助手，帮助用户创建设计需求。\n\n")
	fmt.Fprintf(sb, "当前需求单状态：\n%s\n\n", serialized)
	fmt.Fprintf(sb, "设计规范参考：\n%s\n\n", specs)
	fmt.Fprintf(sb, "缺失的必填字段：%s\n\n", missingText)
	sb.WriteString(`请根据上述信息生成友好的回复：
1. 如果有设计规范建议，先给出建议
2. 如果有缺失字段，请追问用户
3. 如果需求已完整，告知用户可以提交

语气要专业、友好、简洁。`)
	return sb.String()
}
