package agent

// pick selects the reply language for synthesized (non-oracle) text.
func pick(locale, zh, en string) string {
	if locale == "en" {
		return en
	}
	return zh
}

const (
	cancelConfirmedZH = "好的，已取消本次需求创建。如需重新开始，请告诉我您的需求。"
	cancelConfirmedEN = "Okay, this request has been cancelled. Tell me what you need whenever you want to start over."

	queryMenuZH = "您好！我可以帮您：\n1. 查询需求列表（说\"我的需求\"）\n2. 查询设计规范（说\"Banner设计规范\"）\n3. 查询任务状态（说\"需求1的状态\"）"
	queryMenuEN = "Hi! I can help you:\n1. List your requests (say \"my requests\")\n2. Look up design guidelines (say \"banner guidelines\")\n3. Check task status (say \"status of request 1\")"

	manageUsageZH = "请提供需求ID，例如：取消需求1 或 把需求1的标题改成xxx"
	manageUsageEN = "Please include a request ID, e.g. \"cancel request 1\" or \"change the title of request 1 to xxx\"."

	manageMenuZH = "我可以帮您：\n1. 取消需求（说\"取消需求1\"）\n2. 更新需求（说\"把需求1的标题改成xxx\"）"
	manageMenuEN = "I can help you:\n1. Cancel a request (say \"cancel request 1\")\n2. Update a request (say \"change the title of request 1 to xxx\")"

	manageFieldsZH = "目前支持更新：标题、尺寸。例如：把需求1的标题改成xxx"
	manageFieldsEN = "Only title and dimensions can be updated for now, e.g. \"change the title of request 1 to xxx\"."

	statusNeedIDZH = "请提供需求ID，例如：查询需求1的状态"
	statusNeedIDEN = "Please include a request ID, e.g. \"status of request 1\"."
)

// statusLabels maps lifecycle states to their operator-facing names.
var statusLabels = map[string]struct{ zh, en string }{
	"pending":      {"待接单", "pending"},
	"in_progress":  {"进行中", "in progress"},
	"under_review": {"待验收", "under review"},
	"revising":     {"修改中", "revising"},
	"completed":    {"已完成", "completed"},
}

func statusLabel(locale, status string) string {
	if label, ok := statusLabels[status]; ok {
		return pick(locale, label.zh, label.en)
	}
	return status
}
