package domain

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one entry of the conversation history. Content is markdown.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatContext tags which panel initiated a chat request.
type ChatContext string

const (
	ContextHome         ChatContext = "HOME_PAGE"
	ContextTransactions ChatContext = "TRANSACTIONS_PAGE"
	ContextFinancialAI  ChatContext = "FINANCIAL_AI_PAGE"
)

// Valid reports whether c is one of the contexts the backend understands.
func (c ChatContext) Valid() bool {
	switch c {
	case ContextHome, ContextTransactions, ContextFinancialAI:
		return true
	}
	return false
}
