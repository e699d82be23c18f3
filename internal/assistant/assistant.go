// Package assistant produces free-text replies from a hosted chat model for
// messages no other handler claims.
package assistant

import (
	"context"
	"errors"

	"github.com/xaenox/school-bot/internal/models"
)

// ErrEmptyResponse is returned when the provider answers without a choice.
var ErrEmptyResponse = errors.New("assistant returned no choices")

// Assistant completes a role-tagged conversation.
type Assistant interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// SystemPrompt sets the persona of the school chatbot.
const SystemPrompt = `당신은 파주와석초등학교의 친근하고 도움이 되는 챗봇입니다.

주요 역할:
1. 학교 관련 질문에 친절하고 정확하게 답변
2. 급식 정보 제공
3. 학교 규칙과 절차 안내
4. 학부모님과 학생들을 위한 유용한 정보 제공

답변 스타일:
- 친근하고 공손한 말투 사용
- 명확하고 이해하기 쉬운 설명
- 필요시 구체적인 예시 제공
- 학교 정보에만 집중하여 답변

주의사항:
- 확실하지 않은 정보는 "학교로 문의해 주세요"라고 안내
- 개인정보나 민감한 정보는 제공하지 않음
- 항상 학부모님과 학생들의 입장에서 생각하여 답변`

// Conversation builds the request for one turn: the system prompt, each
// prior turn as a user/assistant pair in order, then the new message.
func Conversation(history []models.Turn, message string) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0, 2*len(history)+2)
	messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: SystemPrompt})
	for _, turn := range history {
		messages = append(messages,
			models.ChatMessage{Role: models.RoleUser, Content: turn.User},
			models.ChatMessage{Role: models.RoleAssistant, Content: turn.Bot},
		)
	}
	return append(messages, models.ChatMessage{Role: models.RoleUser, Content: message})
}
