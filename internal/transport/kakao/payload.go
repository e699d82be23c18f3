package kakao

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xaenox/school-bot/internal/models"
)

const (
	skillVersion  = "2.0"
	defaultUserID = "default"
)

// SkillRequest is the part of a Kakao i Open Builder skill payload the bot
// reads.
type SkillRequest struct {
	UserRequest UserRequest `json:"userRequest"`
}

type UserRequest struct {
	Utterance string    `json:"utterance" validate:"required,max=1000"`
	User      SkillUser `json:"user"`
}

type SkillUser struct {
	ID string `json:"id" validate:"max=256"`
}

// SkillResponse is a version 2.0 skill response with one text output.
type SkillResponse struct {
	Version  string        `json:"version"`
	Template SkillTemplate `json:"template"`
}

type SkillTemplate struct {
	Outputs      []SkillOutput `json:"outputs"`
	QuickReplies []QuickReply  `json:"quickReplies"`
}

type SkillOutput struct {
	SimpleText SimpleText `json:"simpleText"`
}

type SimpleText struct {
	Text string `json:"text"`
}

type QuickReply struct {
	Label       string `json:"label"`
	Action      string `json:"action"`
	MessageText string `json:"messageText"`
}

// TestRequest is the body of the plain-JSON test endpoint.
type TestRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

type TestResponse struct {
	UserMessage string        `json:"user_message"`
	BotResponse SkillResponse `json:"bot_response"`
}

// NewSkillResponse renders a reply, turning suggestions into quick replies
// that send their message back when tapped.
func NewSkillResponse(reply models.Reply) SkillResponse {
	quick := make([]QuickReply, 0, len(reply.Suggestions))
	for _, s := range reply.Suggestions {
		quick = append(quick, QuickReply{
			Label:       s.Label,
			Action:      "message",
			MessageText: s.Message,
		})
	}
	return SkillResponse{
		Version: skillVersion,
		Template: SkillTemplate{
			Outputs:      []SkillOutput{{SimpleText: SimpleText{Text: reply.Text}}},
			QuickReplies: quick,
		},
	}
}

var validate = validator.New()

// normalize trims the request and fills defaults before validation.
func (r *SkillRequest) normalize() {
	r.UserRequest.Utterance = strings.TrimSpace(r.UserRequest.Utterance)
	r.UserRequest.User.ID = strings.TrimSpace(r.UserRequest.User.ID)
	if r.UserRequest.User.ID == "" {
		r.UserRequest.User.ID = defaultUserID
	}
}

func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
