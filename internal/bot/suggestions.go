package bot

import (
	"github.com/xaenox/school-bot/internal/classifier"
	"github.com/xaenox/school-bot/internal/models"
)

var (
	suggestTomorrowMeal = models.Suggestion{Label: "내일 급식", Message: "내일 급식 알려줘"}
	suggestWeeklyMeal   = models.Suggestion{Label: "이번 주 급식", Message: "이번 주 급식 알려줘"}
	suggestMealMenu     = models.Suggestion{Label: "급식 메뉴", Message: "급식 메뉴 알려줘"}
	suggestSchoolRules  = models.Suggestion{Label: "학교 규칙", Message: "학교 규칙 알려줘"}
	suggestAfterSchool  = models.Suggestion{Label: "방과후", Message: "방과후 프로그램 알려줘"}
)

// Suggestions returns the follow-up prompts offered after a reply of the
// given intent. The result is a fresh slice.
func Suggestions(intent classifier.Intent) []models.Suggestion {
	switch intent {
	case classifier.Schedule:
		return []models.Suggestion{suggestTomorrowMeal, suggestWeeklyMeal}
	case classifier.Question:
		return []models.Suggestion{suggestMealMenu, suggestSchoolRules}
	default:
		return []models.Suggestion{suggestMealMenu, suggestSchoolRules, suggestAfterSchool}
	}
}
