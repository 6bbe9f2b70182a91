package app

import (
	"time"

	"quiz-session-service/internal/domain"
)

// CompileResult derives the scored report from final session state. Details
// are emitted in catalog order (sections, then questions within a section);
// an unanswered question carries a nil selection and counts as incorrect.
// Pure: neither catalog nor answers is mutated, and the output is
// deterministic for a given timestamp. The record ID is left blank for the
// caller to assign.
func CompileResult(catalog domain.Catalog, answers map[string]int, remainingSeconds int, username string, now time.Time) domain.ResultRecord {
	details := make([]domain.AnswerDetail, 0, catalog.TotalQuestions())
	correct := 0
	for _, section := range catalog.Sections {
		for _, q := range section.Questions {
			detail := domain.AnswerDetail{
				QuestionID: q.ID,
				Text:       q.Text,
				Options:    q.Options,
				Correct:    q.Answer,
			}
			if selected, ok := answers[q.ID]; ok {
				idx := selected
				detail.Selected = &idx
				if selected == q.Answer {
					correct++
				}
			}
			details = append(details, detail)
		}
	}
	return domain.ResultRecord{
		Username:         username,
		CompletedAt:      now,
		Total:            len(details),
		Correct:          correct,
		RemainingSeconds: remainingSeconds,
		Details:          details,
	}
}
