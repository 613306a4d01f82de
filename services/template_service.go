package services

import (
	"errors"

	"quizforge/apierr"
	"quizforge/models"

	"gorm.io/gorm"
)

type TemplateService struct {
	db    *gorm.DB
	types *QuizTypeService
}

func NewTemplateService(db *gorm.DB, types *QuizTypeService) *TemplateService {
	return &TemplateService{db: db, types: types}
}

// TemplateQuestion is one question in an assembled view. Answer and
// Explanation stay empty in the student view and are omitted from the JSON.
type TemplateQuestion struct {
	Question    string   `json:"question"`
	Difficulty  string   `json:"difficulty"`
	Answer      string   `json:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Options     []string `json:"options,omitempty"`
}

type TemplateGroup struct {
	TypeName  string             `json:"type_name"`
	Questions []TemplateQuestion `json:"questions"`
}

// Template assembles the persisted content of a quiz into per-type groups.
// Groups follow catalog order; questions within a group follow difficulty
// order easy, medium, hard. With includeAnswers=false the canonical answer
// and explanation fields are never populated.
func (s *TemplateService) Template(quizID string, includeAnswers bool) ([]TemplateGroup, error) {
	var contents []models.QuizContent
	if err := s.db.Where("quiz_id = ?", quizID).Find(&contents).Error; err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, apierr.NotFound("quiz content")
	}

	byType := make(map[string][]TemplateQuestion, len(contents))
	for _, content := range contents {
		for _, difficulty := range models.Difficulties {
			for _, q := range content.Questions.Bucket(difficulty) {
				view := TemplateQuestion{
					Question:   q.Question,
					Difficulty: difficulty,
					Options:    q.Options,
				}
				if includeAnswers {
					view.Answer = q.Answer
					view.Explanation = q.Explanation
				}
				byType[content.TypeID] = append(byType[content.TypeID], view)
			}
		}
	}

	catalog, err := s.types.List()
	if err != nil {
		return nil, err
	}

	groups := make([]TemplateGroup, 0, len(byType))
	for _, quizType := range catalog {
		questions, ok := byType[quizType.TypeID]
		if !ok {
			continue
		}
		groups = append(groups, TemplateGroup{TypeName: quizType.TypeName, Questions: questions})
		delete(byType, quizType.TypeID)
	}

	// Content referencing a type that is gone from the catalog is a
	// data-integrity problem, not a plain 404.
	for typeID := range byType {
		return nil, apierr.TypeNotFound(typeID)
	}

	return groups, nil
}

// QuizContent returns the first raw content row of a quiz.
func (s *TemplateService) QuizContent(quizID string) (*models.QuizContent, error) {
	var content models.QuizContent
	if err := s.db.Where("quiz_id = ?", quizID).First(&content).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("quiz content")
		}
		return nil, err
	}
	return &content, nil
}
