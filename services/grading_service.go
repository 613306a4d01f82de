package services

import (
	"context"
	"errors"
	"fmt"

	"quizforge/apierr"
	"quizforge/llm"
	"quizforge/logger"
	"quizforge/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GradingService struct {
	db    *gorm.DB
	types *QuizTypeService
	llm   llm.Client
	log   *logger.Logger
}

func NewGradingService(db *gorm.DB, types *QuizTypeService, llmClient llm.Client, log *logger.Logger) *GradingService {
	return &GradingService{db: db, types: types, llm: llmClient, log: log}
}

type SubmittedAnswer struct {
	Question   string `json:"question" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required,oneof=easy medium hard"`
	UserAnswer string `json:"user_answer"`
}

type SubmissionRequest struct {
	MCQ         []SubmittedAnswer `json:"mcq"`
	Descriptive []SubmittedAnswer `json:"descriptive"`
	Numerical   []SubmittedAnswer `json:"numerical"`
}

// AnswerResult is the per-question breakdown returned to the student.
type AnswerResult struct {
	Question      string  `json:"question"`
	UserAnswer    string  `json:"user_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	Feedback      string  `json:"feedback,omitempty"`
	Difficulty    string  `json:"difficulty"`
	Score         float64 `json:"score"`
}

type SubmissionResult struct {
	MCQ         []AnswerResult `json:"mcq_results"`
	Descriptive []AnswerResult `json:"descriptive_results"`
	Numerical   []AnswerResult `json:"numerical_results"`

	McqScore              float64 `json:"mcq_score"`
	McqTotalMarks         float64 `json:"mcq_total_marks"`
	McqPercentage         float64 `json:"mcq_percentage"`
	DescriptiveScore      float64 `json:"descriptive_score"`
	DescriptiveTotalMarks float64 `json:"descriptive_total_marks"`
	DescriptivePercentage float64 `json:"descriptive_percentage"`
	NumericalScore        float64 `json:"numerical_score"`
	NumericalTotalMarks   float64 `json:"numerical_total_marks"`
	NumericalPercentage   float64 `json:"numerical_percentage"`

	TotalScore      float64 `json:"total_score"`
	TotalMarks      float64 `json:"total_marks"`
	TotalPercentage float64 `json:"total_percentage"`
	Grade           string  `json:"grade"`
}

// mcqWeight is both the achieved score for a correct answer and the
// attainable maximum for an MCQ at that difficulty.
func mcqWeight(difficulty string) float64 {
	switch difficulty {
	case models.DifficultyEasy:
		return 1
	case models.DifficultyMedium:
		return 3
	case models.DifficultyHard:
		return 5
	}
	return 0
}

// judgedMax is the attainable maximum for a judged (descriptive or numerical)
// answer; the 0-100 service score is rescaled against it.
func judgedMax(difficulty string) float64 {
	switch difficulty {
	case models.DifficultyEasy:
		return 3
	case models.DifficultyMedium:
		return 5
	case models.DifficultyHard:
		return 10
	}
	return 0
}

// gradeFor maps an overall percentage to a letter grade. Thresholds are
// strict greater-than: exactly 90 is still "A+".
func gradeFor(percentage float64) string {
	switch {
	case percentage > 90:
		return "O"
	case percentage > 80:
		return "A+"
	case percentage > 70:
		return "A"
	case percentage > 60:
		return "B+"
	case percentage > 50:
		return "B"
	case percentage > 40:
		return "C"
	case percentage > 30:
		return "D"
	default:
		return "F"
	}
}

func percentage(score, total float64) float64 {
	if total == 0 {
		return 0
	}
	return score / total * 100
}

// Submit grades a student's answers against the persisted quiz content and
// upserts the durable result. Nothing is written if any part of grading
// fails.
func (s *GradingService) Submit(ctx context.Context, userID uint, quizID string, req *SubmissionRequest) (*SubmissionResult, error) {
	contents, err := s.categoryContents(quizID)
	if err != nil {
		return nil, err
	}

	// Empty slices, not nil, so unsubmitted categories render as [].
	result := &SubmissionResult{
		MCQ:         []AnswerResult{},
		Descriptive: []AnswerResult{},
		Numerical:   []AnswerResult{},
	}

	for _, answer := range req.MCQ {
		stored, err := s.findStoredQuestion(contents[TypeNameMCQ], answer, true)
		if err != nil {
			return nil, err
		}

		achieved := 0.0
		if stored.Answer == answer.UserAnswer {
			achieved = mcqWeight(answer.Difficulty)
		}
		result.McqScore += achieved
		result.McqTotalMarks += mcqWeight(answer.Difficulty)
		result.MCQ = append(result.MCQ, AnswerResult{
			Question:      answer.Question,
			UserAnswer:    answer.UserAnswer,
			CorrectAnswer: stored.Answer,
			Difficulty:    answer.Difficulty,
			Score:         achieved,
		})
	}

	for _, answer := range req.Descriptive {
		stored, err := s.findStoredQuestion(contents[TypeNameDescriptive], answer, false)
		if err != nil {
			return nil, err
		}

		// The judging service grades descriptive answers against its own
		// rubric; the canonical answer is only echoed in the breakdown.
		item, err := s.judgeAnswer(ctx, answer, "", llm.KindDescriptive)
		if err != nil {
			return nil, err
		}
		item.CorrectAnswer = stored.Answer
		result.DescriptiveScore += item.Score
		result.DescriptiveTotalMarks += judgedMax(answer.Difficulty)
		result.Descriptive = append(result.Descriptive, item)
	}

	for _, answer := range req.Numerical {
		stored, err := s.findStoredQuestion(contents[TypeNameNumerical], answer, false)
		if err != nil {
			return nil, err
		}

		item, err := s.judgeAnswer(ctx, answer, stored.Answer, llm.KindNumerical)
		if err != nil {
			return nil, err
		}
		item.CorrectAnswer = stored.Answer
		result.NumericalScore += item.Score
		result.NumericalTotalMarks += judgedMax(answer.Difficulty)
		result.Numerical = append(result.Numerical, item)
	}

	result.McqPercentage = percentage(result.McqScore, result.McqTotalMarks)
	result.DescriptivePercentage = percentage(result.DescriptiveScore, result.DescriptiveTotalMarks)
	result.NumericalPercentage = percentage(result.NumericalScore, result.NumericalTotalMarks)

	// The overall figure weighs categories by their attainable marks, not as
	// an average of the three percentages.
	result.TotalScore = result.McqScore + result.DescriptiveScore + result.NumericalScore
	result.TotalMarks = result.McqTotalMarks + result.DescriptiveTotalMarks + result.NumericalTotalMarks
	result.TotalPercentage = percentage(result.TotalScore, result.TotalMarks)
	result.Grade = gradeFor(result.TotalPercentage)

	if err := s.saveMarks(userID, quizID, result); err != nil {
		return nil, err
	}

	s.log.Info("graded submission", "quiz_id", quizID, "user_id", userID,
		"total_percentage", result.TotalPercentage, "grade", result.Grade)
	return result, nil
}

// categoryContents loads the quiz's content rows and maps the three grading
// categories to their stored question sets. A category without content maps
// to nil; at least one must exist.
func (s *GradingService) categoryContents(quizID string) (map[string]*models.QuizContent, error) {
	var rows []models.QuizContent
	if err := s.db.Where("quiz_id = ?", quizID).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apierr.NotFound("quiz content")
	}

	byTypeID := make(map[string]*models.QuizContent, len(rows))
	for i := range rows {
		byTypeID[rows[i].TypeID] = &rows[i]
	}

	contents := make(map[string]*models.QuizContent, 3)
	for _, name := range []string{TypeNameMCQ, TypeNameDescriptive, TypeNameNumerical} {
		quizType, err := s.types.ResolveByName(name)
		if err != nil {
			if apierr.IsCode(err, "TYPE_NOT_FOUND") {
				continue
			}
			return nil, err
		}
		contents[name] = byTypeID[quizType.TypeID]
	}
	return contents, nil
}

// findStoredQuestion matches a submitted answer to its stored question by
// exact prompt within the same difficulty bucket. For MCQ a miss is fatal;
// for judged categories an empty placeholder is returned so the judging
// service can still score against its rubric.
func (s *GradingService) findStoredQuestion(content *models.QuizContent, answer SubmittedAnswer, required bool) (models.Question, error) {
	if content != nil {
		for _, q := range content.Questions.Bucket(answer.Difficulty) {
			if q.Question == answer.Question {
				return q, nil
			}
		}
	}
	if required {
		return models.Question{}, apierr.QuestionNotFound(answer.Question)
	}
	return models.Question{Question: answer.Question, Difficulty: answer.Difficulty}, nil
}

func (s *GradingService) judgeAnswer(ctx context.Context, answer SubmittedAnswer, correctAnswer string, kind int) (AnswerResult, error) {
	resp, err := s.llm.ScoreAnswer(ctx, llm.FeedbackRequest{
		Question:      answer.Question,
		CorrectAnswer: correctAnswer,
		UserAnswer:    answer.UserAnswer,
		QuestionKind:  kind,
		Difficulty:    answer.Difficulty,
	})
	if err != nil {
		return AnswerResult{}, apierr.Dependency(fmt.Errorf("judge answer: %w", err))
	}

	achieved := judgedMax(answer.Difficulty) * resp.Score / 100
	return AnswerResult{
		Question:   answer.Question,
		UserAnswer: answer.UserAnswer,
		Feedback:   resp.Feedback,
		Difficulty: answer.Difficulty,
		Score:      achieved,
	}, nil
}

// saveMarks upserts the single StudentMarks row for (user, quiz).
// Resubmission overwrites; last write wins under concurrent submissions.
func (s *GradingService) saveMarks(userID uint, quizID string, result *SubmissionResult) error {
	marks := models.StudentMarks{
		UserID:                userID,
		QuizID:                quizID,
		McqPercentage:         result.McqPercentage,
		DescriptivePercentage: result.DescriptivePercentage,
		NumericalPercentage:   result.NumericalPercentage,
		TotalPercentage:       result.TotalPercentage,
		Grade:                 result.Grade,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "quiz_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"mcq_percentage", "descriptive_percentage", "numerical_percentage",
			"total_percentage", "grade", "updated_at",
		}),
	}).Create(&marks).Error
}

// Marks returns the stored result for (user, quiz).
func (s *GradingService) Marks(userID uint, quizID string) (*models.StudentMarks, error) {
	var marks models.StudentMarks
	if err := s.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&marks).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("student marks")
		}
		return nil, err
	}
	return &marks, nil
}
