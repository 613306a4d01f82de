package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"quizforge/apierr"
	"quizforge/llm"
	"quizforge/logger"
	"quizforge/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestGradingService(t *testing.T, db *gorm.DB, llmClient llm.Client) *GradingService {
	t.Helper()
	return NewGradingService(db, NewQuizTypeService(db), llmClient, logger.NewNop())
}

// seedGradableQuiz stores one MCQ content row with two easy and one medium
// question, matching the worked example: easy answers "a0"/"a1", medium "a0".
func seedGradableQuiz(t *testing.T, db *gorm.DB, types map[string]string) string {
	t.Helper()
	quizID := uuid.NewString()
	seedContent(t, db, quizID, types[TypeNameMCQ], models.QuestionSet{
		Easy: []models.Question{
			{Question: "easy q0", Answer: "easy a0", Difficulty: models.DifficultyEasy},
			{Question: "easy q1", Answer: "easy a1", Difficulty: models.DifficultyEasy},
		},
		Medium: []models.Question{
			{Question: "medium q0", Answer: "medium a0", Difficulty: models.DifficultyMedium},
		},
	})
	return quizID
}

func TestGradeForThresholdsAreStrict(t *testing.T) {
	cases := []struct {
		percentage float64
		want       string
	}{
		{90.0, "A+"},
		{90.01, "O"},
		{100, "O"},
		{80.0, "A"},
		{70.0, "B+"},
		{60.0, "B"},
		{50.0, "C"},
		{40.0, "D"},
		{30.0, "F"},
		{0, "F"},
	}
	for _, tc := range cases {
		if got := gradeFor(tc.percentage); got != tc.want {
			t.Fatalf("gradeFor(%v) = %q, want %q", tc.percentage, got, tc.want)
		}
	}
}

func TestMcqWeightTable(t *testing.T) {
	db := openTestDB(t)
	types := seedTypes(t, db)
	svc := newTestGradingService(t, db, &fakeLLM{})

	quizID := uuid.NewString()
	seedContent(t, db, quizID, types[TypeNameMCQ], models.QuestionSet{
		Easy: []models.Question{{Question: "e", Answer: "right", Difficulty: models.DifficultyEasy}},
		Hard: []models.Question{{Question: "h", Answer: "right", Difficulty: models.DifficultyHard}},
	})

	result, err := svc.Submit(context.Background(), 1, quizID, &SubmissionRequest{
		MCQ: []SubmittedAnswer{
			{Question: "e", Difficulty: models.DifficultyEasy, UserAnswer: "right"},
			{Question: "h", Difficulty: models.DifficultyHard, UserAnswer: "right"},
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.MCQ[0].Score != 1 {
		t.Fatalf("correct easy MCQ should score 1, got %v", result.MCQ[0].Score)
	}
	if result.MCQ[1].Score != 5 {
		t.Fatalf("correct hard MCQ should score 5, got %v", result.MCQ[1].Score)
	}

	// An incorrect answer scores 0 regardless of difficulty.
	result, err = svc.Submit(context.Background(), 1, quizID, &SubmissionRequest{
		MCQ: []SubmittedAnswer{{Question: "h", Difficulty: models.DifficultyHard, UserAnswer: "wrong"}},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.MCQ[0].Score != 0 || result.McqTotalMarks != 5 {
		t.Fatalf("incorrect hard MCQ: score=%v total=%v", result.MCQ[0].Score, result.McqTotalMarks)
	}
}

func TestSubmitWorkedExample(t *testing.T) {
	db := openTestDB(t)
	types := seedTypes(t, db)
	svc := newTestGradingService(t, db, &fakeLLM{})
	quizID := seedGradableQuiz(t, db, types)

	// Both easy answers correct (1+1 of 2 attainable), the medium one wrong
	// (0 of 3): 2/5 = 40% overall, grade F.
	result, err := svc.Submit(context.Background(), 1, quizID, &SubmissionRequest{
		MCQ: []SubmittedAnswer{
			{Question: "easy q0", Difficulty: models.DifficultyEasy, UserAnswer: "easy a0"},
			{Question: "easy q1", Difficulty: models.DifficultyEasy, UserAnswer: "easy a1"},
			{Question: "medium q0", Difficulty: models.DifficultyMedium, UserAnswer: "nope"},
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.McqScore != 2 || result.McqTotalMarks != 5 {
		t.Fatalf("expected 2/5 marks, got %v/%v", result.McqScore, result.McqTotalMarks)
	}
	if result.McqPercentage != 40 || result.TotalPercentage != 40 {
		t.Fatalf("expected 40%%, got mcq=%v total=%v", result.McqPercentage, result.TotalPercentage)
	}
	if result.Grade != "F" {
		t.Fatalf("expected grade F, got %q", result.Grade)
	}
}

func TestSubmitJudgedCategoriesRescaleServiceScore(t *testing.T) {
	db := openTestDB(t)
	types := seedTypes(t, db)

	fake := &fakeLLM{
		scoreFn: func(ctx context.Context, req llm.FeedbackRequest) (*llm.FeedbackResponse, error) {
			return &llm.FeedbackResponse{Score: 50, Feedback: "halfway there"}, nil
		},
	}
	svc := newTestGradingService(t, db, fake)

	quizID := uuid.NewString()
	seedContent(t, db, quizID, types[TypeNameDescriptive], models.QuestionSet{
		Easy: []models.Question{{Question: "desc q", Answer: "model answer", Difficulty: models.DifficultyEasy}},
	})
	seedContent(t, db, quizID, types[TypeNameNumerical], models.QuestionSet{
		Hard: []models.Question{{Question: "num q", Answer: "42", Difficulty: models.DifficultyHard}},
	})

	result, err := svc.Submit(context.Background(), 1, quizID, &SubmissionRequest{
		Descriptive: []SubmittedAnswer{{Question: "desc q", Difficulty: models.DifficultyEasy, UserAnswer: "my essay"}},
		Numerical:   []SubmittedAnswer{{Question: "num q", Difficulty: models.DifficultyHard, UserAnswer: "41"}},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// easy descriptive: max 3 * 50/100; hard numerical: max 10 * 50/100.
	if math.Abs(result.DescriptiveScore-1.5) > 1e-9 || result.DescriptiveTotalMarks != 3 {
		t.Fatalf("descriptive: score=%v total=%v", result.DescriptiveScore, result.DescriptiveTotalMarks)
	}
	if math.Abs(result.NumericalScore-5) > 1e-9 || result.NumericalTotalMarks != 10 {
		t.Fatalf("numerical: score=%v total=%v", result.NumericalScore, result.NumericalTotalMarks)
	}
	if result.Descriptive[0].Feedback != "halfway there" {
		t.Fatalf("missing feedback: %+v", result.Descriptive[0])
	}

	// Descriptive sends no canonical answer to the judge; numerical does.
	if len(fake.scoreLog) != 2 {
		t.Fatalf("expected 2 judge calls, got %d", len(fake.scoreLog))
	}
	if fake.scoreLog[0].CorrectAnswer != "" || fake.scoreLog[0].QuestionKind != llm.KindDescriptive {
		t.Fatalf("unexpected descriptive judge request: %+v", fake.scoreLog[0])
	}
	if fake.scoreLog[1].CorrectAnswer != "42" || fake.scoreLog[1].QuestionKind != llm.KindNumerical {
		t.Fatalf("unexpected numerical judge request: %+v", fake.scoreLog[1])
	}

	// The canonical answer is still echoed in the breakdown.
	if result.Descriptive[0].CorrectAnswer != "model answer" {
		t.Fatalf("breakdown missing canonical answer: %+v", result.Descriptive[0])
	}
}

func TestSubmitOverallWeighsCategoriesByMarks(t *testing.T) {
	db := openTestDB(t)
	types := seedTypes(t, db)

	fake := &fakeLLM{
		scoreFn: func(ctx context.Context, req llm.FeedbackRequest) (*llm.FeedbackResponse, error) {
			return &llm.FeedbackResponse{Score: 0, Feedback: "wrong"}, nil
		},
	}
	svc := newTestGradingService(t, db, fake)

	quizID := uuid.NewString()
	seedContent(t, db, quizID, types[TypeNameMCQ], models.QuestionSet{
		Easy: []models.Question{{Question: "m", Answer: "x", Difficulty: models.DifficultyEasy}},
	})
	seedContent(t, db, quizID, types[TypeNameNumerical], models.QuestionSet{
		Hard: []models.Question{{Question: "n", Answer: "7", Difficulty: models.DifficultyHard}},
	})

	// 1 of 1 MCQ marks, 0 of 10 numerical marks: 1/11 overall, not the 50%
	// an average of the category percentages would give.
	result, err := svc.Submit(context.Background(), 1, quizID, &SubmissionRequest{
		MCQ:       []SubmittedAnswer{{Question: "m", Difficulty: models.DifficultyEasy, UserAnswer: "x"}},
		Numerical: []SubmittedAnswer{{Question: "n", Difficulty: models.DifficultyHard, UserAnswer: "8"}},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := 100.0 / 11
	if math.Abs(result.TotalPercentage-want) > 1e-9 {
		t.Fatalf("expected overall %v, got %v", want, result.TotalPercentage)
	}
}

func TestSubmitUnknownMcqQuestionAbortsWithoutMarks(t *testing.T) {
	db := openTestDB(t)
	types := seedTypes(t, db)
	svc := newTestGradingService(t, db, &fakeLLM{})
	quizID := seedGradableQuiz(t, db, types)

	_, err := svc.Submit(context.Background(), 1, quizID, &SubmissionRequest{
		MCQ: []SubmittedAnswer{{Question: "never generated", Difficulty: models.DifficultyEasy, UserAnswer: "x"}},
	})
	if !apierr.IsCode(err, "QUESTION_NOT_FOUND") {
		t.Fatalf("expected QUESTION_NOT_FOUND, got %v", err)
	}

	var count int64
	db.Model(&models.StudentMarks{}).Count(&count)
	if count != 0 {
		t.Fatalf("no marks may be written on a failed submission, found %d", count)
	}
}

func TestSubmitJudgeFailureAbortsWithoutMarks(t *testing.T) {
	db := openTestDB(t)
	types := seedTypes(t, db)

	fake := &fakeLLM{
		scoreFn: func(ctx context.Context, req llm.FeedbackRequest) (*llm.FeedbackResponse, error) {
			return nil, errors.New("feedback service down")
		},
	}
	svc := newTestGradingService(t, db, fake)

	quizID := uuid.NewString()
	seedContent(t, db, quizID, types[TypeNameDescriptive], models.QuestionSet{
		Easy: []models.Question{{Question: "q", Answer: "a", Difficulty: models.DifficultyEasy}},
	})

	_, err := svc.Submit(context.Background(), 1, quizID, &SubmissionRequest{
		Descriptive: []SubmittedAnswer{{Question: "q", Difficulty: models.DifficultyEasy, UserAnswer: "essay"}},
	})
	if !apierr.IsCode(err, "DEPENDENCY_FAILURE") {
		t.Fatalf("expected DEPENDENCY_FAILURE, got %v", err)
	}

	var count int64
	db.Model(&models.StudentMarks{}).Count(&count)
	if count != 0 {
		t.Fatalf("no marks may be written on a failed submission, found %d", count)
	}
}

func TestSubmitUnknownJudgedQuestionStillScores(t *testing.T) {
	db := openTestDB(t)
	types := seedTypes(t, db)

	fake := &fakeLLM{
		scoreFn: func(ctx context.Context, req llm.FeedbackRequest) (*llm.FeedbackResponse, error) {
			return &llm.FeedbackResponse{Score: 80, Feedback: "plausible"}, nil
		},
	}
	svc := newTestGradingService(t, db, fake)

	quizID := uuid.NewString()
	seedContent(t, db, quizID, types[TypeNameDescriptive], models.QuestionSet{
		Easy: []models.Question{{Question: "known", Answer: "a", Difficulty: models.DifficultyEasy}},
	})

	result, err := svc.Submit(context.Background(), 1, quizID, &SubmissionRequest{
		Descriptive: []SubmittedAnswer{{Question: "not stored", Difficulty: models.DifficultyEasy, UserAnswer: "essay"}},
	})
	if err != nil {
		t.Fatalf("judged categories must tolerate a missing canonical answer: %v", err)
	}
	if result.Descriptive[0].CorrectAnswer != "" {
		t.Fatalf("expected empty canonical answer, got %+v", result.Descriptive[0])
	}
}

func TestResubmissionOverwritesSingleMarksRow(t *testing.T) {
	db := openTestDB(t)
	types := seedTypes(t, db)
	svc := newTestGradingService(t, db, &fakeLLM{})
	quizID := seedGradableQuiz(t, db, types)

	submit := func(answer string) *SubmissionResult {
		result, err := svc.Submit(context.Background(), 7, quizID, &SubmissionRequest{
			MCQ: []SubmittedAnswer{{Question: "easy q0", Difficulty: models.DifficultyEasy, UserAnswer: answer}},
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		return result
	}

	first := submit("easy a0")
	second := submit("easy a0")
	if first.TotalPercentage != second.TotalPercentage || first.Grade != second.Grade {
		t.Fatalf("identical submissions must grade identically: %+v vs %+v", first, second)
	}

	var rows []models.StudentMarks
	if err := db.Where("quiz_id = ?", quizID).Find(&rows).Error; err != nil {
		t.Fatalf("load marks: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single marks row, got %d", len(rows))
	}
	if rows[0].TotalPercentage != 100 || rows[0].Grade != "O" {
		t.Fatalf("unexpected stored marks: %+v", rows[0])
	}

	// A different answer overwrites the stored values.
	submit("wrong")
	if err := db.Where("quiz_id = ?", quizID).Find(&rows).Error; err != nil {
		t.Fatalf("load marks: %v", err)
	}
	if len(rows) != 1 || rows[0].Grade != "F" || rows[0].TotalPercentage != 0 {
		t.Fatalf("resubmission did not overwrite: %+v", rows)
	}
}

func TestSubmitUnsubmittedCategoriesRenderAsEmptyArrays(t *testing.T) {
	db := openTestDB(t)
	types := seedTypes(t, db)
	svc := newTestGradingService(t, db, &fakeLLM{})
	quizID := seedGradableQuiz(t, db, types)

	result, err := svc.Submit(context.Background(), 1, quizID, &SubmissionRequest{
		MCQ: []SubmittedAnswer{{Question: "easy q0", Difficulty: models.DifficultyEasy, UserAnswer: "easy a0"}},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Descriptive == nil || result.Numerical == nil {
		t.Fatalf("unsubmitted categories must be empty, not nil: %+v", result)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	for _, key := range []string{`"descriptive_results":[]`, `"numerical_results":[]`} {
		if !strings.Contains(string(payload), key) {
			t.Fatalf("expected %s in %s", key, payload)
		}
	}
}
