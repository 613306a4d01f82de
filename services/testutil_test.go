package services

import (
	"context"
	"fmt"
	"io"
	"testing"

	"quizforge/llm"
	"quizforge/logger"
	"quizforge/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Named shared-cache DB so every pooled connection sees the same schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Book{},
		&models.Chapter{},
		&models.QuizType{},
		&models.Quiz{},
		&models.QuizContent{},
		&models.StudentMarks{},
		&models.UserStats{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedTypes creates the three grading categories and returns their type IDs
// keyed by name.
func seedTypes(t *testing.T, db *gorm.DB) map[string]string {
	t.Helper()
	ids := make(map[string]string, 3)
	for i, name := range []string{TypeNameMCQ, TypeNameDescriptive, TypeNameNumerical} {
		quizType := models.QuizType{
			TypeID:   uuid.NewString(),
			TypeName: name,
			Order:    i,
		}
		if err := db.Create(&quizType).Error; err != nil {
			t.Fatalf("seed quiz type %s: %v", name, err)
		}
		ids[name] = quizType.TypeID
	}
	return ids
}

type fakeLLM struct {
	generateFn  func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error)
	scoreFn     func(ctx context.Context, req llm.FeedbackRequest) (*llm.FeedbackResponse, error)
	generateLog []llm.GenerateRequest
	scoreLog    []llm.FeedbackRequest
}

func (f *fakeLLM) GenerateQuestions(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.generateLog = append(f.generateLog, req)
	if f.generateFn != nil {
		return f.generateFn(ctx, req)
	}
	questions := []llm.GeneratedQuestion{}
	return &llm.GenerateResponse{Questions: &questions}, nil
}

func (f *fakeLLM) ScoreAnswer(ctx context.Context, req llm.FeedbackRequest) (*llm.FeedbackResponse, error) {
	f.scoreLog = append(f.scoreLog, req)
	if f.scoreFn != nil {
		return f.scoreFn(ctx, req)
	}
	return &llm.FeedbackResponse{Score: 100, Feedback: "correct"}, nil
}

type fakeStore struct {
	uploads []string
	deleted []string
}

func (f *fakeStore) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	ref := "mem://" + name
	f.uploads = append(f.uploads, ref)
	return ref, nil
}

func (f *fakeStore) Delete(ctx context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

// generatedQuestions builds a generation response with the given number of
// questions per difficulty. Prompts are "<difficulty> q<N>", answers
// "<difficulty> a<N>".
func generatedQuestions(easy, medium, hard int) *llm.GenerateResponse {
	var questions []llm.GeneratedQuestion
	add := func(difficulty string, n int) {
		for i := 0; i < n; i++ {
			questions = append(questions, llm.GeneratedQuestion{
				Question:    fmt.Sprintf("%s q%d", difficulty, i),
				Answer:      fmt.Sprintf("%s a%d", difficulty, i),
				Explanation: "because",
				Difficulty:  difficulty,
			})
		}
	}
	add(models.DifficultyEasy, easy)
	add(models.DifficultyMedium, medium)
	add(models.DifficultyHard, hard)
	return &llm.GenerateResponse{Questions: &questions}
}

func newTestQuizService(t *testing.T, db *gorm.DB, llmClient llm.Client) (*QuizService, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	log := logger.NewNop()
	stats := NewStatsService(db, nil, log)
	types := NewQuizTypeService(db)
	return NewQuizService(db, types, llmClient, store, stats, log), store
}
