package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quizforge/apierr"
	"quizforge/llm"
	"quizforge/logger"
	"quizforge/models"
	"quizforge/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// failurePolicy decides what a failed quiz type does to the rest of the
// generation pipeline.
type failurePolicy int

const (
	// rollbackOnFailure aborts the pipeline; the caller deletes the quiz.
	rollbackOnFailure failurePolicy = iota
	// skipFailedTypes logs the failure and finalizes with what succeeded.
	skipFailedTypes
)

const maxQuickQuizFiles = 10

type QuizService struct {
	db    *gorm.DB
	types *QuizTypeService
	llm   llm.Client
	files storage.Store
	stats *StatsService
	log   *logger.Logger
}

func NewQuizService(db *gorm.DB, types *QuizTypeService, llmClient llm.Client, files storage.Store, stats *StatsService, log *logger.Logger) *QuizService {
	return &QuizService{
		db:    db,
		types: types,
		llm:   llmClient,
		files: files,
		stats: stats,
		log:   log,
	}
}

type QuizTypeRequest struct {
	TypeID      string `json:"type_id" binding:"required"`
	EasyCount   int    `json:"easy_questions_count" binding:"min=0"`
	MediumCount int    `json:"medium_questions_count" binding:"min=0"`
	HardCount   int    `json:"hard_questions_count" binding:"min=0"`
}

type GenerateQuizRequest struct {
	QuizName    string            `json:"quiz_name" binding:"required"`
	Description string            `json:"description"`
	IsPrivate   bool              `json:"is_private"`
	ChapterList []string          `json:"chapter_list"`
	BookList    []string          `json:"book_list"`
	QuizTypes   []QuizTypeRequest `json:"quiz_types" binding:"required,min=1,dive"`
}

// GenerateQuiz runs the authored generation workflow: persist an incomplete
// quiz, generate content for every requested type sequentially, then
// finalize. Any fatal failure rolls the whole quiz back so the caller never
// sees a partial one.
func (s *QuizService) GenerateQuiz(ctx context.Context, userID uint, req *GenerateQuizRequest) (*models.Quiz, error) {
	if len(req.ChapterList) == 0 {
		return nil, apierr.EmptyDocumentSet()
	}

	subject, err := s.deriveSubject(req.BookList)
	if err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		QuizID:      uuid.NewString(),
		QuizName:    req.QuizName,
		Description: strings.TrimSpace(req.Description),
		ChapterList: req.ChapterList,
		IsPrivate:   req.IsPrivate,
		CreatedBy:   userID,
		Subject:     subject,
	}
	// Persisted incomplete first so content rows have a stable quiz ID to
	// link against. Incomplete quizzes are invisible to the read paths.
	if err := s.db.Create(quiz).Error; err != nil {
		return nil, err
	}
	s.log.Info("created quiz draft", "quiz_id", quiz.QuizID, "name", quiz.QuizName, "types", len(req.QuizTypes))

	if err := s.runPipeline(ctx, quiz, req.QuizTypes, rollbackOnFailure); err != nil {
		s.rollbackQuiz(quiz)
		if apierr.IsCode(err, "TYPE_NOT_FOUND") {
			return nil, err
		}
		return nil, apierr.GenerationFailed(err)
	}

	if err := s.db.Model(quiz).Update("completed", true).Error; err != nil {
		s.rollbackQuiz(quiz)
		return nil, apierr.GenerationFailed(err)
	}
	quiz.Completed = true

	s.refreshStatsAsync(userID)
	return quiz, nil
}

// QuickQuizFile is one uploaded source document for a quick quiz.
type QuickQuizFile struct {
	Name   string
	Reader io.Reader
}

// QuickQuiz generates an ad-hoc quiz straight from uploaded documents with
// fixed type defaults. Unlike the authored path, a failed type is skipped and
// the quiz finalizes with whatever content succeeded. The uploads are
// single-use and deleted after generation.
func (s *QuizService) QuickQuiz(ctx context.Context, userID uint, files []QuickQuizFile) (*models.Quiz, error) {
	if len(files) == 0 {
		return nil, apierr.EmptyDocumentSet()
	}
	if len(files) > maxQuickQuizFiles {
		return nil, apierr.Validation("cannot upload more than %d files at a time", maxQuickQuizFiles)
	}

	chapterURLs := make([]string, 0, len(files))
	for _, f := range files {
		ref, err := s.files.Upload(ctx, f.Name, f.Reader)
		if err != nil {
			return nil, apierr.Dependency(fmt.Errorf("upload %s: %w", f.Name, err))
		}
		s.log.Info("uploaded quick quiz document", "file", f.Name)
		chapterURLs = append(chapterURLs, ref)
	}

	quiz := &models.Quiz{
		QuizID:      uuid.NewString(),
		QuizName:    randomQuizName(),
		Description: "This is a quick quiz",
		ChapterList: chapterURLs,
		IsPrivate:   true,
		QuickQuiz:   true,
		CreatedBy:   userID,
		Subject:     "Quick Quiz",
	}
	if err := s.db.Create(quiz).Error; err != nil {
		return nil, err
	}

	entries, err := s.quickQuizTypes()
	if err != nil {
		s.rollbackQuiz(quiz)
		return nil, err
	}

	if err := s.runPipeline(ctx, quiz, entries, skipFailedTypes); err != nil {
		s.rollbackQuiz(quiz)
		return nil, apierr.GenerationFailed(err)
	}

	if err := s.db.Model(quiz).Update("completed", true).Error; err != nil {
		s.rollbackQuiz(quiz)
		return nil, apierr.GenerationFailed(err)
	}
	quiz.Completed = true

	for _, ref := range chapterURLs {
		if err := s.files.Delete(ctx, ref); err != nil {
			s.log.Error("failed to delete quick quiz document", "ref", ref, "error", err)
		}
	}

	s.refreshStatsAsync(userID)
	return quiz, nil
}

// runPipeline drives content generation for each requested type. The loop is
// sequential on purpose: the external service gives no concurrency guarantee
// and a single in-flight type keeps rollback bookkeeping trivial.
func (s *QuizService) runPipeline(ctx context.Context, quiz *models.Quiz, entries []QuizTypeRequest, policy failurePolicy) error {
	for _, entry := range entries {
		quizType, err := s.types.ResolveByID(entry.TypeID)
		if err != nil {
			if policy == skipFailedTypes {
				s.log.Warn("skipping unknown quiz type", "quiz_id", quiz.QuizID, "type_id", entry.TypeID)
				continue
			}
			return err
		}

		content, err := s.generateTypeContent(ctx, quiz, quizType, entry)
		if err != nil {
			if policy == skipFailedTypes {
				s.log.Warn("skipping quiz type after generation failure",
					"quiz_id", quiz.QuizID, "type", quizType.TypeName, "error", err)
				continue
			}
			return err
		}

		if err := s.db.Create(content).Error; err != nil {
			if policy == skipFailedTypes {
				s.log.Warn("skipping quiz type after persist failure",
					"quiz_id", quiz.QuizID, "type", quizType.TypeName, "error", err)
				continue
			}
			return err
		}
		s.log.Info("generated quiz content", "quiz_id", quiz.QuizID, "type", quizType.TypeName,
			"easy", content.EasyCount, "medium", content.MediumCount, "hard", content.HardCount)
	}
	return nil
}

// rollbackQuiz removes the quiz and any content written so far. Best effort:
// a failure during cleanup is logged, not retried.
func (s *QuizService) rollbackQuiz(quiz *models.Quiz) {
	if err := s.db.Unscoped().Where("quiz_id = ?", quiz.QuizID).Delete(&models.QuizContent{}).Error; err != nil {
		s.log.Error("failed to remove content of failed quiz", "quiz_id", quiz.QuizID, "error", err)
	}
	if err := s.db.Unscoped().Delete(quiz).Error; err != nil {
		s.log.Error("failed to remove failed quiz", "quiz_id", quiz.QuizID, "error", err)
		return
	}
	s.log.Info("removed failed quiz", "quiz_id", quiz.QuizID)
}

// deriveSubject collects the distinct subject labels of the given books: one
// label is used as-is, several collapse to "Mixed".
func (s *QuizService) deriveSubject(bookList []string) (string, error) {
	if len(bookList) == 0 {
		return "", nil
	}
	var names []string
	err := s.db.Model(&models.Book{}).
		Joins("JOIN subjects ON subjects.id = books.subject_id").
		Where("books.book_id IN ?", bookList).
		Distinct().
		Pluck("subjects.subject_name", &names).Error
	if err != nil {
		return "", err
	}
	switch len(names) {
	case 0:
		return "", nil
	case 1:
		return names[0], nil
	default:
		return "Mixed", nil
	}
}

func (s *QuizService) quickQuizTypes() ([]QuizTypeRequest, error) {
	mcq, err := s.types.ResolveByName(TypeNameMCQ)
	if err != nil {
		return nil, err
	}
	descriptive, err := s.types.ResolveByName(TypeNameDescriptive)
	if err != nil {
		return nil, err
	}
	return []QuizTypeRequest{
		{TypeID: mcq.TypeID, EasyCount: 5, MediumCount: 3, HardCount: 2},
		{TypeID: descriptive.TypeID, EasyCount: 3, MediumCount: 2, HardCount: 1},
	}, nil
}

func (s *QuizService) refreshStatsAsync(userID uint) {
	// Fire and forget; the stats service logs its own failures.
	go s.stats.Refresh(context.Background(), userID)
}

func randomQuizName() string {
	return "Quiz_" + uuid.NewString()[:5]
}

func userRef(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

type QuizLists struct {
	UserQuizzes   []models.Quiz `json:"user_quizzes"`
	PublicQuizzes []models.Quiz `json:"public_quizzes"`
}

// GetQuizzes returns the caller's completed quizzes plus everyone else's
// public ones, optionally filtered by a case-insensitive search over name and
// description. Incomplete quizzes never show up here.
func (s *QuizService) GetQuizzes(userID uint, search string) (*QuizLists, error) {
	pattern := "%" + strings.ToLower(search) + "%"

	var own []models.Quiz
	err := s.db.Where("completed = ? AND created_by = ?", true, userID).
		Where("LOWER(quiz_name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Preload("Creator").
		Find(&own).Error
	if err != nil {
		return nil, err
	}

	var public []models.Quiz
	err = s.db.Where("completed = ? AND is_private = ? AND created_by <> ?", true, false, userID).
		Where("LOWER(quiz_name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Preload("Creator").
		Find(&public).Error
	if err != nil {
		return nil, err
	}

	return &QuizLists{UserQuizzes: own, PublicQuizzes: public}, nil
}

// GetSingleQuiz enforces the visibility rules: incomplete quizzes are never
// served, private quizzes only to their owner.
func (s *QuizService) GetSingleQuiz(userID uint, quizID string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.Preload("Creator").Where("quiz_id = ?", quizID).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("quiz")
		}
		return nil, err
	}
	if !quiz.Completed {
		return nil, apierr.Forbidden("quiz is not yet completed")
	}
	if quiz.IsPrivate && quiz.CreatedBy != userID {
		return nil, apierr.Forbidden("you are not authorized to view this quiz")
	}
	return &quiz, nil
}

// TogglePrivacy flips the visibility flag. Owner only.
func (s *QuizService) TogglePrivacy(userID uint, quizID string) (bool, error) {
	var quiz models.Quiz
	if err := s.db.Where("quiz_id = ?", quizID).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apierr.NotFound("quiz")
		}
		return false, err
	}
	if quiz.CreatedBy != userID {
		return false, apierr.Forbidden("you are not authorized to modify this quiz")
	}

	quiz.IsPrivate = !quiz.IsPrivate
	if err := s.db.Save(&quiz).Error; err != nil {
		return false, err
	}

	s.refreshStatsAsync(userID)
	return quiz.IsPrivate, nil
}

// DeleteQuiz removes a quiz with all of its content rows. Owner only.
// Returns the number of content rows removed.
func (s *QuizService) DeleteQuiz(userID uint, quizID string) (int64, error) {
	var quiz models.Quiz
	if err := s.db.Where("quiz_id = ?", quizID).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apierr.NotFound("quiz")
		}
		return 0, err
	}
	if quiz.CreatedBy != userID {
		return 0, apierr.Forbidden("you are not authorized to delete this quiz")
	}

	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("quiz_id = ?", quizID).Delete(&models.QuizContent{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return tx.Unscoped().Delete(&quiz).Error
	})
	if err != nil {
		return 0, err
	}

	s.refreshStatsAsync(userID)
	return deleted, nil
}

type ChapterDetail struct {
	ChapterName string `json:"chapter_name"`
	Description string `json:"description"`
	ChapterURL  string `json:"chapter_url"`
}

// ChapterDetails resolves a quiz's document references against the chapter
// catalog. Unknown references (quick quiz uploads) are skipped.
func (s *QuizService) ChapterDetails(quizID string) ([]ChapterDetail, error) {
	var quiz models.Quiz
	if err := s.db.Where("quiz_id = ?", quizID).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("quiz")
		}
		return nil, err
	}

	var chapters []models.Chapter
	if len(quiz.ChapterList) > 0 {
		if err := s.db.Where("chapter_url IN ?", []string(quiz.ChapterList)).Find(&chapters).Error; err != nil {
			return nil, err
		}
	}

	byURL := make(map[string]models.Chapter, len(chapters))
	for _, ch := range chapters {
		byURL[ch.ChapterURL] = ch
	}

	details := make([]ChapterDetail, 0, len(quiz.ChapterList))
	for _, ref := range quiz.ChapterList {
		ch, ok := byURL[ref]
		if !ok {
			continue
		}
		details = append(details, ChapterDetail{
			ChapterName: ch.ChapterName,
			Description: ch.Description,
			ChapterURL:  ch.ChapterURL,
		})
	}
	return details, nil
}
