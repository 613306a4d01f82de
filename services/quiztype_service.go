package services

import (
	"errors"

	"quizforge/apierr"
	"quizforge/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category names of the closed grading set. The open-ended catalog can hold
// more types, but the grader only understands these three.
const (
	TypeNameMCQ         = "MCQ"
	TypeNameDescriptive = "Descriptive"
	TypeNameNumerical   = "Numerical"
)

// QuizTypeService is the single lookup capability for the quiz type catalog.
// All resolution goes through it so not-found handling lives in one place.
type QuizTypeService struct {
	db *gorm.DB
}

func NewQuizTypeService(db *gorm.DB) *QuizTypeService {
	return &QuizTypeService{db: db}
}

func (s *QuizTypeService) List() ([]models.QuizType, error) {
	var types []models.QuizType
	if err := s.db.Order("sort_order ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (s *QuizTypeService) Add(userID uint, typeName string) (*models.QuizType, error) {
	var existing models.QuizType
	err := s.db.Where("type_name = ?", typeName).First(&existing).Error
	if err == nil {
		return nil, apierr.Conflict("quiz type %q already exists", typeName)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// New types go to the end of the display order.
	nextOrder := 0
	var last models.QuizType
	err = s.db.Order("sort_order DESC").First(&last).Error
	switch {
	case err == nil:
		nextOrder = last.Order + 1
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	quizType := models.QuizType{
		TypeID:    uuid.NewString(),
		TypeName:  typeName,
		Order:     nextOrder,
		CreatedBy: userID,
	}
	if err := s.db.Create(&quizType).Error; err != nil {
		return nil, err
	}
	return &quizType, nil
}

func (s *QuizTypeService) ResolveByID(typeID string) (*models.QuizType, error) {
	var quizType models.QuizType
	if err := s.db.Where("type_id = ?", typeID).First(&quizType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.TypeNotFound(typeID)
		}
		return nil, err
	}
	return &quizType, nil
}

func (s *QuizTypeService) ResolveByName(typeName string) (*models.QuizType, error) {
	var quizType models.QuizType
	if err := s.db.Where("type_name = ?", typeName).First(&quizType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.TypeNotFound(typeName)
		}
		return nil, err
	}
	return &quizType, nil
}
