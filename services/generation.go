package services

import (
	"context"
	"errors"
	"strings"

	"quizforge/apierr"
	"quizforge/llm"
	"quizforge/models"
)

// generateTypeContent calls the generation service for one quiz type and
// normalizes the flat response into a per-difficulty QuizContent row. No
// retries: a single failure is reported to the caller, which decides between
// rollback and skip.
func (s *QuizService) generateTypeContent(ctx context.Context, quiz *models.Quiz, quizType *models.QuizType, counts QuizTypeRequest) (*models.QuizContent, error) {
	resp, err := s.llm.GenerateQuestions(ctx, llm.GenerateRequest{
		PDFURLs:      quiz.ChapterList,
		FolderName:   quiz.QuizName,
		UserID:       userRef(quiz.CreatedBy),
		QuestionType: strings.ToLower(quizType.TypeName),
		EasyCount:    counts.EasyCount,
		MediumCount:  counts.MediumCount,
		HardCount:    counts.HardCount,
	})
	if err != nil {
		return nil, err
	}
	if resp.Questions == nil {
		return nil, apierr.MalformedResponse(errors.New("generation response has no questions list"))
	}

	set := partitionByDifficulty(*resp.Questions)
	return &models.QuizContent{
		QuizID:      quiz.QuizID,
		TypeID:      quizType.TypeID,
		EasyCount:   len(set.Easy),
		MediumCount: len(set.Medium),
		HardCount:   len(set.Hard),
		Questions:   set,
	}, nil
}

// partitionByDifficulty buckets a flat question list by its difficulty tag.
// Questions with an unknown tag are dropped; the stored counts always match
// the bucket lengths.
func partitionByDifficulty(questions []llm.GeneratedQuestion) models.QuestionSet {
	var set models.QuestionSet
	for _, q := range questions {
		stored := models.Question{
			Question:    q.Question,
			Answer:      q.Answer,
			Explanation: q.Explanation,
			Options:     q.Options,
			Difficulty:  strings.ToLower(q.Difficulty),
		}
		switch stored.Difficulty {
		case models.DifficultyEasy:
			set.Easy = append(set.Easy, stored)
		case models.DifficultyMedium:
			set.Medium = append(set.Medium, stored)
		case models.DifficultyHard:
			set.Hard = append(set.Hard, stored)
		}
	}
	return set
}
