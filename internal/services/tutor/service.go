// Package tutor manages tutor profiles and courses and serves the
// student-facing tutor directory.
package tutor

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperr "tutorlink/internal/errors"
	"tutorlink/internal/models"
	"tutorlink/internal/policy"
	"tutorlink/internal/repositories"
)

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Bio        string   `json:"bio"`
	Subjects   []string `json:"subjects"`
	HourlyRate float64  `json:"hourly_rate"`
}

// CourseInput carries the editable course fields.
type CourseInput struct {
	Title       string  `json:"title"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type Service interface {
	UpsertProfile(ctx context.Context, actor *models.UserClaims, input ProfileInput) (*models.TutorProfile, error)
	GetProfile(ctx context.Context, tutorID uint) (*models.TutorProfile, error)
	ListApproved(ctx context.Context, subject string) ([]models.TutorProfile, error)

	CreateCourse(ctx context.Context, actor *models.UserClaims, input CourseInput) (*models.Course, error)
	UpdateCourse(ctx context.Context, actor *models.UserClaims, id uint, input CourseInput) (*models.Course, error)
	DeleteCourse(ctx context.Context, actor *models.UserClaims, id uint) error
	ListCourses(ctx context.Context, tutorID uint) ([]models.Course, error)
}

// Cache is the subset of the cache service the directory uses.
type Cache interface {
	GetTutorList(ctx context.Context, subject string) ([]models.TutorProfile, bool, error)
	CacheTutorList(ctx context.Context, subject string, profiles []models.TutorProfile) error
	InvalidateTutorLists(ctx context.Context) error
}

type service struct {
	repo   repositories.TutorRepository
	cache  Cache
	logger *zap.Logger
}

func NewService(repo repositories.TutorRepository, cache Cache, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *service) UpsertProfile(ctx context.Context, actor *models.UserClaims, input ProfileInput) (*models.TutorProfile, error) {
	if actor.Role != models.RoleTutor {
		return nil, apperr.ErrForbidden
	}
	if input.HourlyRate < 0 {
		return nil, apperr.Validation("hourly rate cannot be negative")
	}

	profile := &models.TutorProfile{
		UserID:     actor.UserID,
		Bio:        input.Bio,
		Subjects:   input.Subjects,
		HourlyRate: input.HourlyRate,
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.invalidateDirectory()
	return profile, nil
}

func (s *service) GetProfile(ctx context.Context, tutorID uint) (*models.TutorProfile, error) {
	profile, err := s.repo.GetProfile(ctx, tutorID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// ListApproved serves the student-facing directory: only tutors with an
// approved KYC are visible. Results are cached per subject.
func (s *service) ListApproved(ctx context.Context, subject string) ([]models.TutorProfile, error) {
	if s.cache != nil {
		profiles, found, err := s.cache.GetTutorList(ctx, subject)
		if err == nil && found {
			return profiles, nil
		}
	}

	profiles, err := s.repo.ListApproved(ctx, subject)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheTutorList(ctx, subject, profiles); err != nil {
			s.logger.Warn("failed to cache tutor directory", zap.Error(err))
		}
	}
	return profiles, nil
}

func (s *service) CreateCourse(ctx context.Context, actor *models.UserClaims, input CourseInput) (*models.Course, error) {
	if !policy.Allow(actor, policy.Resource{Kind: policy.KindCourse, OwnerID: actor.UserID}, policy.ActionCreate) {
		return nil, apperr.ErrForbidden
	}
	if input.Title == "" {
		return nil, apperr.Validation("course title is required")
	}

	course := &models.Course{
		TutorID:     actor.UserID,
		Title:       input.Title,
		Subject:     input.Subject,
		Description: input.Description,
		Price:       input.Price,
	}
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *service) UpdateCourse(ctx context.Context, actor *models.UserClaims, id uint, input CourseInput) (*models.Course, error) {
	course, err := s.getOwnedCourse(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	course.Title = input.Title
	course.Subject = input.Subject
	course.Description = input.Description
	course.Price = input.Price
	if err := s.repo.UpdateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *service) DeleteCourse(ctx context.Context, actor *models.UserClaims, id uint) error {
	if _, err := s.getOwnedCourse(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.DeleteCourse(ctx, id)
}

func (s *service) ListCourses(ctx context.Context, tutorID uint) ([]models.Course, error) {
	return s.repo.ListCourses(ctx, tutorID)
}

func (s *service) getOwnedCourse(ctx context.Context, actor *models.UserClaims, id uint) (*models.Course, error) {
	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if !policy.Allow(actor, policy.Resource{Kind: policy.KindCourse, OwnerID: course.TutorID}, policy.ActionModify) {
		return nil, apperr.ErrForbidden
	}
	return course, nil
}

func (s *service) invalidateDirectory() {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTutorLists(context.Background()); err != nil {
		s.logger.Warn("failed to invalidate tutor directory cache", zap.Error(err))
	}
}
