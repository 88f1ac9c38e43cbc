package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorlink/internal/models"
)

var (
	ErrProfileNotFound = errors.New("tutor profile not found")
	ErrCourseNotFound  = errors.New("course not found")
)

// TutorRepository persists tutor profiles and their courses.
type TutorRepository interface {
	UpsertProfile(ctx context.Context, profile *models.TutorProfile) error
	GetProfile(ctx context.Context, userID uint) (*models.TutorProfile, error)

	// ListApproved returns profiles of tutors whose KYC is approved,
	// optionally filtered by subject.
	ListApproved(ctx context.Context, subject string) ([]models.TutorProfile, error)

	CreateCourse(ctx context.Context, course *models.Course) error
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uint) error
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	ListCourses(ctx context.Context, tutorID uint) ([]models.Course, error)
}

type tutorRepository struct {
	db *gorm.DB
}

func NewTutorRepository(db *gorm.DB) TutorRepository {
	return &tutorRepository{db: db}
}

func (r *tutorRepository) UpsertProfile(ctx context.Context, profile *models.TutorProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"bio", "subjects", "hourly_rate", "updated_at",
		}),
	}).Create(profile).Error
}

func (r *tutorRepository) GetProfile(ctx context.Context, userID uint) (*models.TutorProfile, error) {
	var profile models.TutorProfile
	err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *tutorRepository) ListApproved(ctx context.Context, subject string) ([]models.TutorProfile, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = tutor_profiles.user_id").
		Where("users.role = ? AND users.kyc_status = ?", models.RoleTutor, models.KYCStatusApproved)
	if subject != "" {
		q = q.Where("? = ANY(tutor_profiles.subjects)", subject)
	}

	var profiles []models.TutorProfile
	if err := q.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *tutorRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *tutorRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *tutorRepository) DeleteCourse(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Course{}, id).Error
}

func (r *tutorRepository) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (r *tutorRepository) ListCourses(ctx context.Context, tutorID uint) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Where("tutor_id = ?", tutorID).Order("id asc").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}
