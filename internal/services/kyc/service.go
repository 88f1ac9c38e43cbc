// Package kyc manages tutor verification records: document submission
// by the tutor and review by an admin.
package kyc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperr "tutorlink/internal/errors"
	"tutorlink/internal/events"
	"tutorlink/internal/models"
	"tutorlink/internal/policy"
	"tutorlink/internal/repositories"
)

// Documents are the four references a submission must carry.
type Documents struct {
	IDDocumentURL  string
	PhotoURL       string
	CertificateURL string
	ResumeURL      string
}

type Service interface {
	Submit(ctx context.Context, actor *models.UserClaims, docs Documents) (*models.KYCRecord, error)
	Status(ctx context.Context, actor *models.UserClaims) (*models.KYCRecord, error)
	ListPending(ctx context.Context) ([]models.KYCRecord, error)
	Approve(ctx context.Context, actor *models.UserClaims, recordID uint) (*models.KYCRecord, error)
	Reject(ctx context.Context, actor *models.UserClaims, recordID uint, comment string) (*models.KYCRecord, error)
}

// Cache is the slice of the cache service the review flow needs: a
// status flip changes who belongs in the tutor directory.
type Cache interface {
	InvalidateTutorLists(ctx context.Context) error
}

type service struct {
	repo       repositories.KYCRepository
	userRepo   repositories.UserRepository
	cache      Cache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func NewService(
	repo repositories.KYCRepository,
	userRepo repositories.UserRepository,
	cache Cache,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) Service {
	return &service{
		repo:       repo,
		userRepo:   userRepo,
		cache:      cache,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Submit upserts the actor's verification record. Re-submission after a
// rejection restarts the review: the record goes back to pending and
// previous review fields are cleared.
func (s *service) Submit(ctx context.Context, actor *models.UserClaims, docs Documents) (*models.KYCRecord, error) {
	if !policy.Allow(actor, policy.Resource{Kind: policy.KindKYC, OwnerID: actor.UserID}, policy.ActionCreate) {
		return nil, apperr.ErrForbidden
	}

	if err := validateDocuments(docs); err != nil {
		return nil, err
	}

	record := &models.KYCRecord{
		UserID:         actor.UserID,
		IDDocumentURL:  docs.IDDocumentURL,
		PhotoURL:       docs.PhotoURL,
		CertificateURL: docs.CertificateURL,
		ResumeURL:      docs.ResumeURL,
		Status:         models.KYCStatusPending,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateKYCStatus(actor.UserID, models.KYCStatusPending); err != nil {
		s.logger.Warn("failed to sync user kyc status", zap.Error(err))
	}
	s.invalidateDirectory()

	s.publish(actor, events.EventKYCSubmitted, events.KYCSubmittedPayload{
		RecordID: record.ID,
		UserID:   actor.UserID,
	})
	return record, nil
}

// Status returns the actor's record, or a synthetic not_started record
// when nothing was submitted yet.
func (s *service) Status(ctx context.Context, actor *models.UserClaims) (*models.KYCRecord, error) {
	if !policy.Allow(actor, policy.Resource{Kind: policy.KindKYC, OwnerID: actor.UserID}, policy.ActionRead) {
		return nil, apperr.ErrForbidden
	}

	record, err := s.repo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrKYCNotFound) {
			return &models.KYCRecord{UserID: actor.UserID, Status: models.KYCStatusNotStarted}, nil
		}
		return nil, err
	}
	return record, nil
}

func (s *service) ListPending(ctx context.Context) ([]models.KYCRecord, error) {
	return s.repo.ListByStatus(ctx, models.KYCStatusPending)
}

func (s *service) Approve(ctx context.Context, actor *models.UserClaims, recordID uint) (*models.KYCRecord, error) {
	return s.review(ctx, actor, recordID, models.KYCStatusApproved, "")
}

func (s *service) Reject(ctx context.Context, actor *models.UserClaims, recordID uint, comment string) (*models.KYCRecord, error) {
	if comment == "" {
		return nil, apperr.Validation("rejection requires a comment")
	}
	return s.review(ctx, actor, recordID, models.KYCStatusRejected, comment)
}

// review moves a pending record to its reviewed state. Only pending
// records are reviewable; a second review of the same record conflicts.
func (s *service) review(ctx context.Context, actor *models.UserClaims, recordID uint, target, comment string) (*models.KYCRecord, error) {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrKYCNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	if !policy.Allow(actor, policy.Resource{Kind: policy.KindKYC, OwnerID: record.UserID}, policy.ActionReview) {
		return nil, apperr.ErrForbidden
	}

	ok, err := s.repo.UpdateStatusIf(ctx, recordID, models.KYCStatusPending, target, comment, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrInvalidTransition
	}

	if err := s.userRepo.UpdateKYCStatus(record.UserID, target); err != nil {
		s.logger.Warn("failed to sync user kyc status", zap.Error(err))
	}
	s.invalidateDirectory()

	s.logger.Info("kyc reviewed",
		zap.Uint("record_id", recordID),
		zap.Uint("user_id", record.UserID),
		zap.String("status", target))

	oldStatus := record.Status
	record.Status = target
	record.ReviewComment = comment
	record.ReviewedBy = &actor.UserID

	s.publish(actor, events.EventKYCStatusChanged, events.KYCStatusChangedPayload{
		RecordID:  recordID,
		UserID:    record.UserID,
		OldStatus: oldStatus,
		NewStatus: target,
		Comment:   comment,
	})
	return record, nil
}

func validateDocuments(docs Documents) error {
	required := map[string]string{
		"id_document": docs.IDDocumentURL,
		"photo":       docs.PhotoURL,
		"certificate": docs.CertificateURL,
		"resume":      docs.ResumeURL,
	}
	for name, value := range required {
		if value == "" {
			return apperr.Validation("missing required document: %s", name)
		}
	}
	return nil
}

func (s *service) invalidateDirectory() {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTutorLists(context.Background()); err != nil {
		s.logger.Warn("failed to invalidate tutor directory cache", zap.Error(err))
	}
}

func (s *service) publish(actor *models.UserClaims, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actor.UserID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	go func() {
		_ = s.dispatcher.Publish(context.Background(), event)
	}()
}
