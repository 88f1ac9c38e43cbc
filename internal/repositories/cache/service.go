package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tutorlink/internal/models"
)

// CacheService wraps Redis with typed helpers for the entities the read
// path actually caches: approved tutor listings and per-user upcoming
// sessions. Mutating services invalidate the relevant keys.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get unmarshals the cached value into dest and reports whether the key
// was present.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// TutorListKey caches the approved-tutor listing, optionally filtered by
// subject. An empty subject is the unfiltered listing.
func (s *CacheService) TutorListKey(subject string) string {
	if subject == "" {
		subject = "all"
	}
	return s.GenerateKey("tutors", "subject", subject)
}

// UpcomingKey caches a participant's upcoming sessions.
func (s *CacheService) UpcomingKey(userID uint) string {
	return s.GenerateKey("sessions", "upcoming", userID)
}

// GetTutorList returns the cached tutor listing, if present.
func (s *CacheService) GetTutorList(ctx context.Context, subject string) ([]models.TutorProfile, bool, error) {
	var profiles []models.TutorProfile
	found, err := s.Get(ctx, s.TutorListKey(subject), &profiles)
	return profiles, found, err
}

// CacheTutorList stores a tutor listing under its subject key.
func (s *CacheService) CacheTutorList(ctx context.Context, subject string, profiles []models.TutorProfile) error {
	return s.Set(ctx, s.TutorListKey(subject), profiles)
}

// InvalidateTutorLists drops every cached tutor listing. Called when a
// profile changes or a KYC review flips a tutor's visibility.
func (s *CacheService) InvalidateTutorLists(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.GenerateKey("tutors", "subject", "*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return s.Delete(ctx, keys...)
}

// InvalidateUpcoming drops the cached upcoming sessions of both booking
// participants.
func (s *CacheService) InvalidateUpcoming(ctx context.Context, userIDs ...uint) error {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, s.UpcomingKey(id))
	}
	return s.Delete(ctx, keys...)
}

// FlushAll clears the whole cache. Used on startup.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
