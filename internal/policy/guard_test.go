package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tutorlink/internal/models"
)

func claims(id uint, role string) *models.UserClaims {
	return &models.UserClaims{UserID: id, Role: role}
}

func TestAllow_Booking(t *testing.T) {
	booking := Resource{Kind: KindBooking, OwnerID: 1, TutorID: 2}

	tests := []struct {
		name     string
		identity *models.UserClaims
		action   Action
		want     bool
	}{
		{"student creates own booking", claims(1, models.RoleStudent), ActionCreate, true},
		{"student creates booking for someone else", claims(3, models.RoleStudent), ActionCreate, false},
		{"tutor cannot create booking", claims(2, models.RoleTutor), ActionCreate, false},
		{"participant student reads", claims(1, models.RoleStudent), ActionRead, true},
		{"participant tutor reads", claims(2, models.RoleTutor), ActionRead, true},
		{"stranger reads", claims(9, models.RoleStudent), ActionRead, false},
		{"participant tutor modifies", claims(2, models.RoleTutor), ActionModify, true},
		{"stranger modifies", claims(9, models.RoleTutor), ActionModify, false},
		{"participant messages", claims(1, models.RoleStudent), ActionMessage, true},
		{"stranger messages", claims(9, models.RoleStudent), ActionMessage, false},
		{"admin does anything", claims(99, models.RoleAdmin), ActionModify, true},
		{"nil identity denied", nil, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.identity, booking, tt.action))
		})
	}
}

func TestAllow_KYC(t *testing.T) {
	record := Resource{Kind: KindKYC, OwnerID: 5}

	tests := []struct {
		name     string
		identity *models.UserClaims
		action   Action
		want     bool
	}{
		{"owner tutor uploads", claims(5, models.RoleTutor), ActionCreate, true},
		{"owner tutor views", claims(5, models.RoleTutor), ActionRead, true},
		{"other tutor views", claims(6, models.RoleTutor), ActionRead, false},
		{"student uploads", claims(5, models.RoleStudent), ActionCreate, false},
		{"tutor reviews own record", claims(5, models.RoleTutor), ActionReview, false},
		{"admin reviews", claims(99, models.RoleAdmin), ActionReview, true},
		{"admin views any record", claims(99, models.RoleAdmin), ActionRead, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.identity, record, tt.action))
		})
	}
}

func TestAllow_Course(t *testing.T) {
	course := Resource{Kind: KindCourse, OwnerID: 4}

	assert.True(t, Allow(claims(4, models.RoleTutor), course, ActionCreate))
	assert.False(t, Allow(claims(5, models.RoleTutor), course, ActionModify))
	assert.True(t, Allow(claims(1, models.RoleStudent), course, ActionRead))
	assert.False(t, Allow(claims(1, models.RoleStudent), course, ActionCreate))
}

func TestAllow_UnknownKind(t *testing.T) {
	assert.False(t, Allow(claims(1, models.RoleStudent), Resource{Kind: "wallet", OwnerID: 1}, ActionRead))
}
