package services

import (
	"fmt"
	"testing"

	"creator-platform/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. The unique DSN keeps
// parallel tests from sharing state through the sqlite shared cache.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Community{},
		&models.CommunityMember{},
		&models.Post{},
		&models.Course{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.Challenge{},
		&models.ChallengeTask{},
		&models.ChallengeParticipant{},
		&models.Event{},
		&models.EventRegistration{},
		&models.Product{},
		&models.ProductPurchase{},
		&models.CoachingSession{},
		&models.SessionBooking{},
		&models.Order{},
		&models.PromoCode{},
		&models.CreatorFeeOverride{},
		&models.ContentProgress{},
		&models.TrackingAction{},
		&models.RevokedToken{},
		&models.AuthCode{},
		&models.WebhookEvent{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", Name: "Test User"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedCommunity(t *testing.T, db *gorm.DB, creatorID string, priceDT float64) *models.Community {
	t.Helper()
	community := models.Community{
		CreatorID: creatorID,
		Name:      "Test Community",
		Slug:      "test-community-" + uuid.NewString()[:8],
		PriceDT:   priceDT,
	}
	require.NoError(t, db.Create(&community).Error)
	return &community
}

func seedCourse(t *testing.T, db *gorm.DB, communityID, creatorID string, priceDT float64) *models.Course {
	t.Helper()
	course := models.Course{
		CommunityID: communityID,
		CreatorID:   creatorID,
		Title:       "Test Course",
		PriceDT:     priceDT,
		IsPublished: true,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

// newTestPaymentService wires the full payment graph against one DB, in
// offline mode so nothing reaches a real gateway.
func newTestPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{
		DB:          db,
		Fee:         NewFeeService(db),
		Promo:       NewPromoService(db),
		Communities: NewCommunityService(db),
		Courses:     NewCourseService(db),
		Challenges:  NewChallengeService(db),
		Products:    NewProductService(db),
		Sessions:    NewSessionService(db),
		Mode:        PaymentModeOffline,
		FrontendURL: "http://localhost:3000",
	}
}
