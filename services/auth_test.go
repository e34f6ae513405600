package services

import (
	"regexp"
	"testing"
	"time"

	"creator-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		DB:            db,
		JWTSecret:     []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func TestIssueAndParseTokenPair(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(db)
	user := seedUser(t, db, "user@test.tn")
	user.Role = "creator"

	pair, err := auth.IssueTokenPair(user, false)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(accessTokenTTL.Seconds()), pair.ExpiresIn)

	claims, err := auth.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, "creator", claims.Role)
	assert.NotEmpty(t, claims.JTI)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(db)

	_, err := auth.ParseAccessToken("not-a-jwt")
	assert.Error(t, err)
}

func TestAccessAndRefreshSecretsAreSeparate(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(db)
	user := seedUser(t, db, "user@test.tn")

	pair, err := auth.IssueTokenPair(user, false)
	require.NoError(t, err)

	// A refresh token must not pass as an access token.
	_, err = auth.ParseAccessToken(pair.RefreshToken)
	assert.Error(t, err)

	_, err = auth.parseToken(pair.RefreshToken, auth.RefreshSecret)
	assert.NoError(t, err)
}

func TestRevokedJTIRejected(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(db)
	user := seedUser(t, db, "user@test.tn")

	pair, err := auth.IssueTokenPair(user, false)
	require.NoError(t, err)

	claims, err := auth.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, auth.revokeToken(claims, models.TokenAccess))

	_, err = auth.ParseAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevokeAllCoversEarlierTokens(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(db)
	user := seedUser(t, db, "user@test.tn")

	pair, err := auth.IssueTokenPair(user, false)
	require.NoError(t, err)

	// iat has second precision; make sure the sentinel lands after it.
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, auth.RevokeAll(user.ID))

	_, err = auth.ParseAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Tokens minted a full second after the sentinel are fine again.
	time.Sleep(1100 * time.Millisecond)
	fresh, err := auth.IssueTokenPair(user, false)
	require.NoError(t, err)
	_, err = auth.ParseAccessToken(fresh.AccessToken)
	assert.NoError(t, err)
}

func TestRevokeAllDoesNotAffectOtherUsers(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(db)
	alice := seedUser(t, db, "alice@test.tn")
	bob := seedUser(t, db, "bob@test.tn")

	alicePair, err := auth.IssueTokenPair(alice, false)
	require.NoError(t, err)
	bobPair, err := auth.IssueTokenPair(bob, false)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, auth.RevokeAll(alice.ID))

	_, err = auth.ParseAccessToken(alicePair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = auth.ParseAccessToken(bobPair.AccessToken)
	assert.NoError(t, err)
}

func TestSixDigitCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, pattern, sixDigitCode())
	}
}

func TestConsumeCodeSingleUse(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(db)
	user := seedUser(t, db, "user@test.tn")

	code, err := auth.issueCode(user.ID, models.PurposeTwoFactor, true, twoFactorCodeTTL)
	require.NoError(t, err)

	consumed, err := auth.consumeCode(user.ID, code.Code, models.PurposeTwoFactor)
	require.NoError(t, err)
	assert.True(t, consumed.RememberMe)

	_, err = auth.consumeCode(user.ID, code.Code, models.PurposeTwoFactor)
	assert.Error(t, err)
}

func TestConsumeCodeWrongPurposeOrUser(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(db)
	user := seedUser(t, db, "user@test.tn")

	code, err := auth.issueCode(user.ID, models.PurposeTwoFactor, false, twoFactorCodeTTL)
	require.NoError(t, err)

	_, err = auth.consumeCode(user.ID, code.Code, models.PurposePasswordReset)
	assert.Error(t, err)
	_, err = auth.consumeCode("someone-else", code.Code, models.PurposeTwoFactor)
	assert.Error(t, err)

	// Still consumable by the right user and purpose.
	_, err = auth.consumeCode(user.ID, code.Code, models.PurposeTwoFactor)
	assert.NoError(t, err)
}

func TestConsumeCodeExpired(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(db)
	user := seedUser(t, db, "user@test.tn")

	code, err := auth.issueCode(user.ID, models.PurposePasswordReset, false, -time.Minute)
	require.NoError(t, err)

	_, err = auth.consumeCode(user.ID, code.Code, models.PurposePasswordReset)
	assert.Error(t, err)
}
