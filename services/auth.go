// services/auth.go
package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"creator-platform/models"
	"creator-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL     = 15 * time.Minute
	refreshTokenTTL    = 7 * 24 * time.Hour
	refreshRememberTTL = 30 * 24 * time.Hour
	twoFactorCodeTTL   = 10 * time.Minute
	passwordResetTTL   = 15 * time.Minute
)

// Returned on login and reset requests regardless of whether the account
// exists, to avoid account enumeration.
const genericCodeSentMessage = "If the account exists, a verification code has been sent"

var ErrTokenRevoked = errors.New("token has been revoked")

// AuthService issues and revokes JWT pairs, runs the 2FA and password-reset
// code flows, and backs the auth middleware's revocation checks.
type AuthService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func NewAuthService(db *gorm.DB) *AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}
	refreshSecret := os.Getenv("JWT_REFRESH_SECRET")
	if refreshSecret == "" {
		refreshSecret = secret
	}
	return &AuthService{
		DB:            db,
		JWTSecret:     []byte(secret),
		RefreshSecret: []byte(refreshSecret),
	}
}

// TokenClaims is the parsed, validated view of one of our JWTs.
type TokenClaims struct {
	UserID   string
	Email    string
	Role     string
	JTI      string
	IssuedAt time.Time
	Expires  time.Time
}

// TokenPair is what login/refresh hand to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access token, seconds
}

func (s *AuthService) mintToken(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// IssueTokenPair mints an access+refresh pair. rememberMe stretches the
// refresh TTL.
func (s *AuthService) IssueTokenPair(user *models.User, rememberMe bool) (*TokenPair, error) {
	access, err := s.mintToken(user, s.JWTSecret, accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refreshTTL := refreshTokenTTL
	if rememberMe {
		refreshTTL = refreshRememberTTL
	}
	refresh, err := s.mintToken(user, s.RefreshSecret, refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *AuthService) parseToken(tokenStr string, secret []byte) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	out := &TokenClaims{}
	out.UserID, _ = claims["sub"].(string)
	out.Email, _ = claims["email"].(string)
	out.Role, _ = claims["role"].(string)
	out.JTI, _ = claims["jti"].(string)
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.Expires = exp.Time
	}
	if out.UserID == "" || out.JTI == "" {
		return nil, errors.New("invalid token claims")
	}
	return out, nil
}

// ParseAccessToken validates signature, expiry and revocation.
func (s *AuthService) ParseAccessToken(tokenStr string) (*TokenClaims, error) {
	claims, err := s.parseToken(tokenStr, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	revoked, err := s.IsTokenRevoked(claims.JTI, claims.UserID, claims.IssuedAt)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// IsTokenRevoked does the two-level check: the exact jti is on the denylist,
// or a user-wide revoke-all row was written after the token was issued.
func (s *AuthService) IsTokenRevoked(jti, userID string, issuedAt time.Time) (bool, error) {
	var count int64
	err := s.DB.Model(&models.RevokedToken{}).
		Where("(jti = ?) OR (user_id = ? AND token_type = ? AND created_at > ?)",
			jti, userID, models.TokenAll, issuedAt).
		Count(&count).Error
	return count > 0, err
}

func (s *AuthService) revokeToken(claims *TokenClaims, tokenType models.TokenType) error {
	row := models.RevokedToken{
		JTI:       claims.JTI,
		UserID:    claims.UserID,
		TokenType: tokenType,
		ExpiresAt: claims.Expires,
	}
	return s.DB.Create(&row).Error
}

// RevokeAll writes the user-wide sentinel; it covers every token issued
// before now, including ones this process never saw.
func (s *AuthService) RevokeAll(userID string) error {
	row := models.RevokedToken{
		UserID:    userID,
		TokenType: models.TokenAll,
		ExpiresAt: time.Now().Add(refreshRememberTTL),
	}
	return s.DB.Create(&row).Error
}

func sixDigitCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing means the process is in bad shape anyway
		log.Printf("⚠️ crypto/rand failed: %v", err)
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

func (s *AuthService) issueCode(userID string, purpose models.CodePurpose, rememberMe bool, ttl time.Duration) (*models.AuthCode, error) {
	code := models.AuthCode{
		UserID:     userID,
		Code:       sixDigitCode(),
		Purpose:    purpose,
		RememberMe: rememberMe,
		ExpiresAt:  time.Now().Add(ttl),
	}
	if err := s.DB.Create(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

// consumeCode validates and single-use-consumes a code with a conditional
// update, so two concurrent verifies cannot both succeed.
func (s *AuthService) consumeCode(userID, code string, purpose models.CodePurpose) (*models.AuthCode, error) {
	var row models.AuthCode
	err := s.DB.Where("user_id = ? AND code = ? AND purpose = ? AND consumed_at IS NULL AND expires_at > ?",
		userID, code, purpose, time.Now()).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		return nil, errors.New("invalid or expired code")
	}
	res := s.DB.Model(&models.AuthCode{}).
		Where("id = ? AND consumed_at IS NULL", row.ID).
		Update("consumed_at", time.Now())
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errors.New("invalid or expired code")
	}
	return &row, nil
}

// --- Handlers ---

func (s *AuthService) Register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=72"`
		Name     string `json:"name" validate:"required,min=2,max=120"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": utils.ValidationErrors(err)})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		// unique index on email
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already registered"})
	}

	pair, err := s.IssueTokenPair(&user, false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue tokens"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "tokens": pair})
}

func (s *AuthService) Login(c *fiber.Ctx) error {
	var req struct {
		Email      string `json:"email" validate:"required,email"`
		Password   string `json:"password" validate:"required"`
		RememberMe bool   `json:"remember_me"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": utils.ValidationErrors(err)})
	}

	var user models.User
	if err := s.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	if user.TwoFactorEnabled {
		if _, err := s.issueCode(user.ID, models.PurposeTwoFactor, req.RememberMe, twoFactorCodeTTL); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue code"})
		}
		// Delivery (email) happens out of process; the code is never echoed.
		return c.JSON(fiber.Map{"two_factor_required": true, "message": genericCodeSentMessage})
	}

	now := time.Now()
	s.DB.Model(&user).Update("last_login_at", &now)

	pair, err := s.IssueTokenPair(&user, req.RememberMe)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue tokens"})
	}
	return c.JSON(fiber.Map{"user": user, "tokens": pair})
}

func (s *AuthService) VerifyTwoFactor(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": utils.ValidationErrors(err)})
	}

	var user models.User
	if err := s.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired code"})
	}

	code, err := s.consumeCode(user.ID, req.Code, models.PurposeTwoFactor)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired code"})
	}

	now := time.Now()
	s.DB.Model(&user).Update("last_login_at", &now)

	pair, err := s.IssueTokenPair(&user, code.RememberMe)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue tokens"})
	}
	return c.JSON(fiber.Map{"user": user, "tokens": pair})
}

// Refresh rotates the pair: the presented refresh token is revoked and a
// fresh pair is minted.
func (s *AuthService) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims, err := s.parseToken(req.RefreshToken, s.RefreshSecret)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid refresh token"})
	}
	revoked, err := s.IsTokenRevoked(claims.JTI, claims.UserID, claims.IssuedAt)
	if err != nil || revoked {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid refresh token"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid refresh token"})
	}

	if err := s.revokeToken(claims, models.TokenRefresh); err != nil {
		log.Printf("⚠️ failed to revoke rotated refresh token: %v", err)
	}

	pair, err := s.IssueTokenPair(&user, false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue tokens"})
	}
	return c.JSON(fiber.Map{"tokens": pair})
}

// Logout revokes the presented tokens. Failures are swallowed: the client
// clears its cookies either way, so the response is always success.
func (s *AuthService) Logout(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.BodyParser(&req)

	if auth := c.Get("Authorization"); len(auth) > 7 {
		if claims, err := s.parseToken(auth[7:], s.JWTSecret); err == nil {
			if err := s.revokeToken(claims, models.TokenAccess); err != nil {
				log.Printf("⚠️ logout revoke failed: %v", err)
			}
		}
	}
	if req.RefreshToken != "" {
		if claims, err := s.parseToken(req.RefreshToken, s.RefreshSecret); err == nil {
			if err := s.revokeToken(claims, models.TokenRefresh); err != nil {
				log.Printf("⚠️ logout refresh revoke failed: %v", err)
			}
		}
	}

	c.ClearCookie("access_token", "refresh_token")
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (s *AuthService) LogoutAll(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	if err := s.RevokeAll(userID); err != nil {
		log.Printf("⚠️ revoke-all failed for %s: %v", userID, err)
	}
	c.ClearCookie("access_token", "refresh_token")
	return c.JSON(fiber.Map{"message": "Logged out everywhere"})
}

// RequestPasswordReset answers identically whether or not the account
// exists.
func (s *AuthService) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": utils.ValidationErrors(err)})
	}

	var user models.User
	if err := s.DB.Where("email = ?", req.Email).First(&user).Error; err == nil {
		if _, err := s.issueCode(user.ID, models.PurposePasswordReset, false, passwordResetTTL); err != nil {
			log.Printf("⚠️ failed to issue reset code: %v", err)
		}
	}
	return c.JSON(fiber.Map{"message": genericCodeSentMessage})
}

// ConfirmPasswordReset consumes the code, rewrites the hash and revokes all
// outstanding tokens.
func (s *AuthService) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email       string `json:"email" validate:"required,email"`
		Code        string `json:"code" validate:"required,len=6"`
		NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": utils.ValidationErrors(err)})
	}

	var user models.User
	if err := s.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired code"})
	}
	if _, err := s.consumeCode(user.ID, req.Code, models.PurposePasswordReset); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired code"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}
	if err := s.DB.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update password"})
	}
	if err := s.RevokeAll(user.ID); err != nil {
		log.Printf("⚠️ revoke-all after reset failed: %v", err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}
