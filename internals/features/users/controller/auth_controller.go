// file: internals/features/users/controller/auth_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kplt_backend/internals/configs"
	"kplt_backend/internals/features/users/dto"
	"kplt_backend/internals/features/users/model"
	helper "kplt_backend/internals/helpers"
	helperAuth "kplt_backend/internals/helpers/auth"
)

const tokenTTL = 12 * time.Hour

type AuthController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validator: validator.New()}
}

/* ==========================
   POST /auth/login
========================== */

func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var user model.UserModel
	err := ctl.DB.WithContext(c.UserContext()).
		First(&user, "lower(email) = lower(?)", strings.TrimSpace(req.Email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.CodeUnauthorized, "Email atau password salah")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}
	if !user.UserIsActive {
		return helper.JsonError(c, fiber.StatusForbidden, helper.CodeForbidden, "Akun Anda telah dinonaktifkan")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.UserPassword), []byte(req.Password)) != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.CodeUnauthorized, "Email atau password salah")
	}

	expiresAt := time.Now().Add(tokenTTL)
	claims := jwt.MapClaims{
		"user_id":   user.UserID.String(),
		"user_name": user.UserName,
		"position":  user.UserPosition,
		"branch_id": user.UserBranchID.String(),
		"exp":       expiresAt.Unix(),
		"iat":       time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(configs.JWTSecret))
	if err != nil {
		log.Println("[AUTH] gagal sign token:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, "Gagal membuat token")
	}

	return helper.JsonOK(c, "Login berhasil", dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(&user),
	})
}

/* ==========================
   POST /auth/logout — blacklist token aktif
========================== */

func (ctl *AuthController) Logout(c *fiber.Ctx) error {
	raw := strings.TrimSpace(strings.TrimPrefix(c.Get("Authorization"), "Bearer "))
	if raw == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.CodeUnauthorized, "Token tidak ditemukan")
	}

	// exp dari klaim menentukan kapan baris blacklist boleh dibersihkan.
	expiresAt := time.Now().Add(tokenTTL)
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(configs.JWTSecret), nil
	}); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			expiresAt = time.Unix(int64(exp), 0)
		}
	}

	row := model.TokenBlacklist{BlacklistToken: raw, BlacklistExpiresAt: expiresAt}
	if err := ctl.DB.WithContext(c.UserContext()).Create(&row).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}
	return helper.JsonOK(c, "Logout berhasil", nil)
}

/* ==========================
   GET /auth/me
========================== */

func (ctl *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var user model.UserModel
	if err := ctl.DB.WithContext(c.UserContext()).
		First(&user, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "User tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}
	return helper.JsonOK(c, "OK", dto.ToUserResponse(&user))
}
