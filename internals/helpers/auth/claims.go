package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kplt_backend/internals/constants"
)

/* ==========================
   Pembaca klaim dari Locals
   (diisi oleh middleware auth setelah verifikasi JWT)
========================== */

// GetUserIDFromToken mengambil user_id (uuid) dari context.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - user_id tidak ditemukan di token")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - user_id tidak valid")
	}
	return id, nil
}

// GetRoleFromToken mengambil position user; role tak dikenal tetap dikembalikan
// sebagai RoleUnknown supaya capability matrix yang memutuskan (deny).
func GetRoleFromToken(c *fiber.Ctx) (constants.Role, error) {
	raw, ok := c.Locals("userRole").(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return constants.RoleUnknown, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - role tidak ditemukan di token")
	}
	return constants.ParseRole(raw), nil
}

// GetBranchIDFromToken mengambil branch_id user.
func GetBranchIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("branch_id").(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - branch_id tidak ditemukan di token")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - branch_id tidak valid")
	}
	return id, nil
}

// ActorClaims: paket klaim yang dipakai hampir semua handler.
type ActorClaims struct {
	UserID   uuid.UUID
	Role     constants.Role
	BranchID uuid.UUID
}

func GetActorClaims(c *fiber.Ctx) (*ActorClaims, error) {
	userID, err := GetUserIDFromToken(c)
	if err != nil {
		return nil, err
	}
	role, err := GetRoleFromToken(c)
	if err != nil {
		return nil, err
	}
	branchID, err := GetBranchIDFromToken(c)
	if err != nil {
		return nil, err
	}
	return &ActorClaims{UserID: userID, Role: role, BranchID: branchID}, nil
}
