// file: internals/features/progress/controller/progress_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"kplt_backend/internals/constants"
	"kplt_backend/internals/features/progress/model"
	"kplt_backend/internals/features/progress/service"
	helper "kplt_backend/internals/helpers"
	helperAuth "kplt_backend/internals/helpers/auth"
)

// ProgressController: ringkasan satu thread workflow (tahapan berjalan).
type ProgressController struct {
	DB     *gorm.DB
	Scopes service.ScopeResolver
}

func NewProgressController(db *gorm.DB, sc service.ScopeResolver) *ProgressController {
	return &ProgressController{DB: db, Scopes: sc}
}

// GET /progress/:progress_id
func (ctl *ProgressController) Get(c *fiber.Ctx) error {
	claims, err := helperAuth.GetActorClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !constants.CanAct(claims.Role, constants.ActionRead, constants.ResourceStageRecord) {
		return helper.JsonError(c, fiber.StatusForbidden, helper.CodeForbidden,
			constants.RoleError("tahapan KPLT"))
	}

	progressID, err := uuid.Parse(strings.TrimSpace(c.Params("progress_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "progress_id tidak valid")
	}

	sc, err := ctl.Scopes.ByProgress(c.UserContext(), progressID)
	if err != nil {
		if service.IsNotFound(err) {
			return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "Progress tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, "Gagal memeriksa scope")
	}
	if err := service.AuthorizeBranch(sc, claims.Role, claims.BranchID); err != nil {
		return helper.FromFiberError(c, err)
	}

	var row model.ProgressModel
	if err := ctl.DB.WithContext(c.UserContext()).
		First(&row, "progress_id = ?", progressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "Progress tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}

	return helper.JsonOK(c, "OK", fiber.Map{
		"progress": row,
		"kplt_id":  sc.KpltID,
		"ulok_id":  sc.UlokID,
	})
}
