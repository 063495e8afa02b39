// file: internals/features/kplt/controller/kplt_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"kplt_backend/internals/constants"
	"kplt_backend/internals/features/kplt/dto"
	"kplt_backend/internals/features/kplt/model"
	"kplt_backend/internals/features/kplt/service"
	helper "kplt_backend/internals/helpers"
	helperAuth "kplt_backend/internals/helpers/auth"
)

type KpltController struct {
	DB        *gorm.DB
	Ledger    *service.LedgerService
	Validator *validator.Validate
}

func NewKpltController(db *gorm.DB) *KpltController {
	return &KpltController{
		DB:        db,
		Ledger:    service.NewLedgerService(service.NewGormLedgerRepo(db)),
		Validator: validator.New(),
	}
}

/* ==========================
   Scope helpers
========================== */

type kpltWithBranch struct {
	model.KpltModel
	BranchID uuid.UUID `gorm:"column:branch_id"`
}

// fetchScoped mengambil KPLT + cabang pemiliknya (lewat Ulok) sekali jalan.
func (ctl *KpltController) fetchScoped(c *fiber.Ctx, kpltID uuid.UUID) (*kpltWithBranch, error) {
	var row kpltWithBranch
	err := ctl.DB.WithContext(c.UserContext()).Raw(`
		SELECT k.*, u.branch_id
		FROM kplt k
		JOIN ulok u ON u.ulok_id = k.ulok_id
		WHERE k.kplt_id = ?
	`, kpltID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.KpltID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (ctl *KpltController) authorize(c *fiber.Ctx, act constants.Action) (*helperAuth.ActorClaims, error) {
	claims, err := helperAuth.GetActorClaims(c)
	if err != nil {
		return nil, err
	}
	if !constants.CanAct(claims.Role, act, constants.ResourceKplt) {
		return nil, fiber.NewError(fiber.StatusForbidden, constants.RoleError("KPLT"))
	}
	return claims, nil
}

func (ctl *KpltController) branchGuard(claims *helperAuth.ActorClaims, row *kpltWithBranch) error {
	if constants.IsBranchExempt(claims.Role) {
		return nil
	}
	if row.BranchID != claims.BranchID {
		return fiber.NewError(fiber.StatusForbidden, constants.ErrBranchForbidden)
	}
	return nil
}

/* ==========================
   GET /kplt/:id & GET /kplt
========================== */

func (ctl *KpltController) GetByID(c *fiber.Ctx) error {
	claims, err := ctl.authorize(c, constants.ActionRead)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	kpltID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "kplt_id tidak valid")
	}

	row, err := ctl.fetchScoped(c, kpltID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "KPLT tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}
	if err := ctl.branchGuard(claims, row); err != nil {
		return helper.FromFiberError(c, err)
	}

	var signOffs []model.KpltSignOffModel
	if err := ctl.DB.WithContext(c.UserContext()).
		Where("kplt_id = ?", kpltID).
		Order("created_at ASC").
		Find(&signOffs).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}
	outSignOffs := make([]dto.SignOffResponse, 0, len(signOffs))
	for i := range signOffs {
		outSignOffs = append(outSignOffs, dto.ToSignOffResponse(&signOffs[i]))
	}

	return helper.JsonOK(c, "OK", fiber.Map{
		"kplt":      dto.ToKpltResponse(&row.KpltModel),
		"sign_offs": outSignOffs,
	})
}

func (ctl *KpltController) List(c *fiber.Ctx) error {
	claims, err := ctl.authorize(c, constants.ActionRead)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	p := helper.ResolvePaging(c, 25, 200)
	db := ctl.DB.WithContext(c.UserContext()).Model(&model.KpltModel{})

	if !constants.IsBranchExempt(claims.Role) {
		db = db.Where(`EXISTS (
			SELECT 1 FROM ulok u
			WHERE u.ulok_id = kplt.ulok_id AND u.branch_id = ?
		)`, claims.BranchID)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		db = db.Where("status = ?", st)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}

	var rows []model.KpltModel
	if err := db.Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}

	out := make([]dto.KpltResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.ToKpltResponse(&rows[i]))
	}
	return helper.JsonList(c, out, helper.BuildPagination(total, p))
}

/* ==========================
   PATCH /kplt/:id — jalur Location Manager
   Hanya field keputusan approval yang boleh ada di payload;
   key lain = error validasi, bukan diabaikan diam-diam.
========================== */

func (ctl *KpltController) Update(c *fiber.Ctx) error {
	claims, err := ctl.authorize(c, constants.ActionUpdate)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if claims.Role != constants.RoleLocationManager {
		return helper.JsonError(c, fiber.StatusForbidden, helper.CodeForbidden,
			"Gunakan endpoint signoff/decision untuk peran Anda")
	}

	kpltID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "kplt_id tidak valid")
	}

	row, err := ctl.fetchScoped(c, kpltID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "KPLT tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}
	if err := ctl.branchGuard(claims, row); err != nil {
		return helper.FromFiberError(c, err)
	}
	if model.KpltStatusTerminal(row.KpltStatus) {
		return helper.JsonError(c, fiber.StatusConflict, helper.CodeAlreadyFinalized,
			"KPLT sudah OK/NOK dan tidak bisa diubah")
	}

	raw := map[string]any{}
	if err := c.BodyParser(&raw); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "Payload tidak valid")
	}
	if len(raw) == 0 {
		return helper.JsonOK(c, "Tidak ada perubahan", dto.ToKpltResponse(&row.KpltModel))
	}

	issues := map[string]string{}
	for k := range raw {
		if !constants.KpltManagerAllowedFields[k] {
			issues[k] = "field ini tidak boleh diubah oleh location manager"
		}
	}
	if len(issues) > 0 {
		return helper.JsonErrorWithDetails(c, fiber.StatusUnprocessableEntity, helper.CodeValidation,
			"Validasi gagal", issues)
	}

	updates := map[string]any{}
	if v, ok := raw["approval_status"].(string); ok {
		updates["status"] = v
	}
	if v, ok := raw["approver_id"].(string); ok {
		id, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonErrorWithDetails(c, fiber.StatusUnprocessableEntity, helper.CodeValidation,
				"Validasi gagal", fiber.Map{"approver_id": "harus uuid"})
		}
		updates["approver_id"] = id
	}
	if v, ok := raw["approved_at"].(string); ok {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return helper.JsonErrorWithDetails(c, fiber.StatusUnprocessableEntity, helper.CodeValidation,
				"Validasi gagal", fiber.Map{"approved_at": "harus RFC3339"})
		}
		updates["approved_at"] = t
	}

	if err := ctl.DB.WithContext(c.UserContext()).
		Model(&model.KpltModel{}).
		Where("kplt_id = ?", kpltID).
		Updates(updates).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}

	updated, err := ctl.fetchScoped(c, kpltID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}
	return helper.JsonUpdated(c, "KPLT diperbarui", dto.ToKpltResponse(&updated.KpltModel))
}

/* ==========================
   POST /kplt/:id/signoff — BM/RM
   POST /kplt/:id/decision — GM
========================== */

func (ctl *KpltController) SignOff(c *fiber.Ctx) error {
	claims, err := ctl.authorize(c, constants.ActionUpdate)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	kpltID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "kplt_id tidak valid")
	}

	// BM masih terikat cabang; RM exempt.
	row, err := ctl.fetchScoped(c, kpltID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "KPLT tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}
	if err := ctl.branchGuard(claims, row); err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.SignOffRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	signOff, err := ctl.Ledger.RecordSignOff(c.UserContext(), kpltID, claims.Role, req.Decision, claims.UserID)
	if err != nil {
		return ctl.respondLedgerError(c, err)
	}
	return helper.JsonCreated(c, "Tanda tangan dicatat", dto.ToSignOffResponse(signOff))
}

func (ctl *KpltController) Decision(c *fiber.Ctx) error {
	claims, err := ctl.authorize(c, constants.ActionUpdate)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	kpltID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "kplt_id tidak valid")
	}

	var req dto.DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := ctl.Ledger.Finalize(c.UserContext(), kpltID, claims.Role, req.Decision, claims.UserID); err != nil {
		return ctl.respondLedgerError(c, err)
	}

	updated, err := ctl.fetchScoped(c, kpltID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}
	return helper.JsonUpdated(c, "Keputusan forum dicatat", dto.ToKpltResponse(&updated.KpltModel))
}

func (ctl *KpltController) respondLedgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrKpltNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "KPLT tidak ditemukan")
	case errors.Is(err, service.ErrDuplicateSignOff):
		return helper.JsonError(c, fiber.StatusConflict, helper.CodeDuplicateRecord,
			"Role ini sudah menandatangani KPLT tersebut")
	case errors.Is(err, service.ErrKpltTerminal):
		return helper.JsonError(c, fiber.StatusConflict, helper.CodeAlreadyFinalized,
			"KPLT sudah OK/NOK dan tidak bisa diubah")
	case errors.Is(err, service.ErrNotWaitingForForum):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, helper.CodePrerequisiteNotMet,
			"KPLT belum berstatus Waiting for Forum")
	case errors.Is(err, service.ErrSignOffsIncomplete):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, helper.CodePrerequisiteNotMet,
			"Tanda tangan BM/RM belum lengkap")
	case errors.Is(err, service.ErrSignOffRole):
		return helper.JsonError(c, fiber.StatusForbidden, helper.CodeForbidden,
			"Role Anda tidak berwenang untuk aksi ini")
	case errors.Is(err, service.ErrInvalidDecision):
		return helper.JsonErrorWithDetails(c, fiber.StatusUnprocessableEntity, helper.CodeValidation,
			"Validasi gagal", fiber.Map{"decision": "harus OK atau NOK"})
	default:
		log.Printf("[LEDGER] error tak terduga: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError,
			"Terjadi kesalahan pada server")
	}
}
