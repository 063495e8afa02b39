// file: internals/features/progress/controller/stage_controller.go
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kplt_backend/internals/constants"
	"kplt_backend/internals/features/progress/service"
	"kplt_backend/internals/features/progress/stage"
	"kplt_backend/internals/features/progress/store"
	helper "kplt_backend/internals/helpers"
	helperAuth "kplt_backend/internals/helpers/auth"
	helperOSS "kplt_backend/internals/helpers/oss"
)

/* =======================================================================
   StageController — engine generik semua modul tahapan.

   Satu code path untuk notaris/renovasi/mou/grand_opening/izin_tetangga,
   dikonfigurasi lewat stage.Descriptor. Urutan per request:
     authenticate → canAct → resolve scope → parse payload (JSON/multipart)
     → upload lampiran → stored function → rekonsiliasi lampiran → respond.
   Side effect baru terlihat SETELAH stored function sukses.
======================================================================= */

type StageController struct {
	Store     store.StageStore
	Scopes    service.ScopeResolver
	Files     *helperOSS.AttachmentService
	Validator *validator.Validate
}

func NewStageController(st store.StageStore, sc service.ScopeResolver, files *helperOSS.AttachmentService) *StageController {
	return &StageController{
		Store:     st,
		Scopes:    sc,
		Files:     files,
		Validator: validator.New(),
	}
}

/* ==========================
   Pra-pipeline: klaim + capability + scope
========================== */

type requestScope struct {
	Claims *helperAuth.ActorClaims
	Desc   *stage.Descriptor
	Scope  *service.Scope
}

func (ctl *StageController) resolve(c *fiber.Ctx, act constants.Action) (*requestScope, error) {
	claims, err := helperAuth.GetActorClaims(c)
	if err != nil {
		return nil, err
	}
	if !constants.CanAct(claims.Role, act, constants.ResourceStageRecord) {
		return nil, fiber.NewError(fiber.StatusForbidden, constants.RoleError("tahapan KPLT"))
	}

	desc := stage.ByModule(c.Params("stage_module"))
	if desc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Modul tahapan tidak dikenal")
	}

	progressID, err := uuid.Parse(strings.TrimSpace(c.Params("progress_id")))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "progress_id tidak valid")
	}

	sc, err := ctl.Scopes.ByProgress(c.UserContext(), progressID)
	if err != nil {
		if service.IsNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Progress tidak ditemukan")
		}
		log.Printf("[STORE] resolve scope gagal progress=%s err=%v", progressID, err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa scope")
	}
	if err := service.AuthorizeBranch(sc, claims.Role, claims.BranchID); err != nil {
		return nil, err
	}

	return &requestScope{Claims: claims, Desc: desc, Scope: sc}, nil
}

func (ctl *StageController) callParams(rs *requestScope, payload map[string]any) store.CallParams {
	return store.CallParams{
		Stage:      rs.Desc,
		ActorID:    rs.Claims.UserID,
		BranchID:   rs.Claims.BranchID,
		ProgressID: rs.Scope.ProgressID,
		Payload:    payload,
	}
}

/* ==========================
   GET /progress/:progress_id/:stage_module
========================== */

func (ctl *StageController) Get(c *fiber.Ctx) error {
	rs, err := ctl.resolve(c, constants.ActionRead)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	row, err := ctl.Store.Get(c.UserContext(), ctl.callParams(rs, nil))
	if err != nil {
		return ctl.respondStoreError(c, err)
	}
	return helper.JsonOK(c, "OK", rowResponse(row))
}

/* ==========================
   POST /progress/:progress_id/:stage_module
========================== */

func (ctl *StageController) Create(c *fiber.Ctx) error {
	rs, err := ctl.resolve(c, constants.ActionCreate)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	payload, uploaded, err := ctl.parsePayload(c, rs)
	if err != nil {
		return ctl.respondRequestError(c, err)
	}

	row, err := ctl.Store.Create(c.UserContext(), ctl.callParams(rs, payload))
	if err != nil {
		ctl.rollbackUploads(c.UserContext(), uploaded)
		return ctl.respondStoreError(c, err)
	}
	return helper.JsonCreated(c, "Record tahapan dibuat", rowResponse(row))
}

/* ==========================
   PATCH /progress/:progress_id/:stage_module
========================== */

func (ctl *StageController) Update(c *fiber.Ctx) error {
	rs, err := ctl.resolve(c, constants.ActionUpdate)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	// Pre-fetch untuk tahu key lampiran lama yang harus dibersihkan.
	existing, err := ctl.Store.Get(c.UserContext(), ctl.callParams(rs, nil))
	if err != nil {
		return ctl.respondStoreError(c, err)
	}

	payload, uploaded, err := ctl.parsePayload(c, rs)
	if err != nil {
		return ctl.respondRequestError(c, err)
	}

	row, err := ctl.Store.Update(c.UserContext(), ctl.callParams(rs, payload))
	if err != nil {
		ctl.rollbackUploads(c.UserContext(), uploaded)
		return ctl.respondStoreError(c, err)
	}

	// DB sudah commit → key baru otoritatif, bersihkan key lama (best-effort).
	for field, newKey := range uploaded {
		ctl.Files.Replace(c.UserContext(), existing.FileKey(field), newKey)
	}
	return helper.JsonUpdated(c, "Record tahapan diperbarui", rowResponse(row))
}

/* ==========================
   DELETE /progress/:progress_id/:stage_module
========================== */

func (ctl *StageController) Delete(c *fiber.Ctx) error {
	rs, err := ctl.resolve(c, constants.ActionDelete)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	existing, err := ctl.Store.Get(c.UserContext(), ctl.callParams(rs, nil))
	if err != nil {
		return ctl.respondStoreError(c, err)
	}

	if err := ctl.Store.Delete(c.UserContext(), ctl.callParams(rs, nil)); err != nil {
		return ctl.respondStoreError(c, err)
	}

	// Bersihkan lampiran record yang dihapus (best-effort, DB sudah commit).
	for _, field := range rs.Desc.FileFields {
		if key := existing.FileKey(field); key != "" {
			ctl.Files.Replace(c.UserContext(), key, "")
		}
	}
	return helper.JsonDeleted(c, "Record tahapan dihapus", fiber.Map{
		"progress_id": rs.Scope.ProgressID,
		"module":      rs.Desc.Module,
	})
}

/* ==========================
   PATCH /progress/:progress_id/:stage_module/approval
========================== */

type approvalRequest struct {
	FinalStatus string `json:"final_status" validate:"required"`
}

func (ctl *StageController) Approve(c *fiber.Ctx) error {
	rs, err := ctl.resolve(c, constants.ActionUpdate)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req approvalRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	st, ok := rs.Desc.Labels.ToStatus(req.FinalStatus)
	if !ok || st == stage.StatusDraft {
		return helper.JsonErrorWithDetails(c, fiber.StatusUnprocessableEntity, helper.CodeValidation,
			"final_status tidak valid", fiber.Map{
				"final_status": fmt.Sprintf("harus %q atau %q", stage.StatusDone, stage.StatusCancelled),
			})
	}

	payload := map[string]any{"final_status": rs.Desc.Labels.FromStatus(st)}
	row, err := ctl.Store.Approve(c.UserContext(), ctl.callParams(rs, payload))
	if err != nil {
		return ctl.respondStoreError(c, err)
	}
	return helper.JsonUpdated(c, "Record tahapan difinalisasi", rowResponse(row))
}

/* ==========================
   Parsing payload (JSON / multipart)
========================== */

// parsePayload membangun payload terbatas ke field descriptor.
// Multipart: lampiran di-upload DI SINI (sebelum tulisan DB); map hasil
// kedua berisi field→key yang baru di-upload, untuk rollback/replace.
func (ctl *StageController) parsePayload(c *fiber.Ctx, rs *requestScope) (map[string]any, map[string]string, error) {
	ct := strings.ToLower(strings.TrimSpace(c.Get("Content-Type")))
	if strings.HasPrefix(ct, "multipart/form-data") {
		return ctl.parseMultipart(c, rs)
	}
	payload, err := ctl.parseJSON(c, rs.Desc)
	return payload, map[string]string{}, err
}

func (ctl *StageController) parseJSON(c *fiber.Ctx, desc *stage.Descriptor) (map[string]any, error) {
	raw := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&raw); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
		}
	}

	issues := map[string]string{}
	payload := map[string]any{}
	for k, v := range raw {
		switch {
		case desc.IsField(k):
			payload[k] = v
		case desc.IsFileField(k):
			issues[k] = "field berkas hanya bisa lewat multipart/form-data"
		case k == "final_status":
			issues[k] = "finalisasi hanya lewat endpoint approval"
		default:
			issues[k] = "field tidak dikenal untuk modul ini"
		}
	}
	if len(issues) > 0 {
		return nil, validationIssues(issues)
	}
	return payload, nil
}

func (ctl *StageController) parseMultipart(c *fiber.Ctx, rs *requestScope) (map[string]any, map[string]string, error) {
	desc := rs.Desc
	payload := map[string]any{}
	for _, f := range desc.Fields {
		if v := strings.TrimSpace(c.FormValue(f)); v != "" {
			payload[f] = v
		}
	}
	if v := strings.TrimSpace(c.FormValue("final_status")); v != "" {
		return nil, nil, validationIssues(map[string]string{
			"final_status": "finalisasi hanya lewat endpoint approval",
		})
	}

	uploaded := map[string]string{}
	for _, field := range desc.FileFields {
		fh, err := c.FormFile(field)
		if err != nil || fh == nil {
			continue
		}
		key := helperOSS.BuildAttachmentKey(rs.Scope.UlokID, desc.Module, field, fh.Filename)
		if err := ctl.uploadOne(c, key, fh); err != nil {
			// satu upload gagal → batalkan yang sudah naik, jangan sentuh DB
			ctl.rollbackUploads(c.UserContext(), uploaded)
			return nil, nil, err
		}
		uploaded[field] = key
		payload[field] = key
	}
	return payload, uploaded, nil
}

func (ctl *StageController) uploadOne(c *fiber.Ctx, key string, fh *multipart.FileHeader) error {
	if err := ctl.Files.UploadDocument(c.UserContext(), key, fh); err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return fe
		}
		log.Printf("[OSS] upload gagal key=%s err=%v", key, err)
		return fiber.NewError(fiber.StatusBadGateway, "Upload berkas gagal")
	}
	return nil
}

func (ctl *StageController) rollbackUploads(ctx context.Context, uploaded map[string]string) {
	for _, key := range uploaded {
		ctl.Files.Rollback(ctx, key)
	}
}

/* ==========================
   Responses
========================== */

func rowResponse(row *store.StageRow) fiber.Map {
	out := fiber.Map{}
	for k, v := range row.Fields {
		out[k] = v
	}
	out["id"] = row.ID
	out["progress_id"] = row.ProgressID
	out["final_status"] = string(row.FinalStatus)
	return out
}

// validationIssues membungkus daftar masalah field jadi satu error response.
type fieldIssuesError struct {
	issues map[string]string
}

func (e *fieldIssuesError) Error() string { return "validasi payload gagal" }

func validationIssues(issues map[string]string) error {
	return &fieldIssuesError{issues: issues}
}

// respondRequestError: error pra-store (parse/upload) → response JSON.
func (ctl *StageController) respondRequestError(c *fiber.Ctx, err error) error {
	var fi *fieldIssuesError
	if errors.As(err, &fi) {
		return helper.JsonErrorWithDetails(c, fiber.StatusUnprocessableEntity, helper.CodeValidation,
			"Validasi gagal", fi.issues)
	}
	if fe, ok := err.(*fiber.Error); ok && fe.Code == fiber.StatusBadGateway {
		return helper.JsonError(c, fe.Code, helper.CodeUploadFailed, fe.Message)
	}
	return helper.FromFiberError(c, err)
}

func (ctl *StageController) respondStoreError(c *fiber.Ctx, err error) error {
	var inc *store.IncompleteDataError
	switch {
	case errors.As(err, &inc):
		return helper.JsonErrorWithDetails(c, fiber.StatusUnprocessableEntity, helper.CodeIncompleteData,
			"Data wajib belum lengkap untuk finalisasi", fiber.Map{"missing_fields": inc.Missing})
	case errors.Is(err, store.ErrDuplicateRecord):
		return helper.JsonError(c, fiber.StatusConflict, helper.CodeDuplicateRecord,
			"Record tahapan sudah ada untuk progress ini")
	case errors.Is(err, store.ErrPrerequisiteNotMet):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, helper.CodePrerequisiteNotMet,
			"Tahapan prasyarat belum selesai")
	case errors.Is(err, store.ErrAlreadyFinalized):
		return helper.JsonError(c, fiber.StatusConflict, helper.CodeAlreadyFinalized,
			"Record sudah difinalisasi dan tidak bisa diubah")
	case errors.Is(err, store.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "Data tidak ditemukan")
	case errors.Is(err, store.ErrForbidden):
		return helper.JsonError(c, fiber.StatusForbidden, helper.CodeForbidden, "Akses ditolak")
	default:
		log.Printf("[STORE] error tak terduga: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError,
			"Terjadi kesalahan pada server")
	}
}
