// file: internals/features/progress/controller/files_controller.go
package controller

import (
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kplt_backend/internals/constants"
	"kplt_backend/internals/features/progress/service"
	"kplt_backend/internals/features/progress/stage"
	helper "kplt_backend/internals/helpers"
	helperAuth "kplt_backend/internals/helpers/auth"
	helperOSS "kplt_backend/internals/helpers/oss"
)

/* =======================================================================
   FilesController — galeri & download berkas record tahapan.

   GET /files/:stage_module/:record_id
     ?path=   → key literal (harus di bawah prefix record) → 302 signed URL
     ?name=   → nama object di folder record → 302 signed URL
     ?field=  → berkas terbaru untuk satu field file → 302 signed URL
     (tanpa selector) → listing JSON
======================================================================= */

type FilesController struct {
	Scopes service.ScopeResolver
	Files  *helperOSS.AttachmentService
}

func NewFilesController(sc service.ScopeResolver, files *helperOSS.AttachmentService) *FilesController {
	return &FilesController{Scopes: sc, Files: files}
}

func (ctl *FilesController) Get(c *fiber.Ctx) error {
	claims, err := helperAuth.GetActorClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !constants.CanAct(claims.Role, constants.ActionRead, constants.ResourceStageRecord) {
		return helper.JsonError(c, fiber.StatusForbidden, helper.CodeForbidden,
			constants.RoleError("berkas tahapan"))
	}

	desc := stage.ByModule(c.Params("stage_module"))
	if desc == nil {
		return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "Modul tahapan tidak dikenal")
	}
	recordID, err := uuid.Parse(strings.TrimSpace(c.Params("record_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "record_id tidak valid")
	}

	sc, err := ctl.Scopes.ByRecord(c.UserContext(), desc, recordID)
	if err != nil {
		if service.IsNotFound(err) {
			return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "Record tidak ditemukan")
		}
		log.Printf("[STORE] resolve scope by record gagal record=%s err=%v", recordID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, "Gagal memeriksa scope")
	}
	if err := service.AuthorizeBranch(sc, claims.Role, claims.BranchID); err != nil {
		return helper.FromFiberError(c, err)
	}

	folder := helperOSS.AttachmentFolder(sc.UlokID, desc.Module)
	expiry := expiryFromQuery(c)
	downloadName := strings.TrimSpace(c.Query("download"))

	// ---- selector: path literal ----
	if p := strings.TrimSpace(c.Query("path")); p != "" {
		if !strings.HasPrefix(p, folder) {
			return helper.JsonError(c, fiber.StatusForbidden, helper.CodeForbidden,
				"Path di luar folder record ini")
		}
		return ctl.redirectSigned(c, p, expiry, downloadName)
	}

	// ---- selector: nama object ----
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		if strings.Contains(name, "/") {
			return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "name tidak boleh berisi path")
		}
		return ctl.redirectSigned(c, folder+name, expiry, downloadName)
	}

	// ---- selector: field file ----
	if field := strings.TrimSpace(c.Query("field")); field != "" {
		if !desc.IsFileField(field) {
			return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation,
				"Field berkas tidak dikenal untuk modul ini")
		}
		entries, err := ctl.Files.ListByPrefix(c.UserContext(), folder, field)
		if err != nil {
			log.Printf("[OSS] list gagal folder=%s err=%v", folder, err)
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, "Gagal membaca storage")
		}
		if len(entries) == 0 {
			return helper.JsonError(c, fiber.StatusNotFound, helper.CodeNotFound, "Berkas tidak ditemukan")
		}
		// ambil yang terbaru (nama diawali unix_ms)
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].LastModified.After(entries[j].LastModified)
		})
		return ctl.redirectSigned(c, folder+entries[0].Name, expiry, downloadName)
	}

	// ---- tanpa selector: listing JSON ----
	entries, err := ctl.Files.ListByPrefix(c.UserContext(), folder, "")
	if err != nil {
		log.Printf("[OSS] list gagal folder=%s err=%v", folder, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, "Gagal membaca storage")
	}
	return helper.JsonOK(c, "OK", fiber.Map{
		"record_id": recordID,
		"module":    desc.Module,
		"files":     entries,
	})
}

func (ctl *FilesController) redirectSigned(c *fiber.Ctx, key string, expiry time.Duration, downloadName string) error {
	url, err := ctl.Files.SignedURL(c.UserContext(), key, expiry, downloadName)
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return helper.FromFiberError(c, fe)
		}
		log.Printf("[OSS] sign url gagal key=%s err=%v", key, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, "Gagal membuat signed URL")
	}
	return c.Redirect(url, fiber.StatusFound)
}

// expiryFromQuery: ?expires= dalam detik; clamp dilakukan AttachmentService.
func expiryFromQuery(c *fiber.Ctx) time.Duration {
	if v := strings.TrimSpace(c.Query("expires")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 0
}
