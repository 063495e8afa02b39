// file: internals/features/ulok/controller/ulok_files_controller.go
package controller

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"kplt_backend/internals/constants"
	progressSvc "kplt_backend/internals/features/progress/service"
	"kplt_backend/internals/features/ulok/model"
	helper "kplt_backend/internals/helpers"
	helperAuth "kplt_backend/internals/helpers/auth"
	helperOSS "kplt_backend/internals/helpers/oss"
)

/* =======================================================================
   Lampiran Ulok — galeri + foto lokasi.

   Location Specialist dibatasi kepemilikan (dokumen milik user lain →
   403), independen dari cek cabang. Regional/General Manager boleh
   lintas cabang untuk read.
======================================================================= */

const ulokFolderModule = "ulok"

type UlokFilesController struct {
	DB    *gorm.DB
	Files *helperOSS.AttachmentService
}

func NewUlokFilesController(db *gorm.DB, files *helperOSS.AttachmentService) *UlokFilesController {
	return &UlokFilesController{DB: db, Files: files}
}

func (ctl *UlokFilesController) fetch(c *fiber.Ctx) (*model.UlokModel, *helperAuth.ActorClaims, error) {
	claims, err := helperAuth.GetActorClaims(c)
	if err != nil {
		return nil, nil, err
	}
	ulokID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "ulok_id tidak valid")
	}

	var row model.UlokModel
	if err := ctl.DB.WithContext(c.UserContext()).
		First(&row, "ulok_id = ?", ulokID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fiber.NewError(fiber.StatusNotFound, "Ulok tidak ditemukan")
		}
		return nil, nil, err
	}

	// Cek cabang dulu, lalu kepemilikan (khusus location specialist).
	sc := &progressSvc.Scope{
		UlokID:   row.UlokID,
		BranchID: row.UlokBranchID,
		OwnerID:  row.UlokCreatedBy,
	}
	if err := progressSvc.AuthorizeBranch(sc, claims.Role, claims.BranchID); err != nil {
		return nil, nil, err
	}
	if err := progressSvc.AuthorizeOwner(sc, claims.Role, claims.UserID); err != nil {
		return nil, nil, err
	}
	return &row, claims, nil
}

/* ==========================
   GET /ulok/:id/files
========================== */

func (ctl *UlokFilesController) ListFiles(c *fiber.Ctx) error {
	row, _, err := ctl.fetch(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	folder := helperOSS.AttachmentFolder(row.UlokID, ulokFolderModule)

	if p := strings.TrimSpace(c.Query("path")); p != "" {
		if !strings.HasPrefix(p, folder) {
			return helper.JsonError(c, fiber.StatusForbidden, helper.CodeForbidden, "Path di luar folder ulok ini")
		}
		url, err := ctl.Files.SignedURL(c.UserContext(), p, 0, strings.TrimSpace(c.Query("download")))
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		return c.Redirect(url, fiber.StatusFound)
	}

	field := strings.TrimSpace(c.Query("field"))
	entries, err := ctl.Files.ListByPrefix(c.UserContext(), folder, field)
	if err != nil {
		log.Printf("[OSS] list gagal folder=%s err=%v", folder, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, "Gagal membaca storage")
	}
	return helper.JsonOK(c, "OK", fiber.Map{
		"ulok_id": row.UlokID,
		"files":   entries,
	})
}

/* ==========================
   POST /ulok/:id/photo
   Foto lokasi di-recompress ke WebP sebelum upload.
========================== */

func (ctl *UlokFilesController) UploadPhoto(c *fiber.Ctx) error {
	row, claims, err := ctl.fetch(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	// Upload foto hanya oleh pengusul (LS pemilik) atau location manager.
	if claims.Role != constants.RoleLocationSpecialist && claims.Role != constants.RoleLocationManager {
		return helper.JsonError(c, fiber.StatusForbidden, helper.CodeForbidden,
			constants.RoleError("foto lokasi"))
	}

	fh, err := c.FormFile("photo")
	if err != nil || fh == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "File photo wajib diisi")
	}

	src, err := fh.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "File tidak bisa dibaca")
	}
	defer src.Close()

	webpData, err := helperOSS.ConvertToWebP(src, fh.Filename)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "format tidak didukung") {
			return helper.JsonError(c, fiber.StatusUnsupportedMediaType, helper.CodeValidation,
				"Unsupported image format (pakai jpg/png/webp)")
		}
		return helper.JsonError(c, fiber.StatusBadRequest, helper.CodeValidation, "Gagal memproses gambar")
	}

	key := helperOSS.BuildAttachmentKey(row.UlokID, ulokFolderModule, "foto_lokasi", "foto.webp")
	if err := ctl.Files.Store.Put(c.UserContext(), key, bytes.NewReader(webpData), "image/webp"); err != nil {
		log.Printf("[OSS] upload foto gagal key=%s err=%v", key, err)
		return helper.JsonError(c, fiber.StatusBadGateway, helper.CodeUploadFailed, "Upload foto gagal")
	}

	// Upload sukses → baru tulis DB; gagal → rollback object barusan.
	oldKey := ""
	if row.UlokFotoLokasi != nil {
		oldKey = *row.UlokFotoLokasi
	}
	if err := ctl.DB.WithContext(c.UserContext()).
		Model(&model.UlokModel{}).
		Where("ulok_id = ? AND branch_id = ?", row.UlokID, row.UlokBranchID).
		Update("foto_lokasi", key).Error; err != nil {
		ctl.Files.Rollback(c.UserContext(), key)
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.CodeInternalError, err.Error())
	}
	ctl.Files.Replace(c.UserContext(), oldKey, key)

	url, signErr := ctl.Files.SignedURL(c.UserContext(), key, 5*time.Minute, "")
	if signErr != nil {
		url = ""
	}
	return helper.JsonUpdated(c, "Foto lokasi diperbarui", fiber.Map{
		"ulok_id":     row.UlokID,
		"foto_lokasi": key,
		"href":        url,
	})
}
