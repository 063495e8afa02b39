package helper

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

/* ===============================
   Envelope JSON seragam
   success: { code, status, message, data }
   error  : { code, status, error_code, message, errors? }
=================================*/

// ✅ Success Response tanpa custom code (default 200)
func JsonOK(c *fiber.Ctx, message string, data interface{}) error {
	return jsonSuccess(c, fiber.StatusOK, message, data)
}

func JsonCreated(c *fiber.Ctx, message string, data interface{}) error {
	return jsonSuccess(c, fiber.StatusCreated, message, data)
}

func JsonUpdated(c *fiber.Ctx, message string, data interface{}) error {
	return jsonSuccess(c, fiber.StatusOK, message, data)
}

func JsonDeleted(c *fiber.Ctx, message string, data interface{}) error {
	return jsonSuccess(c, fiber.StatusOK, message, data)
}

func jsonSuccess(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

/* ===============================
   Error responses
   errorCode = kode stabil untuk klien (mis. DUPLICATE_RECORD),
   message   = teks untuk manusia.
=================================*/

func JsonError(c *fiber.Ctx, code int, errorCode, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"code":       code,
		"status":     "error",
		"error_code": errorCode,
		"message":    message,
	})
}

// JsonErrorWithDetails: error dengan payload tambahan (mis. missing_fields).
func JsonErrorWithDetails(c *fiber.Ctx, code int, errorCode, message string, details interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"code":       code,
		"status":     "error",
		"error_code": errorCode,
		"message":    message,
		"errors":     details,
	})
}

// Kode error stabil (lihat taksonomi di dokumentasi API).
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION"
	CodeDuplicateRecord    = "DUPLICATE_RECORD"
	CodePrerequisiteNotMet = "PREREQUISITE_NOT_MET"
	CodeAlreadyFinalized   = "ALREADY_FINALIZED"
	CodeIncompleteData     = "INCOMPLETE_DATA"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// ✅ Khusus error validasi (validator.v10)
func ValidationError(c *fiber.Ctx, err error) error {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return JsonError(c, fiber.StatusUnprocessableEntity, CodeValidation, "Input tidak valid")
	}

	errorsMap := make(map[string]string)
	for _, fieldErr := range ve {
		errorsMap[fieldErr.Field()] = fieldErr.Tag()
	}
	return JsonErrorWithDetails(c, fiber.StatusUnprocessableEntity, CodeValidation, "Validasi gagal", errorsMap)
}

// FromFiberError mengubah *fiber.Error menjadi response JSON konsisten.
// Jika bukan *fiber.Error, fallback ke 500 dengan pesan asli.
func FromFiberError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return JsonError(c, fe.Code, codeForStatus(fe.Code), fe.Message)
	}
	return JsonError(c, fiber.StatusInternalServerError, CodeInternalError, err.Error())
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusConflict:
		return CodeDuplicateRecord
	case fiber.StatusUnprocessableEntity:
		return CodeValidation
	default:
		return CodeInternalError
	}
}
