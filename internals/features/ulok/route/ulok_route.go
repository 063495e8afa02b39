package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ulokController "kplt_backend/internals/features/ulok/controller"
	helperOSS "kplt_backend/internals/helpers/oss"
	"kplt_backend/internals/middlewares"
)

func UlokRoutes(router fiber.Router, db *gorm.DB, files *helperOSS.AttachmentService) {
	ctl := ulokController.NewUlokFilesController(db, files)

	ulok := router.Group("/ulok/:id")
	ulok.Get("/files", ctl.ListFiles)
	ulok.Post("/photo", middlewares.UploadRateLimiter(), ctl.UploadPhoto)
}
