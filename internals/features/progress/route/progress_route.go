package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	progressController "kplt_backend/internals/features/progress/controller"
	"kplt_backend/internals/features/progress/service"
	"kplt_backend/internals/features/progress/store"
	helperOSS "kplt_backend/internals/helpers/oss"
	"kplt_backend/internals/middlewares"
)

// ProgressRoutes mendaftarkan seluruh endpoint tahapan + berkas.
// Router di sini diasumsikan sudah lewat middleware auth.
func ProgressRoutes(router fiber.Router, db *gorm.DB, files *helperOSS.AttachmentService) {
	scopes := service.NewGormScopeResolver(db)
	stageCtl := progressController.NewStageController(store.NewGormStageStore(db), scopes, files)
	filesCtl := progressController.NewFilesController(scopes, files)
	progCtl := progressController.NewProgressController(db, scopes)

	router.Get("/progress/:progress_id", progCtl.Get)

	// Endpoint yang menerima multipart besar dibatasi rate per IP.
	uploadLimiter := middlewares.UploadRateLimiter()

	prog := router.Group("/progress/:progress_id/:stage_module")
	prog.Get("/", stageCtl.Get)
	prog.Post("/", uploadLimiter, stageCtl.Create)
	prog.Patch("/", uploadLimiter, stageCtl.Update)
	prog.Delete("/", stageCtl.Delete)
	prog.Patch("/approval", stageCtl.Approve)

	router.Get("/files/:stage_module/:record_id", filesCtl.Get)
}
