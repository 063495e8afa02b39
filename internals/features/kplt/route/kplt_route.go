package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	kpltController "kplt_backend/internals/features/kplt/controller"
)

func KpltRoutes(router fiber.Router, db *gorm.DB) {
	ctl := kpltController.NewKpltController(db)

	kplt := router.Group("/kplt")
	kplt.Get("/", ctl.List)
	kplt.Get("/:id", ctl.GetByID)
	kplt.Patch("/:id", ctl.Update)
	kplt.Post("/:id/signoff", ctl.SignOff)
	kplt.Post("/:id/decision", ctl.Decision)
}
