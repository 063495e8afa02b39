// file: internals/route/index.go
package routes

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	databases "kplt_backend/internals/databases"
	kpltRoute "kplt_backend/internals/features/kplt/route"
	progressRoute "kplt_backend/internals/features/progress/route"
	ulokRoute "kplt_backend/internals/features/ulok/route"
	usersRoute "kplt_backend/internals/features/users/route"
	helperOSS "kplt_backend/internals/helpers/oss"
	authMiddleware "kplt_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, files *helperOSS.AttachmentService) {
	startTime = time.Now()

	baseRoutes(app, db)

	// PUBLIC → tanpa token (login)
	public := app.Group("/api")

	// PROTECTED → semua endpoint domain lewat verifikasi JWT + blacklist
	log.Println("[INFO] Setting up protected /api group...")
	protected := app.Group("/api", authMiddleware.AuthMiddleware(db))

	usersRoute.AuthRoutes(public, protected, db)
	kpltRoute.KpltRoutes(protected, db)
	progressRoute.ProgressRoutes(protected, db, files)
	ulokRoute.UlokRoutes(protected, db, files)
}

func baseRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("KPLT backend connected successfully 🚀")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := databases.DB.DB()
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		uptime := time.Since(startTime).Seconds()

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(uptime),
			"environment":    os.Getenv("RAILWAY_ENVIRONMENT"),
		})
	})
}
