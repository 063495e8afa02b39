package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Koneksi ke PostgreSQL (Supabase)...")

	// DSN lengkap + statement_timeout, selaras dengan timeout HTTP di main.go.
	// Catatan: kalau pakai PgBouncer ganti port ke 6543 dan biarkan PreferSimpleProtocol=true
	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=kplt_backend&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Warn),
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err != nil {
		log.Fatalf("❌ Gagal koneksi ke PostgreSQL:\n%v", err)
	}

	DB = db
	log.Println("✅ Berhasil konek ke PostgreSQL!")
}

// TunePool menyetel pool koneksi (dipanggil sekali setelah ConnectDB).
func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Println("⚠️ Gagal mengambil *sql.DB untuk tuning pool:", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
}

// WarmUpQueries memanaskan koneksi supaya request pertama tidak lambat (anti cold-start).
func WarmUpQueries() {
	var one int
	if err := DB.Raw("SELECT 1").Scan(&one).Error; err != nil {
		log.Println("⚠️ Warm-up query gagal:", err)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
