package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	JWTSecret        string
	JWTRefreshSecret string

	// Object storage (Aliyun OSS)
	OSSEndpoint  string
	OSSAccessKey string
	OSSSecretKey string
	OSSBucket    string

	// Batas upload dokumen tahapan (MB) + TTL signed URL (detik)
	FileMaxUploadMB int
	SignedURLTTL    int
	SignedURLMaxTTL int
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	JWTRefreshSecret = GetEnv("JWT_REFRESH_SECRET")

	OSSEndpoint = GetEnv("ALI_OSS_ENDPOINT")
	OSSAccessKey = GetEnv("ALI_OSS_ACCESS_KEY")
	OSSSecretKey = GetEnv("ALI_OSS_SECRET_KEY")
	OSSBucket = GetEnv("ALI_OSS_BUCKET", "file_storage")

	FileMaxUploadMB = GetEnvInt("FILE_MAX_UPLOAD_MB", 15)
	SignedURLTTL = GetEnvInt("SIGNED_URL_TTL", 300)
	SignedURLMaxTTL = GetEnvInt("SIGNED_URL_MAX_TTL", 3600)

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	} else {
		log.Println("✅ JWT_SECRET berhasil dimuat.")
	}
	if OSSEndpoint == "" {
		log.Println("⚠️ ALI_OSS_ENDPOINT belum diset, fitur file berkas tidak aktif")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	if v, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
