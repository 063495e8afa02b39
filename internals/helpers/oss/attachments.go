package helper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kplt_backend/internals/configs"
	"kplt_backend/internals/constants"
)

/* =======================================================================
   AttachmentService — lifecycle berkas tahapan

   Urutan yang DIJAMIN:
     upload SELALU mendahului tulisan DB;
     rollback/cleanup SELALU sesudahnya.
   Kegagalan cleanup hanya dicatat ke log — key baru yang sudah
   ter-commit di DB adalah sumber kebenaran.
======================================================================= */

type AttachmentService struct {
	Store      ObjectStore
	MaxBytes   int64
	DefaultTTL time.Duration
	MaxTTL     time.Duration
}

func NewAttachmentService(store ObjectStore) *AttachmentService {
	return &AttachmentService{
		Store:      store,
		MaxBytes:   int64(configs.FileMaxUploadMB) * 1024 * 1024,
		DefaultTTL: time.Duration(configs.SignedURLTTL) * time.Second,
		MaxTTL:     time.Duration(configs.SignedURLMaxTTL) * time.Second,
	}
}

/* ==========================
   Key builder
   Layout: {ulok_id}/{module}/{unix_ms}_{field_slug}{ext}
========================== */

func BuildAttachmentKey(ulokID uuid.UUID, module, field, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	ts := time.Now().UnixMilli()
	return fmt.Sprintf("%s/%s/%d_%s%s", ulokID.String(), safePart(module), ts, slugify(field), ext)
}

// AttachmentFolder: prefix folder satu modul tahapan.
func AttachmentFolder(ulokID uuid.UUID, module string) string {
	return fmt.Sprintf("%s/%s/", ulokID.String(), safePart(module))
}

// fieldFromName: nama object tahapan berpola "<unix_ms>_<field>.<ext>".
var storedNameRe = regexp.MustCompile(`^\d+_(.+)\.[^.]+$`)

func FieldFromObjectName(name string) string {
	m := storedNameRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

/* ==========================
   Upload / rollback / replace
========================== */

// UploadDocument membaca file multipart, sniff isinya (harus PDF/gambar),
// lalu upload ke key. Overwrite ditolak di level store.
func (a *AttachmentService) UploadDocument(ctx context.Context, key string, fh *multipart.FileHeader) error {
	if fh == nil {
		return fiber.NewError(fiber.StatusBadRequest, "File tidak ditemukan")
	}
	if a.MaxBytes > 0 && fh.Size > a.MaxBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("Ukuran file maksimal %d MB", a.MaxBytes/(1024*1024)))
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	all, err := io.ReadAll(io.LimitReader(src, a.MaxBytes+1))
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if a.MaxBytes > 0 && int64(len(all)) > a.MaxBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("Ukuran file maksimal %d MB", a.MaxBytes/(1024*1024)))
	}
	if len(all) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "File kosong")
	}

	if !constants.IsAllowedStageDocument(all) {
		return fiber.NewError(fiber.StatusUnsupportedMediaType, "Dokumen harus PDF atau gambar (jpg/png/webp)")
	}
	ct := "application/pdf"
	if constants.DetectFileKind(all) == constants.FileKindImage {
		ct = sniffImageContentType(all)
	}

	return a.Store.Put(ctx, key, bytes.NewReader(all), ct)
}

// Rollback menghapus object yang barusan di-upload karena tulisan DB gagal.
// Error di sini TIDAK dipropagasi supaya tidak menutupi error DB aslinya.
func (a *AttachmentService) Rollback(ctx context.Context, key string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	if err := a.Store.Delete(ctx, key); err != nil {
		log.Printf("[OSS] warn: rollback upload gagal key=%s err=%v", key, err)
	}
}

// Replace membersihkan key lama SETELAH tulisan DB commit.
// Dihapus hanya bila beda dengan key baru; kegagalan hanya dicatat.
func (a *AttachmentService) Replace(ctx context.Context, oldKey, newKey string) {
	oldKey = strings.TrimSpace(oldKey)
	if oldKey == "" || oldKey == newKey {
		return
	}
	if err := a.Store.Delete(ctx, oldKey); err != nil {
		log.Printf("[OSS] warn: hapus key lama gagal key=%s err=%v", oldKey, err)
	}
}

/* ==========================
   Signed URL & listing
========================== */

// SignedURL membuat URL sementara. Expiry di-clamp ke (0, MaxTTL];
// 0/negatif → DefaultTTL. Object tidak ada → 404.
func (a *AttachmentService) SignedURL(ctx context.Context, key string, expiry time.Duration, downloadName string) (string, error) {
	if expiry <= 0 {
		expiry = a.DefaultTTL
	}
	if expiry > a.MaxTTL {
		expiry = a.MaxTTL
	}
	ok, err := a.Store.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("cek object: %w", err)
	}
	if !ok {
		return "", fiber.NewError(fiber.StatusNotFound, "Berkas tidak ditemukan di storage")
	}
	return a.Store.SignURL(ctx, key, expiry, downloadName)
}

type AttachmentEntry struct {
	Name         string    `json:"name"`
	Field        string    `json:"field"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	Href         string    `json:"href"`
}

// ListByPrefix mengembalikan galeri berkas satu folder. field opsional:
// bila diisi, hanya object yang nama tersimpannya cocok pola
// "<unix_ms>_<field>.<ext>" yang dikembalikan.
func (a *AttachmentService) ListByPrefix(ctx context.Context, folder, field string) ([]AttachmentEntry, error) {
	objs, err := a.Store.List(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("list object: %w", err)
	}

	out := make([]AttachmentEntry, 0, len(objs))
	for _, obj := range objs {
		name := path.Base(obj.Key)
		f := FieldFromObjectName(name)
		if field != "" && f != field {
			continue
		}
		href, err := a.Store.SignURL(ctx, obj.Key, a.DefaultTTL, "")
		if err != nil {
			log.Printf("[OSS] warn: sign url gagal key=%s err=%v", obj.Key, err)
			continue
		}
		out = append(out, AttachmentEntry{
			Name:         name,
			Field:        f,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			Href:         href,
		})
	}
	return out, nil
}

/* ==========================
   Util
========================== */

func sniffImageContentType(all []byte) string {
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	// http.DetectContentType sudah dipanggil DetectFileKind; di sini cukup
	// bedakan tiga format yang diterima.
	switch {
	case bytes.HasPrefix(head, []byte("\x89PNG")):
		return "image/png"
	case bytes.HasPrefix(head, []byte("\xff\xd8")):
		return "image/jpeg"
	case len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := strings.NewReplacer(" ", "-", "—", "-", "–", "-")
	s = r.Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return "file"
	}
	return s
}

func safePart(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return "unknown"
	}
	return slugify(s)
}
