package constants

import (
	"net/http"
	"strings"
)

/* ==========================
   Deteksi jenis file upload
   Berdasar signature (512 byte pertama), BUKAN ekstensi/MIME klien.
========================== */

type FileKind int

const (
	FileKindUnknown FileKind = iota
	FileKindPDF
	FileKindImage
)

// DetectFileKind sniff tipe konten dari head bytes.
// Dokumen tahapan hanya menerima PDF atau gambar (jpeg/png/webp).
func DetectFileKind(head []byte) FileKind {
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	switch {
	case strings.HasPrefix(ct, "application/pdf"):
		return FileKindPDF
	case strings.HasPrefix(ct, "image/jpeg"),
		strings.HasPrefix(ct, "image/png"),
		strings.HasPrefix(ct, "image/webp"):
		return FileKindImage
	}
	// http.DetectContentType kadang memberi application/octet-stream untuk PDF
	// dengan header aneh; cek magic %PDF- langsung.
	if len(head) >= 5 && string(head[:5]) == "%PDF-" {
		return FileKindPDF
	}
	return FileKindUnknown
}

// IsAllowedStageDocument: dokumen tahapan = PDF atau gambar.
func IsAllowedStageDocument(head []byte) bool {
	k := DetectFileKind(head)
	return k == FileKindPDF || k == FileKindImage
}
