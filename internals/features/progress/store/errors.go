package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

/* =======================================================================
   Taksonomi error store — stored function adalah otoritas terakhir
   untuk invariant tahapan; error-nya dipetakan ke tipe di sini lalu
   diterjemahkan ke HTTP oleh engine.
======================================================================= */

var (
	ErrNotFound           = errors.New("record tidak ditemukan")
	ErrDuplicateRecord    = errors.New("record tahapan sudah ada untuk progress ini")
	ErrPrerequisiteNotMet = errors.New("tahapan prasyarat belum selesai")
	ErrAlreadyFinalized   = errors.New("record sudah difinalisasi dan tidak bisa diubah")
	ErrForbidden          = errors.New("akses ditolak oleh store")
)

// IncompleteDataError: finalisasi Done ditolak karena field wajib kosong.
type IncompleteDataError struct {
	Missing []string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("data belum lengkap, field kosong: %s", strings.Join(e.Missing, ", "))
}

/* =======================================================================
   Pemetaan error Postgres → typed error.
   Konvensi stored function: RAISE EXCEPTION dengan prefix pesan
   (SQLSTATE P0001), mis. 'INCOMPLETE_DATA:tanggal_mulai,tanggal_selesai'.
   Unique index → 23505.
======================================================================= */

func FromStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrDuplicateRecord
		case "P0001":
			if mapped := fromRaiseMessage(string(pqErr.Message)); mapped != nil {
				return mapped
			}
		}
		return err
	}

	// Fallback: driver lain / error string mentah (mis. lewat pgx simple protocol)
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "23505") || strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") {
		return ErrDuplicateRecord
	}
	if mapped := fromRaiseMessage(err.Error()); mapped != nil {
		return mapped
	}
	return err
}

func fromRaiseMessage(msg string) error {
	// Prefix bisa muncul di tengah string error driver ("ERROR: PREREQUISITE_NOT_MET ...")
	switch {
	case strings.Contains(msg, "DUPLICATE_RECORD"):
		return ErrDuplicateRecord
	case strings.Contains(msg, "PREREQUISITE_NOT_MET"):
		return ErrPrerequisiteNotMet
	case strings.Contains(msg, "ALREADY_FINALIZED"):
		return ErrAlreadyFinalized
	case strings.Contains(msg, "NOT_FOUND"):
		return ErrNotFound
	case strings.Contains(msg, "FORBIDDEN"):
		return ErrForbidden
	case strings.Contains(msg, "INCOMPLETE_DATA"):
		return &IncompleteDataError{Missing: parseMissingFields(msg)}
	}
	return nil
}

func parseMissingFields(msg string) []string {
	idx := strings.Index(msg, "INCOMPLETE_DATA")
	rest := msg[idx+len("INCOMPLETE_DATA"):]
	rest = strings.TrimPrefix(rest, ":")
	// pesan driver bisa membawa trailing context; ambil sampai whitespace/newline pertama
	if i := strings.IndexAny(rest, " \t\r\n("); i >= 0 {
		rest = rest[:i]
	}
	parts := strings.Split(rest, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
