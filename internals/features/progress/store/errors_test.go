package store

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

func TestFromStoreError_PqCodes(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"gorm not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505", Message: "duplicate key value"}, ErrDuplicateRecord},
		{"raise duplicate", &pq.Error{Code: "P0001", Message: "DUPLICATE_RECORD"}, ErrDuplicateRecord},
		{"raise prerequisite", &pq.Error{Code: "P0001", Message: "PREREQUISITE_NOT_MET: notaris belum Selesai"}, ErrPrerequisiteNotMet},
		{"raise finalized", &pq.Error{Code: "P0001", Message: "ALREADY_FINALIZED"}, ErrAlreadyFinalized},
		{"raise not found", &pq.Error{Code: "P0001", Message: "NOT_FOUND"}, ErrNotFound},
		{"raise forbidden", &pq.Error{Code: "P0001", Message: "FORBIDDEN"}, ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromStoreError(tc.in)
			if !errors.Is(got, tc.want) && got != tc.want {
				t.Errorf("FromStoreError(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFromStoreError_StringFallback(t *testing.T) {
	// pgx simple protocol membungkus error jadi string mentah.
	got := FromStoreError(fmt.Errorf(`ERROR: duplicate key value violates unique constraint "uq_kplt_notaris" (SQLSTATE 23505)`))
	if got != ErrDuplicateRecord {
		t.Errorf("string 23505 harus jadi ErrDuplicateRecord, got %v", got)
	}

	got = FromStoreError(fmt.Errorf("ERROR: PREREQUISITE_NOT_MET (SQLSTATE P0001)"))
	if got != ErrPrerequisiteNotMet {
		t.Errorf("string P0001 harus terpetakan, got %v", got)
	}

	raw := fmt.Errorf("koneksi terputus")
	if got := FromStoreError(raw); got != raw {
		t.Errorf("error tak dikenal harus diteruskan utuh, got %v", got)
	}
}

func TestFromStoreError_IncompleteData(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want []string
	}{
		{
			"pq error",
			&pq.Error{Code: "P0001", Message: "INCOMPLETE_DATA:nama_notaris,nomor_akta"},
			[]string{"nama_notaris", "nomor_akta"},
		},
		{
			"string dengan trailing context",
			fmt.Errorf("ERROR: INCOMPLETE_DATA:tanggal_mulai,tanggal_selesai (SQLSTATE P0001)"),
			[]string{"tanggal_mulai", "tanggal_selesai"},
		},
		{
			"tanpa daftar field",
			&pq.Error{Code: "P0001", Message: "INCOMPLETE_DATA"},
			[]string{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromStoreError(tc.in)
			var inc *IncompleteDataError
			if !errors.As(got, &inc) {
				t.Fatalf("want IncompleteDataError, got %v", got)
			}
			if !reflect.DeepEqual(inc.Missing, tc.want) {
				t.Errorf("Missing = %v, want %v", inc.Missing, tc.want)
			}
		})
	}
}

func TestStageRowFileKey(t *testing.T) {
	var nilRow *StageRow
	if nilRow.FileKey("file_sph") != "" {
		t.Error("nil row harus kembalikan string kosong")
	}
	row := &StageRow{Fields: map[string]any{"file_sph": "u/notaris/1_file-sph.pdf", "biaya": 100}}
	if row.FileKey("file_sph") != "u/notaris/1_file-sph.pdf" {
		t.Error("FileKey harus membaca field string")
	}
	if row.FileKey("biaya") != "" || row.FileKey("tidak_ada") != "" {
		t.Error("field non-string / tidak ada harus kosong")
	}
}
