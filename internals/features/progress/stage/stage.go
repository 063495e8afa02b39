package stage

import "strings"

/* =======================================================================
   Status final record tahapan — dinormalkan ke tiga state di boundary
   engine. Label legacy per tahapan ("Belum"/"Selesai"/"Batal" atau
   "OK"/"NOK") dipetakan lewat LabelMap milik masing-masing Descriptor.
======================================================================= */

type Status string

const (
	StatusDraft     Status = "Draft"
	StatusDone      Status = "Done"
	StatusCancelled Status = "Cancelled"
)

// Terminal: Done/Cancelled tidak bisa kembali ke Draft.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// LabelMap memetakan tiga state kanonik ke label legacy di DB.
type LabelMap struct {
	Draft     string
	Done      string
	Cancelled string
}

var labelBelumSelesaiBatal = LabelMap{Draft: "Belum", Done: "Selesai", Cancelled: "Batal"}
var labelOkNok = LabelMap{Draft: "Belum", Done: "OK", Cancelled: "NOK"}

// FromStatus: kanonik → label DB.
func (m LabelMap) FromStatus(s Status) string {
	switch s {
	case StatusDone:
		return m.Done
	case StatusCancelled:
		return m.Cancelled
	default:
		return m.Draft
	}
}

// ToStatus: label DB (atau kanonik) → kanonik.
func (m LabelMap) ToStatus(label string) (Status, bool) {
	switch strings.TrimSpace(label) {
	case m.Draft, string(StatusDraft):
		return StatusDraft, true
	case m.Done, string(StatusDone):
		return StatusDone, true
	case m.Cancelled, string(StatusCancelled):
		return StatusCancelled, true
	}
	return StatusDraft, false
}

/* =======================================================================
   Descriptor — konfigurasi data-driven satu modul tahapan.
   Satu engine generik menggantikan handler copy-paste per tahapan.
======================================================================= */

type Descriptor struct {
	Module         string   // segmen path & folder OSS, mis. "renovasi"
	Proc           string   // prefix stored function: fn_<proc>_<op>
	Table          string   // tabel record tahapan (untuk resolusi scope by record)
	Fields         []string // field non-file yang boleh ada di payload
	FileFields     []string // field lampiran (key object storage)
	RequiredOnDone []string // wajib terisi saat finalisasi Done (divalidasi DB-side)
	Prerequisite   string   // modul yang harus Done lebih dulu ("" = tanpa prasyarat)
	AdvancesStage  bool     // create sukses menggeser progress.current_stage
	Labels         LabelMap
}

func (d *Descriptor) IsField(name string) bool {
	for _, f := range d.Fields {
		if f == name {
			return true
		}
	}
	return false
}

func (d *Descriptor) IsFileField(name string) bool {
	for _, f := range d.FileFields {
		if f == name {
			return true
		}
	}
	return false
}

/* =======================================================================
   Registry
======================================================================= */

var registry = map[string]*Descriptor{
	"notaris": {
		Module: "notaris",
		Proc:   "notaris",
		Table:  "kplt_notaris",
		Fields: []string{
			"nama_notaris", "nomor_akta", "tanggal_pengurusan",
			"tanggal_selesai", "biaya_notaris", "keterangan",
		},
		FileFields:     []string{"file_sph", "file_akta"},
		RequiredOnDone: []string{"nama_notaris", "nomor_akta", "tanggal_selesai"},
		Labels:         labelBelumSelesaiBatal,
	},
	"renovasi": {
		Module: "renovasi",
		Proc:   "renovasi",
		Table:  "kplt_renovasi",
		Fields: []string{
			"kontraktor", "tanggal_mulai", "tanggal_selesai",
			"biaya_renovasi", "keterangan",
		},
		FileFields:     []string{"file_rekom_renovasi", "file_rab"},
		RequiredOnDone: []string{"tanggal_mulai", "tanggal_selesai"},
		Prerequisite:   "notaris",
		Labels:         labelBelumSelesaiBatal,
	},
	"mou": {
		Module: "mou",
		Proc:   "mou",
		Table:  "kplt_mou",
		Fields: []string{
			"nama_pemilik", "tanggal_mou", "nilai_sewa",
			"periode_sewa_tahun", "keterangan",
		},
		FileFields:     []string{"file_mou"},
		RequiredOnDone: []string{"tanggal_mou", "nilai_sewa"},
		AdvancesStage:  true,
		Labels:         labelBelumSelesaiBatal,
	},
	"grand_opening": {
		Module: "grand_opening",
		Proc:   "grand_opening",
		Table:  "kplt_grand_opening",
		Fields: []string{
			"tanggal_grand_opening", "keterangan",
		},
		FileFields:     []string{"par_online"},
		RequiredOnDone: []string{"tanggal_grand_opening"},
		Prerequisite:   "renovasi",
		Labels:         labelOkNok,
	},
	"izin_tetangga": {
		Module: "izin_tetangga",
		Proc:   "izin_tetangga",
		Table:  "kplt_izin_tetangga",
		Fields: []string{
			"tanggal_izin", "biaya_izin", "jumlah_tetangga", "keterangan",
		},
		FileFields:     []string{"file_izin_tetangga"},
		RequiredOnDone: []string{"tanggal_izin"},
		Labels:         labelBelumSelesaiBatal,
	},
}

// ByModule mencari descriptor dari segmen path. Modul tak dikenal → nil.
func ByModule(module string) *Descriptor {
	return registry[strings.ToLower(strings.TrimSpace(module))]
}

// Modules mengembalikan daftar modul terdaftar (untuk routing & log).
func Modules() []string {
	out := make([]string, 0, len(registry))
	for m := range registry {
		out = append(out, m)
	}
	return out
}
