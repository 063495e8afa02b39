package stage

import "testing"

func TestStatusTerminal(t *testing.T) {
	if StatusDraft.Terminal() {
		t.Error("Draft bukan status terminal")
	}
	if !StatusDone.Terminal() || !StatusCancelled.Terminal() {
		t.Error("Done dan Cancelled harus terminal")
	}
}

func TestLabelMapRoundTrip(t *testing.T) {
	for _, desc := range []struct {
		module string
		done   string
		cancel string
	}{
		{"notaris", "Selesai", "Batal"},
		{"renovasi", "Selesai", "Batal"},
		{"mou", "Selesai", "Batal"},
		{"izin_tetangga", "Selesai", "Batal"},
		{"grand_opening", "OK", "NOK"},
	} {
		d := ByModule(desc.module)
		if d == nil {
			t.Fatalf("modul %s tidak terdaftar", desc.module)
		}
		if got := d.Labels.FromStatus(StatusDone); got != desc.done {
			t.Errorf("%s: FromStatus(Done) = %q, want %q", desc.module, got, desc.done)
		}
		if got := d.Labels.FromStatus(StatusCancelled); got != desc.cancel {
			t.Errorf("%s: FromStatus(Cancelled) = %q, want %q", desc.module, got, desc.cancel)
		}
		for _, s := range []Status{StatusDraft, StatusDone, StatusCancelled} {
			back, ok := d.Labels.ToStatus(d.Labels.FromStatus(s))
			if !ok || back != s {
				t.Errorf("%s: round trip %s gagal (got %s, ok=%v)", desc.module, s, back, ok)
			}
		}
	}
}

func TestLabelMapToStatus_AcceptsCanonical(t *testing.T) {
	d := ByModule("grand_opening")
	if got, ok := d.Labels.ToStatus("Done"); !ok || got != StatusDone {
		t.Errorf("label kanonik Done harus diterima, got %s ok=%v", got, ok)
	}
	if got, ok := d.Labels.ToStatus(" OK "); !ok || got != StatusDone {
		t.Errorf("label legacy OK (dengan spasi) harus diterima, got %s ok=%v", got, ok)
	}
	if _, ok := d.Labels.ToStatus("Selesai"); ok {
		t.Error("label tahapan lain tidak boleh diterima grand_opening")
	}
	if _, ok := d.Labels.ToStatus("ngawur"); ok {
		t.Error("label tak dikenal harus ditolak")
	}
}

func TestByModule(t *testing.T) {
	if ByModule("NOTARIS") == nil {
		t.Error("lookup modul harus case-insensitive")
	}
	if ByModule("pembebasan") != nil {
		t.Error("modul tak terdaftar harus nil")
	}
	if len(Modules()) != 5 {
		t.Errorf("registry harus berisi 5 modul, got %d", len(Modules()))
	}
}

func TestDescriptorPrerequisitesAndAdvance(t *testing.T) {
	if ByModule("renovasi").Prerequisite != "notaris" {
		t.Error("renovasi mensyaratkan notaris")
	}
	if ByModule("grand_opening").Prerequisite != "renovasi" {
		t.Error("grand_opening mensyaratkan renovasi")
	}
	if !ByModule("mou").AdvancesStage {
		t.Error("mou harus menggeser current_stage")
	}
	if ByModule("notaris").AdvancesStage {
		t.Error("notaris tidak menggeser current_stage")
	}
}

func TestDescriptorFieldSets(t *testing.T) {
	d := ByModule("notaris")
	if !d.IsField("nama_notaris") || d.IsField("file_sph") {
		t.Error("IsField hanya untuk field non-file")
	}
	if !d.IsFileField("file_sph") || d.IsFileField("nama_notaris") {
		t.Error("IsFileField hanya untuk field lampiran")
	}
}
