package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	progressController "kplt_backend/internals/features/progress/controller"
	"kplt_backend/internals/features/progress/service"
	"kplt_backend/internals/features/progress/stage"
	"kplt_backend/internals/features/progress/store"
	helperOSS "kplt_backend/internals/helpers/oss"
	"kplt_backend/internals/testutil/blobmock"
	"kplt_backend/internals/testutil/scopemock"
	"kplt_backend/internals/testutil/storemock"
)

/* ==========================
   Harness
========================== */

type actor struct {
	userID   uuid.UUID
	role     string
	branchID uuid.UUID
}

type fixture struct {
	store    *storemock.Store
	blob     *blobmock.Recorder
	scope    *service.Scope
	resolver *scopemock.Resolver
	app      *fiber.App
	actor    actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	branchID := uuid.New()
	f := &fixture{
		store: &storemock.Store{},
		blob:  blobmock.NewRecorder(),
		scope: &service.Scope{
			ProgressID: uuid.New(),
			UlokID:     uuid.New(),
			KpltID:     uuid.New(),
			BranchID:   branchID,
			OwnerID:    uuid.New(),
		},
		actor: actor{userID: uuid.New(), role: "location_manager", branchID: branchID},
	}
	f.resolver = scopemock.Fixed(f.scope)
	f.rebuild()
	return f
}

func (f *fixture) rebuild() {
	files := &helperOSS.AttachmentService{
		Store:      f.blob,
		MaxBytes:   15 * 1024 * 1024,
		DefaultTTL: 300 * time.Second,
		MaxTTL:     3600 * time.Second,
	}
	ctl := progressController.NewStageController(f.store, f.resolver, files)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", f.actor.userID.String())
		c.Locals("userRole", f.actor.role)
		c.Locals("branch_id", f.actor.branchID.String())
		return c.Next()
	})
	grp := app.Group("/progress/:progress_id/:stage_module")
	grp.Get("/", ctl.Get)
	grp.Post("/", ctl.Create)
	grp.Patch("/", ctl.Update)
	grp.Delete("/", ctl.Delete)
	grp.Patch("/approval", ctl.Approve)
	f.app = app
}

func (f *fixture) doJSON(t *testing.T, method, path string, body string) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp, decodeBody(t, resp)
}

func (f *fixture) doMultipart(t *testing.T, method, path string, fields map[string]string, files map[string][]byte) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for field, content := range files {
		fw, err := w.CreateFormFile(field, field+".pdf")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	_ = w.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return out
}

func (f *fixture) stagePath(module string) string {
	return "/progress/" + f.scope.ProgressID.String() + "/" + module
}

var pdfContent = []byte("%PDF-1.7\nisi dokumen notaris")

/* ==========================
   Create
========================== */

func TestStageCreate_JSON(t *testing.T) {
	f := newFixture(t)
	var got store.CallParams
	f.store.CreateFn = func(_ context.Context, p store.CallParams) (*store.StageRow, error) {
		got = p
		return &store.StageRow{
			ID:          uuid.New(),
			ProgressID:  p.ProgressID,
			FinalStatus: stage.StatusDraft,
			Fields:      p.Payload,
		}, nil
	}

	resp, body := f.doJSON(t, fiber.MethodPost, f.stagePath("notaris"),
		`{"nama_notaris":"Budi, S.H.","nomor_akta":"17/2026"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
	if got.Stage == nil || got.Stage.Module != "notaris" {
		t.Fatalf("descriptor tidak diteruskan ke store: %+v", got.Stage)
	}
	if got.ActorID != f.actor.userID || got.BranchID != f.actor.branchID {
		t.Error("klaim aktor harus diteruskan ke store")
	}
	if got.Payload["nama_notaris"] != "Budi, S.H." {
		t.Errorf("payload = %v", got.Payload)
	}
	data := body["data"].(map[string]any)
	if data["final_status"] != "Draft" {
		t.Errorf("final_status = %v, want Draft", data["final_status"])
	}
}

func TestStageCreate_DuplicateRollsBackUpload(t *testing.T) {
	f := newFixture(t)
	f.store.CreateFn = func(context.Context, store.CallParams) (*store.StageRow, error) {
		return nil, store.ErrDuplicateRecord
	}

	resp, body := f.doMultipart(t, fiber.MethodPost, f.stagePath("notaris"),
		map[string]string{"nama_notaris": "Budi"},
		map[string][]byte{"file_sph": pdfContent})

	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
	if body["error_code"] != "DUPLICATE_RECORD" {
		t.Errorf("error_code = %v", body["error_code"])
	}
	// Lampiran sempat naik sebelum store menolak → harus dihapus kembali.
	if len(f.blob.Puts) != 1 || len(f.blob.Deletes) != 1 {
		t.Fatalf("puts=%v deletes=%v", f.blob.Puts, f.blob.Deletes)
	}
	if len(f.blob.Objects) != 0 {
		t.Errorf("bucket harus bersih dari orphan, got %v", f.blob.Objects)
	}
}

func TestStageCreate_PrerequisiteNotMet(t *testing.T) {
	f := newFixture(t)
	f.store.CreateFn = func(context.Context, store.CallParams) (*store.StageRow, error) {
		return nil, store.ErrPrerequisiteNotMet
	}

	resp, body := f.doJSON(t, fiber.MethodPost, f.stagePath("renovasi"),
		`{"kontraktor":"CV Maju"}`)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
	if body["error_code"] != "PREREQUISITE_NOT_MET" {
		t.Errorf("error_code = %v", body["error_code"])
	}
}

func TestStageCreate_UnknownFieldRejected(t *testing.T) {
	f := newFixture(t)
	created := false
	f.store.CreateFn = func(context.Context, store.CallParams) (*store.StageRow, error) {
		created = true
		return nil, nil
	}

	resp, body := f.doJSON(t, fiber.MethodPost, f.stagePath("notaris"),
		`{"nama_notaris":"Budi","warna_favorit":"biru"}`)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
	if created {
		t.Error("payload invalid tidak boleh sampai ke store")
	}
	issues := body["errors"].(map[string]any)
	if _, ok := issues["warna_favorit"]; !ok {
		t.Errorf("field asing harus dilaporkan, got %v", issues)
	}
}

func TestStageCreate_FinalStatusRejectedOutsideApproval(t *testing.T) {
	f := newFixture(t)
	resp, body := f.doJSON(t, fiber.MethodPost, f.stagePath("notaris"),
		`{"nama_notaris":"Budi","final_status":"Selesai"}`)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
}

func TestStageCreate_UnknownModule(t *testing.T) {
	f := newFixture(t)
	resp, body := f.doJSON(t, fiber.MethodPost, f.stagePath("pembebasan"), `{}`)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
}

/* ==========================
   Role & branch scoping
========================== */

func TestStageCreate_SpecialistForbidden(t *testing.T) {
	f := newFixture(t)
	f.actor.role = "location_specialist"
	f.rebuild()

	resp, body := f.doJSON(t, fiber.MethodPost, f.stagePath("notaris"), `{"nama_notaris":"Budi"}`)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
}

func TestStageGet_CrossBranch(t *testing.T) {
	f := newFixture(t)
	f.actor.branchID = uuid.New() // cabang berbeda dengan scope
	f.rebuild()
	f.store.GetFn = func(_ context.Context, p store.CallParams) (*store.StageRow, error) {
		return &store.StageRow{ID: uuid.New(), ProgressID: p.ProgressID, FinalStatus: stage.StatusDraft, Fields: map[string]any{}}, nil
	}

	// Location manager lintas cabang → ditolak.
	resp, _ := f.doJSON(t, fiber.MethodGet, f.stagePath("notaris"), "")
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("LM lintas cabang: status = %d", resp.StatusCode)
	}

	// Regional manager bebas cabang → boleh baca.
	f.actor.role = "regional_manager"
	f.rebuild()
	resp, body := f.doJSON(t, fiber.MethodGet, f.stagePath("notaris"), "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("RM lintas cabang: status = %d body=%v", resp.StatusCode, body)
	}
}

/* ==========================
   Update
========================== */

func TestStageUpdate_ReplacesOldAttachment(t *testing.T) {
	f := newFixture(t)
	oldKey := f.scope.UlokID.String() + "/notaris/100_file-sph.pdf"
	f.blob.Objects[oldKey] = true

	f.store.GetFn = func(_ context.Context, p store.CallParams) (*store.StageRow, error) {
		return &store.StageRow{
			ID: uuid.New(), ProgressID: p.ProgressID, FinalStatus: stage.StatusDraft,
			Fields: map[string]any{"file_sph": oldKey},
		}, nil
	}
	f.store.UpdateFn = func(_ context.Context, p store.CallParams) (*store.StageRow, error) {
		return &store.StageRow{ID: uuid.New(), ProgressID: p.ProgressID, FinalStatus: stage.StatusDraft, Fields: p.Payload}, nil
	}

	resp, body := f.doMultipart(t, fiber.MethodPatch, f.stagePath("notaris"),
		nil, map[string][]byte{"file_sph": pdfContent})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
	// Key lama dibersihkan SETELAH commit; key baru tetap ada.
	if f.blob.Objects[oldKey] {
		t.Error("key lama harus terhapus setelah update sukses")
	}
	if len(f.blob.Objects) != 1 {
		t.Errorf("harus tersisa tepat satu object baru, got %v", f.blob.Objects)
	}
}

func TestStageUpdate_StoreFailureKeepsOldAttachment(t *testing.T) {
	f := newFixture(t)
	oldKey := f.scope.UlokID.String() + "/notaris/100_file-sph.pdf"
	f.blob.Objects[oldKey] = true

	f.store.GetFn = func(_ context.Context, p store.CallParams) (*store.StageRow, error) {
		return &store.StageRow{
			ID: uuid.New(), ProgressID: p.ProgressID, FinalStatus: stage.StatusDraft,
			Fields: map[string]any{"file_sph": oldKey},
		}, nil
	}
	f.store.UpdateFn = func(context.Context, store.CallParams) (*store.StageRow, error) {
		return nil, store.ErrAlreadyFinalized
	}

	resp, body := f.doMultipart(t, fiber.MethodPatch, f.stagePath("notaris"),
		nil, map[string][]byte{"file_sph": pdfContent})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
	if body["error_code"] != "ALREADY_FINALIZED" {
		t.Errorf("error_code = %v", body["error_code"])
	}
	// Upload baru di-rollback, key lama tidak tersentuh.
	if !f.blob.Objects[oldKey] {
		t.Error("key lama tidak boleh terhapus saat store menolak")
	}
	if len(f.blob.Objects) != 1 {
		t.Errorf("object baru harus di-rollback, got %v", f.blob.Objects)
	}
}

/* ==========================
   Delete
========================== */

func TestStageDelete_CleansAttachments(t *testing.T) {
	f := newFixture(t)
	sphKey := f.scope.UlokID.String() + "/notaris/100_file-sph.pdf"
	aktaKey := f.scope.UlokID.String() + "/notaris/200_file-akta.pdf"
	f.blob.Objects[sphKey] = true
	f.blob.Objects[aktaKey] = true

	f.store.GetFn = func(_ context.Context, p store.CallParams) (*store.StageRow, error) {
		return &store.StageRow{
			ID: uuid.New(), ProgressID: p.ProgressID, FinalStatus: stage.StatusDraft,
			Fields: map[string]any{"file_sph": sphKey, "file_akta": aktaKey},
		}, nil
	}
	f.store.DeleteFn = func(context.Context, store.CallParams) error { return nil }

	resp, body := f.doJSON(t, fiber.MethodDelete, f.stagePath("notaris"), "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
	if len(f.blob.Objects) != 0 {
		t.Errorf("lampiran record terhapus harus ikut bersih, got %v", f.blob.Objects)
	}
}

/* ==========================
   Approval
========================== */

func TestStageApprove_SendsLegacyLabel(t *testing.T) {
	f := newFixture(t)
	var got store.CallParams
	f.store.ApproveFn = func(_ context.Context, p store.CallParams) (*store.StageRow, error) {
		got = p
		return &store.StageRow{ID: uuid.New(), ProgressID: p.ProgressID, FinalStatus: stage.StatusDone, Fields: map[string]any{}}, nil
	}

	resp, body := f.doJSON(t, fiber.MethodPatch, f.stagePath("notaris")+"/approval",
		`{"final_status":"Done"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
	if got.Payload["final_status"] != "Selesai" {
		t.Errorf("store harus menerima label legacy, got %v", got.Payload)
	}

	// grand_opening memakai label OK/NOK.
	f.store.ApproveFn = func(_ context.Context, p store.CallParams) (*store.StageRow, error) {
		got = p
		return &store.StageRow{ID: uuid.New(), ProgressID: p.ProgressID, FinalStatus: stage.StatusCancelled, Fields: map[string]any{}}, nil
	}
	resp, body = f.doJSON(t, fiber.MethodPatch, f.stagePath("grand_opening")+"/approval",
		`{"final_status":"NOK"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
	if got.Payload["final_status"] != "NOK" {
		t.Errorf("grand_opening harus memakai label NOK, got %v", got.Payload)
	}
}

func TestStageApprove_RejectsDraftAndUnknown(t *testing.T) {
	f := newFixture(t)
	for _, label := range []string{"Draft", "Belum", "ngawur"} {
		resp, body := f.doJSON(t, fiber.MethodPatch, f.stagePath("notaris")+"/approval",
			`{"final_status":"`+label+`"}`)
		if resp.StatusCode != fiber.StatusUnprocessableEntity {
			t.Errorf("label %q: status = %d body=%v", label, resp.StatusCode, body)
		}
	}
}

func TestStageApprove_IncompleteData(t *testing.T) {
	f := newFixture(t)
	f.store.ApproveFn = func(context.Context, store.CallParams) (*store.StageRow, error) {
		return nil, &store.IncompleteDataError{Missing: []string{"nama_notaris", "nomor_akta"}}
	}

	resp, body := f.doJSON(t, fiber.MethodPatch, f.stagePath("notaris")+"/approval",
		`{"final_status":"Selesai"}`)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d body=%v", resp.StatusCode, body)
	}
	if body["error_code"] != "INCOMPLETE_DATA" {
		t.Errorf("error_code = %v", body["error_code"])
	}
	missing := body["errors"].(map[string]any)["missing_fields"].([]any)
	if len(missing) != 2 {
		t.Errorf("missing_fields = %v", missing)
	}
}
