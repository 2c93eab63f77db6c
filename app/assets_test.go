package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mediavault/adapters/cdn"
	"mediavault/adapters/clock"
	"mediavault/adapters/idgen"
	"mediavault/adapters/memory"
	"mediavault/app"
	"mediavault/domain/asset"
	"mediavault/domain/bandwidth"
)

type assetFixture struct {
	svc     *app.AssetService
	assets  *memory.AssetStore
	logs    *memory.AccessLogStore
	objects *memory.ObjectStore
	cdn     *memory.CDNInvalidator
	clock   *clock.Fake
}

func newAssetFixture() *assetFixture {
	f := &assetFixture{
		assets:  memory.NewAssetStore(),
		logs:    memory.NewAccessLogStore(),
		objects: memory.NewObjectStore(),
		cdn:     memory.NewCDNInvalidator(),
		clock:   clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.svc = app.NewAssetService(f.assets, f.logs, f.objects, f.cdn, cdn.NewHMACSigner("test-key", "test-secret"), f.clock, idgen.NewSequential("asset-"), zerolog.Nop())
	return f
}

func (f *assetFixture) create(t *testing.T, ownerID, key string) asset.Asset {
	t.Helper()
	f.objects.Put("media", key)
	a, err := f.svc.Create(context.Background(), ownerID, app.CreateAssetInput{
		Name:      key,
		Type:      asset.TypeImage,
		S3Bucket:  "media",
		S3Key:     key,
		CDNURL:    "https://cdn.example.com/" + key,
		SizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("create asset %s: %v", key, err)
	}
	return a
}

func TestAssetService_Create(t *testing.T) {
	f := newAssetFixture()

	a := f.create(t, "u1", "u1/photos/cat.jpg")
	if a.ID == "" {
		t.Error("ID should be set")
	}
	if a.Folder() != "photos" {
		t.Errorf("Folder() = %q, want photos", a.Folder())
	}
}

func TestAssetService_CreateValidation(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "u1", app.CreateAssetInput{Type: asset.TypeImage, S3Bucket: "media", S3Key: "k"})
	if !errors.Is(err, app.ErrInvalidAsset) {
		t.Errorf("missing name err = %v, want ErrInvalidAsset", err)
	}

	_, err = f.svc.Create(ctx, "u1", app.CreateAssetInput{Name: "x", Type: "audio", S3Bucket: "media", S3Key: "k"})
	if !errors.Is(err, app.ErrInvalidAsset) {
		t.Errorf("bad type err = %v, want ErrInvalidAsset", err)
	}
}

func TestAssetService_CreateDuplicateKey(t *testing.T) {
	f := newAssetFixture()

	f.create(t, "u1", "u1/photos/cat.jpg")

	_, err := f.svc.Create(context.Background(), "u2", app.CreateAssetInput{
		Name:     "cat",
		Type:     asset.TypeImage,
		S3Bucket: "media",
		S3Key:    "u1/photos/cat.jpg",
	})
	if !errors.Is(err, app.ErrDuplicateKey) {
		t.Errorf("err = %v, want ErrDuplicateKey", err)
	}
}

func TestAssetService_GetScoping(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	a := f.create(t, "u1", "u1/photos/cat.jpg")

	if _, err := f.svc.Get(ctx, a.ID, "u2"); !errors.Is(err, app.ErrAssetNotFound) {
		t.Errorf("wrong owner err = %v, want ErrAssetNotFound", err)
	}

	if err := f.svc.SoftDelete(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, a.ID, "u1"); !errors.Is(err, app.ErrAssetNotFound) {
		t.Errorf("deleted asset err = %v, want ErrAssetNotFound", err)
	}
}

func TestAssetService_SoftDeleteAndRestore(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	a := f.create(t, "u1", "u1/photos/cat.jpg")

	if err := f.svc.SoftDelete(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// The blob stays; only metadata is hidden.
	if !f.objects.Exists("media", a.S3Key) {
		t.Error("object should remain after soft delete")
	}

	// Restoring a live asset is not found; the deleted one restores fine.
	if err := f.svc.Restore(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := f.svc.Restore(ctx, a.ID, "u1"); !errors.Is(err, app.ErrAssetNotFound) {
		t.Errorf("restore live asset err = %v, want ErrAssetNotFound", err)
	}

	got, err := f.svc.Get(ctx, a.ID, "u1")
	if err != nil {
		t.Fatalf("get after restore: %v", err)
	}
	if got.IsDeleted {
		t.Error("asset should not be deleted after restore")
	}
}

func TestAssetService_MakePrivate(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	a := f.create(t, "u1", "u1/photos/cat.jpg")

	updated, err := f.svc.MakePrivate(ctx, a.ID, "u1")
	if err != nil {
		t.Fatalf("make private: %v", err)
	}

	if updated.S3Key != "u1/private/cat.jpg" {
		t.Errorf("S3Key = %q, want u1/private/cat.jpg", updated.S3Key)
	}
	if updated.CDNURL != "https://cdn.example.com/u1/private/cat.jpg" {
		t.Errorf("CDNURL = %q, want rewritten key", updated.CDNURL)
	}
	if updated.OriginalFolder != "photos" {
		t.Errorf("OriginalFolder = %q, want photos", updated.OriginalFolder)
	}
	if !updated.IsPrivate {
		t.Error("IsPrivate should be true")
	}

	// Object moved in storage.
	if f.objects.Exists("media", "u1/photos/cat.jpg") {
		t.Error("old object should be gone")
	}
	if !f.objects.Exists("media", "u1/private/cat.jpg") {
		t.Error("new object should exist")
	}

	// Old CDN path invalidated, variants included.
	if len(f.cdn.Paths) != 1 {
		t.Fatalf("invalidations = %d, want 1", len(f.cdn.Paths))
	}
	want := []string{"/u1/photos/cat.jpg", "/u1/photos/cat.jpg/*"}
	for i, p := range f.cdn.Paths[0] {
		if p != want[i] {
			t.Errorf("invalidated path[%d] = %q, want %q", i, p, want[i])
		}
	}

	if _, err := f.svc.MakePrivate(ctx, a.ID, "u1"); !errors.Is(err, app.ErrAlreadyPrivate) {
		t.Errorf("second make private err = %v, want ErrAlreadyPrivate", err)
	}
}

func TestAssetService_MakePublic(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	a := f.create(t, "u1", "u1/photos/cat.jpg")
	if _, err := f.svc.MakePrivate(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("make private: %v", err)
	}

	// No target folder: goes back to the remembered one.
	updated, err := f.svc.MakePublic(ctx, a.ID, "u1", "")
	if err != nil {
		t.Fatalf("make public: %v", err)
	}
	if updated.S3Key != "u1/photos/cat.jpg" {
		t.Errorf("S3Key = %q, want original folder restored", updated.S3Key)
	}
	if updated.OriginalFolder != "" {
		t.Errorf("OriginalFolder = %q, want cleared", updated.OriginalFolder)
	}

	if _, err := f.svc.MakePublic(ctx, a.ID, "u1", ""); !errors.Is(err, app.ErrAlreadyPublic) {
		t.Errorf("second make public err = %v, want ErrAlreadyPublic", err)
	}
}

func TestAssetService_MakePublicTargetFolder(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	a := f.create(t, "u1", "u1/photos/cat.jpg")
	if _, err := f.svc.MakePrivate(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("make private: %v", err)
	}

	if _, err := f.svc.MakePublic(ctx, a.ID, "u1", "private"); !errors.Is(err, app.ErrReservedFolder) {
		t.Errorf("reserved folder err = %v, want ErrReservedFolder", err)
	}

	updated, err := f.svc.MakePublic(ctx, a.ID, "u1", "gallery")
	if err != nil {
		t.Fatalf("make public: %v", err)
	}
	if updated.S3Key != "u1/gallery/cat.jpg" {
		t.Errorf("S3Key = %q, want u1/gallery/cat.jpg", updated.S3Key)
	}
}

func TestAssetService_Folders(t *testing.T) {
	f := newAssetFixture()

	f.create(t, "u1", "u1/photos/cat.jpg")
	f.create(t, "u1", "u1/photos/dog.jpg")
	f.create(t, "u1", "u1/videos/clip.mp4")
	f.create(t, "u2", "u2/photos/bird.jpg")

	folders, err := f.svc.Folders(context.Background(), "u1")
	if err != nil {
		t.Fatalf("folders: %v", err)
	}

	want := []app.FolderSummary{
		{Folder: "photos", Count: 2},
		{Folder: "videos", Count: 1},
	}
	if len(folders) != len(want) {
		t.Fatalf("folders = %v, want %v", folders, want)
	}
	for i := range want {
		if folders[i] != want[i] {
			t.Errorf("folders[%d] = %v, want %v", i, folders[i], want[i])
		}
	}
}

func TestAssetService_AssetsByFolder(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	for _, key := range []string{"u1/photos/a.jpg", "u1/photos/b.jpg", "u1/photos/c.jpg", "u1/videos/d.mp4"} {
		f.create(t, "u1", key)
		f.clock.Advance(time.Minute)
	}

	page, total, err := f.svc.AssetsByFolder(ctx, "u1", "photos", 1, 2)
	if err != nil {
		t.Fatalf("assets by folder: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(page) != 2 {
		t.Fatalf("page len = %d, want 2", len(page))
	}
	// Newest first.
	if page[0].S3Key != "u1/photos/c.jpg" {
		t.Errorf("page[0] = %s, want u1/photos/c.jpg", page[0].S3Key)
	}

	page2, _, err := f.svc.AssetsByFolder(ctx, "u1", "photos", 2, 2)
	if err != nil {
		t.Fatalf("assets by folder page 2: %v", err)
	}
	if len(page2) != 1 || page2[0].S3Key != "u1/photos/a.jpg" {
		t.Errorf("page2 = %v, want only u1/photos/a.jpg", page2)
	}
}

func TestAssetService_BandwidthStats(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	a := f.create(t, "u1", "u1/photos/cat.jpg")

	records := []bandwidth.Record{
		{AssetID: a.ID, Path: "/" + a.S3Key, Bytes: 100, EdgeResult: "Hit"},
		{AssetID: a.ID, Path: "/" + a.S3Key, Bytes: 200, EdgeResult: "RefreshHit"},
		{AssetID: a.ID, Path: "/" + a.S3Key, Bytes: 50, EdgeResult: "Miss"},
		{AssetID: "other", Path: "/elsewhere", Bytes: 999, EdgeResult: "Hit"},
	}
	if err := f.svc.RecordLogs(ctx, records); err != nil {
		t.Fatalf("record logs: %v", err)
	}

	stats, err := f.svc.BandwidthStats(ctx, a.ID, "u1")
	if err != nil {
		t.Fatalf("bandwidth stats: %v", err)
	}

	if stats.Bytes != 350 {
		t.Errorf("Bytes = %d, want 350", stats.Bytes)
	}
	if stats.Requests != 3 {
		t.Errorf("Requests = %d, want 3", stats.Requests)
	}
	// Only a plain "Hit" counts here; RefreshHit does not.
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
}

func TestAssetService_RecordLogsFillsDefaults(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	records := []bandwidth.Record{
		{Path: "/u1/photos/cat.jpg", Bytes: 100, EdgeResult: "Hit"},
	}
	if err := f.svc.RecordLogs(ctx, records); err != nil {
		t.Fatalf("record logs: %v", err)
	}

	if records[0].ID == "" {
		t.Error("ID should have been generated")
	}
	if !records[0].Timestamp.Equal(f.clock.Now()) {
		t.Errorf("Timestamp = %v, want fake now %v", records[0].Timestamp, f.clock.Now())
	}
}

func TestAssetService_SignedURL(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	a := f.create(t, "u1", "u1/photos/cat.jpg")

	// Public assets are served by their plain CDN URL.
	if _, err := f.svc.SignedAssetURL(ctx, a.ID, "u1", 0); !errors.Is(err, app.ErrAssetPublic) {
		t.Errorf("public asset err = %v, want ErrAssetPublic", err)
	}

	priv, err := f.svc.MakePrivate(ctx, a.ID, "u1")
	if err != nil {
		t.Fatalf("make private: %v", err)
	}

	signed, err := f.svc.SignedAssetURL(ctx, a.ID, "u1", 0)
	if err != nil {
		t.Fatalf("signed url: %v", err)
	}
	if !strings.HasPrefix(signed.URL, priv.CDNURL+"?") {
		t.Errorf("URL = %q, want prefix %q", signed.URL, priv.CDNURL+"?")
	}
	for _, param := range []string{"Expires=", "Key-Pair-Id=", "Signature="} {
		if !strings.Contains(signed.URL, param) {
			t.Errorf("URL = %q, missing %s", signed.URL, param)
		}
	}

	wantExpiry := f.clock.Now().UTC().Add(time.Hour)
	if !signed.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("ExpiresAt = %v, want default one hour (%v)", signed.ExpiresAt, wantExpiry)
	}
	if signed.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", signed.ExpiresIn)
	}
}

func TestAssetService_SignedURLClampsTTL(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	a := f.create(t, "u1", "u1/photos/cat.jpg")
	if _, err := f.svc.MakePrivate(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("make private: %v", err)
	}

	signed, err := f.svc.SignedAssetURL(ctx, a.ID, "u1", 30*24*time.Hour)
	if err != nil {
		t.Fatalf("signed url: %v", err)
	}
	if want := 7 * 24 * 3600; signed.ExpiresIn != want {
		t.Errorf("ExpiresIn = %d, want seven-day cap %d", signed.ExpiresIn, want)
	}
}

func TestAssetService_SignedURLUnconfigured(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()

	a := f.create(t, "u1", "u1/photos/cat.jpg")
	if _, err := f.svc.MakePrivate(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("make private: %v", err)
	}

	svc := app.NewAssetService(f.assets, f.logs, f.objects, f.cdn, cdn.NewHMACSigner("", ""), f.clock, idgen.NewSequential("x-"), zerolog.Nop())
	if _, err := svc.SignedAssetURL(ctx, a.ID, "u1", 0); !errors.Is(err, app.ErrSigningUnavailable) {
		t.Errorf("err = %v, want ErrSigningUnavailable", err)
	}
}
