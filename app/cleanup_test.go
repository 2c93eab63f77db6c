package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mediavault/adapters/clock"
	"mediavault/adapters/memory"
	"mediavault/app"
	"mediavault/domain/asset"
	"mediavault/ports"
)

type cleanupFixture struct {
	svc     *app.CleanupService
	assets  *memory.AssetStore
	objects *memory.ObjectStore
	clock   *clock.Fake
}

func newCleanupFixture(retention time.Duration) *cleanupFixture {
	f := &cleanupFixture{
		assets:  memory.NewAssetStore(),
		objects: memory.NewObjectStore(),
		clock:   clock.NewFake(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)),
	}
	f.svc = app.NewCleanupService(f.assets, f.objects, f.clock, retention, zerolog.Nop())
	return f
}

func (f *cleanupFixture) addDeleted(t *testing.T, id, key string, deletedAt time.Time) {
	t.Helper()
	f.objects.Put("media", key)
	err := f.assets.Create(context.Background(), asset.Asset{
		ID:        id,
		OwnerID:   "u1",
		Name:      key,
		Type:      asset.TypeImage,
		S3Bucket:  "media",
		S3Key:     key,
		IsDeleted: true,
		CreatedAt: deletedAt,
		UpdatedAt: deletedAt,
	})
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
}

func TestCleanup_RemovesExpired(t *testing.T) {
	f := newCleanupFixture(90 * time.Hour)
	now := f.clock.Now()

	f.addDeleted(t, "old", "u1/photos/old.jpg", now.Add(-100*time.Hour))
	f.addDeleted(t, "fresh", "u1/photos/fresh.jpg", now.Add(-10*time.Hour))

	report, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Checked != 1 || report.DeletedObjects != 1 || report.DeletedRecords != 1 || report.Errors != 0 {
		t.Errorf("report = %+v, want 1 checked, 1/1 deleted, 0 errors", report)
	}

	if f.objects.Exists("media", "u1/photos/old.jpg") {
		t.Error("expired object should be gone")
	}
	if _, err := f.assets.Get(context.Background(), "old"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expired row err = %v, want ErrNotFound", err)
	}

	// Inside retention: untouched.
	if !f.objects.Exists("media", "u1/photos/fresh.jpg") {
		t.Error("fresh object should remain")
	}
	if _, err := f.assets.Get(context.Background(), "fresh"); err != nil {
		t.Errorf("fresh row err = %v, want nil", err)
	}
}

func TestCleanup_BlobFailureKeepsRow(t *testing.T) {
	f := newCleanupFixture(90 * time.Hour)
	now := f.clock.Now()

	f.addDeleted(t, "bad", "u1/photos/bad.jpg", now.Add(-100*time.Hour))
	f.addDeleted(t, "good", "u1/photos/good.jpg", now.Add(-100*time.Hour))
	f.objects.FailOn = "u1/photos/bad.jpg"

	report, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Checked != 2 || report.DeletedRecords != 1 || report.Errors != 1 {
		t.Errorf("report = %+v, want 2 checked, 1 deleted, 1 error", report)
	}

	// Failed asset stays for the next sweep.
	if _, err := f.assets.Get(context.Background(), "bad"); err != nil {
		t.Errorf("failed asset err = %v, want kept", err)
	}
	if _, err := f.assets.Get(context.Background(), "good"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("good asset err = %v, want ErrNotFound", err)
	}
}

func TestCleanup_SetRetention(t *testing.T) {
	f := newCleanupFixture(90 * time.Hour)
	now := f.clock.Now()

	f.addDeleted(t, "a1", "u1/photos/a.jpg", now.Add(-50*time.Hour))

	report, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Checked != 0 {
		t.Errorf("Checked = %d, want 0 under 90h retention", report.Checked)
	}

	f.svc.SetRetention(24 * time.Hour)

	report, err = f.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Checked != 1 || report.DeletedRecords != 1 {
		t.Errorf("report = %+v, want asset swept under 24h retention", report)
	}
}

func TestCleanup_EmptySweep(t *testing.T) {
	f := newCleanupFixture(90 * time.Hour)

	report, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report != (app.CleanupReport{}) {
		t.Errorf("report = %+v, want all zeros", report)
	}
}
