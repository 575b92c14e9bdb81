package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	otpstore "github.com/mtt/mttdash/internal/app/store/otp"
	"github.com/mtt/mttdash/internal/app/system/metrics"
	"github.com/mtt/mttdash/internal/app/system/visibility"
	"github.com/mtt/mttdash/internal/domain/models"
	"github.com/mtt/mttdash/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeReporter struct {
	rep visibility.Report
	err error
}

func (f fakeReporter) Report(context.Context) (visibility.Report, error) {
	return f.rep, f.err
}

func TestCapacityAuditJob_SetsGaugesAndWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := metrics.New()

	job := CapacityAuditJob([]Reporter{
		fakeReporter{rep: visibility.Report{Policy: "sliders", Active: 0, Total: 3, Min: 1, Max: 5}},
		fakeReporter{rep: visibility.Report{Policy: "dakwah_highlight", Active: 2, Total: 9, Min: 0, Max: 5}},
	}, m, zap.New(core), time.Minute)

	if job.Name != "capacity-audit" {
		t.Errorf("Name: got %q, want %q", job.Name, "capacity-audit")
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	warns := logs.FilterMessage("collection outside capacity bounds").All()
	if len(warns) != 1 {
		t.Fatalf("warnings: got %d, want 1", len(warns))
	}
	if got := warns[0].ContextMap()["policy"]; got != "sliders" {
		t.Errorf("warned policy: got %v, want sliders", got)
	}

	n, err := promtest.GatherAndCount(m.Registry, "mttdash_capacity_active")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Errorf("gauge series: got %d, want 2", n)
	}
}

func TestCapacityAuditJob_ReturnsReporterError(t *testing.T) {
	job := CapacityAuditJob([]Reporter{fakeReporter{err: errors.New("db down")}}, nil, zap.NewNop(), time.Minute)
	if err := job.Run(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestOTPCleanupJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection(otpstore.Collection)
	now := time.Now()
	docs := []any{
		models.EmailOTP{Email: "old@example.com", EmailCI: "old@example.com", ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-time.Hour)},
		models.EmailOTP{Email: "recent@example.com", EmailCI: "recent@example.com", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-3 * time.Minute)},
		models.EmailOTP{Email: "live@example.com", EmailCI: "live@example.com", ExpiresAt: now.Add(time.Minute), CreatedAt: now},
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		t.Fatalf("insert: %v", err)
	}

	job := OTPCleanupJob(otpstore.New(db, 0), zap.NewNop())
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("remaining codes: got %d, want 2", n)
	}
}
