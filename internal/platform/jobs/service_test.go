package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folha/internal/domain/payroll"
	"folha/internal/domain/payslip"
	"folha/internal/platform/crypto"
)

func TestRunNowRecordsOutcome(t *testing.T) {
	svc := New(nil, nil)
	ctx := context.Background()

	run, err := svc.RunNow(ctx, "ok", func(context.Context) (any, error) { return map[string]int{"n": 1}, nil })
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.NotEmpty(t, run.ID)
	assert.NotNil(t, run.CompletedAt)

	run, err = svc.RunNow(ctx, "bad", func(context.Context) (any, error) { return nil, errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, "boom", run.Error)

	runs := svc.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "bad", runs[0].Type)
	assert.Equal(t, "ok", runs[1].Type)
}

func TestEnqueueIsProcessedByWorker(t *testing.T) {
	svc := New(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	done := make(chan struct{})
	run, err := svc.Enqueue("queued", func(context.Context) (any, error) {
		close(done)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, run.Status)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
	require.Eventually(t, func() bool {
		return svc.Runs()[0].Status == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	svc := New(nil, nil)
	assert.Error(t, svc.Schedule("not a cron spec", JobPayslipArchive, nil))
	assert.NoError(t, svc.Schedule("0 6 1 * *", JobPayslipArchive, func(context.Context) (any, error) { return nil, nil }))
}

func TestRunsAreBounded(t *testing.T) {
	svc := New(nil, nil)
	for i := 0; i < maxRuns+5; i++ {
		_, _ = svc.RunNow(context.Background(), "n", func(context.Context) (any, error) { return nil, nil })
	}
	assert.Len(t, svc.Runs(), maxRuns)
}

func TestPayslipArchiveJob(t *testing.T) {
	store := payroll.NewMemoryStore(
		&payroll.CompanyProfile{ID: "1", Name: "TALO E CHURRASCARIA COSTA", NIF: "5417123456"},
		[]payroll.Employee{
			{ID: "1", Name: "João Carlos Rodrigues", Position: "Cozinheiro", BaseSalary: 450000, Status: payroll.StatusActive},
			{ID: "2", Name: "Ana Paula", BaseSalary: 100000, Status: payroll.StatusInactive},
		},
		nil,
	)
	svc := payroll.NewService(store, payroll.NewCalculator(payroll.PolicyAllow), payslip.NewRenderer())
	sealer, err := crypto.New("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	archive := payslip.NewArchive(t.TempDir(), sealer)
	now := func() time.Time { return time.Date(2026, time.October, 1, 6, 0, 0, 0, time.UTC) }

	run, err := New(nil, nil).RunNow(context.Background(), JobPayslipArchive, PayslipArchive(svc, archive, now))
	require.NoError(t, err)

	result, ok := run.Details.(ArchiveResult)
	require.True(t, ok)
	assert.Equal(t, "2026-10", result.ReferenceMonth)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "recibo_pagamento_João_Carlos_Rodrigues_outubro_de_2026.pdf.enc", filepath.Base(result.Files[0]))

	_, err = os.Stat(result.Files[0])
	require.NoError(t, err)
	plain, err := archive.Open(result.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(plain[:4]))
}
