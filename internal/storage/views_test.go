package storage

import (
	"context"
	"testing"
	"time"
)

func TestRecordViewAndCounts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	y := 1980
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	views := []ReportView{
		{ReportType: "recession", Charts: 4, ViewedAt: base},
		{ReportType: "yearly", Year: &y, Charts: 4, ViewedAt: base.Add(time.Minute)},
		{ReportType: "recession", Charts: 4, ViewedAt: base.Add(2 * time.Minute)},
	}
	for _, v := range views {
		if err := repo.RecordView(ctx, v); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	counts, err := repo.ViewCounts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("counts = %+v, want 2 selections", counts)
	}

	top := counts[0]
	if top.ReportType != "recession" || top.Year != nil || top.Views != 2 {
		t.Errorf("top = %+v", top)
	}
	if !top.LastViewed.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("LastViewed = %v", top.LastViewed)
	}

	second := counts[1]
	if second.ReportType != "yearly" || second.Year == nil || *second.Year != 1980 || second.Views != 1 {
		t.Errorf("second = %+v", second)
	}
}

func TestViewCounts_Empty(t *testing.T) {
	counts, err := newTestRepo(t).ViewCounts(context.Background())
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("counts = %+v, want none", counts)
	}
}
