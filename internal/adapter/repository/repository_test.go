package repository

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperr "github.com/recapd/recapd/errors"
	"github.com/recapd/recapd/internal/domain/entities"
)

func touchAt(t *testing.T, path string, when time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatal(err)
	}
}

func TestRecordingRepository_ListByDate(t *testing.T) {
	root := t.TempDir()
	repo := NewRecordingRepository(root, time.UTC)

	today := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	touchAt(t, filepath.Join(root, "a.m4a"), today)
	touchAt(t, filepath.Join(root, "sub", "b.wav"), today.Add(2*time.Hour))
	touchAt(t, filepath.Join(root, "c.mp3"), yesterday)
	// sidecars and unknown files are not recordings
	touchAt(t, filepath.Join(root, "a.transcript"), today)
	touchAt(t, filepath.Join(root, "notes.txt"), today)

	recs, err := repo.ListByDate(today)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recordings, want 2: %+v", len(recs), recs)
	}
	// oldest first
	if filepath.Base(recs[0].Path) != "a.m4a" || filepath.Base(recs[1].Path) != "b.wav" {
		t.Fatalf("unexpected order: %+v", recs)
	}
}

func TestRecordingRepository_MissingRoot(t *testing.T) {
	repo := NewRecordingRepository(filepath.Join(t.TempDir(), "nope"), time.UTC)
	recs, err := repo.List()
	if err != nil {
		t.Fatalf("missing root must not error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("got %d recordings from missing root", len(recs))
	}
}

func TestReportRepository_SaveGetList(t *testing.T) {
	repo := NewReportRepository(t.TempDir(), time.UTC)
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	if _, ok, err := repo.GetByDate(day); err != nil || ok {
		t.Fatalf("expected absent report, ok=%v err=%v", ok, err)
	}

	report := entities.NewDailyReport(day, "# Daily digest")
	if err := repo.Save(report); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok, err := repo.GetByDate(day)
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if got.MarkdownContent != "# Daily digest" || got.ID != report.ID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.ExtractedTasks == nil || len(got.ExtractedTasks) != 0 {
		t.Fatalf("tasks should decode to empty list, got %+v", got.ExtractedTasks)
	}

	// second save for the same day must refuse
	err = repo.Save(entities.NewDailyReport(day, "dup"))
	if err == nil {
		t.Fatal("duplicate save succeeded")
	}
	var appErr apperr.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != apperr.ErrorCode_ALREADY_EXISTS {
		t.Fatalf("duplicate save should carry ALREADY_EXISTS, got %v", err)
	}

	second := entities.NewDailyReport(day.AddDate(0, 0, 1), "# Next day")
	if err := repo.Save(second); err != nil {
		t.Fatal(err)
	}
	list, err := repo.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || !list[0].Date.After(list[1].Date) {
		t.Fatalf("unexpected list %+v", list)
	}
}
