package schedules

import (
	"context"
	"reflect"
	"testing"
)

func TestInMemoryUpsertOverwritesKeepingID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first, err := repo.Upsert(ctx, &UpsertRequest{
		DoctorID:       "dr-khalid",
		Date:           "2026-09-02",
		AvailableSlots: []string{"10:00 صباحاً"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := repo.Upsert(ctx, &UpsertRequest{
		DoctorID: "dr-khalid",
		Date:     "2026-09-02",
		IsDayOff: true,
	})
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-upsert changed id: %s -> %s", first.ID, second.ID)
	}
	if !second.IsDayOff {
		t.Error("overwrite did not apply")
	}

	got, err := repo.GetByDoctorDate(ctx, "dr-khalid", "2026-09-02")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsDayOff || len(got.AvailableSlots) != 0 {
		t.Errorf("stored record mismatch: %+v", got)
	}
}

func TestInMemoryGetMissing(t *testing.T) {
	repo := NewInMemoryRepository()
	if _, err := repo.GetByDoctorDate(context.Background(), "dr-khalid", "2026-09-02"); err != ErrNoRecord {
		t.Fatalf("got %v, want ErrNoRecord", err)
	}
}

func TestInMemoryUpsertValidates(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, &UpsertRequest{Date: "2026-09-02"}); err != ErrMissingDoctor {
		t.Errorf("got %v, want ErrMissingDoctor", err)
	}
	if _, err := repo.Upsert(ctx, &UpsertRequest{DoctorID: "dr-khalid", Date: "02/09/2026"}); err != ErrInvalidDate {
		t.Errorf("got %v, want ErrInvalidDate", err)
	}
}

func TestInMemoryListByDoctor(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, date := range []string{"2026-09-03", "2026-09-01", "2026-09-02"} {
		if _, err := repo.Upsert(ctx, &UpsertRequest{DoctorID: "dr-khalid", Date: date}); err != nil {
			t.Fatalf("upsert %s: %v", date, err)
		}
	}
	if _, err := repo.Upsert(ctx, &UpsertRequest{DoctorID: "dr-maha", Date: "2026-09-01"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	out, err := repo.ListByDoctor(ctx, "dr-khalid")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var dates []string
	for _, s := range out {
		dates = append(dates, s.Date)
	}
	if !reflect.DeepEqual(dates, []string{"2026-09-01", "2026-09-02", "2026-09-03"}) {
		t.Errorf("got %v, want sorted dates", dates)
	}
}
