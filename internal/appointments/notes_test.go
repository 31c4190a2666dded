package appointments

import (
	"testing"
	"time"
)

func TestAppendCancelNote(t *testing.T) {
	at := time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)

	got := AppendCancelNote("ملاحظة أولى", at, "سفر")
	want := "ملاحظة أولى\n[إلغاء 02/09/2026: سفر]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = AppendCancelNote("", at, "")
	want = "\n[إلغاء 02/09/2026]"
	if got != want {
		t.Errorf("without reason: got %q, want %q", got, want)
	}
}

func TestAppendEditNote(t *testing.T) {
	at := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	got := AppendEditNote("سجل", at, " تغيير الموعد ")
	want := "سجل\n[تعديل 02/09/2026: تغيير الموعد]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAuditNotesAccumulate(t *testing.T) {
	at := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	notes := AppendEditNote("أصل", at, "سبب")
	notes = AppendCancelNote(notes, at.AddDate(0, 0, 1), "مرض")
	want := "أصل\n[تعديل 02/09/2026: سبب]\n[إلغاء 03/09/2026: مرض]"
	if notes != want {
		t.Errorf("got %q, want %q", notes, want)
	}
}
