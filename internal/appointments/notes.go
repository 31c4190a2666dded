package appointments

import (
	"fmt"
	"strings"
	"time"
)

// Audit entries are appended to the free-text notes field, never
// overwriting prior content. The bracketed tags match what the clinic
// staff already read in their records.
const (
	cancelTag = "إلغاء"
	editTag   = "تعديل"
)

func auditTimestamp(at time.Time) string {
	return at.Format("02/01/2006")
}

// AppendCancelNote appends a cancellation audit line. The reason is
// optional.
func AppendCancelNote(notes string, at time.Time, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return notes + fmt.Sprintf("\n[%s %s]", cancelTag, auditTimestamp(at))
	}
	return notes + fmt.Sprintf("\n[%s %s: %s]", cancelTag, auditTimestamp(at), reason)
}

// AppendEditNote appends a change-reason audit line.
func AppendEditNote(notes string, at time.Time, reason string) string {
	return notes + fmt.Sprintf("\n[%s %s: %s]", editTag, auditTimestamp(at), strings.TrimSpace(reason))
}
