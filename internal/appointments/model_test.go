package appointments

import "testing"

var testPhones = PhoneRule{Prefixes: []string{"77", "78", "79"}}

func TestPhoneRuleValid(t *testing.T) {
	cases := []struct {
		phone string
		want  bool
	}{
		{"0771234567", true},
		{"0781234567", true},
		{"0791234567", true},
		{"0761234567", false}, // unknown prefix
		{"0771234", false},    // too short
		{"07712345678", false},
		{"1771234567", false}, // no leading zero
		{"077123456a", false},
		{"077 123456", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := testPhones.Valid(tc.phone); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.phone, got, tc.want)
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}

	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("Completed and Cancelled must be terminal")
	}
	if StatusPending.Terminal() || StatusConfirmed.Terminal() {
		t.Error("Pending and Confirmed must not be terminal")
	}
}

func validRequest() CreateRequest {
	return CreateRequest{
		PatientName:  "سارة أحمد",
		PatientPhone: "0791234567",
		DoctorID:     "dr-khalid",
		Date:         "2026-09-02",
		Slot:         "10:00 صباحاً",
		ProcedureID:  "cleaning",
	}
}

func TestCreateRequestValidate(t *testing.T) {
	req := validRequest()
	if err := req.Validate(testPhones); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*CreateRequest)
		wantErr error
	}{
		{"missing name", func(r *CreateRequest) { r.PatientName = "  " }, ErrMissingPatientName},
		{"bad phone", func(r *CreateRequest) { r.PatientPhone = "12345" }, ErrInvalidPhone},
		{"missing doctor", func(r *CreateRequest) { r.DoctorID = "" }, ErrMissingDoctor},
		{"bad date", func(r *CreateRequest) { r.Date = "02/09/2026" }, ErrInvalidDate},
		{"missing slot", func(r *CreateRequest) { r.Slot = "" }, ErrMissingSlot},
		{"missing procedure", func(r *CreateRequest) { r.ProcedureID = "" }, ErrMissingProcedure},
		{"other without notes", func(r *CreateRequest) { r.ProcedureID = OtherProcedureID }, ErrOtherNeedsNotes},
		{"unknown status", func(r *CreateRequest) { r.Status = Status("Booked") }, ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			if err := req.Validate(testPhones); err != tc.wantErr {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateRequestValidateOtherWithNotes(t *testing.T) {
	req := validRequest()
	req.ProcedureID = OtherProcedureID
	req.Notes = "ألم في الضرس"
	if err := req.Validate(testPhones); err != nil {
		t.Fatalf("other with notes rejected: %v", err)
	}
}

func TestWeekday(t *testing.T) {
	// 2026-09-04 is a Friday.
	day, err := Weekday("2026-09-04")
	if err != nil {
		t.Fatalf("weekday: %v", err)
	}
	if day.String() != "Friday" {
		t.Errorf("got %s, want Friday", day)
	}
	if _, err := Weekday("not-a-date"); err != ErrInvalidDate {
		t.Errorf("got %v, want ErrInvalidDate", err)
	}
}
