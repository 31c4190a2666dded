package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hsalameh/dental-clinic-platform/internal/appointments"
	"github.com/hsalameh/dental-clinic-platform/internal/availability"
	"github.com/hsalameh/dental-clinic-platform/internal/schedules"
)

func newTestHandler(t *testing.T) (*Handler, *appointments.InMemoryRepository) {
	t.Helper()
	apptRepo := appointments.NewInMemoryRepository()
	source := schedules.NewSource(schedules.NewInMemoryRepository(), testDefaults)
	coordinator := NewCoordinator(apptRepo, source, testPhones, nil, nil, nil, nil)
	resolver := availability.NewResolver(source, apptRepo)
	return NewHandler(coordinator, resolver, nil, nil), apptRepo
}

func TestGetAvailability(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/availability?doctorId=dr-khalid&date="+workingDate, nil)
	h.GetAvailability(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	var got AvailabilityResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.AvailableSlots) != len(testDefaults.Slots) {
		t.Errorf("got %v", got.AvailableSlots)
	}
}

func TestGetAvailabilityMissingParams(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.GetAvailability(rec, httptest.NewRequest(http.MethodGet, "/availability", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	var got AvailabilityResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.AvailableSlots) != 0 {
		t.Errorf("missing params should yield empty list, got %v", got.AvailableSlots)
	}
}

func TestCreateBooking(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"patientName":"سارة أحمد","patientPhone":"0791234567","doctorId":"dr-khalid","date":"` + workingDate + `","time":"10:00 صباحاً","procedureId":"cleaning"}`
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201: %s", rec.Code, rec.Body)
	}
	var got BookingResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Degraded {
		t.Error("healthy path returned degraded")
	}
	if got.Appointment.Status != appointments.StatusConfirmed {
		t.Errorf("status = %s", got.Appointment.Status)
	}

	// Same slot again conflicts.
	rec = httptest.NewRecorder()
	h.CreateBooking(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Errorf("got %d, want 409", rec.Code)
	}
}

func TestCreateBookingValidationError(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"patientName":"سارة أحمد","patientPhone":"123","doctorId":"dr-khalid","date":"` + workingDate + `","time":"10:00 صباحاً","procedureId":"cleaning"}`
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.CreateBooking(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got %d, want 400", rec.Code)
	}
}

func TestCreateBookingRejectsClientStatus(t *testing.T) {
	h, repo := newTestHandler(t)

	body := `{"patientName":"سارة أحمد","patientPhone":"0791234567","doctorId":"dr-khalid","date":"2026-09-02","time":"10:00 صباحاً","procedureId":"cleaning","status":"Completed"}`
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400: %s", rec.Code, rec.Body)
	}
	all, _ := repo.List(context.Background(), appointments.Filter{})
	if len(all) != 0 {
		t.Errorf("client-chosen status reached the store: %d records", len(all))
	}
}
