package integrationtests

import (
	"fmt"
	"testing"
	"time"

	"smartstay/pkg/model"
	"smartstay/test/integration/testutil"
)

// These tests exercise a deployed stack end to end. They run only when
// SMARTSTAY_IT_BASE_URL points at a properties+bookings deployment sharing
// one database.

var (
	host  = testutil.Actor{ID: "64f0c1a2b3d4e5f6aa000001", Email: "it-host@example.com", Role: "host"}
	guest = testutil.Actor{ID: "64f0c1a2b3d4e5f6aa000002", Email: "it-guest@example.com", Role: "guest"}
)

type envelope struct {
	Data map[string]any `json:"data"`
}

func createProperty(t *testing.T, client *testutil.Client) string {
	t.Helper()

	resp := client.POST(t, host, "/api/v1/properties", map[string]any{
		"title":           fmt.Sprintf("Lifecycle Loft %d", time.Now().UnixNano()),
		"category":        "apartment",
		"address":         "12 Harbor Street",
		"city":            "Lisbon",
		"country":         "Portugal",
		"price_per_night": 120.0,
		"bedrooms":        2,
		"bathrooms":       1,
		"max_guests":      4,
	})
	testutil.AssertStatusCode(t, resp, 201)

	var created envelope
	if err := resp.DecodeJSON(&created); err != nil {
		t.Fatalf("failed to decode property: %v", err)
	}
	id, _ := created.Data["id"].(string)
	if id == "" {
		t.Fatalf("property response missing id: %s", string(resp.Body))
	}
	return id
}

func bookingDates(daysAhead, nights int) (string, string) {
	checkIn := time.Now().AddDate(0, 0, daysAhead).Truncate(time.Hour)
	return checkIn.Format(time.RFC3339), checkIn.AddDate(0, 0, nights).Format(time.RFC3339)
}

func TestBookingLifecycle(t *testing.T) {
	client := testutil.NewClient(t)
	client.WaitForHealthy(t, 30*time.Second)

	propertyID := createProperty(t, client)
	checkIn, checkOut := bookingDates(30, 4)

	resp := client.GET(t, guest, fmt.Sprintf(
		"/api/v1/bookings/availability?property_id=%s&check_in=%s&check_out=%s",
		propertyID, checkIn, checkOut,
	))
	testutil.AssertStatusCode(t, resp, 200)
	testutil.AssertContains(t, resp, `"available":true`)

	resp = client.POST(t, guest, "/api/v1/bookings", map[string]any{
		"property_id": propertyID,
		"check_in":    checkIn,
		"check_out":   checkOut,
		"guests":      2,
	})
	testutil.AssertStatusCode(t, resp, 201)

	var created envelope
	if err := resp.DecodeJSON(&created); err != nil {
		t.Fatalf("failed to decode booking: %v", err)
	}
	bookingID, _ := created.Data["id"].(string)
	if bookingID == "" {
		t.Fatalf("booking response missing id: %s", string(resp.Body))
	}
	if status, _ := created.Data["status"].(string); status != string(model.BookingPending) {
		t.Fatalf("expected pending booking, got %q", status)
	}

	// The same dates are now taken.
	resp = client.POST(t, guest, "/api/v1/bookings", map[string]any{
		"property_id": propertyID,
		"check_in":    checkIn,
		"check_out":   checkOut,
		"guests":      2,
	})
	testutil.AssertStatusCode(t, resp, 409)

	// Host confirms the booking.
	resp = client.POST(t, host, fmt.Sprintf("/api/v1/bookings/id/%s/transition", bookingID),
		map[string]any{"status": model.BookingConfirmed})
	testutil.AssertStatusCode(t, resp, 200)

	// Check-in is gated on the stay window; the stay is a month out.
	resp = client.POST(t, host, fmt.Sprintf("/api/v1/bookings/id/%s/transition", bookingID),
		map[string]any{"status": model.BookingCheckedIn})
	testutil.AssertStatusCode(t, resp, 409)

	// Host cancels, and cancelled is terminal.
	resp = client.POST(t, host, fmt.Sprintf("/api/v1/bookings/id/%s/transition", bookingID),
		map[string]any{"status": model.BookingCancelled, "reason": "double booked"})
	testutil.AssertStatusCode(t, resp, 200)

	resp = client.POST(t, host, fmt.Sprintf("/api/v1/bookings/id/%s/transition", bookingID),
		map[string]any{"status": model.BookingConfirmed})
	testutil.AssertStatusCode(t, resp, 409)
}

func TestGuestCancellation(t *testing.T) {
	client := testutil.NewClient(t)
	client.WaitForHealthy(t, 30*time.Second)

	propertyID := createProperty(t, client)
	checkIn, checkOut := bookingDates(45, 3)

	resp := client.POST(t, guest, "/api/v1/bookings", map[string]any{
		"property_id": propertyID,
		"check_in":    checkIn,
		"check_out":   checkOut,
		"guests":      1,
	})
	testutil.AssertStatusCode(t, resp, 201)

	var created envelope
	if err := resp.DecodeJSON(&created); err != nil {
		t.Fatalf("failed to decode booking: %v", err)
	}
	bookingID, _ := created.Data["id"].(string)

	resp = client.POST(t, guest, fmt.Sprintf("/api/v1/bookings/id/%s/transition", bookingID),
		map[string]any{"status": model.BookingCancelled, "reason": "change of plans"})
	testutil.AssertStatusCode(t, resp, 200)

	// Cancelled dates are free again.
	resp = client.GET(t, guest, fmt.Sprintf(
		"/api/v1/bookings/availability?property_id=%s&check_in=%s&check_out=%s",
		propertyID, checkIn, checkOut,
	))
	testutil.AssertStatusCode(t, resp, 200)
	testutil.AssertContains(t, resp, `"available":true`)
}

func TestStrangerCannotReadBooking(t *testing.T) {
	client := testutil.NewClient(t)
	client.WaitForHealthy(t, 30*time.Second)

	propertyID := createProperty(t, client)
	checkIn, checkOut := bookingDates(60, 2)

	resp := client.POST(t, guest, "/api/v1/bookings", map[string]any{
		"property_id": propertyID,
		"check_in":    checkIn,
		"check_out":   checkOut,
		"guests":      1,
	})
	testutil.AssertStatusCode(t, resp, 201)

	var created envelope
	if err := resp.DecodeJSON(&created); err != nil {
		t.Fatalf("failed to decode booking: %v", err)
	}
	bookingID, _ := created.Data["id"].(string)

	stranger := testutil.Actor{ID: "64f0c1a2b3d4e5f6aa000099", Email: "it-stranger@example.com", Role: "guest"}
	resp = client.GET(t, stranger, "/api/v1/bookings/id/"+bookingID)
	testutil.AssertStatusCode(t, resp, 403)
}
