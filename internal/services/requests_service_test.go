package services

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Run("accepts RFC3339", func(t *testing.T) {
		got, err := ParseDate("2026-03-01T14:30:00Z")
		if err != nil {
			t.Fatalf("ParseDate failed: %v", err)
		}
		if got.Hour() != 14 || got.Minute() != 30 {
			t.Fatalf("unexpected time %s", got)
		}
	})

	t.Run("accepts bare dates", func(t *testing.T) {
		got, err := ParseDate(" 2026-03-01 ")
		if err != nil {
			t.Fatalf("ParseDate failed: %v", err)
		}
		if got.Format(time.DateOnly) != "2026-03-01" {
			t.Fatalf("unexpected date %s", got)
		}
	})

	t.Run("rejects everything else", func(t *testing.T) {
		for _, value := range []string{"", "March 1st", "01/03/2026"} {
			if _, err := ParseDate(value); err == nil {
				t.Fatalf("expected %q to be rejected", value)
			}
		}
	})
}

func TestParseEndDate(t *testing.T) {
	t.Run("pushes bare dates to end of day", func(t *testing.T) {
		got, err := ParseEndDate("2026-03-01")
		if err != nil {
			t.Fatalf("ParseEndDate failed: %v", err)
		}
		if got.Format(time.RFC3339) != "2026-03-01T23:59:59Z" {
			t.Fatalf("unexpected end of window %s", got)
		}
	})

	t.Run("keeps explicit timestamps", func(t *testing.T) {
		got, err := ParseEndDate("2026-03-01T10:00:00Z")
		if err != nil {
			t.Fatalf("ParseEndDate failed: %v", err)
		}
		if got.Hour() != 10 {
			t.Fatalf("unexpected time %s", got)
		}
	})
}

func TestStatusInvariants(t *testing.T) {
	db := openTestDB(t)
	svc := NewRequestService(db, NewNotifier(&memoryMailer{}, 100), false)

	request, err := svc.Create(CreateRequestInput{
		Name:        "Dana",
		Email:       "dana@test.com",
		Department:  "Finance",
		RequestType: "Report",
		Description: "Monthly close numbers",
		DueDate:     "2026-10-01",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if request.Status != "pending" || request.AssignedToID != nil {
		t.Fatalf("a new request must be pending and unassigned: %+v", request)
	}
	if request.Completed || request.CompletedAt != nil || request.AssignedAt != nil {
		t.Fatalf("a new request must carry no lifecycle timestamps: %+v", request)
	}
}
