package controllers

import (
	"reflect"
	"testing"

	"oquvmarkaz_go/services"
	"oquvmarkaz_go/utils"
)

func studentDTO(id uint, status string) utils.StudentDTO {
	return utils.StudentDTO{
		ID:      id,
		Payment: services.PaymentState{Status: status},
	}
}

func TestFilterByPaymentStatus(t *testing.T) {
	dtos := []utils.StudentDTO{
		studentDTO(1, services.PaymentStatusPaid),
		studentDTO(2, services.PaymentStatusUnpaid),
		studentDTO(3, services.PaymentStatusPaid),
		studentDTO(4, services.PaymentStatusUnpaid),
		studentDTO(5, services.PaymentStatusPaid),
	}

	filtered := filterByPaymentStatus(dtos, services.PaymentStatusPaid)

	var ids []uint
	for _, dto := range filtered {
		ids = append(ids, dto.ID)
	}
	if want := []uint{1, 3, 5}; !reflect.DeepEqual(ids, want) {
		t.Errorf("filtered ids = %v, want %v", ids, want)
	}
}

// A status filter must paginate the filtered set: the total counts matching
// students only, and later pages hold the remaining matches instead of
// coming back short.
func TestFilterByPaymentStatusPaginates(t *testing.T) {
	var dtos []utils.StudentDTO
	for i := uint(1); i <= 10; i++ {
		status := services.PaymentStatusUnpaid
		if i%2 == 0 {
			status = services.PaymentStatusPaid
		}
		dtos = append(dtos, studentDTO(i, status))
	}

	filtered := filterByPaymentStatus(dtos, services.PaymentStatusPaid)
	if len(filtered) != 5 {
		t.Fatalf("total = %d, want 5", len(filtered))
	}

	first := pageOf(filtered, 0, 3)
	second := pageOf(filtered, 3, 3)

	var got []uint
	for _, dto := range append(first, second...) {
		got = append(got, dto.ID)
	}
	if want := []uint{2, 4, 6, 8, 10}; !reflect.DeepEqual(got, want) {
		t.Errorf("paged ids = %v, want %v", got, want)
	}
}

func TestPageOf(t *testing.T) {
	dtos := []utils.StudentDTO{
		studentDTO(1, services.PaymentStatusPaid),
		studentDTO(2, services.PaymentStatusPaid),
		studentDTO(3, services.PaymentStatusPaid),
	}

	tests := []struct {
		name    string
		offset  int
		limit   int
		wantIDs []uint
	}{
		{"full page", 0, 3, []uint{1, 2, 3}},
		{"partial last page", 2, 3, []uint{3}},
		{"offset past end", 5, 3, nil},
		{"first of two", 0, 2, []uint{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []uint
			for _, dto := range pageOf(dtos, tt.offset, tt.limit) {
				got = append(got, dto.ID)
			}
			if !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("pageOf(%d, %d) ids = %v, want %v", tt.offset, tt.limit, got, tt.wantIDs)
			}
		})
	}
}
