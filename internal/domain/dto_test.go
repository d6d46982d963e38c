package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTimesheetRequestHoursBounds(t *testing.T) {
	validate := validator.New()
	workDate := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		hours float64
		valid bool
	}{
		{0, false},
		{-1, false},
		{25, false},
		{24.5, false},
		{0.25, true},
		{8, true},
		{24, true},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("create with %v hours", tc.hours), func(t *testing.T) {
			err := validate.Struct(&domain.CreateTimesheetRequest{
				UserID:   uuid.New(),
				WorkDate: workDate,
				Hours:    tc.hours,
			})
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})

		t.Run(fmt.Sprintf("update with %v hours", tc.hours), func(t *testing.T) {
			err := validate.Struct(&domain.UpdateTimesheetRequest{
				WorkDate: workDate,
				Hours:    tc.hours,
			})
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
