package service_test

import (
	"testing"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/entities"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestValidateStock(t *testing.T) {
	testCases := []struct {
		name      string
		available int
		requested int
		wantErr   string
	}{
		{
			name:      "enough stock",
			available: 5,
			requested: 3,
		},
		{
			name:      "exact stock",
			available: 3,
			requested: 3,
		},
		{
			name:      "insufficient stock",
			available: 2,
			requested: 5,
			wantErr:   "Insufficient stock for 'Laptop'. Available: 2, Requested: 5",
		},
		{
			name:      "zero quantity",
			available: 10,
			requested: 0,
			wantErr:   "Quantity must be at least 1. Requested: 0",
		},
		{
			name:      "negative quantity",
			available: 10,
			requested: -1,
			wantErr:   "Quantity must be at least 1. Requested: -1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.ValidateStock("Laptop", tc.available, tc.requested)

			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, entities.ErrBadRequest)
			assert.EqualError(t, err, tc.wantErr)
		})
	}
}
