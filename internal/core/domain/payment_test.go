package domain_test

import (
	"testing"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPayment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		payment domain.Payment
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid payment without discount",
			payment: domain.Payment{
				Amount:      decimal.NewFromInt(3000),
				PaymentType: domain.PaymentPartial,
				Channel:     domain.ChannelCash,
				PaidFor: []domain.Allocation{
					{SrNo: "101", Amount: decimal.NewFromInt(2000)},
					{SrNo: "102", Amount: decimal.NewFromInt(1000)},
				},
			},
			wantErr: false,
		},
		{
			name: "valid payment with discount",
			payment: domain.Payment{
				Amount:    decimal.NewFromInt(9800),
				CDAmount:  decimal.NewFromInt(200),
				CDApplied: true,
				Channel:   domain.ChannelRTGS,
				PaidFor: []domain.Allocation{
					{SrNo: "101", Amount: decimal.NewFromInt(9800), CDAmount: decimal.NewFromInt(200), CDApplied: true},
				},
			},
			wantErr: false,
		},
		{
			name: "excess payment allocates less than settlement value",
			payment: domain.Payment{
				Amount:  decimal.NewFromInt(5000),
				Channel: domain.ChannelCash,
				PaidFor: []domain.Allocation{
					{SrNo: "101", Amount: decimal.NewFromInt(4200)},
				},
			},
			wantErr: false,
		},
		{
			name: "zero amount",
			payment: domain.Payment{
				Amount:  decimal.Zero,
				PaidFor: []domain.Allocation{{SrNo: "101"}},
			},
			wantErr: true,
			errMsg:  "must be positive",
		},
		{
			name: "no allocations",
			payment: domain.Payment{
				Amount: decimal.NewFromInt(100),
			},
			wantErr: true,
			errMsg:  "at least one entry",
		},
		{
			name: "allocations exceed settlement value",
			payment: domain.Payment{
				Amount:  decimal.NewFromInt(100),
				Channel: domain.ChannelCash,
				PaidFor: []domain.Allocation{
					{SrNo: "101", Amount: decimal.NewFromInt(150)},
				},
			},
			wantErr: true,
			errMsg:  "exceeding payment settlement value",
		},
		{
			name: "negative allocation line",
			payment: domain.Payment{
				Amount:  decimal.NewFromInt(100),
				Channel: domain.ChannelCash,
				PaidFor: []domain.Allocation{
					{SrNo: "101", Amount: decimal.NewFromInt(-10)},
				},
			},
			wantErr: true,
			errMsg:  "negative amounts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payment.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPayment_SettlementValue(t *testing.T) {
	p := domain.Payment{
		Amount:    decimal.NewFromInt(9800),
		CDAmount:  decimal.NewFromInt(200),
		CDApplied: true,
	}
	assert.True(t, decimal.NewFromInt(10000).Equal(p.SettlementValue()))

	// Discount recorded but not applied does not inflate the settlement.
	p.CDApplied = false
	assert.True(t, decimal.NewFromInt(9800).Equal(p.SettlementValue()))
}
