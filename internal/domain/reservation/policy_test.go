package reservation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialStatus(t *testing.T) {
	tests := []struct {
		name        string
		policy      InitialPolicy
		total       int64
		paid        int64
		want        Status
		expectedErr error
	}{
		{"入金なしはpending_payment", PolicyStandard, 200, 0, StatusPendingPayment, nil},
		{"方針未指定は標準扱い", "", 200, 0, StatusPendingPayment, nil},
		{"30%以上の初回入金でconfirmed", PolicyStandard, 200, 60, StatusConfirmed, nil},
		{"30%未満の初回入金はpending_payment", PolicyStandard, 200, 59, StatusPendingPayment, nil},
		{"draft指定", PolicyDraft, 200, 0, StatusDraft, nil},
		{"draftに初回入金は不可", PolicyDraft, 200, 10, "", ErrInvalidInitialPolicy},
		{"未知の方針", "quote", 200, 0, "", ErrInvalidInitialPolicy},
		{"負の入金", PolicyStandard, 200, -1, "", ErrInvalidInitialPolicy},
		{"合計0はconfirmed", PolicyStandard, 0, 0, StatusConfirmed, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InitialStatus(tt.policy, decimal.NewFromInt(tt.total), decimal.NewFromInt(tt.paid))
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
