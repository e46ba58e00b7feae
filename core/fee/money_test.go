package fee_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenschool/schoolconnect/core/fee"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    fee.Money
		wantErr bool
	}{
		{in: "25000", want: fee.Whole(25000)},
		{in: "25000.5", want: 2500050},
		{in: "0.07", want: 7},
		{in: " 12.34 ", want: 1234},
		{in: "-3.25", want: -325},
		{in: "12.345", wantErr: true},
		{in: "1e3", wantErr: true},
		{in: ".5", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := fee.ParseMoney(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoney_JSON(t *testing.T) {
	var f struct {
		Amount fee.Money `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 0.1}`), &f))
	assert.Equal(t, fee.Money(10), f.Amount)

	f.Amount += fee.Money(20) // 0.1 + 0.2 stays exact
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 0.30}`, string(b))

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "1500"}`), &f))
	assert.Equal(t, fee.Whole(1500), f.Amount)

	assert.Error(t, json.Unmarshal([]byte(`{"amount": 1.005}`), &f))
	assert.Equal(t, "-0.05", fee.Money(-5).String())
}
