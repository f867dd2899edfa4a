package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMoneyMarshalsWithTwoDecimals(t *testing.T) {
	cases := []struct {
		in   Money
		want string
	}{
		{150, "150.00"},
		{89.9, "89.90"},
		{100.456, "100.46"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		got, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("marshal %v: %v", tc.in, err)
		}
		if string(got) != tc.want {
			t.Errorf("Money(%v) = %s, want %s", float64(tc.in), got, tc.want)
		}
	}
}

func TestChargePayloadValueFormat(t *testing.T) {
	body, err := json.Marshal(&ChargePayload{
		Customer:    "cus_1",
		BillingType: "PIX",
		Value:       150,
		DueDate:     "2026-08-31",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"value":150.00`) {
		t.Errorf("body = %s, want value with two decimals", body)
	}

	var decoded struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Value != 150 {
		t.Errorf("decoded value = %v, want 150", decoded.Value)
	}
}
