package core

import "testing"

func TestParseAccountType(t *testing.T) {
	cases := []struct {
		in   string
		code int
	}{
		{"personal", 0},
		{"savings", 1},
		{"credit", 2},
		{"Savings", 1},
		{"2", 2},
		{"", 0},
		{"brokerage", 0},
		{"7", 0},
	}
	for _, tc := range cases {
		if got := ParseAccountType(tc.in).Code(); got != tc.code {
			t.Errorf("ParseAccountType(%q)=%d, want %d", tc.in, got, tc.code)
		}
	}
}

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
	}{
		{"income", TransactionIncome},
		{"expense", TransactionExpense},
		{"transfer", TransactionTransfer},
		{"1", TransactionExpense},
		{"", TransactionIncome},
		{"refund", TransactionIncome},
	}
	for _, tc := range cases {
		if got := ParseTransactionType(tc.in); got != tc.want {
			t.Errorf("ParseTransactionType(%q)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseAccessLevel(t *testing.T) {
	if l, ok := ParseAccessLevel("write"); !ok || l != AccessWrite {
		t.Fatalf("write -> %v %v", l, ok)
	}
	if l, ok := ParseAccessLevel("2"); !ok || l != AccessOwner {
		t.Fatalf("2 -> %v %v", l, ok)
	}
	if _, ok := ParseAccessLevel(""); ok {
		t.Fatal("empty access level accepted")
	}
	if _, ok := ParseAccessLevel("admin"); ok {
		t.Fatal("unknown access level accepted")
	}
}

func TestEnumStrings(t *testing.T) {
	if AccountCredit.String() != "credit" {
		t.Errorf("AccountCredit=%q", AccountCredit.String())
	}
	if TransactionTransfer.String() != "transfer" {
		t.Errorf("TransactionTransfer=%q", TransactionTransfer.String())
	}
	if AccountType(9).String() != "personal" {
		t.Errorf("out of range account type=%q", AccountType(9).String())
	}
	opts := AccessLevelOptions()
	if len(opts) != 3 || opts[2].Value != "owner" || opts[2].Label != "Owner" {
		t.Errorf("unexpected options %+v", opts)
	}
}
