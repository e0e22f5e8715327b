package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		debit   decimal.Decimal
		credit  decimal.Decimal
		wantErr bool
	}{
		{name: "debit only", debit: decimal.NewFromInt(100), credit: decimal.Zero},
		{name: "credit only", debit: decimal.Zero, credit: decimal.NewFromInt(100)},
		{name: "both set", debit: decimal.NewFromInt(100), credit: decimal.NewFromInt(100), wantErr: true},
		{name: "neither set", debit: decimal.Zero, credit: decimal.Zero, wantErr: true},
		{name: "negative debit", debit: decimal.NewFromInt(-5), credit: decimal.Zero, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Debit: tt.debit, Credit: tt.credit}

			err := e.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntry_LocalAmount(t *testing.T) {
	debit := &Entry{Debit: decimal.NewFromInt(100)}
	if !debit.LocalAmount().Equal(decimal.NewFromInt(100)) {
		t.Errorf("debit local amount should be positive, got %s", debit.LocalAmount())
	}

	credit := &Entry{Credit: decimal.NewFromInt(100)}
	if !credit.LocalAmount().Equal(decimal.NewFromInt(-100)) {
		t.Errorf("credit local amount should be negative, got %s", credit.LocalAmount())
	}
}

func TestJournal_Balanced(t *testing.T) {
	j := &Journal{
		Entries: []*Entry{
			{BaseAmount: decimal.NewFromInt(108)},
			{BaseAmount: decimal.NewFromInt(-108)},
		},
	}

	if !j.Balanced() {
		t.Errorf("journal should balance, base sum = %s", j.BaseSum())
	}
}

func TestJournal_Balanced_WithinTolerance(t *testing.T) {
	// Rounding residue below 1e-6 still balances.
	residue, _ := decimal.NewFromString("0.0000005")

	j := &Journal{
		Entries: []*Entry{
			{BaseAmount: decimal.NewFromInt(100)},
			{BaseAmount: decimal.NewFromInt(-100).Add(residue)},
		},
	}

	if !j.Balanced() {
		t.Errorf("residue %s should be within tolerance", residue)
	}
}

func TestJournal_Unbalanced(t *testing.T) {
	j := &Journal{
		Entries: []*Entry{
			{BaseAmount: decimal.NewFromInt(100)},
			{BaseAmount: decimal.NewFromInt(-99)},
		},
	}

	if j.Balanced() {
		t.Error("journal should not balance")
	}
}
