package services

import (
	"context"
	"testing"
	"time"
)

func TestCategoriseTransaction(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"CITCO FUNDS SERVICES PAYROLL", "salary"},
		{"Uber   *one subscription", "subscriptions"}, // must win over generic uber
		{"UBER TRIP DUBLIN", "transport"},
		{"GITHUB INC", "dev_tools"},
		{"TESCO STORES 2044", "groceries"},
		{"JUST EAT IE", "takeaway"},
		{"INSOMNIA COFFEE CO", "coffee_eating_out"},
		{"LUAS CARD TOP UP", "transport"},
		{"CIRCLE K SANDYFORD", "fuel"},
		{"WESTWOOD LEOPA RENT", "rent"},
		{"WEST WOOD CLUB DD", "fitness"},
		{"Revolut**8820* transfer", "transfer"},
		{"SOME RANDOM SHOP", "other"},
	}
	for _, tt := range tests {
		if got := CategoriseTransaction(tt.description); got != tt.want {
			t.Errorf("CategoriseTransaction(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}

const revolutCSV = `Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance
CARD_PAYMENT,Current,2026-01-05 09:12:44,2026-01-05 10:00:12,Tesco Stores,-45.20,0,EUR,COMPLETED,1200.50
CARD_PAYMENT,Current,2026-01-06 18:30:00,2026-01-06 19:00:00,Uber Trip,-18.40,0.50,EUR,COMPLETED,1182.10
CARD_PAYMENT,Current,2026-01-07 08:00:00,,Pending thing,-9.99,0,EUR,PENDING,
TOPUP,Current,2026-01-08 12:00:00,2026-01-08 12:00:05,Payment from Jason,500.00,0,EUR,COMPLETED,1682.10
`

func TestParseRevolutCSV(t *testing.T) {
	transactions, err := ParseRevolutCSV(revolutCSV)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// 3 completed rows plus one fee split; the pending row is dropped.
	if len(transactions) != 4 {
		t.Fatalf("got %d transactions, want 4", len(transactions))
	}

	if transactions[0].Date != "2026-01-05" || transactions[0].Amount != -45.20 {
		t.Errorf("first = %+v", transactions[0])
	}
	if transactions[0].Category != "groceries" {
		t.Errorf("first category = %s, want groceries", transactions[0].Category)
	}

	fee := transactions[2]
	if fee.Category != "fees" || fee.Amount != -0.50 {
		t.Errorf("fee split = %+v, want a -0.50 fees transaction", fee)
	}
	if fee.Description != "Fee: Uber Trip" {
		t.Errorf("fee description = %q", fee.Description)
	}

	topup := transactions[3]
	if topup.Amount != 500.00 {
		t.Errorf("topup amount = %.2f, want 500.00", topup.Amount)
	}
}

const aibCSV = `Posted Account, Posted Transactions Date, Description, Debit Amount, Credit Amount,Balance,Posted Currency,Transaction Type
12345678,02/01/26,TESCO STORES 2044,45.20,,954.80,EUR,Debit
12345678,02/01/26,Interest Rate 0.00%,,,954.80,EUR,
12345678,03/01/26,1.0842,,,954.80,EUR,
12345678,03/01/26,AMZN MKTP USD@1.0842,32.50,,954.80,EUR,
12345678,03/01/26,AMAZON PURCHASE INCL FX FEE,0.45,,954.35,EUR,
12345678,05/01/26,CITCO FUNDS SALARY,,3200.00,4154.80,EUR,Credit
12345678,06/01/26,LUAS TOP UP,20.00,,4134.80,EUR,Debit
`

func TestParseAIBCSV(t *testing.T) {
	transactions, err := ParseAIBCSV(aibCSV)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(transactions) != 3 {
		t.Fatalf("got %d transactions, want 3 (noise rows skipped)", len(transactions))
	}

	if transactions[0].Date != "2026-01-02" {
		t.Errorf("date = %s, want dd/mm/yy parsed as 2026-01-02", transactions[0].Date)
	}
	if transactions[0].Amount != -45.20 {
		t.Errorf("debit amount = %.2f, want -45.20", transactions[0].Amount)
	}

	salary := transactions[1]
	if salary.Amount != 3200.00 || salary.Category != "salary" {
		t.Errorf("salary = %+v", salary)
	}
	if transactions[2].Category != "transport" {
		t.Errorf("luas category = %s, want transport", transactions[2].Category)
	}
}

func TestImportTransactions_DuplicatesSkipped(t *testing.T) {
	svc := NewFinanceService(testDB(t))
	ctx := context.Background()

	parsed, err := ParseRevolutCSV(revolutCSV)
	if err != nil {
		t.Fatal(err)
	}

	first, err := svc.ImportTransactions(ctx, parsed)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if first.Imported != 4 || first.Skipped != 0 {
		t.Errorf("first import = %+v, want 4 imported", first)
	}

	second, err := svc.ImportTransactions(ctx, parsed)
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if second.Imported != 0 || second.Skipped != 4 {
		t.Errorf("reimport = %+v, want everything skipped", second)
	}
}

func TestMonthSummary_ExcludesTransfers(t *testing.T) {
	svc := NewFinanceService(testDB(t))
	ctx := context.Background()

	parsed := []ParsedTransaction{
		{Date: "2026-01-05", Description: "CITCO FUNDS PAYROLL", Amount: 3200, Category: "salary", Source: "aib"},
		{Date: "2026-01-06", Description: "TESCO", Amount: -100, Category: "groceries", Source: "aib"},
		{Date: "2026-01-07", Description: "LUAS", Amount: -20, Category: "transport", Source: "aib"},
		{Date: "2026-01-08", Description: "Revolut**8820*", Amount: -500, Category: "transfer", Source: "aib", IsTransfer: true},
		{Date: "2026-02-01", Description: "TESCO", Amount: -50, Category: "groceries", Source: "aib"},
	}
	if _, err := svc.ImportTransactions(ctx, parsed); err != nil {
		t.Fatal(err)
	}

	summary, err := svc.MonthSummary(ctx, 2026, time.January)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TransactionCount != 3 {
		t.Errorf("count = %d, want 3 (transfer and February excluded)", summary.TransactionCount)
	}
	if summary.TotalIncome != 3200 || summary.TotalSpending != 120 {
		t.Errorf("income/spending = %.2f/%.2f, want 3200/120", summary.TotalIncome, summary.TotalSpending)
	}
	if summary.Net != 3080 {
		t.Errorf("net = %.2f, want 3080", summary.Net)
	}
	// 3080/3200 = 96.25 -> 96.3 after rounding to one decimal.
	if summary.SavingsRatePct != 96.3 {
		t.Errorf("savings rate = %.1f, want 96.3", summary.SavingsRatePct)
	}
	if len(summary.ByCategory) != 2 || summary.ByCategory[0].Category != "groceries" {
		t.Errorf("by category = %+v, want groceries first", summary.ByCategory)
	}
}

func TestCheckBudgetAlerts(t *testing.T) {
	svc := NewFinanceService(testDB(t))
	ctx := context.Background()

	if err := svc.SetBudgetLimit(ctx, "groceries", 400); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetBudgetLimit(ctx, "takeaway", 100); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetBudgetLimit(ctx, "transport", 150); err != nil {
		t.Fatal(err)
	}

	parsed := []ParsedTransaction{
		{Date: "2026-01-10", Description: "TESCO", Amount: -350, Category: "groceries", Source: "aib"},
		{Date: "2026-01-12", Description: "JUST EAT", Amount: -120, Category: "takeaway", Source: "aib"},
		{Date: "2026-01-14", Description: "LUAS", Amount: -30, Category: "transport", Source: "aib"},
	}
	if _, err := svc.ImportTransactions(ctx, parsed); err != nil {
		t.Fatal(err)
	}

	alerts, err := svc.CheckBudgetAlerts(ctx, 2026, time.January)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2 (transport is at 20%%)", len(alerts))
	}

	// Sorted by category name: groceries then takeaway.
	if alerts[0].Category != "groceries" || alerts[0].Status != "warning" {
		t.Errorf("first alert = %+v, want groceries warning at 87.5%%", alerts[0])
	}
	if alerts[0].Pct != 87.5 {
		t.Errorf("groceries pct = %.1f, want 87.5", alerts[0].Pct)
	}
	if alerts[1].Category != "takeaway" || alerts[1].Status != "over" {
		t.Errorf("second alert = %+v, want takeaway over", alerts[1])
	}
}

func TestSetBudgetLimit_Validation(t *testing.T) {
	svc := NewFinanceService(testDB(t))
	ctx := context.Background()

	if err := svc.SetBudgetLimit(ctx, "", 100); err == nil {
		t.Error("empty category should be rejected")
	}
	if err := svc.SetBudgetLimit(ctx, "groceries", -5); err == nil {
		t.Error("negative limit should be rejected")
	}

	if err := svc.SetBudgetLimit(ctx, "groceries", 400); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetBudgetLimit(ctx, "groceries", 450); err != nil {
		t.Fatal(err)
	}
	limits, err := svc.BudgetLimits(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if limits["groceries"] != 450 {
		t.Errorf("limit = %.2f, want the updated 450", limits["groceries"])
	}
}
