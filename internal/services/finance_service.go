package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jasonoc/plato/internal/database"
	apperrors "github.com/jasonoc/plato/internal/errors"
	"github.com/jasonoc/plato/internal/logger"
	"github.com/jasonoc/plato/internal/schedule"
)

// FinanceService handles bank statement imports (Revolut and AIB CSV
// exports), categorisation and monthly reporting.
type FinanceService struct {
	db *gorm.DB
}

func NewFinanceService(db *gorm.DB) *FinanceService {
	return &FinanceService{db: db}
}

// categoryRule maps description keywords to a spending category. Rules are
// ordered: earlier rules win, so "uber one" (subscription) is listed before
// the generic "uber" (transport).
type categoryRule struct {
	keywords []string
	category string
}

var categoryRules = []categoryRule{
	{[]string{"citco funds"}, "salary"},

	{[]string{"revolut**8820", "revolut"}, "transfer"},

	{[]string{"uber   *one", "uber one"}, "subscriptions"},
	{[]string{"github", "railway", "anthropic", "claude", "openai"}, "dev_tools"},
	{[]string{"apple.com", "spotify", "netflix", "disney", "youtube"}, "subscriptions"},
	{[]string{"zoho", "gomo", "lets host", "post publi"}, "subscriptions"},

	{[]string{"spar", "aldi", "lidl", "tesco", "dunnes", "musgrave", "supervalu", "centra"}, "groceries"},
	{[]string{"just eat", "domino", "mcdonald", "burger", "subway", "apache"}, "takeaway"},
	{[]string{"cafe", "coffee", "starbucks", "costa", "insomnia", "grainger"}, "coffee_eating_out"},
	{[]string{"restaurant", "wok on", "o briens", "seven wonders", "derreen", "ollie"}, "coffee_eating_out"},

	{[]string{"luas", "dublin bus", "leap", "irish rail", "dart"}, "transport"},
	{[]string{"maxol", "circle k", "applegreen", "topaz", "fuel"}, "fuel"},
	{[]string{"uber", "bolt", "taxi", "freenow"}, "transport"},
	{[]string{"car park", "parking"}, "transport"},

	{[]string{"westwood leopa", "rent"}, "rent"},
	{[]string{"electric", "energia", "bord gais", "sse airtricity"}, "utilities"},

	{[]string{"west wood club", "gym", "decathlon", "elvery"}, "fitness"},
	{[]string{"pharmacy", "blackglen phar"}, "health"},

	{[]string{"tk maxx", "h&m", "hm ie", "zara", "penneys", "primark"}, "clothing"},
	{[]string{"smyths", "powercity", "currys", "argos", "amazon"}, "shopping"},
	{[]string{"dockers", "jackma"}, "shopping"},
}

// CategoriseTransaction assigns a category from the description. Unknown
// descriptions fall through to "other".
func CategoriseTransaction(description string) string {
	lower := strings.ToLower(description)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return "other"
}

// ParsedTransaction is one statement row ready for import.
type ParsedTransaction struct {
	Date                string
	Description         string
	Amount              float64
	Category            string
	Source              string
	OriginalDescription string
	BalanceAfter        *float64
	IsTransfer          bool
}

// ParseRevolutCSV parses a Revolut account export. Only COMPLETED rows are
// taken; a non-zero fee becomes its own "fees" transaction so spending
// reports see it.
func ParseRevolutCSV(content string) ([]ParsedTransaction, error) {
	records, header, err := readCSV(content)
	if err != nil {
		return nil, err
	}

	var transactions []ParsedTransaction
	for _, record := range records {
		get := func(column string) string { return csvField(record, header, column) }

		if strings.TrimSpace(get("State")) != "COMPLETED" {
			continue
		}

		dateRaw := strings.TrimSpace(get("Completed Date"))
		if len(dateRaw) < 10 {
			logger.Warn("Skipping Revolut row with bad date", "value", dateRaw)
			continue
		}
		date, err := time.Parse(schedule.DateLayout, dateRaw[:10])
		if err != nil {
			logger.Warn("Skipping Revolut row with bad date", "value", dateRaw)
			continue
		}

		description := strings.TrimSpace(get("Description"))
		amount, err := strconv.ParseFloat(strings.TrimSpace(get("Amount")), 64)
		if err != nil {
			logger.Warn("Skipping Revolut row with bad amount", "description", description)
			continue
		}

		var fee float64
		if raw := strings.TrimSpace(get("Fee")); raw != "" {
			fee, _ = strconv.ParseFloat(raw, 64)
		}

		var balance *float64
		if raw := strings.TrimSpace(get("Balance")); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				balance = &v
			}
		}

		category := CategoriseTransaction(description)
		transactions = append(transactions, ParsedTransaction{
			Date:                date.Format(schedule.DateLayout),
			Description:         description,
			Amount:              amount,
			Category:            category,
			Source:              "revolut",
			OriginalDescription: description,
			BalanceAfter:        balance,
			IsTransfer:          category == "transfer",
		})

		if fee != 0 {
			transactions = append(transactions, ParsedTransaction{
				Date:                date.Format(schedule.DateLayout),
				Description:         "Fee: " + description,
				Amount:              -math.Abs(fee),
				Category:            "fees",
				Source:              "revolut",
				OriginalDescription: "Fee for " + description,
			})
		}
	}
	return transactions, nil
}

// ParseAIBCSV parses an AIB current account export. The export mixes real
// transactions with FX detail and interest-rate info rows, which are skipped.
func ParseAIBCSV(content string) ([]ParsedTransaction, error) {
	records, header, err := readCSV(content)
	if err != nil {
		return nil, err
	}

	var transactions []ParsedTransaction
	for _, record := range records {
		get := func(column string) string { return csvField(record, header, column) }

		description := strings.Trim(strings.TrimSpace(get("Description")), `"`)
		debit := strings.TrimSpace(get("Debit Amount"))
		credit := strings.TrimSpace(get("Credit Amount"))
		dateRaw := strings.TrimSpace(get("Posted Transactions Date"))
		balanceRaw := strings.TrimSpace(get("Balance"))

		if debit == "" && (credit == "" || credit == "0.00") {
			continue
		}
		if strings.HasPrefix(description, "Interest Rate") || strings.HasPrefix(description, "Lending @") {
			continue
		}
		if strings.Contains(description, "USD@") || strings.Contains(description, "INCL FX FEE") {
			continue
		}
		if _, err := strconv.ParseFloat(description, 64); err == nil {
			// pure-number rows are exchange rates
			continue
		}

		date, err := time.Parse("02/01/06", dateRaw)
		if err != nil {
			logger.Warn("Skipping AIB row with bad date", "value", dateRaw)
			continue
		}

		var amount float64
		if debit != "" {
			v, err := strconv.ParseFloat(debit, 64)
			if err != nil {
				logger.Warn("Skipping AIB row with bad debit", "description", description)
				continue
			}
			amount = -math.Abs(v)
		} else {
			v, err := strconv.ParseFloat(credit, 64)
			if err != nil || v <= 0 {
				continue
			}
			amount = v
		}

		var balance *float64
		if balanceRaw != "" {
			if v, err := strconv.ParseFloat(balanceRaw, 64); err == nil {
				balance = &v
			}
		}

		category := CategoriseTransaction(description)
		transactions = append(transactions, ParsedTransaction{
			Date:                date.Format(schedule.DateLayout),
			Description:         description,
			Amount:              amount,
			Category:            category,
			Source:              "aib",
			OriginalDescription: description,
			BalanceAfter:        balance,
			IsTransfer:          category == "transfer",
		})
	}
	return transactions, nil
}

// readCSV parses CSV content into records plus a column-name index. AIB
// exports pad header names with spaces, so names are trimmed.
func readCSV(content string) ([][]string, map[string]int, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, apperrors.NewValidationError(fmt.Sprintf("unreadable CSV: %v", err))
	}
	if len(rows) < 1 {
		return nil, nil, apperrors.NewValidationError("empty CSV")
	}
	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.TrimSpace(name)] = i
	}
	return rows[1:], header, nil
}

func csvField(record []string, header map[string]int, column string) string {
	idx, ok := header[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// ImportTransactions stores parsed rows. The composite unique index on
// (date, description, amount, source) turns re-imports of overlapping
// statements into skips rather than duplicates.
func (s *FinanceService) ImportTransactions(ctx context.Context, transactions []ParsedTransaction) (*ImportResult, error) {
	result := &ImportResult{}
	for _, txn := range transactions {
		row := &database.Transaction{
			Date:                txn.Date,
			Description:         txn.Description,
			Amount:              txn.Amount,
			Category:            txn.Category,
			Source:              txn.Source,
			OriginalDescription: txn.OriginalDescription,
			BalanceAfter:        txn.BalanceAfter,
			IsTransfer:          txn.IsTransfer,
		}
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			if isDuplicateErr(err) {
				result.Skipped++
				continue
			}
			logger.Error("Failed to insert transaction", "description", txn.Description, "error", err)
			result.Skipped++
			continue
		}
		result.Imported++
	}
	return result, nil
}

func isDuplicateErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique") || strings.Contains(msg, "23505")
}

// TransactionsForMonth returns the month's non-transfer transactions, newest
// first.
func (s *FinanceService) TransactionsForMonth(ctx context.Context, year int, month time.Month) ([]database.Transaction, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var transactions []database.Transaction
	if err := s.db.WithContext(ctx).
		Where("date >= ? AND date < ? AND is_transfer = ?",
			start.Format(schedule.DateLayout), end.Format(schedule.DateLayout), false).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return transactions, nil
}

// CategorySpend is one category's spending total for a month.
type CategorySpend struct {
	Category string
	Spent    float64
}

// SpendingByCategory totals the month's spending (negative amounts) per
// category, largest first.
func (s *FinanceService) SpendingByCategory(ctx context.Context, year int, month time.Month) ([]CategorySpend, error) {
	transactions, err := s.TransactionsForMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, txn := range transactions {
		if txn.Amount >= 0 {
			continue
		}
		category := txn.Category
		if category == "" {
			category = "other"
		}
		totals[category] += math.Abs(txn.Amount)
	}

	result := make([]CategorySpend, 0, len(totals))
	for category, spent := range totals {
		result = append(result, CategorySpend{Category: category, Spent: round2(spent)})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Spent != result[j].Spent {
			return result[i].Spent > result[j].Spent
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

type MonthlySummary struct {
	Month            string
	TotalIncome      float64
	TotalSpending    float64
	Net              float64
	SavingsRatePct   float64
	ByCategory       []CategorySpend
	TransactionCount int
}

func (s *FinanceService) MonthSummary(ctx context.Context, year int, month time.Month) (*MonthlySummary, error) {
	transactions, err := s.TransactionsForMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	var income, spending float64
	for _, txn := range transactions {
		if txn.Amount > 0 {
			income += txn.Amount
		} else {
			spending += math.Abs(txn.Amount)
		}
	}
	net := income - spending
	savingsRate := 0.0
	if income > 0 {
		savingsRate = math.Round(net/income*1000) / 10
	}

	byCategory, err := s.SpendingByCategory(ctx, year, month)
	if err != nil {
		return nil, err
	}

	return &MonthlySummary{
		Month:            fmt.Sprintf("%04d-%02d", year, int(month)),
		TotalIncome:      round2(income),
		TotalSpending:    round2(spending),
		Net:              round2(net),
		SavingsRatePct:   savingsRate,
		ByCategory:       byCategory,
		TransactionCount: len(transactions),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ---------------- budgets ----------------

func (s *FinanceService) SetBudgetLimit(ctx context.Context, category string, monthlyLimit float64) error {
	if category == "" {
		return apperrors.NewValidationError("budget category is required")
	}
	if monthlyLimit <= 0 {
		return apperrors.NewValidationError("monthly limit must be positive")
	}

	var existing database.BudgetLimit
	err := s.db.WithContext(ctx).Where("category = ?", category).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.WithContext(ctx).
			Create(&database.BudgetLimit{Category: category, MonthlyLimit: monthlyLimit}).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load budget limit: %w", err)
	}
	return s.db.WithContext(ctx).
		Model(&existing).
		Update("monthly_limit", monthlyLimit).Error
}

func (s *FinanceService) BudgetLimits(ctx context.Context) (map[string]float64, error) {
	var rows []database.BudgetLimit
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load budget limits: %w", err)
	}
	limits := make(map[string]float64, len(rows))
	for _, row := range rows {
		limits[row.Category] = row.MonthlyLimit
	}
	return limits, nil
}

// BudgetAlert flags a category near or over its monthly limit.
type BudgetAlert struct {
	Category string
	Spent    float64
	Limit    float64
	Pct      float64
	Status   string // warning at 80%, over at 100%
}

func (s *FinanceService) CheckBudgetAlerts(ctx context.Context, year int, month time.Month) ([]BudgetAlert, error) {
	limits, err := s.BudgetLimits(ctx)
	if err != nil {
		return nil, err
	}
	if len(limits) == 0 {
		return nil, nil
	}

	spending, err := s.SpendingByCategory(ctx, year, month)
	if err != nil {
		return nil, err
	}
	spentBy := make(map[string]float64, len(spending))
	for _, entry := range spending {
		spentBy[entry.Category] = entry.Spent
	}

	categories := make([]string, 0, len(limits))
	for category := range limits {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var alerts []BudgetAlert
	for _, category := range categories {
		limit := limits[category]
		if limit <= 0 {
			continue
		}
		spent := spentBy[category]
		pct := math.Round(spent/limit*1000) / 10

		switch {
		case pct >= 100:
			alerts = append(alerts, BudgetAlert{category, spent, limit, pct, "over"})
		case pct >= 80:
			alerts = append(alerts, BudgetAlert{category, spent, limit, pct, "warning"})
		}
	}
	return alerts, nil
}

// UpdateTransactionCategory re-categorises a single transaction by ID.
func (s *FinanceService) UpdateTransactionCategory(ctx context.Context, transactionID uint, newCategory string) error {
	result := s.db.WithContext(ctx).
		Model(&database.Transaction{}).
		Where("id = ?", transactionID).
		Update("category", newCategory)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNoMatch
	}
	return nil
}
