package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"budgetbalancer/internal/core"
	"budgetbalancer/internal/storage"
)

func testRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testAccount(t *testing.T, repo *storage.SQLiteRepository) core.Account {
	t.Helper()
	account, err := repo.CreateAccount(context.Background(), core.NewAccount{
		Name: "Checking", Type: core.Checking,
	})
	if err != nil {
		t.Fatal(err)
	}
	return account
}

func TestImport(t *testing.T) {
	repo := testRepo(t)
	account := testAccount(t, repo)
	imp := NewImporter(repo)
	ctx := context.Background()

	content := "Date,Amount,Description\n" +
		"2025-06-01,-42.10,STARBUCKS STORE 123\n" +
		"2025-06-02,-130.55,WALMART GROCERY\n" +
		"2025-06-03,2500.00,PAYCHECK\n"
	mapping := CSVMapping{Date: "Date", Amount: "Amount", Description: "Description"}

	stats, err := imp.Import(ctx, account.ID, content, mapping)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 || stats.Imported != 3 || stats.Duplicates != 0 {
		t.Fatalf("stats = %+v, want 3 imported", stats)
	}

	// Seeded rules categorize the rows; the paycheck has no rule and lands
	// in Uncategorized.
	transactions, total, err := repo.ListTransactions(ctx, storage.TransactionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	byDesc := make(map[string]core.Transaction)
	for _, tr := range transactions {
		byDesc[tr.Description] = tr
	}
	if got := byDesc["STARBUCKS STORE 123"].CategoryID; got != 2 {
		t.Errorf("starbucks category = %d, want 2 (Dining)", got)
	}
	if got := byDesc["WALMART GROCERY"].CategoryID; got != 1 {
		t.Errorf("walmart category = %d, want 1 (Groceries)", got)
	}
	if got := byDesc["PAYCHECK"].CategoryID; got != core.DefaultCategoryID {
		t.Errorf("paycheck category = %d, want uncategorized %d", got, core.DefaultCategoryID)
	}

	// The account balance tracks the imported rows.
	updated, err := repo.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if want := -42.10 - 130.55 + 2500.00; !approxEqual(updated.Balance, want) {
		t.Errorf("account balance = %v, want %v", updated.Balance, want)
	}
}

func approxEqual(a, b float64) bool {
	diff := a - b
	return diff < 1e-6 && diff > -1e-6
}

func TestImportSkipsDuplicates(t *testing.T) {
	repo := testRepo(t)
	account := testAccount(t, repo)
	imp := NewImporter(repo)
	ctx := context.Background()

	content := "Date,Amount,Description\n2025-06-01,-10.00,COFFEE\n"
	mapping := CSVMapping{Date: "Date", Amount: "Amount", Description: "Description"}

	if _, err := imp.Import(ctx, account.ID, content, mapping); err != nil {
		t.Fatal(err)
	}
	stats, err := imp.Import(ctx, account.ID, content, mapping)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Imported != 0 || stats.Duplicates != 1 {
		t.Errorf("second import stats = %+v, want 1 duplicate, 0 imported", stats)
	}

	// Skipped duplicates must not move the balance twice.
	updated, err := repo.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(updated.Balance, -10.00) {
		t.Errorf("account balance = %v, want -10.00", updated.Balance)
	}
}

func TestImportDuplicatesWithinFile(t *testing.T) {
	repo := testRepo(t)
	account := testAccount(t, repo)
	imp := NewImporter(repo)

	content := "Date,Amount,Description\n" +
		"2025-06-01,-10.00,COFFEE\n" +
		"2025-06-01,-10.00,COFFEE\n"
	stats, err := imp.Import(context.Background(), account.ID, content,
		CSVMapping{Date: "Date", Amount: "Amount", Description: "Description"})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Imported != 1 || stats.Duplicates != 1 {
		t.Errorf("stats = %+v, want 1 imported, 1 duplicate", stats)
	}
}

func TestImportRejectsOversizedFile(t *testing.T) {
	repo := testRepo(t)
	account := testAccount(t, repo)
	imp := NewImporter(repo)

	content := "Date,Amount,Description\n" + strings.Repeat("x", core.MaxCSVFileSize)
	_, err := imp.Import(context.Background(), account.ID, content,
		CSVMapping{Date: "Date", Amount: "Amount", Description: "Description"})
	var tooLarge *FileTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("err = %v, want FileTooLargeError", err)
	}
}

func TestImportRejectsHugeAmount(t *testing.T) {
	repo := testRepo(t)
	account := testAccount(t, repo)
	imp := NewImporter(repo)

	content := "Date,Amount,Description\n2025-06-01,2000000000,WIRE\n"
	_, err := imp.Import(context.Background(), account.ID, content,
		CSVMapping{Date: "Date", Amount: "Amount", Description: "Description"})
	var tooBig *AmountTooLargeError
	if !errors.As(err, &tooBig) {
		t.Fatalf("err = %v, want AmountTooLargeError", err)
	}
}
