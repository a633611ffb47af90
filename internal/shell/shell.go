package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"budget/internal/core"
	"budget/internal/goals"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/report"
	"budget/internal/services"
	"budget/internal/session"
)

// previewRows is how many imported rows are echoed after a CSV import.
const previewRows = 5

var errInputClosed = errors.New("input closed")

var menu = []string{
	"1. Import Budget Data from CSV",
	"2. Load Previous Session",
	"3. Add a Transaction",
	"4. Edit a Transaction",
	"5. View All Transactions",
	"6. View Budget Summary",
	"7. Manage Budget Goals",
	"8. View Budget Goals",
	"9. Generate Report",
	"10. Save Program Data",
	"11. Export to CSV File",
	"12. Exit",
	"13. Sync Transactions to Google Sheets",
}

// Shell is the numbered-menu front end of a Tracker. It reads one line per
// prompt from in and writes everything the user sees to out.
type Shell struct {
	tracker *services.Tracker
	in      *bufio.Scanner
	out     io.Writer
	logger  *log.Logger
}

func New(tracker *services.Tracker, in io.Reader, out io.Writer, logger *log.Logger) *Shell {
	if logger == nil {
		logger = log.Discard()
	}
	return &Shell{
		tracker: tracker,
		in:      bufio.NewScanner(in),
		out:     out,
		logger:  logger.WithComponent(log.ComponentShell),
	}
}

// Run shows the menu until the user exits, the input ends or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			s.println("Exiting the program. Goodbye!")
			return nil
		}

		s.println("")
		s.println("--- Budget Tracker Main Menu ---")
		for _, item := range menu {
			s.println(item)
		}
		choice, err := s.prompt(fmt.Sprintf("Choose an option (1-%d): ", len(menu)))
		if err != nil {
			return nil
		}

		if choice == "12" {
			s.println("Exiting the program. Goodbye!")
			return nil
		}
		if err := s.dispatch(ctx, choice); err != nil {
			if errors.Is(err, errInputClosed) {
				return nil
			}
			return err
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		return s.importCSV()
	case "2":
		s.loadSession(ctx)
	case "3":
		return s.addTransaction()
	case "4":
		return s.editTransaction()
	case "5":
		s.println("")
		s.println("--- Current Transactions ---")
		if s.tracker.Transactions().IsEmpty() {
			s.println("No transactions to display.")
			return nil
		}
		s.printTransactions(s.tracker.Transactions().List())
	case "6":
		s.printLines(s.tracker.Summary())
	case "7":
		return s.manageGoals()
	case "8":
		s.viewGoals()
	case "9":
		return s.generateReport(ctx)
	case "10":
		s.saveSession(ctx)
	case "11":
		s.exportCSV(ctx)
	case "13":
		s.syncSheets(ctx)
	default:
		s.printf("Invalid choice. Please enter a number between 1 and %d.\n", len(menu))
	}
	return nil
}

func (s *Shell) importCSV() error {
	path, err := s.prompt("Enter the path to your CSV file: ")
	if err != nil {
		return err
	}

	res, err := s.tracker.Import(path)
	var missing *session.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		s.printf("Error: Missing required columns in the CSV file: [%s]\n", strings.Join(missing.Columns, ", "))
		s.println("Please ensure your CSV has the following columns: Date, Type, Category, Amount.")
		return nil
	case err != nil:
		s.printf("Error importing data: %v\n", err)
		return nil
	}

	s.println("Data successfully imported!")
	s.println("CSV structure is valid.")
	entries := s.tracker.Transactions().List()
	if len(entries) > previewRows {
		entries = entries[:previewRows]
	}
	s.printTransactions(entries)

	if skipped := res.Blank + res.Incomplete + res.Unparseable; skipped > 0 {
		s.printf("%d rows with missing or unreadable values were skipped.\n", skipped)
	}
	if res.HasTypeWarning() {
		s.println("Warning: Some transactions in the 'Type' column are invalid or missing.")
		s.printf("Valid 'Type' values should be: [%s, %s]\n", core.Income, core.Expense)
		s.println("Please review and correct your CSV file if needed.")
	}
	return nil
}

func (s *Shell) loadSession(ctx context.Context) {
	if err := s.tracker.Load(ctx); err != nil {
		s.printf("Some saved data could not be read: %v\n", err)
	}
	s.println("Previous session loaded.")
}

func (s *Shell) addTransaction() error {
	date, err := s.prompt("Enter the date (MM-DD-YYYY): ")
	if err != nil {
		return err
	}
	if _, err := core.ParseDate(date); err != nil {
		s.println("Invalid date format. Transaction not added.")
		return nil
	}
	txType, err := s.prompt("Enter the type (Income/Expense): ")
	if err != nil {
		return err
	}
	if _, err := core.ParseType(txType); err != nil {
		s.println("Invalid type. Transaction not added.")
		return nil
	}
	category, err := s.prompt("Enter the category (e.g., Food, Rent, Savings): ")
	if err != nil {
		return err
	}
	amount, err := s.prompt("Enter the amount (no special characters): ")
	if err != nil {
		return err
	}

	if _, err := s.tracker.AddTransaction(date, txType, category, amount); err != nil {
		s.println(transactionError(err, "added"))
		return nil
	}
	s.println("Transaction added successfully!")
	return nil
}

func (s *Shell) editTransaction() error {
	l := s.tracker.Transactions()
	if l.IsEmpty() {
		s.println("No transactions available to edit.")
		return nil
	}
	s.println("")
	s.println("--- Current Transactions ---")
	s.printTransactions(l.List())

	n, ok, err := s.promptInt("\nEnter the number of the transaction you want to edit (0 to cancel, -1 to delete): ")
	if err != nil || !ok {
		return err
	}
	switch {
	case n == 0:
		s.println("Edit cancelled.")
		return nil
	case n == -1:
		d, ok, err := s.promptInt("Enter the number of the transaction you want to delete: ")
		if err != nil || !ok {
			return err
		}
		if _, err := s.tracker.DeleteTransaction(d); err != nil {
			s.println("Invalid transaction number to delete.")
			return nil
		}
		s.println("Transaction deleted successfully.")
		return nil
	}

	current, err := l.Get(n)
	if err != nil {
		s.println("Invalid transaction number.")
		return nil
	}
	s.printf("\nEditing transaction: %s - %s - %s - %s\n", current.Date, current.Type, current.Category, current.Amount.Dollars())

	date, err := s.prompt(fmt.Sprintf("Enter new date (current: %s): ", current.Date))
	if err != nil {
		return err
	}
	if _, err := core.ParseDate(date); err != nil {
		s.println("Invalid date format. Transaction not updated.")
		return nil
	}
	txType, err := s.prompt(fmt.Sprintf("Enter new type (current: %s): ", current.Type))
	if err != nil {
		return err
	}
	if _, err := core.ParseType(txType); err != nil {
		s.println("Invalid type. Transaction not updated.")
		return nil
	}
	category, err := s.prompt(fmt.Sprintf("Enter new category (current: %s): ", current.Category))
	if err != nil {
		return err
	}
	amount, err := s.prompt(fmt.Sprintf("Enter new amount (current: %s): ", current.Amount.Dollars()))
	if err != nil {
		return err
	}

	if _, err := s.tracker.EditTransaction(n, date, txType, category, amount); err != nil {
		s.println(transactionError(err, "updated"))
		return nil
	}
	s.println("Transaction updated successfully!")
	return nil
}

func (s *Shell) manageGoals() error {
	if s.tracker.Goals().IsEmpty() {
		s.println("No budget goals set yet.")
	}
	choice, err := s.prompt("Would you like to (A)dd or (E)dit existing goals? (a/e): ")
	if err != nil {
		return err
	}
	switch strings.ToLower(choice) {
	case "a":
		return s.addGoal()
	case "e":
		return s.editGoal()
	default:
		s.println("Invalid choice. No changes made to goals.")
	}
	return nil
}

func (s *Shell) addGoal() error {
	category, err := s.prompt("Enter the category name for the new goal: ")
	if err != nil {
		return err
	}
	amount, err := s.prompt(fmt.Sprintf("Enter the budget goal amount for %s: ", goals.NormalizeCategory(category)))
	if err != nil {
		return err
	}

	g, err := s.tracker.AddGoal(category, amount)
	switch {
	case errors.Is(err, core.ErrNegativeAmount):
		s.println("Goal amount must be non-negative. Goal not added.")
	case err != nil:
		s.println("Invalid input. Goal not added.")
	default:
		s.printf("Budget goal for '%s' set to %s!\n", g.Category, g.Amount.Dollars())
	}
	return nil
}

func (s *Shell) editGoal() error {
	store := s.tracker.Goals()
	if store.IsEmpty() {
		s.println("No budget goals available to edit.")
		return nil
	}
	s.println("")
	s.println("--- Current Budget Goals ---")
	for _, e := range store.List() {
		s.printf("%d. Category: %s, Goal: %s\n", e.Number, e.Category, e.Amount.Dollars())
	}

	n, ok, err := s.promptInt("\nEnter the number of the goal you want to edit (0 to cancel, -1 to delete): ")
	if err != nil || !ok {
		return err
	}
	switch {
	case n == 0:
		s.println("Edit cancelled.")
		return nil
	case n == -1:
		d, ok, err := s.promptInt("Enter the number of the goal you want to delete: ")
		if err != nil || !ok {
			return err
		}
		g, err := s.tracker.DeleteGoal(d)
		if err != nil {
			s.println("Invalid goal number to delete.")
			return nil
		}
		s.printf("Goal for '%s' deleted successfully.\n", g.Category)
		return nil
	}

	current, err := store.Get(n)
	if err != nil {
		s.println("Invalid goal number.")
		return nil
	}
	s.printf("\nEditing Goal: Category: %s, Current Goal: %s\n", current.Category, current.Amount.Dollars())

	category, err := s.prompt(fmt.Sprintf("Enter new category name (current: %s, press Enter to keep): ", current.Category))
	if err != nil {
		return err
	}
	amount, err := s.prompt(fmt.Sprintf("Enter new goal amount (current: %s, press Enter to keep): ", current.Amount.Dollars()))
	if err != nil {
		return err
	}
	if amount != "" {
		if _, err := core.ParseAmount(amount); err != nil {
			if errors.Is(err, core.ErrNegativeAmount) {
				s.println("Goal amount must be non-negative. Changes not saved.")
			} else {
				s.println("Invalid amount. Changes not saved.")
			}
			return nil
		}
	}

	if store.Collides(n, category) {
		s.printf("A goal for '%s' already exists and will be replaced.\n", goals.NormalizeCategory(category))
		s.logger.Warn("Goal rename overwrites existing goal", log.FieldCategory, goals.NormalizeCategory(category))
	}
	g, err := s.tracker.EditGoal(n, category, amount)
	if err != nil {
		s.printf("Goal not updated: %v\n", err)
		return nil
	}
	s.printf("Goal updated! Category: %s, Amount: %s\n", g.Category, g.Amount.Dollars())
	return nil
}

func (s *Shell) viewGoals() {
	store := s.tracker.Goals()
	if store.IsEmpty() {
		s.println("")
		s.println("No budget goals set. Use 'Manage Budget Goals' to add some!")
		return
	}
	s.println("")
	s.println("--- Current Budget Goals ---")
	for _, e := range store.List() {
		s.printf("Category: %s, Goal: %s\n", e.Category, e.Amount.Dollars())
	}
}

func (s *Shell) generateReport(ctx context.Context) error {
	if s.tracker.Transactions().IsEmpty() {
		s.println("No data loaded. Please import a CSV first.")
		return nil
	}

	r := s.tracker.Report()
	s.printLines(r)

	answer, err := s.prompt("\nDo you want to save this report to a file? (y/n): ")
	if err != nil {
		return err
	}
	if strings.ToLower(answer) == "y" {
		path, err := s.prompt("Enter the file path for the report: ")
		if err != nil {
			return err
		}
		if path == "" {
			s.println("Report not saved.")
		} else if written, err := s.tracker.SaveReport(r, path); err != nil {
			s.printf("Error saving report: %v\n", err)
		} else {
			s.printf("Report saved to %s\n", written)
		}
	}

	if !s.tracker.PublishingEnabled() {
		return nil
	}
	answer, err = s.prompt("Do you want to publish this report? (y/n): ")
	if err != nil {
		return err
	}
	if strings.ToLower(answer) != "y" {
		return nil
	}
	if err := s.tracker.PublishReport(ctx, r); err != nil {
		s.printf("Error publishing report: %v\n", err)
		return nil
	}
	s.println("Report published.")
	return nil
}

func (s *Shell) saveSession(ctx context.Context) {
	err := s.tracker.Save(ctx)
	switch {
	case errors.Is(err, services.ErrNothingToSave):
		s.println("No data or goals to save. Nothing to save.")
	case err != nil:
		s.printf("Error saving data: %v\n", err)
	default:
		s.println("Data successfully saved.")
	}
}

func (s *Shell) exportCSV(ctx context.Context) {
	path, err := s.tracker.ExportCSV(ctx)
	switch {
	case errors.Is(err, services.ErrNoTransactions):
		s.println("No transactions available to export. Nothing to save.")
	case err != nil:
		s.printf("Error saving data to CSV: %v\n", err)
	default:
		s.printf("Data successfully exported to CSV at %s.\n", path)
	}
}

func (s *Shell) syncSheets(ctx context.Context) {
	ref, err := s.tracker.SyncSheets(ctx)
	switch {
	case errors.Is(err, services.ErrSheetsDisabled):
		s.println("Google Sheets sync is not configured.")
	case errors.Is(err, services.ErrNoTransactions):
		s.println("No transactions available to sync.")
	case err != nil:
		s.printf("Error syncing to Google Sheets: %v\n", err)
	default:
		s.printf("Transactions synced to %s.\n", ref)
	}
}

// transactionError maps a validation failure to the message shown after
// an add or edit. verb is "added" or "updated".
func transactionError(err error, verb string) string {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		return "Invalid date format. Transaction not " + verb + "."
	case errors.Is(err, core.ErrInvalidType):
		return "Invalid type. Transaction not " + verb + "."
	case errors.Is(err, core.ErrNegativeAmount):
		return "Amount must be non-negative. Transaction not " + verb + "."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Invalid amount. Transaction not " + verb + "."
	case errors.Is(err, ledger.ErrIndexOutOfRange):
		return "Invalid transaction number."
	}
	return fmt.Sprintf("Transaction not %s: %v", verb, err)
}

func (s *Shell) printTransactions(entries []ledger.Entry) {
	for _, e := range entries {
		s.printf("%d. Date: %s, Type: %s, Category: %s, Amount: %s\n",
			e.Number, e.Date, e.Type, e.Category, e.Amount.Dollars())
	}
}

func (s *Shell) printLines(r report.Report) {
	for _, line := range r {
		s.println(line)
	}
}

// prompt writes msg and returns the next trimmed input line.
func (s *Shell) prompt(msg string) (string, error) {
	fmt.Fprint(s.out, msg)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			s.logger.Error("Reading input failed", log.FieldError, err)
		}
		s.println("")
		return "", errInputClosed
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// promptInt reads a whole number. ok is false when the input was not one,
// in which case the user has already been told.
func (s *Shell) promptInt(msg string) (n int, ok bool, err error) {
	raw, err := s.prompt(msg)
	if err != nil {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil {
		s.println("Invalid input. Please enter a valid number.")
		return 0, false, nil
	}
	return n, true, nil
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
