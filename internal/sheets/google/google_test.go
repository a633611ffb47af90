package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budget/internal/core"
)

func TestNewFromConfig_MissingSpreadsheetID(t *testing.T) {
	_, err := NewFromConfig(context.Background(), Config{}, nil)
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("NewFromConfig() error = %v, want missing GOOGLE_SPREADSHEET_ID", err)
	}
}

func TestNewFromConfig_MissingCredentialsFile(t *testing.T) {
	_, err := NewFromConfig(context.Background(), Config{
		SpreadsheetID:   "sid",
		CredentialsFile: "/non/existent/sa.json",
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("NewFromConfig() error = %v, want read error", err)
	}
}

func TestTableValues(t *testing.T) {
	values := tableValues([]core.Transaction{
		{Date: core.NewDate(2025, 3, 4), Type: core.Income, Category: "Salary", Amount: core.MustAmount("1234.5")},
	})

	if len(values) != 2 {
		t.Fatalf("tableValues() rows = %d, want 2", len(values))
	}
	if values[0][0] != "Date" || values[0][3] != "Amount" {
		t.Errorf("header = %v", values[0])
	}
	row := values[1]
	if row[0] != "03-04-2025" || row[1] != "Income" || row[2] != "Salary" || row[3] != 1234.5 {
		t.Errorf("row = %v", row)
	}

	if got := tableValues(nil); len(got) != 1 {
		t.Errorf("tableValues(nil) rows = %d, want header only", len(got))
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	c := NewWithService(svc, "sid", "", nil)
	c.retryDelay = time.Millisecond
	return c
}

func TestClient_Export(t *testing.T) {
	var calls []string
	var written gsheet.ValueRange

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, ":clear"):
			_, _ = w.Write([]byte(`{"spreadsheetId":"sid","clearedRange":"Transactions!A1:Z100"}`))
		case r.Method == http.MethodPut:
			if got := r.URL.Query().Get("valueInputOption"); got != "USER_ENTERED" {
				t.Errorf("valueInputOption = %q, want USER_ENTERED", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&written); err != nil {
				t.Errorf("decode body: %v", err)
			}
			_, _ = w.Write([]byte(`{"spreadsheetId":"sid","updatedRange":"Transactions!A1:D2","updatedRows":2}`))
		default:
			http.Error(w, "unexpected", http.StatusNotFound)
		}
	})

	ref, err := c.Export(context.Background(), []core.Transaction{
		{Date: core.NewDate(2025, 1, 2), Type: core.Expense, Category: "Food", Amount: core.MustAmount("12.5")},
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if ref != "Transactions!A1:D2" {
		t.Errorf("Export() ref = %q", ref)
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want clear then update", calls)
	}
	if !strings.HasPrefix(calls[0], "POST ") || !strings.HasSuffix(calls[0], "/values/Transactions:clear") {
		t.Errorf("first call = %q, want clear of the sheet", calls[0])
	}
	if !strings.HasPrefix(calls[1], "PUT ") || !strings.HasSuffix(calls[1], "/values/Transactions!A1") {
		t.Errorf("second call = %q, want update at A1", calls[1])
	}
	if len(written.Values) != 2 || written.Values[1][2] != "Food" {
		t.Errorf("written values = %v", written.Values)
	}
}

func TestClient_ExportRetriesRateLimit(t *testing.T) {
	clears := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, ":clear") {
			clears++
			if clears == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":429,"message":"slow down"}}`))
				return
			}
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{"updatedRange":"Transactions!A1:D1"}`))
	})

	if _, err := c.Export(context.Background(), nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if clears != 2 {
		t.Errorf("clear called %d times, want 2", clears)
	}
}

func TestClient_ExportFailsOnServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	})

	_, err := c.Export(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "failed to clear sheet Transactions") {
		t.Fatalf("Export() error = %v, want clear failure", err)
	}
}

func TestClient_ExportWithoutService(t *testing.T) {
	c := &Client{}
	if _, err := c.Export(context.Background(), nil); err == nil {
		t.Fatal("Export() error = nil, want error")
	}
}
