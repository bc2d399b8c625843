package http

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"bollette/internal/core"
	"bollette/internal/household/memory"
	"bollette/internal/services"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	alice := core.NewPerson("Alice", "Smith")
	bob := core.NewPerson("Bob", "Jones")

	living, err := core.NewRoom("living", 40)
	if err != nil {
		t.Fatalf("NewRoom() error = %v", err)
	}
	living.AddOccupant(alice)
	bedroom, err := core.NewRoom("bedroom", 20)
	if err != nil {
		t.Fatalf("NewRoom() error = %v", err)
	}
	bedroom.AddOccupant(bob)

	elec, err := core.NewUtility("Electricity", core.PerPerson)
	if err != nil {
		t.Fatalf("NewUtility() error = %v", err)
	}
	// 2024 is a leap year: 366 days at a cost of 366 gives a 1/day rate
	period, err := core.NewCostPeriod(core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31), 366)
	if err != nil {
		t.Fatalf("NewCostPeriod() error = %v", err)
	}
	if err := elec.AddCostPeriod(period); err != nil {
		t.Fatalf("AddCostPeriod() error = %v", err)
	}

	prop := core.NewProperty()
	prop.SetCommonArea(40)
	prop.AddRoom(living)
	prop.AddRoom(bedroom)
	prop.AddUtility(elec)

	svc := services.NewStatementService(memory.New(prop), nil)
	srv := NewServer(":0", svc)
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestHandleStatement(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/statement?from=2024-01-01&to=2024-01-10")
	if err != nil {
		t.Fatalf("GET statement: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", got)
	}

	var st core.Statement
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode statement: %v", err)
	}
	// 10 days at 1/day, split between two occupants
	if st.Total != 10 {
		t.Errorf("Total = %v, want 10", st.Total)
	}
	if len(st.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(st.Lines))
	}
	for _, line := range st.Lines {
		if line.Owed != 5 {
			t.Errorf("line %s %s Owed = %v, want 5", line.Name, line.Surname, line.Owed)
		}
	}

	// Same window again is served from cache
	resp2, err := http.Get(ts.URL + "/api/statement?from=2024-01-01&to=2024-01-10")
	if err != nil {
		t.Fatalf("GET statement again: %v", err)
	}
	defer resp2.Body.Close()
	if got := resp2.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("X-Cache = %q, want HIT", got)
	}
}

func TestHandleStatement_Errors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"malformed from date", "from=01/01/2024&to=2024-01-10", http.StatusBadRequest},
		{"missing to date", "from=2024-01-01", http.StatusBadRequest},
		{"inverted range", "from=2024-06-01&to=2024-01-01", http.StatusUnprocessableEntity},
		{"equal range", "from=2024-06-01&to=2024-06-01", http.StatusUnprocessableEntity},
		{"window past coverage", "from=2024-01-01&to=2025-06-30", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/statement?" + tt.query)
			if err != nil {
				t.Fatalf("GET statement: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestHandleAddPeriod(t *testing.T) {
	_, ts := newTestServer(t)

	postPeriod := func(utility, body string) *http.Response {
		t.Helper()
		resp, err := http.Post(
			fmt.Sprintf("%s/api/utilities/%s/periods", ts.URL, utility),
			"application/json",
			bytes.NewBufferString(body))
		if err != nil {
			t.Fatalf("POST period: %v", err)
		}
		return resp
	}

	resp := postPeriod("Electricity", `{"start":"2025-01-01","end":"2025-06-30","cost":180}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	resp = postPeriod("Electricity", `{"start":"2025-06-01","end":"2025-12-31","cost":100}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("overlapping period status = %d, want 409", resp.StatusCode)
	}
	var errBody errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody.Kind != "overlap" {
		t.Errorf("error kind = %q, want overlap", errBody.Kind)
	}

	resp = postPeriod("Electricity", `{"start":"2025-09-01","end":"2025-12-31","cost":100}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("non-adjacent period status = %d, want 409", resp.StatusCode)
	}

	resp = postPeriod("Electricity", `{"start":"2025-12-31","end":"2025-07-01","cost":100}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("inverted period status = %d, want 422", resp.StatusCode)
	}

	resp = postPeriod("Water", `{"start":"2025-01-01","end":"2025-06-30","cost":60}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown utility status = %d, want 404", resp.StatusCode)
	}
}

func TestHandleAddPayment(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/payments", "application/json",
		bytes.NewBufferString(`{"name":"Alice","surname":"Smith","amount":50,"date":"2024-02-01"}`))
	if err != nil {
		t.Fatalf("POST payment: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	// Payment shows up in the statement balance
	stResp, err := http.Get(ts.URL + "/api/statement?from=2024-01-01&to=2024-01-10")
	if err != nil {
		t.Fatalf("GET statement: %v", err)
	}
	defer stResp.Body.Close()
	var st core.Statement
	if err := json.NewDecoder(stResp.Body).Decode(&st); err != nil {
		t.Fatalf("decode statement: %v", err)
	}
	for _, line := range st.Lines {
		if line.Name == "Alice" && line.Paid != 50 {
			t.Errorf("Alice Paid = %v, want 50", line.Paid)
		}
	}

	resp, err = http.Post(ts.URL+"/api/payments", "application/json",
		bytes.NewBufferString(`{"name":"Carol","surname":"King","amount":50,"date":"2024-02-01"}`))
	if err != nil {
		t.Fatalf("POST payment: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown occupant status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/payments", "application/json",
		bytes.NewBufferString(`{"amount":50,"date":"2024-02-01"}`))
	if err != nil {
		t.Fatalf("POST payment: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing name status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleProperty(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/property")
	if err != nil {
		t.Fatalf("GET property: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var view propertyView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode property: %v", err)
	}
	if view.TotalArea != 100 {
		t.Errorf("TotalArea = %v, want 100", view.TotalArea)
	}
	if len(view.Rooms) != 2 {
		t.Errorf("len(Rooms) = %d, want 2", len(view.Rooms))
	}
	if len(view.Utilities) != 1 || view.Utilities[0].Sharing != "per_person" {
		t.Errorf("Utilities = %+v, want one per_person utility", view.Utilities)
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}
