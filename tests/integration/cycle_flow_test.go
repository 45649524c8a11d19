package integration

import (
	"net/http"
	"testing"
)

// setupHouseholdWithCycle registers a user, creates a household paid on the
// 25th, adds a salary income source, and starts the first cycle. Returns the
// access token and the active cycle's ID.
func setupHouseholdWithCycle(t *testing.T, app *testApp, email string) (token, cycleID string) {
	t.Helper()

	token, _, _ = app.registerUser(t, email, "password123")
	app.createHousehold(t, token, "Test Household")

	rec := app.request("PUT", "/api/v1/households/me",
		`{"pay_cycle_type":"specific_date","pay_day":25}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update settings failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/income-sources",
		`{"name":"Salary","amount":250000,"frequency_rule":"specific_date","day_of_month":25,"payment_source":"me"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income source failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/cycles/first", "", token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create first cycle failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	cycle := result["cycle"].(map[string]interface{})
	return token, cycle["id"].(string)
}

func TestCycleFlow_Lifecycle(t *testing.T) {
	app := setupApp(t)
	token, cycleID := setupHouseholdWithCycle(t, app, "cycle@test.com")

	// First cycle is active and carries the income snapshot.
	rec := app.request("GET", "/api/v1/cycles/active", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get active cycle failed: %d %s", rec.Code, rec.Body.String())
	}
	active := parseJSON(t, rec)["cycle"].(map[string]interface{})
	if active["status"] != "active" {
		t.Errorf("expected active status, got %v", active["status"])
	}
	if active["total_income"].(float64) <= 0 {
		t.Errorf("expected positive income snapshot, got %v", active["total_income"])
	}

	// Add a recurring bill.
	rec = app.request("POST", "/api/v1/cycles/"+cycleID+"/seeds",
		`{"name":"Rent","amount":120000,"type":"need","payment_source":"me","is_recurring":true}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create seed failed: %d %s", rec.Code, rec.Body.String())
	}

	// Summary reflects the seed in transfers and allocations.
	rec = app.request("GET", "/api/v1/cycles/"+cycleID+"/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get summary failed: %d %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	transfers := summary["transfers"].(map[string]interface{})
	if transfers["me_personal"].(float64) != 120000 {
		t.Errorf("expected me_personal=120000, got %v", transfers["me_personal"])
	}
	allocations := summary["allocations"].(map[string]interface{})
	if allocations["total_allocated"].(float64) != 120000 {
		t.Errorf("expected total_allocated=120000, got %v", allocations["total_allocated"])
	}

	// Draft the next cycle; the recurring seed is cloned into it.
	rec = app.request("POST", "/api/v1/cycles/next", "", token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create next cycle failed: %d %s", rec.Code, rec.Body.String())
	}
	draft := parseJSON(t, rec)["cycle"].(map[string]interface{})
	if draft["status"] != "draft" {
		t.Errorf("expected draft status, got %v", draft["status"])
	}
	draftSeeds := draft["seeds"].([]interface{})
	if len(draftSeeds) != 1 {
		t.Fatalf("expected 1 cloned seed in draft, got %d", len(draftSeeds))
	}
	cloned := draftSeeds[0].(map[string]interface{})
	if cloned["name"] != "Rent" || cloned["is_paid"] != false {
		t.Errorf("expected unpaid Rent clone, got %v paid=%v", cloned["name"], cloned["is_paid"])
	}

	// Start the next cycle: the draft becomes active and a fresh draft exists.
	rec = app.request("POST", "/api/v1/cycles/start-next", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("start next cycle failed: %d %s", rec.Code, rec.Body.String())
	}
	promoted := parseJSON(t, rec)["cycle"].(map[string]interface{})
	if promoted["status"] != "active" {
		t.Errorf("expected promoted draft to be active, got %v", promoted["status"])
	}
	if promoted["id"] != draft["id"] {
		t.Errorf("expected promoted cycle to be the draft")
	}

	rec = app.request("GET", "/api/v1/cycles/draft", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected a fresh draft after start-next: %d %s", rec.Code, rec.Body.String())
	}

	// History now holds three cycles: completed, active, draft.
	rec = app.request("GET", "/api/v1/cycles", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list cycles failed: %d %s", rec.Code, rec.Body.String())
	}
	list := parseJSON(t, rec)
	if list["total_items"].(float64) != 3 {
		t.Errorf("expected 3 cycles, got %v", list["total_items"])
	}
}

func TestCycleFlow_CloseAndUnlock(t *testing.T) {
	app := setupApp(t)
	token, cycleID := setupHouseholdWithCycle(t, app, "lock@test.com")

	// Close the budget.
	rec := app.request("POST", "/api/v1/cycles/"+cycleID+"/close", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("close cycle failed: %d %s", rec.Code, rec.Body.String())
	}
	closed := parseJSON(t, rec)["cycle"].(map[string]interface{})
	if closed["closed_at"] == nil {
		t.Error("expected closed_at to be set")
	}

	// Locked cycles reject seed changes.
	rec = app.request("POST", "/api/v1/cycles/"+cycleID+"/seeds",
		`{"name":"Late Bill","amount":5000,"type":"want","payment_source":"me"}`, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on locked cycle, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "CYCLE_LOCKED" {
		t.Errorf("expected CYCLE_LOCKED, got %v", errObj["code"])
	}

	// Unlock and retry.
	rec = app.request("POST", "/api/v1/cycles/"+cycleID+"/unlock", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("unlock cycle failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/api/v1/cycles/"+cycleID+"/seeds",
		`{"name":"Late Bill","amount":5000,"type":"want","payment_source":"me"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected seed creation after unlock, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCycleFlow_FirstCycleRequiresConfig(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "noconfig@test.com", "password123")
	app.createHousehold(t, token, "Unconfigured")

	// specific_date households need a pay day before the first cycle.
	rec := app.request("POST", "/api/v1/cycles/first", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without cycle config, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "MISSING_CYCLE_CONFIG" {
		t.Errorf("expected MISSING_CYCLE_CONFIG, got %v", errObj["code"])
	}
}
