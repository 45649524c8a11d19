package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestSavingsFlow_PotLockIn(t *testing.T) {
	app := setupApp(t)
	token, cycleID := setupHouseholdWithCycle(t, app, "pot@test.com")

	// Create a pot.
	rec := app.request("POST", "/api/v1/pots",
		`{"name":"Holiday","target_amount":100000}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create pot failed: %d %s", rec.Code, rec.Body.String())
	}
	pot := parseJSON(t, rec)["pot"].(map[string]interface{})
	potID := pot["id"].(string)

	// Add a savings seed linked to the pot.
	body := fmt.Sprintf(`{"name":"Holiday Fund","amount":20000,"type":"savings","payment_source":"me","linked_pot_id":%q}`, potID)
	rec = app.request("POST", "/api/v1/cycles/"+cycleID+"/seeds", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create seed failed: %d %s", rec.Code, rec.Body.String())
	}
	seed := parseJSON(t, rec)["seed"].(map[string]interface{})
	seedID := seed["id"].(string)

	// Marking the seed paid moves money into the pot.
	rec = app.request("POST", "/api/v1/seeds/"+seedID+"/paid", `{"payer":"me"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid failed: %d %s", rec.Code, rec.Body.String())
	}
	paid := parseJSON(t, rec)["seed"].(map[string]interface{})
	if paid["is_paid"] != true {
		t.Error("expected seed to be paid")
	}

	rec = app.request("GET", "/api/v1/pots/"+potID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get pot failed: %d %s", rec.Code, rec.Body.String())
	}
	pot = parseJSON(t, rec)["pot"].(map[string]interface{})
	if pot["current_amount"].(float64) != 20000 {
		t.Errorf("expected current_amount=20000, got %v", pot["current_amount"])
	}

	// Unmarking reverses the movement.
	rec = app.request("DELETE", "/api/v1/seeds/"+seedID+"/paid", `{"payer":"me"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("unmark paid failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/pots/"+potID, "", token)
	pot = parseJSON(t, rec)["pot"].(map[string]interface{})
	if pot["current_amount"].(float64) != 0 {
		t.Errorf("expected current_amount=0 after unmark, got %v", pot["current_amount"])
	}
}

func TestSavingsFlow_PotCompletesAtTarget(t *testing.T) {
	app := setupApp(t)
	token, cycleID := setupHouseholdWithCycle(t, app, "potdone@test.com")

	rec := app.request("POST", "/api/v1/pots",
		`{"name":"Emergency","target_amount":20000}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create pot failed: %d %s", rec.Code, rec.Body.String())
	}
	potID := parseJSON(t, rec)["pot"].(map[string]interface{})["id"].(string)

	body := fmt.Sprintf(`{"name":"Top Up","amount":20000,"type":"savings","payment_source":"me","linked_pot_id":%q}`, potID)
	rec = app.request("POST", "/api/v1/cycles/"+cycleID+"/seeds", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create seed failed: %d %s", rec.Code, rec.Body.String())
	}
	seedID := parseJSON(t, rec)["seed"].(map[string]interface{})["id"].(string)

	rec = app.request("POST", "/api/v1/seeds/"+seedID+"/paid", `{"payer":"me"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/pots/"+potID, "", token)
	pot := parseJSON(t, rec)["pot"].(map[string]interface{})
	if pot["status"] != "complete" {
		t.Errorf("expected pot to complete at target, got %v", pot["status"])
	}
}

func TestRepaymentFlow_BalanceLockIn(t *testing.T) {
	app := setupApp(t)
	token, cycleID := setupHouseholdWithCycle(t, app, "repay@test.com")

	rec := app.request("POST", "/api/v1/repayments",
		`{"name":"Credit Card","balance":500000,"interest_rate":19.9}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create repayment failed: %d %s", rec.Code, rec.Body.String())
	}
	repayment := parseJSON(t, rec)["repayment"].(map[string]interface{})
	repaymentID := repayment["id"].(string)
	if repayment["current_balance"].(float64) != 500000 {
		t.Errorf("expected current_balance=500000, got %v", repayment["current_balance"])
	}

	body := fmt.Sprintf(`{"name":"Card Payment","amount":20000,"type":"repay","payment_source":"me","linked_repayment_id":%q}`, repaymentID)
	rec = app.request("POST", "/api/v1/cycles/"+cycleID+"/seeds", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create seed failed: %d %s", rec.Code, rec.Body.String())
	}
	seedID := parseJSON(t, rec)["seed"].(map[string]interface{})["id"].(string)

	// Paying the seed reduces the debt.
	rec = app.request("POST", "/api/v1/seeds/"+seedID+"/paid", `{"payer":"me"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/repayments/"+repaymentID, "", token)
	repayment = parseJSON(t, rec)["repayment"].(map[string]interface{})
	if repayment["current_balance"].(float64) != 480000 {
		t.Errorf("expected current_balance=480000, got %v", repayment["current_balance"])
	}

	// Forecast reports cycles to clear at the current pace.
	rec = app.request("GET", "/api/v1/repayments/"+repaymentID+"/forecast?per_cycle=20000", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("forecast failed: %d %s", rec.Code, rec.Body.String())
	}
	forecast := parseJSON(t, rec)["forecast"].(map[string]interface{})
	if forecast["reachable"] != true {
		t.Errorf("expected debt to be clearable, got %v", forecast["reachable"])
	}
	if forecast["cycles_to_clear"].(float64) != 24 {
		t.Errorf("expected 24 cycles to clear 480000 at 20000, got %v", forecast["cycles_to_clear"])
	}
}
