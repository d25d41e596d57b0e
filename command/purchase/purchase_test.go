package purchase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ri-purchase/domain/reservation"
)

// fakeAPI stands in for the Azure connector.
type fakeAPI struct {
	calcErr        error
	purchaseCalls  []string
	purchaseStatus int
}

func (f *fakeAPI) Calculate(_ context.Context, payload reservation.Payload) (reservation.Quote, error) {
	if f.calcErr != nil {
		return reservation.Quote{}, f.calcErr
	}
	return reservation.Quote{OrderID: "order-" + payload.SKU.Name, Amount: 120.50, Currency: "USD"}, nil
}

func (f *fakeAPI) Purchase(_ context.Context, orderID string, _ reservation.Payload) (*reservation.PurchaseResponse, error) {
	f.purchaseCalls = append(f.purchaseCalls, orderID)
	status := f.purchaseStatus
	if status == 0 {
		status = 200
	}
	return &reservation.PurchaseResponse{StatusCode: status, Body: map[string]any{}}, nil
}

func (f *fakeAPI) PurchaseURL(orderID string) string {
	return "https://management.azure.com/providers/Microsoft.Capacity/reservationOrders/" + orderID + "?api-version=2022-11-01"
}

const inputHeader = "SKU-name;azure region;reservedResourceType;subscription;term;billingPlan;quantity;displayName;appliedScopes;appliedScopeType;InstanceFlexibility;renew;Purchase Trigger;Purchased Confirmed\n"

func writeInput(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ri.csv")
	require.NoError(t, os.WriteFile(path, []byte(inputHeader+strings.Join(rows, "\n")+"\n"), 0o644))
	return path
}

func vmRow(trigger, confirmed string) string {
	return strings.Join([]string{
		"Standard_D2s_v3", "eastus", "VirtualMachines", "sub-123", "P3Y", "Monthly",
		"2", "prod-ri", "sub-123", "Single", "On", "yes", trigger, confirmed,
	}, ";")
}

func TestRunPurchasesAuthorizedRows(t *testing.T) {
	file := writeInput(t, vmRow("yes", "yes"))
	api := &fakeAPI{}
	var out bytes.Buffer

	err := run(context.Background(), api, file, 0, true, false, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"order-Standard_D2s_v3"}, api.purchaseCalls)
	assert.Contains(t, out.String(), "Summary: 1 successful, 0 failed out of 1")

	// Quotes writeback and result files exist.
	quotes, err := os.ReadFile(strings.TrimSuffix(file, ".csv") + "_with_order_ids.csv")
	require.NoError(t, err)
	assert.Contains(t, string(quotes), "order-Standard_D2s_v3")
	assert.Contains(t, string(quotes), "120.5 USD")

	results, err := os.ReadFile(filepath.Join(filepath.Dir(file), "purchase_results_ri.json"))
	require.NoError(t, err)
	assert.Contains(t, string(results), `"success": true`)
}

func TestRunSkipsRowsWithoutTrigger(t *testing.T) {
	file := writeInput(t, vmRow("no", "yes"))
	api := &fakeAPI{}
	var out bytes.Buffer

	err := run(context.Background(), api, file, 0, true, false, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Empty(t, api.purchaseCalls)
	assert.Contains(t, out.String(), "No rows are authorized for purchase")
}

func TestRunMixedOutcomeReturnsNil(t *testing.T) {
	file := writeInput(t, vmRow("yes", "yes"))
	api := &fakeAPI{purchaseStatus: 500}
	var out bytes.Buffer

	err := run(context.Background(), api, file, 0, true, false, strings.NewReader(""), &out)
	require.NoError(t, err, "per-row purchase failures must not fail the batch call")
	assert.Contains(t, out.String(), "Summary: 0 successful, 1 failed out of 1")
}

func TestRunAbortsOnCalculationError(t *testing.T) {
	file := writeInput(t, vmRow("yes", "yes"))
	api := &fakeAPI{calcErr: errors.New("provider rejected request")}
	var out bytes.Buffer

	err := run(context.Background(), api, file, 0, true, false, strings.NewReader(""), &out)
	require.Error(t, err)
	var cerr *reservation.CalculationError
	assert.ErrorAs(t, err, &cerr)
	assert.Empty(t, api.purchaseCalls, "no purchase may be attempted when calculation failed")
}

func TestRunAbortsOnValidationError(t *testing.T) {
	bad := strings.Replace(vmRow("yes", "yes"), ";2;", ";zero;", 1)
	file := writeInput(t, bad)
	api := &fakeAPI{}
	var out bytes.Buffer

	err := run(context.Background(), api, file, 0, true, false, strings.NewReader(""), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, reservation.ErrInvalidQuantity)
	assert.Empty(t, api.purchaseCalls)
}

func TestRunDryRunStopsBeforeExecution(t *testing.T) {
	file := writeInput(t, vmRow("yes", "yes"))
	api := &fakeAPI{}
	var out bytes.Buffer

	err := run(context.Background(), api, file, 0, true, true, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Empty(t, api.purchaseCalls)
	assert.Contains(t, out.String(), "PUT https://management.azure.com/providers/Microsoft.Capacity/reservationOrders/order-Standard_D2s_v3")
	// The review output must carry the full rendered payload.
	assert.Contains(t, out.String(), `"name": "Standard_D2s_v3"`)
	assert.Contains(t, out.String(), `"renew": true`)
	assert.NotContains(t, out.String(), "failed to render payload")
	assert.Contains(t, out.String(), "Dry run")
}

func TestRunConfirmationDeclined(t *testing.T) {
	file := writeInput(t, vmRow("yes", "yes"))
	api := &fakeAPI{}
	var out bytes.Buffer

	err := run(context.Background(), api, file, 0, false, false, strings.NewReader("no\n"), &out)
	require.NoError(t, err)
	assert.Empty(t, api.purchaseCalls)
	assert.Contains(t, out.String(), "Operation cancelled")
}

func TestRunSecondConfirmationDeclined(t *testing.T) {
	file := writeInput(t, vmRow("yes", "yes"))
	api := &fakeAPI{}
	var out bytes.Buffer

	err := run(context.Background(), api, file, 0, false, false, strings.NewReader("yes\nno\n"), &out)
	require.NoError(t, err)
	assert.Empty(t, api.purchaseCalls)
	assert.Contains(t, out.String(), "Purchase execution skipped")
}
