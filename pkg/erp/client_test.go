package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iaerrors "github.com/auditkit/invaudit/pkg/errors"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/vendor/by_name/Tech Solutions Ltd.":
			json.NewEncoder(w).Encode(Vendor{VendorID: "V-001", VendorName: "Tech Solutions Ltd.", Currency: "USD"})
		case "/po/PO-98765":
			json.NewEncoder(w).Encode(PurchaseOrder{
				PONumber: "PO-98765",
				VendorID: "V-001",
				LineItems: []POLineItem{
					{ItemCode: "SKU-A123", Description: "License", Qty: 1, UnitPrice: 2000, Currency: "USD"},
				},
			})
		case "/sku/SKU-A123":
			json.NewEncoder(w).Encode(SKU{ItemCode: "SKU-A123", Category: "Software", UOM: "EA", GSTRate: 10})
		default:
			http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientLookups(t *testing.T) {
	srv := testServer(t)
	client := NewClient(srv.URL, nil)
	ctx := context.Background()

	vendor, err := client.GetVendorByName(ctx, "Tech Solutions Ltd.")
	require.NoError(t, err)
	assert.Equal(t, "V-001", vendor.VendorID)
	assert.Equal(t, "USD", vendor.Currency)

	po, err := client.GetPurchaseOrder(ctx, "PO-98765")
	require.NoError(t, err)
	assert.Equal(t, "V-001", po.VendorID)
	assert.True(t, po.ContainsItem("SKU-A123"))
	assert.False(t, po.ContainsItem("SKU-B999"))

	sku, err := client.GetSKU(ctx, "SKU-A123")
	require.NoError(t, err)
	assert.Equal(t, "Software", sku.Category)
}

func TestClientNotFound(t *testing.T) {
	srv := testServer(t)
	client := NewClient(srv.URL, nil)
	ctx := context.Background()

	_, err := client.GetVendorByName(ctx, "Fake Vendor Inc.")
	require.Error(t, err)
	assert.True(t, iaerrors.IsNotFound(err))

	_, err = client.GetPurchaseOrder(ctx, "PO-00000")
	assert.True(t, iaerrors.IsNotFound(err))

	_, err = client.GetSKU(ctx, "SKU-MISSING")
	assert.True(t, iaerrors.IsNotFound(err))
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.GetVendorByName(context.Background(), "Anyone")
	require.Error(t, err)
	assert.False(t, iaerrors.IsNotFound(err))
}
