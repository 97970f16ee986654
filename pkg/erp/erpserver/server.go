// Package erpserver implements the mock ERP master-data HTTP service. It
// serves vendor, purchase-order, and SKU lookups from JSON-seeded in-memory
// maps, returning 404 for unknown records exactly like a real ERP gateway.
package erpserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/auditkit/invaudit/pkg/buildinfo"
	"github.com/auditkit/invaudit/pkg/erp"
	"github.com/auditkit/invaudit/pkg/logging"
)

// Store holds the ERP master data, keyed by each record's natural key.
type Store struct {
	mu      sync.RWMutex
	vendors map[string]erp.Vendor        // by vendor_id
	pos     map[string]erp.PurchaseOrder // by po_number
	skus    map[string]erp.SKU           // by item_code
}

// NewStore creates a Store from record slices.
func NewStore(vendors []erp.Vendor, pos []erp.PurchaseOrder, skus []erp.SKU) *Store {
	s := &Store{
		vendors: make(map[string]erp.Vendor, len(vendors)),
		pos:     make(map[string]erp.PurchaseOrder, len(pos)),
		skus:    make(map[string]erp.SKU, len(skus)),
	}
	for _, v := range vendors {
		s.vendors[v.VendorID] = v
	}
	for _, po := range pos {
		s.pos[po.PONumber] = po
	}
	for _, sku := range skus {
		s.skus[sku.ItemCode] = sku
	}
	return s
}

// VendorByName searches vendors by name, case-insensitively.
func (s *Store) VendorByName(name string) (erp.Vendor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := strings.TrimSpace(strings.ToLower(name))
	for _, v := range s.vendors {
		if strings.TrimSpace(strings.ToLower(v.VendorName)) == want {
			return v, true
		}
	}
	return erp.Vendor{}, false
}

// VendorByID returns a vendor by its unique ID.
func (s *Store) VendorByID(id string) (erp.Vendor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[id]
	return v, ok
}

// PurchaseOrder returns a PO by number.
func (s *Store) PurchaseOrder(poNumber string) (erp.PurchaseOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	po, ok := s.pos[poNumber]
	return po, ok
}

// SKU returns an item master record by item code.
func (s *Store) SKU(itemCode string) (erp.SKU, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sku, ok := s.skus[itemCode]
	return sku, ok
}

// Counts returns the number of loaded vendors, POs, and SKUs.
func (s *Store) Counts() (vendors, pos, skus int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vendors), len(s.pos), len(s.skus)
}

// Server is the mock ERP HTTP service.
type Server struct {
	store  *Store
	logger logging.Logger
}

// New creates a Server over the given store.
func New(store *Store, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.MustGlobal()
	}
	return &Server{
		store:  store,
		logger: logger.With(logging.F("component", "erp_server")),
	}
}

// Router builds the chi router for the service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/version", buildinfo.Handler("erp-mock"))
	r.Get("/vendor/by_name/{name}", s.handleVendorByName)
	r.Get("/vendor/by_id/{id}", s.handleVendorByID)
	r.Get("/po/{poNumber}", s.handlePO)
	r.Get("/sku/{itemCode}", s.handleSKU)

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Mock ERP API is running.",
	})
}

func (s *Server) handleVendorByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// Clients path-escape vendor names; chi hands back the raw segment
	// when the request path is not in canonical form.
	if dec, err := url.PathUnescape(name); err == nil {
		name = dec
	}
	vendor, ok := s.store.VendorByName(name)
	if !ok {
		writeNotFound(w, "Vendor '"+name+"' not found.")
		return
	}
	writeJSON(w, http.StatusOK, vendor)
}

func (s *Server) handleVendorByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	vendor, ok := s.store.VendorByID(id)
	if !ok {
		writeNotFound(w, "Vendor ID '"+id+"' not found.")
		return
	}
	writeJSON(w, http.StatusOK, vendor)
}

func (s *Server) handlePO(w http.ResponseWriter, r *http.Request) {
	poNumber := chi.URLParam(r, "poNumber")
	po, ok := s.store.PurchaseOrder(poNumber)
	if !ok {
		writeNotFound(w, "PO Number '"+poNumber+"' not found.")
		return
	}
	writeJSON(w, http.StatusOK, po)
}

func (s *Server) handleSKU(w http.ResponseWriter, r *http.Request) {
	itemCode := chi.URLParam(r, "itemCode")
	sku, ok := s.store.SKU(itemCode)
	if !ok {
		writeNotFound(w, "Item Code '"+itemCode+"' not found.")
		return
	}
	writeJSON(w, http.StatusOK, sku)
}

// ListenAndServe runs the service on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	vendors, pos, skus := s.store.Counts()
	s.logger.Info("Mock ERP service starting",
		logging.F("addr", addr),
		logging.F("vendors", vendors),
		logging.F("purchase_orders", pos),
		logging.F("skus", skus))
	return http.ListenAndServe(addr, s.Router())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": detail})
}
