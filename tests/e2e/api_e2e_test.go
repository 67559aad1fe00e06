package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/contactbook/internal/db"
	"github.com/contactbook/internal/handler"
	"github.com/contactbook/internal/router"
	"github.com/contactbook/internal/sheet"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	handler http.Handler
	client  httpClient
	baseURL string
	format  sheet.Format
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w.Result(), nil
}

type contactView struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	IsBookmarked   bool   `json:"isBookmarked"`
	ContactDetails []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"contactDetails"`
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("health", suite.testHealth)
	t.Run("contact crud", suite.testContactCRUD)
	t.Run("import and export", suite.testImportExport)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	db.DB = gdb

	format := sheet.FormatFor("en")
	engine := router.SetupRouter(handler.NewAPI(db.DB, handler.Options{SheetLanguage: format.Language}))

	return &e2eSuite{
		handler: engine,
		client:  &localClient{handler: engine},
		baseURL: "http://example.test",
		format:  format,
	}
}

func (s *e2eSuite) do(t *testing.T, method, path, contentType string, body io.Reader) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, data
}

func (s *e2eSuite) doJSON(t *testing.T, method, path string, payload any, wantStatus int) []byte {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	resp, data := s.do(t, method, path, "application/json", body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, wantStatus, resp.StatusCode, string(data))
	}
	return data
}

func (s *e2eSuite) listContacts(t *testing.T) []contactView {
	t.Helper()

	var resp struct {
		Contacts []contactView `json:"contacts"`
	}
	data := s.doJSON(t, http.MethodGet, "/api/contacts", nil, http.StatusOK)
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("failed to decode contacts: %v", err)
	}
	return resp.Contacts
}

func (s *e2eSuite) testHealth(t *testing.T) {
	s.doJSON(t, http.MethodGet, "/ping", nil, http.StatusOK)
	data := s.doJSON(t, http.MethodGet, "/healthz", nil, http.StatusOK)
	if !strings.Contains(string(data), `"status":"ok"`) {
		t.Fatalf("unexpected health payload %s", string(data))
	}
}

func (s *e2eSuite) testContactCRUD(t *testing.T) {
	var created struct {
		Contact contactView `json:"contact"`
	}
	data := s.doJSON(t, http.MethodPost, "/api/contacts", map[string]any{
		"name":           "Grace",
		"contactDetails": []map[string]string{{"type": "phone", "value": "1"}},
	}, http.StatusCreated)
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("failed to decode created contact: %v", err)
	}
	id := created.Contact.ID
	base := fmt.Sprintf("/api/contacts/%d", id)

	s.doJSON(t, http.MethodPost, base+"/details", map[string]string{"type": "phone", "value": "1"}, http.StatusConflict)
	s.doJSON(t, http.MethodPost, base+"/details", map[string]string{"type": "email", "value": "g@x.com"}, http.StatusCreated)
	s.doJSON(t, http.MethodPost, base+"/details/batch", map[string]any{
		"contactDetails": []map[string]string{{"type": "email", "value": "g@x.com"}, {"type": "qq", "value": "10001"}},
	}, http.StatusOK)
	s.doJSON(t, http.MethodPatch, base+"/bookmark", true, http.StatusOK)

	var fetched struct {
		Contact contactView `json:"contact"`
	}
	data = s.doJSON(t, http.MethodGet, base, nil, http.StatusOK)
	if err := json.Unmarshal(data, &fetched); err != nil {
		t.Fatalf("failed to decode contact: %v", err)
	}
	if !fetched.Contact.IsBookmarked || len(fetched.Contact.ContactDetails) != 3 {
		t.Fatalf("unexpected contact %+v", fetched.Contact)
	}

	data = s.doJSON(t, http.MethodGet, "/api/contacts/bookmarked", nil, http.StatusOK)
	if !strings.Contains(string(data), `"name":"Grace"`) {
		t.Fatalf("expected Grace in bookmarked list: %s", string(data))
	}

	s.doJSON(t, http.MethodDelete, base, nil, http.StatusOK)
	s.doJSON(t, http.MethodGet, base, nil, http.StatusNotFound)
	s.doJSON(t, http.MethodDelete, base, nil, http.StatusNotFound)
	s.doJSON(t, http.MethodGet, "/api/contacts/abc", nil, http.StatusBadRequest)
}

func (s *e2eSuite) upload(t *testing.T, filename string, data []byte) (*http.Response, []byte) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	writer.Close()

	return s.do(t, http.MethodPost, "/api/contacts/import", writer.FormDataContentType(), &body)
}

func (s *e2eSuite) testImportExport(t *testing.T) {
	codec := sheet.NewCodec(s.format)
	data, err := codec.Encode([]sheet.OutputRow{
		{Name: "Heidi", Bookmarked: "yes", DetailType: "phone", DetailValue: "555-0001"},
		{Name: "Heidi", Bookmarked: "no", DetailType: "email", DetailValue: "h@x.com"},
		{Name: "Ivan", Bookmarked: "no", DetailType: "-", DetailValue: "-"},
		{Name: "Judy", Bookmarked: "yes", DetailType: "phone", DetailValue: strings.Repeat("9", db.MaxDetailValueLength+1)},
	})
	if err != nil {
		t.Fatalf("failed to encode workbook: %v", err)
	}

	for run := 1; run <= 2; run++ {
		resp, body := s.upload(t, "contacts.xlsx", data)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("run %d: expected status 200, got %d: %s", run, resp.StatusCode, string(body))
		}
		var summary struct {
			ProcessedCount int `json:"processedCount"`
			TotalRowCount  int `json:"totalRowCount"`
			FailedCount    int `json:"failedCount"`
		}
		if err := json.Unmarshal(body, &summary); err != nil {
			t.Fatalf("failed to decode summary: %v", err)
		}
		if summary.ProcessedCount != 3 || summary.TotalRowCount != 4 || summary.FailedCount != 1 {
			t.Fatalf("run %d: unexpected summary %+v", run, summary)
		}
	}

	contacts := s.listContacts(t)
	byName := make(map[string]contactView, len(contacts))
	for _, contact := range contacts {
		byName[contact.Name] = contact
	}
	if heidi := byName["Heidi"]; heidi.IsBookmarked || len(heidi.ContactDetails) != 2 {
		t.Fatalf("expected last row to win and details deduped, got %+v", heidi)
	}
	if _, ok := byName["Judy"]; ok {
		t.Fatalf("failed row must not persist a contact")
	}

	resp, body := s.upload(t, "contacts.txt", data)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported extension, got %d: %s", resp.StatusCode, string(body))
	}

	resp, exported := s.do(t, http.MethodGet, "/api/contacts/export", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected export status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), s.format.FileName) {
		t.Fatalf("unexpected content disposition %q", resp.Header.Get("Content-Disposition"))
	}

	rows, err := codec.Decode(exported)
	if err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 exported rows, got %d", len(rows))
	}
}
