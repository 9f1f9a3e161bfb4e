package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/paykit/pkg/invoice"
	"github.com/samvad-hq/paykit/pkg/resource"
)

const cmdInvoiceJSON = `{"id":"in_123","object":"invoice","status":"open","customer":"cus_1","metadata":{"a":"1"},"tax_percent":null}`

type seenRequest struct {
	method string
	path   string
	query  string
	form   url.Values
}

type cmdAPI struct {
	mu   sync.Mutex
	reqs []seenRequest
}

func (a *cmdAPI) last() seenRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reqs[len(a.reqs)-1]
}

func newCommandsHarness(t *testing.T, status int) (*Commands, *cmdAPI, *bytes.Buffer) {
	t.Helper()
	api := &cmdAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(raw))
		api.mu.Lock()
		api.reqs = append(api.reqs, seenRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, form: form})
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such invoice"}}`))
			return
		}
		switch {
		case r.URL.Path == "/v1/invoices" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"object":"list","url":"/v1/invoices","has_more":false,"data":[` + cmdInvoiceJSON + `]}`))
		case strings.HasSuffix(r.URL.Path, "/lines"):
			_, _ = w.Write([]byte(`{"object":"list","url":"/v1/invoices/in_123/lines","data":[{"id":"il_1","object":"line_item"}]}`))
		default:
			_, _ = w.Write([]byte(cmdInvoiceJSON))
		}
	}))
	t.Cleanup(srv.Close)

	b := resource.NewBackend(resource.BackendConfig{APIBase: srv.URL, APIKey: "sk_test"}, nil, nil)
	var out bytes.Buffer
	return NewCommands(invoice.New(b), &out), api, &out
}

func TestCommandsGetPrintsUnknownFields(t *testing.T) {
	cmds, api, out := newCommandsHarness(t, 0)

	if err := cmds.Execute(context.Background(), "get", []string{"in_123"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if req := api.last(); req.method != http.MethodGet || req.path != "/v1/invoices/in_123" {
		t.Fatalf("unexpected request %+v", req)
	}

	var printed map[string]any
	if err := json.Unmarshal(out.Bytes(), &printed); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if printed["id"] != "in_123" {
		t.Fatalf("unexpected output %#v", printed)
	}
	if v, ok := printed["tax_percent"]; !ok || v != nil {
		t.Fatalf("unknown field not carried to output: %#v", printed)
	}
}

func TestCommandsSaveSendsOnlyMetadataChanges(t *testing.T) {
	cmds, api, _ := newCommandsHarness(t, 0)

	err := cmds.Execute(context.Background(), "save", []string{"in_123", "--metadata", "b=2", "--metadata", "a=1"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	req := api.last()
	if req.method != http.MethodPost || req.path != "/v1/invoices/in_123" {
		t.Fatalf("unexpected request %+v", req)
	}
	if len(req.form) != 1 || req.form.Get("metadata[b]") != "2" {
		t.Fatalf("expected only metadata[b], got %#v", req.form)
	}
}

func TestCommandsPayAndActions(t *testing.T) {
	cmds, api, _ := newCommandsHarness(t, 0)
	ctx := context.Background()

	if err := cmds.Execute(ctx, "pay", []string{"in_123", "--source", "src_1"}); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if req := api.last(); req.path != "/v1/invoices/in_123/pay" || req.form.Get("source") != "src_1" {
		t.Fatalf("unexpected pay request %+v", req)
	}

	for cmd, suffix := range map[string]string{
		"finalize":           "finalize",
		"mark-uncollectible": "mark_uncollectible",
		"send":               "send",
		"void":               "void",
	} {
		if err := cmds.Execute(ctx, cmd, []string{"in_123"}); err != nil {
			t.Fatalf("%s: %v", cmd, err)
		}
		if req := api.last(); req.method != http.MethodPost || req.path != "/v1/invoices/in_123/"+suffix {
			t.Fatalf("%s: unexpected request %+v", cmd, req)
		}
	}

	if err := cmds.Execute(ctx, "delete", []string{"in_123"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if req := api.last(); req.method != http.MethodDelete {
		t.Fatalf("unexpected delete request %+v", req)
	}
}

func TestCommandsUpcomingFlattensParamsFile(t *testing.T) {
	cmds, api, _ := newCommandsHarness(t, 0)
	path := filepath.Join(t.TempDir(), "upcoming.yaml")
	raw := "coupon: \"\"\nsubscription_items:\n  - plan: gold\n  - plan: silver\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := cmds.Execute(context.Background(), "upcoming", []string{"--customer", "cus_1", "-f", path}); err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	req := api.last()
	if req.path != "/v1/invoices/upcoming" {
		t.Fatalf("unexpected path %s", req.path)
	}
	want := "coupon=&customer=cus_1&subscription_items%5B%5D%5Bplan%5D=gold&subscription_items%5B%5D%5Bplan%5D=silver"
	if req.query != want {
		t.Fatalf("query = %s, want %s", req.query, want)
	}
}

func TestCommandsListAndLines(t *testing.T) {
	cmds, api, out := newCommandsHarness(t, 0)
	ctx := context.Background()

	if err := cmds.Execute(ctx, "list", []string{"--limit", "3", "--status", "open"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if req := api.last(); req.query != "limit=3&status=open" {
		t.Fatalf("unexpected list query %q", req.query)
	}
	if !strings.Contains(out.String(), `"in_123"`) {
		t.Fatalf("list output missing invoice: %s", out.String())
	}

	if err := cmds.Execute(ctx, "lines", []string{"in_123"}); err != nil {
		t.Fatalf("lines: %v", err)
	}
	if req := api.last(); req.path != "/v1/invoices/in_123/lines" {
		t.Fatalf("unexpected lines path %s", req.path)
	}
}

func TestCommandsErrors(t *testing.T) {
	cmds, _, _ := newCommandsHarness(t, http.StatusNotFound)
	ctx := context.Background()

	err := cmds.Execute(ctx, "get", []string{"in_missing"})
	if !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := cmds.Execute(ctx, "get", nil); err == nil {
		t.Fatalf("expected argument count error")
	}
	if err := cmds.Execute(ctx, "refund", nil); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if err := cmds.Execute(ctx, "list", []string{"--bogus"}); err == nil {
		t.Fatalf("expected flag parse error")
	}
	if !strings.Contains(Usage(), "mark-uncollectible <id>") {
		t.Fatalf("usage missing command: %s", Usage())
	}
}
