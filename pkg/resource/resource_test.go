package resource

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/samvad-hq/paykit/pkg/httpclient"
)

type widget struct {
	Meta `json:"-"`

	ID       string            `json:"id"`
	Object   string            `json:"object"`
	Name     string            `json:"name"`
	Size     int64             `json:"size"`
	Metadata map[string]string `json:"metadata"`
}

func (w *widget) GetID() string { return w.ID }

type fakeResponse struct {
	status int
	body   []byte
	header http.Header
}

func (r fakeResponse) Body() []byte        { return r.body }
func (r fakeResponse) StatusCode() int     { return r.status }
func (r fakeResponse) Header() http.Header { return r.header }

// fakeClient records requests and replies with a fixed response.
type fakeClient struct {
	calls  []httpclient.Request
	status int
	body   string
	header http.Header
	err    error
}

func (f *fakeClient) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return fakeResponse{status: status, body: []byte(f.body), header: f.header}, nil
}

const widgetJSON = `{"id":"wd_1","object":"widget","name":"gear","size":3,"metadata":{"a":"1"},"color":"red"}`

func newWidgetService(client *fakeClient) *Service[widget, *widget] {
	b := NewBackend(BackendConfig{APIBase: "https://api.test/", APIKey: "sk_test", APIVersion: "2024-01-01"}, client, nil)
	return NewService[widget, *widget](b, "widgets")
}

func TestRetrieveBuildsRequestAndDecodes(t *testing.T) {
	client := &fakeClient{body: widgetJSON}
	svc := newWidgetService(client)

	w, err := svc.Retrieve(context.Background(), "wd_1", nil)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(client.calls))
	}
	req := client.calls[0]
	if req.Method != http.MethodGet || req.URL != "https://api.test/v1/widgets/wd_1" {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL)
	}
	if got := req.Headers["Authorization"]; got != "Bearer sk_test" {
		t.Fatalf("unexpected Authorization %q", got)
	}
	if got := req.Headers["Stripe-Version"]; got != "2024-01-01" {
		t.Fatalf("unexpected Stripe-Version %q", got)
	}
	if w.ID != "wd_1" || w.Name != "gear" || w.Size != 3 {
		t.Fatalf("unexpected widget %+v", w)
	}
	if w.Extra["color"] != "red" {
		t.Fatalf("unknown field not kept in Extra: %#v", w.Extra)
	}
	if snap := w.Snapshot(); snap["color"] != "red" || snap["name"] != "gear" {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
}

func TestRetrieveRejectsEmptyID(t *testing.T) {
	client := &fakeClient{body: widgetJSON}
	svc := newWidgetService(client)

	_, err := svc.Retrieve(context.Background(), " ", nil)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no network call, got %d", len(client.calls))
	}
}

func TestSaveSendsOnlyChangedFields(t *testing.T) {
	client := &fakeClient{body: widgetJSON}
	svc := newWidgetService(client)

	w, err := svc.Retrieve(context.Background(), "wd_1", nil)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	w.Metadata["key"] = "value"
	w.Size = 4

	client.body = `{"id":"wd_1","object":"widget","name":"gear","size":4,"metadata":{"a":"1","key":"value"}}`
	if err := svc.Save(context.Background(), w); err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := client.calls[1]
	if req.Method != http.MethodPost || req.URL != "https://api.test/v1/widgets/wd_1" {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL)
	}
	if req.Headers["Content-Type"] != formContentType {
		t.Fatalf("unexpected content type %q", req.Headers["Content-Type"])
	}
	body, err := url.ParseQuery(req.Body)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if body.Get("metadata[key]") != "value" || body.Get("size") != "4" {
		t.Fatalf("unexpected body %q", req.Body)
	}
	if len(body) != 2 {
		t.Fatalf("expected only changed fields, got %q", req.Body)
	}
	if w.Size != 4 || w.Metadata["key"] != "value" {
		t.Fatalf("widget not refreshed: %+v", w)
	}
	if w.Extra != nil {
		t.Fatalf("expected Extra reset from response, got %#v", w.Extra)
	}
	changes, err := Changes(w)
	if err != nil {
		t.Fatalf("Changes: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected clean entity after save, got %#v", changes)
	}
}

func TestSaveWithoutChangesStillCalls(t *testing.T) {
	client := &fakeClient{body: widgetJSON}
	svc := newWidgetService(client)

	w, err := svc.Retrieve(context.Background(), "wd_1", nil)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if err := svc.Save(context.Background(), w); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(client.calls))
	}
	if client.calls[1].Body != "" {
		t.Fatalf("expected empty body, got %q", client.calls[1].Body)
	}
}

func TestActionLeavesEntityUntouchedOnError(t *testing.T) {
	client := &fakeClient{body: widgetJSON}
	svc := newWidgetService(client)

	w, err := svc.Retrieve(context.Background(), "wd_1", nil)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	client.status = http.StatusBadRequest
	client.body = `{"error":{"type":"invalid_request_error","message":"nope","param":"size"}}`
	err = svc.Action(context.Background(), w, "polish", Params{"force": true})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Param != "size" || apiErr.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected error detail %#v", apiErr)
	}
	if client.calls[1].URL != "https://api.test/v1/widgets/wd_1/polish" || client.calls[1].Body != "force=true" {
		t.Fatalf("unexpected request %+v", client.calls[1])
	}
	if w.Name != "gear" {
		t.Fatalf("entity modified on failure: %+v", w)
	}
}

func TestDeleteSendsQueryParams(t *testing.T) {
	client := &fakeClient{body: `{"id":"wd_1","object":"widget","deleted":true}`}
	svc := newWidgetService(client)

	w := &widget{ID: "wd_1"}
	if err := svc.Delete(context.Background(), w, Params{"reason": "dup"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	req := client.calls[0]
	if req.Method != http.MethodDelete || req.Query != "reason=dup" || req.Body != "" {
		t.Fatalf("unexpected request %+v", req)
	}
	if w.Extra["deleted"] != true {
		t.Fatalf("expected deleted flag in Extra, got %#v", w.Extra)
	}
}

func TestListPreservesOrder(t *testing.T) {
	client := &fakeClient{body: `{"object":"list","url":"/v1/widgets","has_more":true,"data":[{"id":"wd_2"},{"id":"wd_1","shade":"dark"}]}`}
	svc := newWidgetService(client)

	page, err := svc.List(context.Background(), Params{"limit": 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if client.calls[0].Query != "limit=2" {
		t.Fatalf("unexpected query %q", client.calls[0].Query)
	}
	if page.Len() != 2 || page.First().ID != "wd_2" || page.Data[1].ID != "wd_1" || !page.HasMore {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Data[1].Extra["shade"] != "dark" {
		t.Fatalf("list element extra not decoded: %#v", page.Data[1].Extra)
	}
}

func TestCallClassifiesErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{name: "not found", status: 404, body: `{"error":{"type":"invalid_request_error","message":"No such invoice"}}`, kind: ErrNotFound},
		{name: "unauthorized", status: 401, body: `{"error":{"type":"invalid_request_error"}}`, kind: ErrAuthentication},
		{name: "forbidden", status: 403, body: `{}`, kind: ErrAuthentication},
		{name: "bad request", status: 400, body: `{"error":{"type":"invalid_request_error"}}`, kind: ErrInvalidRequest},
		{name: "rate limited", status: 429, body: `{"error":{"type":"invalid_request_error"}}`, kind: ErrInvalidRequest},
		{name: "card", status: 402, body: `{"error":{"type":"card_error","code":"card_declined"}}`, kind: ErrCard},
		{name: "server", status: 500, body: `not json`, kind: ErrAPI},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{status: tc.status, body: tc.body, header: http.Header{"Request-Id": []string{"req_9"}}}
			svc := newWidgetService(client)

			w, err := svc.Retrieve(context.Background(), "wd_1", nil)
			if w != nil {
				t.Fatalf("expected no entity on failure, got %+v", w)
			}
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			var apiErr *Error
			if !errors.As(err, &apiErr) || apiErr.HTTPStatus != tc.status || apiErr.RequestID != "req_9" {
				t.Fatalf("unexpected error detail %#v", apiErr)
			}
		})
	}
}

func TestCallWrapsTransportFailure(t *testing.T) {
	boom := errors.New("dial tcp: refused")
	svc := newWidgetService(&fakeClient{err: boom})

	_, err := svc.Create(context.Background(), Params{"name": "x"})
	if !errors.Is(err, ErrConnection) || !errors.Is(err, boom) {
		t.Fatalf("expected connection error wrapping cause, got %v", err)
	}
}

func TestDiff(t *testing.T) {
	prev := map[string]any{
		"name":     "gear",
		"gone":     "x",
		"metadata": map[string]any{"a": "1", "b": "2"},
		"note":     "hi",
	}
	cur := map[string]any{
		"name":     "gear",
		"metadata": map[string]any{"a": "1", "c": "3"},
		"note":     nil,
		"fresh":    "",
		"added":    "y",
	}

	got := Diff(prev, cur)
	if got["gone"] != "" || got["note"] != "" || got["added"] != "y" {
		t.Fatalf("unexpected diff %#v", got)
	}
	if _, ok := got["name"]; ok {
		t.Fatalf("unchanged key reported: %#v", got)
	}
	if _, ok := got["fresh"]; ok {
		t.Fatalf("zero-valued new key reported: %#v", got)
	}
	meta, ok := got["metadata"].(map[string]any)
	if !ok || meta["b"] != "" || meta["c"] != "3" || len(meta) != 2 {
		t.Fatalf("unexpected nested diff %#v", got["metadata"])
	}
}
