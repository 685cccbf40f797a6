package resolver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-retryablehttp"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func TestDefault_ResolvesNamespacedTemplates(t *testing.T) {
	appDir := t.TempDir()
	sharedDir := t.TempDir()
	writeTemplate(t, appDir, "home.mustache", "app home")
	writeTemplate(t, appDir, "users/list.mustache", "user list")
	writeTemplate(t, sharedDir, "layout.mustache", "shared layout")

	d := NewDefault()
	if err := d.AddTemplatePath(appDir, "app"); err != nil {
		t.Fatalf("add path: %v", err)
	}
	if err := d.AddTemplatePath(sharedDir, ""); err != nil {
		t.Fatalf("add path: %v", err)
	}

	cases := map[string]string{
		"app::home":       "app home",
		"app::users/list": "user list",
		"layout":          "shared layout",
		"app::layout":     "shared layout",
		"layout.mustache": "shared layout",
	}
	for name, want := range cases {
		got, err := d.Resolve(name)
		if err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
		if got != want {
			t.Fatalf("resolve %q = %q, want %q", name, got, want)
		}
	}

	if _, err := d.Resolve("home"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for default namespace miss, got %v", err)
	}
	if _, err := d.Resolve("app::../escape"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected traversal to be rejected, got %v", err)
	}
}

func TestDefault_LastAddedPathWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeTemplate(t, first, "page.mustache", "first")
	writeTemplate(t, second, "page.mustache", "second")

	d := NewDefault()
	_ = d.AddTemplatePath(first, "")
	_ = d.AddTemplatePath(second, "")

	got, err := d.Resolve("page")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "second" {
		t.Fatalf("expected most recent path to win, got %q", got)
	}
	if diff := cmp.Diff([]string{second, first}, d.TemplatePaths("")); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestDefault_SuffixAndSeparator(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "emails/welcome.html", "welcome")

	d := NewDefault()
	d.SetSuffix("html")
	d.SetSeparator(".")
	_ = d.AddTemplatePath(dir, "")

	got, err := d.Resolve("emails.welcome")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "welcome" {
		t.Fatalf("resolve = %q", got)
	}

	names, err := d.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"emails.welcome"}, names); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestDefault_NamespacesAndList(t *testing.T) {
	appDir := t.TempDir()
	writeTemplate(t, appDir, "home.mustache", "")
	writeTemplate(t, appDir, "partials/nav.mustache", "")
	writeTemplate(t, appDir, "notes.txt", "")

	d := NewDefault()
	_ = d.AddTemplatePath(appDir, "app")
	_ = d.AddTemplatePath(filepath.Join(appDir, "missing"), "")

	if err := d.AddTemplatePath(" ", "app"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}

	if diff := cmp.Diff([]string{"app", DefaultNamespace}, d.Namespaces()); diff != "" {
		t.Fatalf("namespaces mismatch (-want +got):\n%s", diff)
	}

	names, err := d.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"app::home", "app::partials/nav"}, names); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_PriorityOrder(t *testing.T) {
	low := Func(func(string) (string, error) { return "low", nil })
	high := Func(func(string) (string, error) { return "high", nil })
	missing := Func(func(name string) (string, error) { return "", notFound(name) })

	agg := NewAggregate()
	agg.AttachWithPriority(low, 0)
	agg.Attach(missing)
	agg.AttachWithPriority(high, 5)

	got, err := agg.Resolve("any")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "high" {
		t.Fatalf("expected highest priority resolver, got %q", got)
	}

	agg = NewAggregate(missing)
	agg.AttachWithPriority(low, 0)
	if got, _ := agg.Resolve("any"); got != "low" {
		t.Fatalf("expected fallthrough to low priority resolver, got %q", got)
	}
}

func TestAggregate_StopsOnHardErrors(t *testing.T) {
	boom := errors.New("boom")
	agg := NewAggregate(
		Func(func(string) (string, error) { return "", boom }),
		Func(func(string) (string, error) { return "never", nil }),
	)

	if _, err := agg.Resolve("x"); !errors.Is(err, boom) {
		t.Fatalf("expected hard error to propagate, got %v", err)
	}
	if _, err := NewAggregate().Get("x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from empty aggregate, got %v", err)
	}
}

func TestAggregate_DefaultLookup(t *testing.T) {
	agg := NewAggregate()
	if _, ok := agg.Default(); ok {
		t.Fatalf("empty aggregate has no default resolver")
	}

	expected := NewDefault()
	nested := NewAggregate(expected, NewDefault())
	agg.Attach(Func(func(name string) (string, error) { return "", notFound(name) }))
	agg.Attach(nested)
	agg.Attach(NewDefault())

	got, ok := agg.Default()
	if !ok || got != expected {
		t.Fatalf("expected first default resolver in query order")
	}
}

func TestFS_Resolve(t *testing.T) {
	files := fstest.MapFS{
		"home.mustache":       {Data: []byte("home")},
		"admin/list.mustache": {Data: []byte("admin list")},
	}
	r := NewFS(files, "")

	for name, want := range map[string]string{"home": "home", "admin::list": "admin list"} {
		got, err := r.Resolve(name)
		if err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
		if got != want {
			t.Fatalf("resolve %q = %q, want %q", name, got, want)
		}
	}
	if _, err := r.Resolve("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Resolve("../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected invalid path to be not found, got %v", err)
	}
}

func TestHTTP_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/templates/admin/list.mustache":
			_, _ = w.Write([]byte("remote list"))
		case "/templates/forbidden.mustache":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil

	r, err := NewHTTP(srv.URL+"/templates", WithHTTPClient(client))
	if err != nil {
		t.Fatalf("new http resolver: %v", err)
	}

	got, err := r.Resolve("admin::list")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "remote list" {
		t.Fatalf("resolve = %q", got)
	}
	if _, err := r.Resolve("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Resolve("forbidden"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected hard error for 403, got %v", err)
	}
}

func TestNewHTTP_ValidatesBaseURL(t *testing.T) {
	if _, err := NewHTTP(""); err == nil {
		t.Fatalf("expected error for empty base url")
	}
	if _, err := NewHTTP("ftp://example.com"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}
