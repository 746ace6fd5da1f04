package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMX_RequestDetection(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("Hx-Request", "true")
	r.Header.Set("Hx-Boosted", "true")
	if !IsHTMX(r) {
		t.Fatal("expected IsHTMX true")
	}
	if !IsBoosted(r) {
		t.Fatal("expected IsBoosted true")
	}
	if WantsPartial(r) {
		t.Fatal("boosted navigation needs the full layout")
	}

	r2 := httptest.NewRequest(http.MethodGet, "/x", nil)
	if IsHTMX(r2) || IsBoosted(r2) || WantsPartial(r2) {
		t.Fatal("expected defaults to false")
	}
}

func TestHTMX_WantsPartial(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("Hx-Request", "true")
	if !WantsPartial(r) {
		t.Fatal("htmx request should want partial")
	}
}

func TestHTMX_Target(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	r.Header.Set("Hx-Target", "job-list")
	if HXTarget(r) != "job-list" {
		t.Fatalf("HXTarget mismatch: %q", HXTarget(r))
	}
}

func TestHTMX_ResponseHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	HTMX(rr).PushURL("/jobs?q=go").Trigger("jobsUpdated", nil)
	HTMX(rr).Redirect("/login")

	res := rr.Result()
	t.Cleanup(func() { _ = res.Body.Close() })
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", res.StatusCode)
	}
	if got := res.Header.Get("Hx-Redirect"); got != "/login" {
		t.Fatalf("Hx-Redirect: %q", got)
	}
	if got := res.Header.Get("Hx-Push-Url"); got != "/jobs?q=go" {
		t.Fatalf("Hx-Push-Url: %q", got)
	}
	if got := res.Header.Get("Hx-Trigger"); got != `{"jobsUpdated":true}` {
		t.Fatalf("Hx-Trigger: %q", got)
	}
}

func TestTriggerToast(t *testing.T) {
	rr := httptest.NewRecorder()
	triggerToast(rr, "Job posted successfully!", ToastSuccess)

	var payload map[string]map[string]string
	if err := json.Unmarshal([]byte(rr.Header().Get("Hx-Trigger")), &payload); err != nil {
		t.Fatalf("unmarshal trigger: %v", err)
	}
	toast, ok := payload["showToast"]
	if !ok {
		t.Fatalf("expected showToast key in Hx-Trigger: %v", payload)
	}
	if toast["message"] != "Job posted successfully!" || toast["type"] != ToastSuccess {
		t.Fatalf("toast = %v", toast)
	}
}

func TestTriggerToast_BlankMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	triggerToast(rr, "   ", ToastError)
	if got := rr.Header().Get("Hx-Trigger"); got != "" {
		t.Fatalf("expected no trigger, got %q", got)
	}
}

func TestRedirect(t *testing.T) {
	t.Run("plain request gets 303", func(t *testing.T) {
		rr := httptest.NewRecorder()
		redirect(rr, httptest.NewRequest(http.MethodPost, "/post-job", nil), "/jobs?posted=1")
		if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/jobs?posted=1" {
			t.Fatalf("got %d %q", rr.Code, rr.Header().Get("Location"))
		}
	})

	t.Run("htmx request gets Hx-Redirect", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/post-job", nil)
		r.Header.Set("Hx-Request", "true")
		redirect(rr, r, "/jobs?posted=1")
		if rr.Code != http.StatusNoContent || rr.Header().Get("Hx-Redirect") != "/jobs?posted=1" {
			t.Fatalf("got %d %q", rr.Code, rr.Header().Get("Hx-Redirect"))
		}
	})
}
