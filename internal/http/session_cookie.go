package httpx

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const slotValueKey = "slot"

// SlotCookieConfig configures the signed cookie that carries a browser's session slot.
type SlotCookieConfig struct {
	Name   string
	Keys   [][]byte
	Domain string
	Secure bool
	MaxAge time.Duration
}

// SlotCookies reads and writes the session slot id held in a signed cookie.
// The session payload itself lives in the SessionStore under that slot.
type SlotCookies struct {
	store *sessions.CookieStore
	name  string
}

// NewSlotCookies constructs SlotCookies. At least one key is required.
func NewSlotCookies(cfg SlotCookieConfig) *SlotCookies {
	if len(cfg.Keys) == 0 || len(cfg.Keys[0]) == 0 {
		panic("session cookie signing key is required")
	}
	name := cfg.Name
	if name == "" {
		name = "fh_session"
	}

	store := sessions.NewCookieStore(cfg.Keys...)
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(cfg.MaxAge / time.Second))
	return &SlotCookies{store: store, name: name}
}

// Read returns the slot in r's cookie, or "" when it is missing or fails verification.
func (c *SlotCookies) Read(r *http.Request) string {
	sess, err := c.store.Get(r, c.name)
	if err != nil || sess.IsNew {
		return ""
	}
	slot, _ := sess.Values[slotValueKey].(string)
	return slot
}

// Write replaces the cookie with one holding slot.
func (c *SlotCookies) Write(w http.ResponseWriter, r *http.Request, slot string) error {
	sess := c.fresh()
	sess.Values[slotValueKey] = slot
	return sess.Save(r, w)
}

// Clear expires the cookie.
func (c *SlotCookies) Clear(w http.ResponseWriter, r *http.Request) error {
	sess := c.fresh()
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (c *SlotCookies) fresh() *sessions.Session {
	sess := sessions.NewSession(c.store, c.name)
	opts := *c.store.Options
	sess.Options = &opts
	return sess
}
