package http_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schoolhub/announcement-service/internal/domain"
)

type annResp struct {
	ID             string  `json:"id"`
	Message        string  `json:"message"`
	StartDate      *string `json:"start_date"`
	ExpirationDate string  `json:"expiration_date"`
	CreatedBy      string  `json:"created_by"`
	CreatedAt      string  `json:"created_at"`
}

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func Test_Create_Delete_Flow(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	// create by a known teacher
	w := env.do("POST", "/announcements/",
		`{"message":"Exam tomorrow","expiration_date":"2099-01-01","created_by":"t1"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("create code=%d body=%s", w.Code, w.Body.String())
	}
	var created annResp
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.ID == "" {
		t.Fatalf("create resp parse: %v; body=%s", err, w.Body.String())
	}
	if created.CreatedAt == "" || created.CreatedBy != "t1" {
		t.Fatalf("create resp fields: %+v", created)
	}

	// it is active today (no start_date, expiration far out)
	w = env.do("GET", "/announcements/active", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("active code=%d body=%s", w.Code, w.Body.String())
	}
	var active []annResp
	_ = json.Unmarshal(w.Body.Bytes(), &active)
	found := false
	for _, a := range active {
		if a.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("created announcement missing from active list: %s", w.Body.String())
	}

	// delete once → 200 with confirmation, twice → 404
	w = env.do("DELETE", "/announcements/"+created.ID+"?username=t1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete code=%d body=%s", w.Code, w.Body.String())
	}
	var dr map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &dr)
	if dr["message"] != "Announcement deleted successfully" {
		t.Fatalf("delete confirmation: %s", w.Body.String())
	}

	w = env.do("DELETE", "/announcements/"+created.ID+"?username=t1", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete expected 404, got %d: %s", w.Code, w.Body.String())
	}

	// malformed id is the caller's mistake, not a missing document
	w = env.do("DELETE", "/announcements/not-a-hex-id?username=t1", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id delete expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func Test_Create_RequiredFields(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	// missing message key
	w := env.do("POST", "/announcements/",
		`{"expiration_date":"2099-01-01","created_by":"t1"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing message expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// missing expiration_date
	w = env.do("POST", "/announcements/",
		`{"message":"hi","created_by":"t1"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing expiration_date expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// presence is all that's required: an explicit empty message is accepted
	w = env.do("POST", "/announcements/",
		`{"message":"","expiration_date":"2099-01-01","created_by":"t1"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("empty message expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var created annResp
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" || created.Message != "" {
		t.Fatalf("unexpected create resp: %+v", created)
	}
}

func Test_Create_UnknownTeacher(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("POST", "/announcements/",
		`{"message":"hi","expiration_date":"2099-01-01","created_by":"ghost"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}

	// nothing persisted
	w = env.do("GET", "/announcements/all?username=t1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list all: %d %s", w.Code, w.Body.String())
	}
	var items []annResp
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if len(items) != 0 {
		t.Fatalf("rejected create must not persist, got %d items", len(items))
	}
}

func Test_ListActive_Window(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	started, future := day(-3), day(+3)
	insert := func(msg string, start *string, exp string) {
		t.Helper()
		a := &domain.Announcement{Message: msg, StartDate: start, ExpirationDate: exp, CreatedBy: "t1"}
		if err := env.Store.InsertAnnouncement(env.Ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	insert("expired", nil, day(-1))                  // expiration < today → out, always
	insert("expired either way", &started, day(-1))  // out despite started window
	insert("not started yet", &future, "2099-01-01") // start > today → out
	insert("no start, valid", nil, day(+5))          // in
	insert("started, valid", &started, day(+5))      // in
	insert("starts today", strPtr(day(0)), day(0))   // boundaries inclusive → in

	w := env.do("GET", "/announcements/active", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("active: %d %s", w.Code, w.Body.String())
	}
	var active []annResp
	_ = json.Unmarshal(w.Body.Bytes(), &active)

	got := map[string]bool{}
	for _, a := range active {
		got[a.Message] = true
	}
	want := []string{"no start, valid", "started, valid", "starts today"}
	if len(active) != len(want) {
		t.Fatalf("active = %v, want %v", got, want)
	}
	for _, m := range want {
		if !got[m] {
			t.Fatalf("missing %q from active list: %v", m, got)
		}
	}
}

func strPtr(s string) *string { return &s }

func Test_ListAll_AuthAndOrder(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("GET", "/announcements/all?username=nobody", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown username expected 401, got %d", w.Code)
	}
	w = env.do("GET", "/announcements/all", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing username expected 401, got %d", w.Code)
	}

	var ids []string
	for _, msg := range []string{"first", "second", "third"} {
		w = env.do("POST", "/announcements/",
			`{"message":"`+msg+`","expiration_date":"2099-01-01","created_by":"t1"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("create %s: %d %s", msg, w.Code, w.Body.String())
		}
		var a annResp
		_ = json.Unmarshal(w.Body.Bytes(), &a)
		ids = append(ids, a.ID)
		time.Sleep(5 * time.Millisecond) // distinct created_at stamps
	}

	w = env.do("GET", "/announcements/all?username=t1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list all: %d %s", w.Code, w.Body.String())
	}
	var items []annResp
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if len(items) != 3 {
		t.Fatalf("want 3 items, got %d", len(items))
	}
	// newest first
	for i := 0; i < 3; i++ {
		if items[i].ID != ids[2-i] {
			t.Fatalf("order mismatch at %d: got %s want %s", i, items[i].ID, ids[2-i])
		}
	}
}

func Test_Update(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	start := day(-1)
	w := env.do("POST", "/announcements/",
		`{"message":"orig","start_date":"`+start+`","expiration_date":"2099-01-01","created_by":"t1"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created annResp
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	// unknown caller
	w = env.do("PUT", "/announcements/"+created.ID+"?username=nobody", `{"message":"X"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown caller expected 401, got %d", w.Code)
	}

	// empty patch
	w = env.do("PUT", "/announcements/"+created.ID+"?username=t1", `{}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty patch expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// malformed id is 400, not 404
	w = env.do("PUT", "/announcements/not-a-hex-id?username=t1", `{"message":"X"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// well-formed but nonexistent id
	w = env.do("PUT", "/announcements/"+primitive.NewObjectID().Hex()+"?username=t1", `{"message":"X"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing id expected 404, got %d: %s", w.Code, w.Body.String())
	}

	// partial update touches only the given field
	w = env.do("PUT", "/announcements/"+created.ID+"?username=t1", `{"message":"X"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var updated annResp
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Message != "X" {
		t.Fatalf("message not updated: %+v", updated)
	}
	if updated.StartDate == nil || *updated.StartDate != start || updated.ExpirationDate != "2099-01-01" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}
