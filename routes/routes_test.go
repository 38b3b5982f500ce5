package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"npj/calendar"
	"npj/mailer"
	"npj/models"
	"npj/models/mocks"
	"npj/routes"
	"npj/utils"
	"npj/workflow"
)

/* ---------- helpers ---------- */

type serverDeps struct {
	s     *gin.Engine
	users *mocks.MockUserRepo
	cases *mocks.MockCaseRepo
	evts  *mocks.MockEventRepo
	atts  *mocks.MockAttachmentRepo
}

func setupServer(t *testing.T) serverDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inv := utils.NewCacheInvalidator(rdb)

	users := mocks.NewMockUserRepo()
	cases := mocks.NewMockCaseRepo()
	evts := mocks.NewMockEventRepo()
	parts := mocks.NewMockParticipantRepo()
	notifs := mocks.NewMockNotificationRepo()
	atts := mocks.NewMockAttachmentRepo()

	wf := workflow.NewService(evts, parts, users, cases, notifs,
		mailer.Disabled{}, calendar.Disabled{})

	s := gin.New()
	routes.RegisterRoutes(s, routes.Deps{
		Users:         users,
		Cases:         cases,
		Attachments:   atts,
		Notifications: notifs,
		Workflow:      wf,
		Inv:           inv,
	}, rdb)

	return serverDeps{s: s, users: users, cases: cases, evts: evts, atts: atts}
}

// seedUser bypasses signup so tests control ids and roles directly.
func seedUser(t *testing.T, d serverDeps, email string, role models.Role) (int64, string) {
	t.Helper()
	u := models.User{Name: "t", Email: email, Password: "p", Role: role}
	if err := d.users.Create(&u); err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	token, err := utils.GenerateToken(email, u.ID, string(role))
	if err != nil {
		t.Fatalf("token for %s: %v", email, err)
	}
	return u.ID, token
}

func doReq(s *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	s.ServeHTTP(w, req)
	return w
}

const validEventBody = `{
	"title": "Reunião",
	"startAt": "2025-03-01T10:00:00Z",
	"endAt": "2025-03-01T11:00:00Z",
	"participants": [{"email": "convidado@example.com"}]
}`

func createEvent(t *testing.T, d serverDeps, token string) int64 {
	t.Helper()
	w := doReq(d.s, http.MethodPost, "/events", validEventBody, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: code=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Event models.Event `json:"event"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return resp.Event.ID
}

/* ---------- auth ---------- */

func TestSignupAndLogin(t *testing.T) {
	d := setupServer(t)

	w := doReq(d.s, http.MethodPost, "/signup",
		`{"name":"Ana","email":"a@b.com","password":"p","role":"aluno"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup got %d: %s", w.Code, w.Body.String())
	}

	w = doReq(d.s, http.MethodPost, "/login", `{"email":"a@b.com","password":"p"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token in login response: %s", w.Body.String())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	d := setupServer(t)
	seedUser(t, d, "a@b.com", models.RoleAluno)

	w := doReq(d.s, http.MethodPost, "/login", `{"email":"a@b.com","password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", w.Code)
	}
}

func TestEvents_RequireAuth(t *testing.T) {
	d := setupServer(t)
	w := doReq(d.s, http.MethodPost, "/events", validEventBody, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", w.Code)
	}
	w = doReq(d.s, http.MethodGet, "/events", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", w.Code)
	}
}

/* ---------- event workflow over HTTP ---------- */

func TestEvents_CreateAndFetch(t *testing.T) {
	d := setupServer(t)
	uid, token := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)

	id := createEvent(t, d, token)

	w := doReq(d.s, http.MethodGet, "/events/1", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("get event: %d %s", w.Code, w.Body.String())
	}
	var details struct {
		models.Event
		Participants []models.Participant `json:"participants"`
		Display      struct {
			Label string `json:"label"`
		} `json:"display"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &details); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if details.ID != id || details.RequesterID != uid {
		t.Fatalf("got id=%d requester=%d, want id=%d requester=%d",
			details.ID, details.RequesterID, id, uid)
	}
	if details.Status != models.StatusRequested {
		t.Fatalf("status = %s", details.Status)
	}
	if len(details.Participants) != 1 {
		t.Fatalf("participants = %v", details.Participants)
	}
	if details.Display.Label != "Em análise" {
		t.Fatalf("label = %q", details.Display.Label)
	}
}

func TestEvents_CreateValidation(t *testing.T) {
	d := setupServer(t)
	_, token := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)

	// start equals end
	body := `{"title":"x","startAt":"2025-03-01T10:00:00Z","endAt":"2025-03-01T10:00:00Z"}`
	w := doReq(d.s, http.MethodPost, "/events", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("equal times got %d, want 400", w.Code)
	}

	w = doReq(d.s, http.MethodPost, "/events", `{"title": 12}`, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body got %d, want 400", w.Code)
	}
}

func TestEvents_ApproveFlow(t *testing.T) {
	d := setupServer(t)
	_, alunoTok := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)
	profID, profTok := seedUser(t, d, "prof@npj.edu", models.RoleProfessor)

	id := createEvent(t, d, alunoTok)

	// a student may not approve, own event or not
	w := doReq(d.s, http.MethodPost, "/events/1/approve", `{}`, alunoTok)
	if w.Code != http.StatusForbidden {
		t.Fatalf("aluno approve got %d, want 403", w.Code)
	}

	w = doReq(d.s, http.MethodPost, "/events/1/approve", `{"observation":"ok"}`, profTok)
	if w.Code != http.StatusOK {
		t.Fatalf("prof approve got %d: %s", w.Code, w.Body.String())
	}
	ev, err := d.evts.GetByID(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ev.Status != models.StatusApproved || ev.ApproverID == nil || *ev.ApproverID != profID {
		t.Fatalf("event after approve: %+v", ev)
	}

	// second decision conflicts
	w = doReq(d.s, http.MethodPost, "/events/1/approve", `{}`, profTok)
	if w.Code != http.StatusConflict {
		t.Fatalf("re-approve got %d, want 409", w.Code)
	}
	w = doReq(d.s, http.MethodPost, "/events/1/reject", `{"reason":"x"}`, profTok)
	if w.Code != http.StatusConflict {
		t.Fatalf("reject after approve got %d, want 409", w.Code)
	}
}

func TestEvents_RejectNeedsReason(t *testing.T) {
	d := setupServer(t)
	_, alunoTok := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)
	_, adminTok := seedUser(t, d, "admin@npj.edu", models.RoleAdmin)

	id := createEvent(t, d, alunoTok)

	w := doReq(d.s, http.MethodPost, "/events/1/reject", `{"reason":""}`, adminTok)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty reason got %d, want 400", w.Code)
	}
	ev, _ := d.evts.GetByID(id)
	if ev.Status != models.StatusRequested {
		t.Fatalf("status changed by failed reject: %s", ev.Status)
	}

	w = doReq(d.s, http.MethodPost, "/events/1/reject", `{"reason":"sem pauta"}`, adminTok)
	if w.Code != http.StatusOK {
		t.Fatalf("reject got %d: %s", w.Code, w.Body.String())
	}
	ev, _ = d.evts.GetByID(id)
	if ev.Status != models.StatusRejected || ev.RejectionReason != "sem pauta" {
		t.Fatalf("event after reject: %+v", ev)
	}
}

func TestEvents_CancelRules(t *testing.T) {
	d := setupServer(t)
	_, alunoTok := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)
	_, otherTok := seedUser(t, d, "outro@npj.edu", models.RoleAluno)

	createEvent(t, d, alunoTok)

	w := doReq(d.s, http.MethodPost, "/events/1/cancel", `{"reason":"x"}`, otherTok)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger cancel got %d, want 403", w.Code)
	}

	w = doReq(d.s, http.MethodPost, "/events/1/cancel", `{"reason":""}`, alunoTok)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty reason got %d, want 400", w.Code)
	}

	w = doReq(d.s, http.MethodPost, "/events/1/cancel", `{"reason":"desistiu"}`, alunoTok)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel got %d: %s", w.Code, w.Body.String())
	}

	w = doReq(d.s, http.MethodPost, "/events/1/cancel", `{"reason":"de novo"}`, alunoTok)
	if w.Code != http.StatusConflict {
		t.Fatalf("second cancel got %d, want 409", w.Code)
	}
}

func TestEvents_UnknownID(t *testing.T) {
	d := setupServer(t)
	_, adminTok := seedUser(t, d, "admin@npj.edu", models.RoleAdmin)

	w := doReq(d.s, http.MethodPost, "/events/42/approve", `{}`, adminTok)
	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", w.Code)
	}
	w = doReq(d.s, http.MethodGet, "/events/abc", "", adminTok)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric id got %d, want 400", w.Code)
	}
}

func TestEvents_VisibilityList(t *testing.T) {
	d := setupServer(t)
	_, alunoTok := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)
	_, otherTok := seedUser(t, d, "outro@npj.edu", models.RoleAluno)
	_, profTok := seedUser(t, d, "prof@npj.edu", models.RoleProfessor)

	createEvent(t, d, alunoTok)

	var got []models.Event

	w := doReq(d.s, http.MethodGet, "/events", "", otherTok)
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if len(got) != 0 {
		t.Fatalf("other aluno sees %d events, want 0", len(got))
	}

	w = doReq(d.s, http.MethodGet, "/events", "", profTok)
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if len(got) != 1 {
		t.Fatalf("professor sees %d events, want 1", len(got))
	}

	// and the stranger cannot fetch it directly either
	w = doReq(d.s, http.MethodGet, "/events/1", "", otherTok)
	if w.Code != http.StatusForbidden {
		t.Fatalf("direct fetch got %d, want 403", w.Code)
	}
}

func TestEvents_Stats(t *testing.T) {
	d := setupServer(t)
	_, alunoTok := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)
	createEvent(t, d, alunoTok)

	w := doReq(d.s, http.MethodGet, "/events/stats", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats got %d", w.Code)
	}
	var stats workflow.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.Total != 1 || stats.ByStatus[models.StatusRequested] != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

/* ---------- cases & attachments ---------- */

func TestCases_RoleGatedWrites(t *testing.T) {
	d := setupServer(t)
	_, alunoTok := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)
	_, adminTok := seedUser(t, d, "admin@npj.edu", models.RoleAdmin)

	body := `{"number":"2025-0001","title":"Ação de alimentos","status":"Em andamento"}`

	w := doReq(d.s, http.MethodPost, "/cases", body, alunoTok)
	if w.Code != http.StatusForbidden {
		t.Fatalf("aluno create case got %d, want 403", w.Code)
	}

	w = doReq(d.s, http.MethodPost, "/cases", body, adminTok)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create case got %d: %s", w.Code, w.Body.String())
	}

	w = doReq(d.s, http.MethodPut, "/cases/1", `{"status":"Arquivado"}`, adminTok)
	if w.Code != http.StatusOK {
		t.Fatalf("update case got %d: %s", w.Code, w.Body.String())
	}
	cs, err := d.cases.GetByID(1)
	if err != nil {
		t.Fatalf("get case: %v", err)
	}
	if cs.Status != "Arquivado" || cs.Number != "2025-0001" {
		t.Fatalf("case after update: %+v", cs)
	}
}

func TestCases_StatsAggregation(t *testing.T) {
	d := setupServer(t)
	for i, status := range []string{"Em andamento", "Arquivado", "???"} {
		cs := models.Case{Number: string(rune('a' + i)), Title: "t", Status: status}
		if err := d.cases.Create(&cs); err != nil {
			t.Fatalf("seed case: %v", err)
		}
	}

	w := doReq(d.s, http.MethodGet, "/cases/stats", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats got %d", w.Code)
	}
	var s struct {
		Active, Archived, Other, Total int
	}
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Active != 1 || s.Archived != 1 || s.Other != 1 || s.Total != 3 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestEvents_ConcludedCaseBlocked(t *testing.T) {
	d := setupServer(t)
	_, alunoTok := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)

	cs := models.Case{Number: "x", Title: "t", Status: "Finalizado"}
	if err := d.cases.Create(&cs); err != nil {
		t.Fatalf("seed case: %v", err)
	}

	body := `{"title":"x","startAt":"2025-03-01T10:00:00Z","endAt":"2025-03-01T11:00:00Z","caseId":1}`
	w := doReq(d.s, http.MethodPost, "/events", body, alunoTok)
	if w.Code != http.StatusConflict {
		t.Fatalf("got %d, want 409", w.Code)
	}
}

func TestAttachments_Lifecycle(t *testing.T) {
	d := setupServer(t)
	_, alunoTok := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)
	_, otherTok := seedUser(t, d, "outro@npj.edu", models.RoleAluno)

	cs := models.Case{Number: "x", Title: "t", Status: "Em andamento"}
	if err := d.cases.Create(&cs); err != nil {
		t.Fatalf("seed case: %v", err)
	}

	body := `{"fileName":"peticao.pdf","contentType":"application/pdf","size":1234}`
	w := doReq(d.s, http.MethodPost, "/cases/1/attachments", body, alunoTok)
	if w.Code != http.StatusCreated {
		t.Fatalf("create attachment got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Attachment models.Attachment `json:"attachment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Attachment.ID == "" {
		t.Fatalf("bad attachment response: %s", w.Body.String())
	}

	// unknown case
	w = doReq(d.s, http.MethodPost, "/cases/9/attachments", body, alunoTok)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown case got %d, want 404", w.Code)
	}

	w = doReq(d.s, http.MethodGet, "/cases/1/attachments", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list got %d", w.Code)
	}
	var list []models.Attachment
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s", w.Body.String())
	}

	// only the uploader or an elevated role may delete
	w = doReq(d.s, http.MethodDelete, "/attachments/"+resp.Attachment.ID, "", otherTok)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger delete got %d, want 403", w.Code)
	}
	w = doReq(d.s, http.MethodDelete, "/attachments/"+resp.Attachment.ID, "", alunoTok)
	if w.Code != http.StatusOK {
		t.Fatalf("uploader delete got %d: %s", w.Code, w.Body.String())
	}
}

/* ---------- notifications ---------- */

func TestNotifications_ApprovalRequestDelivered(t *testing.T) {
	d := setupServer(t)
	_, alunoTok := seedUser(t, d, "aluno@npj.edu", models.RoleAluno)
	_, profTok := seedUser(t, d, "prof@npj.edu", models.RoleProfessor)

	createEvent(t, d, alunoTok)

	w := doReq(d.s, http.MethodGet, "/notifications", "", profTok)
	if w.Code != http.StatusOK {
		t.Fatalf("list notifications got %d", w.Code)
	}
	var notifs []models.Notification
	if err := json.Unmarshal(w.Body.Bytes(), &notifs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Kind != "approval_request" {
		t.Fatalf("notifs = %+v", notifs)
	}

	w = doReq(d.s, http.MethodPost, "/notifications/1/read", "", profTok)
	if w.Code != http.StatusOK {
		t.Fatalf("mark read got %d", w.Code)
	}
}
